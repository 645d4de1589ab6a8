package dwb

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrGoalNotSet is returned when goal reachability is queried before a goal was installed.
var ErrGoalNotSet = errors.New("cannot check if the goal is reached without the goal being set")

const (
	msgZeroLengthPlan  = "received plan with zero length"
	msgEmptyWindow     = "resulting plan has 0 poses in it"
	msgNegativeScore   = "negative score"
	msgPlanFrame       = "unable to transform robot pose into global plan's frame"
	msgCostmapFrame    = "unable to transform robot pose into costmap's frame"
	msgLocalFrame      = "unable to transform pose into costmap's frame"
	msgCostmapUpdating = "failed to update costmap"
)

// ConfigurationError reports a missing or unusable plugin or option.
type ConfigurationError struct {
	Component string
	Err       error
}

// NewConfigurationError returns a ConfigurationError for the named component.
func NewConfigurationError(component string, err error) error {
	return &ConfigurationError{Component: component, Err: err}
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration for %s: %v", e.Component, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// TransformError reports a failed frame lookup. It is fatal to the current cycle only.
type TransformError struct {
	Msg   string
	Frame string
	Err   error
}

// NewTransformError wraps a transform failure towards frame.
func NewTransformError(msg, frame string, err error) error {
	return &TransformError{Msg: msg, Frame: frame, Err: err}
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Msg, e.Frame, e.Err)
}

func (e *TransformError) Unwrap() error {
	return e.Err
}

// EmptyPlanError reports an empty plan or an empty window around the robot.
type EmptyPlanError struct {
	Msg string
}

// NewEmptyPlanError returns an EmptyPlanError with the given message.
func NewEmptyPlanError(msg string) error {
	return &EmptyPlanError{Msg: msg}
}

func (e *EmptyPlanError) Error() string {
	return e.Msg
}

// IllegalTrajectoryError rejects a single trajectory. It never escapes a cycle.
type IllegalTrajectoryError struct {
	Critic string
	Reason string
}

// NewIllegalTrajectoryError is returned by critics to reject a trajectory.
func NewIllegalTrajectoryError(critic, reason string) error {
	return &IllegalTrajectoryError{Critic: critic, Reason: reason}
}

func (e *IllegalTrajectoryError) Error() string {
	return fmt.Sprintf("%s: %s", e.Critic, e.Reason)
}

// asIllegal converts any scoring or generation failure into an IllegalTrajectoryError,
// attributing it to name unless the error already names a critic.
func asIllegal(name string, err error) *IllegalTrajectoryError {
	var illegal *IllegalTrajectoryError
	if errors.As(err, &illegal) {
		return illegal
	}
	return &IllegalTrajectoryError{Critic: name, Reason: err.Error()}
}

// NoLegalTrajectoriesError is returned when every candidate of a cycle was rejected.
type NoLegalTrajectoriesError struct {
	Tracker *IllegalTrajectoryTracker
}

func (e *NoLegalTrajectoriesError) Error() string {
	return "no legal trajectories. " + e.Tracker.Message() + e.Tracker.failureSummary()
}
