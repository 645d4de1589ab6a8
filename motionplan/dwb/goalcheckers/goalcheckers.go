// Package goalcheckers contains goal checkers for the dwb local planner.
package goalcheckers

import (
	"math"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/dwb/spatialmath"
	"go.viam.com/dwb/utils"
)

// Registered names of the goal checkers.
const (
	SimpleName  = "SimpleGoalChecker"
	StoppedName = "StoppedGoalChecker"
)

// SimpleConfig configures a Simple goal checker.
type SimpleConfig struct {
	XYGoalTolerance  float64 `json:"xy_goal_tolerance"`
	YawGoalTolerance float64 `json:"yaw_goal_tolerance"`
}

// DefaultSimpleConfig returns the configuration used for unset attributes.
func DefaultSimpleConfig() SimpleConfig {
	return SimpleConfig{XYGoalTolerance: 0.25, YawGoalTolerance: 0.25}
}

// Validate ensures all parts of the config are valid.
func (cfg *SimpleConfig) Validate(path string) error {
	var err error
	if cfg.XYGoalTolerance < 0 {
		err = multierr.Append(err, errors.Errorf("%s: xy_goal_tolerance must not be negative", path))
	}
	if cfg.YawGoalTolerance < 0 {
		err = multierr.Append(err, errors.Errorf("%s: yaw_goal_tolerance must not be negative", path))
	}
	return err
}

// Simple reports the goal reached once the robot is within the position and heading tolerances.
type Simple struct {
	cfg SimpleConfig
}

// NewSimple returns a Simple goal checker.
func NewSimple(cfg SimpleConfig) *Simple {
	return &Simple{cfg: cfg}
}

// IsGoalReached implements dwb.GoalChecker.
func (gc *Simple) IsGoalReached(pose, goal spatialmath.Pose2D, _ spatialmath.Twist2D) bool {
	if pose.SquaredDistance(goal) > utils.Square(gc.cfg.XYGoalTolerance) {
		return false
	}
	return math.Abs(utils.AngleDiffRad(pose.Theta, goal.Theta)) <= gc.cfg.YawGoalTolerance
}

// Reset does nothing.
func (gc *Simple) Reset() {}

// StoppedConfig configures a Stopped goal checker.
type StoppedConfig struct {
	SimpleConfig
	RotStoppedVelocity   float64 `json:"rot_stopped_velocity"`
	TransStoppedVelocity float64 `json:"trans_stopped_velocity"`
}

// DefaultStoppedConfig returns the configuration used for unset attributes.
func DefaultStoppedConfig() StoppedConfig {
	return StoppedConfig{SimpleConfig: DefaultSimpleConfig(), RotStoppedVelocity: 0.25, TransStoppedVelocity: 0.25}
}

// Stopped additionally requires the robot to have (nearly) stopped.
type Stopped struct {
	Simple
	cfg StoppedConfig
}

// NewStopped returns a Stopped goal checker.
func NewStopped(cfg StoppedConfig) *Stopped {
	return &Stopped{Simple: Simple{cfg: cfg.SimpleConfig}, cfg: cfg}
}

// IsGoalReached implements dwb.GoalChecker.
func (gc *Stopped) IsGoalReached(pose, goal spatialmath.Pose2D, vel spatialmath.Twist2D) bool {
	if !gc.Simple.IsGoalReached(pose, goal, vel) {
		return false
	}
	return math.Abs(vel.Theta) <= gc.cfg.RotStoppedVelocity && vel.Speed() <= gc.cfg.TransStoppedVelocity
}
