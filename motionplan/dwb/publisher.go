package dwb

import (
	"time"

	"go.viam.com/dwb/costmap"
	"go.viam.com/dwb/spatialmath"
)

// Publisher receives the planner's telemetry. Calls are fire and forget and must not block
// the control cycle.
type Publisher interface {
	// ShouldRecordEvaluation reports whether a LocalPlanEvaluation should be assembled.
	ShouldRecordEvaluation() bool
	PublishEvaluation(eval *LocalPlanEvaluation)
	PublishGlobalPlan(plan Path)
	PublishTransformedPlan(plan Path)
	PublishLocalPlan(frame string, stamp time.Time, traj Trajectory)
	PublishCostGrid(cm Costmap, critics []TrajectoryCritic)
	PublishInputParams(info costmap.Info, start spatialmath.Pose2D, vel spatialmath.Twist2D, goal spatialmath.Pose2D)
}

// NoopPublisher discards everything.
type NoopPublisher struct{}

// ShouldRecordEvaluation always returns false.
func (NoopPublisher) ShouldRecordEvaluation() bool { return false }

// PublishEvaluation does nothing.
func (NoopPublisher) PublishEvaluation(*LocalPlanEvaluation) {}

// PublishGlobalPlan does nothing.
func (NoopPublisher) PublishGlobalPlan(Path) {}

// PublishTransformedPlan does nothing.
func (NoopPublisher) PublishTransformedPlan(Path) {}

// PublishLocalPlan does nothing.
func (NoopPublisher) PublishLocalPlan(string, time.Time, Trajectory) {}

// PublishCostGrid does nothing.
func (NoopPublisher) PublishCostGrid(Costmap, []TrajectoryCritic) {}

// PublishInputParams does nothing.
func (NoopPublisher) PublishInputParams(costmap.Info, spatialmath.Pose2D, spatialmath.Twist2D, spatialmath.Pose2D) {
}
