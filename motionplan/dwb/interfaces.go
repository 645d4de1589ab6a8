package dwb

import (
	"go.viam.com/dwb/costmap"
	"go.viam.com/dwb/spatialmath"
)

// TrajectoryGenerator enumerates candidate velocity commands and simulates each of them.
type TrajectoryGenerator interface {
	// StartNewIteration begins a new enumeration around the current velocity.
	StartNewIteration(current spatialmath.Twist2D)
	HasMoreTwists() bool
	NextTwist() spatialmath.Twist2D
	// GenerateTrajectory simulates cmd from start. An error marks the candidate inadmissible.
	GenerateTrajectory(start spatialmath.Pose2D, current, cmd spatialmath.Twist2D) (Trajectory, error)
	Reset()
}

// TrajectoryCritic rates a trajectory against one criterion.
//
// Raw scores must be non-negative: short-circuit evaluation relies on the running total never
// decreasing, and a negative score is rejected as illegal while it is enabled. A critic may
// reject a single trajectory by returning an *IllegalTrajectoryError.
type TrajectoryCritic interface {
	Name() string
	// Prepare is called once per cycle before any trajectory is scored. Returning false is
	// logged and otherwise ignored.
	Prepare(start spatialmath.Pose2D, vel spatialmath.Twist2D, goal spatialmath.Pose2D, plan Path) bool
	// Weight scales the raw score. A weight of zero disables the critic.
	Weight() float64
	ScoreTrajectory(traj Trajectory) (float64, error)
	// Debrief is called once per cycle with the chosen command, or the zero twist when the
	// cycle failed.
	Debrief(cmd spatialmath.Twist2D)
	Reset()
}

// GoalChecker decides whether the robot has reached a goal.
type GoalChecker interface {
	IsGoalReached(pose, goal spatialmath.Pose2D, vel spatialmath.Twist2D) bool
	Reset()
}

// Costmap is the part of the local occupancy grid the planner itself consults.
type Costmap interface {
	Update() error
	Width() uint
	Height() uint
	Resolution() float64
	FrameID() string
	Info() costmap.Info
}

type named interface {
	Name() string
}

const defaultGeneratorName = "TrajectoryGenerator"

func generatorName(g TrajectoryGenerator) string {
	if n, ok := g.(named); ok {
		return n.Name()
	}
	return defaultGeneratorName
}
