// Package dwb implements the trajectory selection core of a dynamic window local planner.
//
// Every control cycle the LocalPlanner windows the active plan segment around the robot,
// asks a TrajectoryGenerator for candidate velocity commands, scores the resulting
// trajectories with an ordered list of TrajectoryCritics and returns the command of the
// lowest scoring admissible trajectory. Generators, critics and goal checkers are supplied
// at construction time; see the registry package for building them from configuration.
package dwb

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"go.viam.com/dwb/spatialmath"
)

// Direction classifies the movement along a plan segment.
type Direction int

// The possible segment directions. DirectionUnspecified is used when the path is not split.
const (
	DirectionUnspecified Direction = iota
	DirectionForward
	DirectionBackward
	DirectionRotateInPlace
)

func (d Direction) String() string {
	switch d {
	case DirectionForward:
		return "forward"
	case DirectionBackward:
		return "backward"
	case DirectionRotateInPlace:
		return "rotate_in_place"
	case DirectionUnspecified:
		return "unspecified"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Path is an ordered list of poses expressed in a single frame.
type Path struct {
	Frame string
	Stamp time.Time
	Poses []spatialmath.Pose2D
}

// Len returns the number of poses in the path.
func (p Path) Len() int {
	return len(p.Poses)
}

// Last returns the final pose of the path. ok is false for an empty path.
func (p Path) Last() (pose spatialmath.Pose2D, ok bool) {
	if len(p.Poses) == 0 {
		return spatialmath.Pose2D{}, false
	}
	return p.Poses[len(p.Poses)-1], true
}

// Clone returns a copy of the path that shares no memory with p.
func (p Path) Clone() Path {
	out := p
	out.Poses = append([]spatialmath.Pose2D(nil), p.Poses...)
	return out
}

// PlanSegment is a maximal run of a path sharing one Direction.
type PlanSegment struct {
	Path
	Direction Direction
}

// TrajectorySample is one point of a simulated trajectory.
type TrajectorySample struct {
	Pose     spatialmath.Pose2D
	Velocity spatialmath.Twist2D
	// Time is the offset from the start of the trajectory.
	Time time.Duration
}

// Trajectory is the simulated result of holding a velocity command.
type Trajectory struct {
	Velocity spatialmath.Twist2D
	Samples  []TrajectorySample
}

// Poses returns the poses of every sample.
func (t Trajectory) Poses() []spatialmath.Pose2D {
	poses := make([]spatialmath.Pose2D, 0, len(t.Samples))
	for _, s := range t.Samples {
		poses = append(poses, s.Pose)
	}
	return poses
}

// EndPose returns the pose of the last sample.
func (t Trajectory) EndPose() (spatialmath.Pose2D, bool) {
	if len(t.Samples) == 0 {
		return spatialmath.Pose2D{}, false
	}
	return t.Samples[len(t.Samples)-1].Pose, true
}

// Duration is the time offset of the last sample.
func (t Trajectory) Duration() time.Duration {
	if len(t.Samples) == 0 {
		return 0
	}
	return t.Samples[len(t.Samples)-1].Time
}

// RejectedScore marks a critic score or trajectory total that is not admissible.
const RejectedScore = -1.0

// CriticScore is the contribution of one critic to a trajectory's total.
type CriticScore struct {
	Name     string
	Weight   float64
	RawScore float64
}

// TrajectoryScore is a scored trajectory. Lower totals are better.
type TrajectoryScore struct {
	Trajectory Trajectory
	Scores     []CriticScore
	Total      float64
}

// Admissible reports whether the trajectory was accepted by every critic.
func (s TrajectoryScore) Admissible() bool {
	return s.Total >= 0
}

func rejectedTrajectoryScore(traj Trajectory, critic string) TrajectoryScore {
	return TrajectoryScore{
		Trajectory: traj,
		Scores:     []CriticScore{{Name: critic, RawScore: RejectedScore}},
		Total:      RejectedScore,
	}
}

// LocalPlanEvaluation records every candidate scored during one cycle. It is only assembled
// when the Publisher asks for it.
type LocalPlanEvaluation struct {
	ID         uuid.UUID
	Frame      string
	Stamp      time.Time
	Twists     []TrajectoryScore
	BestIndex  int
	WorstIndex int
}

// NewLocalPlanEvaluation returns an empty evaluation with no best or worst candidate.
func NewLocalPlanEvaluation(frame string, stamp time.Time) *LocalPlanEvaluation {
	return &LocalPlanEvaluation{
		ID:         uuid.New(),
		Frame:      frame,
		Stamp:      stamp,
		BestIndex:  -1,
		WorstIndex: -1,
	}
}

// Best returns the best scored candidate, if any.
func (e *LocalPlanEvaluation) Best() (TrajectoryScore, bool) {
	if e.BestIndex < 0 || e.BestIndex >= len(e.Twists) {
		return TrajectoryScore{}, false
	}
	return e.Twists[e.BestIndex], true
}

// Worst returns the worst admissible candidate, if any.
func (e *LocalPlanEvaluation) Worst() (TrajectoryScore, bool) {
	if e.WorstIndex < 0 || e.WorstIndex >= len(e.Twists) {
		return TrajectoryScore{}, false
	}
	return e.Twists[e.WorstIndex], true
}
