package referenceframe

import (
	"fmt"
	"time"

	"go.viam.com/dwb/spatialmath"
)

// PoseInFrame is a data structure that packages a pose with the name of the
// frame in which it was observed and the time of the observation.
type PoseInFrame struct {
	frame string
	pose  spatialmath.Pose2D
	stamp time.Time
}

// NewPoseInFrame generates a new PoseInFrame.
func NewPoseInFrame(frame string, pose spatialmath.Pose2D) *PoseInFrame {
	return &PoseInFrame{
		frame: frame,
		pose:  pose,
	}
}

// NewStampedPoseInFrame generates a new PoseInFrame observed at stamp.
func NewStampedPoseInFrame(frame string, pose spatialmath.Pose2D, stamp time.Time) *PoseInFrame {
	return &PoseInFrame{
		frame: frame,
		pose:  pose,
		stamp: stamp,
	}
}

// FrameName returns the name of the frame in which the pose was observed.
func (pF *PoseInFrame) FrameName() string {
	return pF.frame
}

// Pose returns the pose that was observed.
func (pF *PoseInFrame) Pose() spatialmath.Pose2D {
	return pF.pose
}

// Stamp returns the time of the observation. The zero time means "latest available".
func (pF *PoseInFrame) Stamp() time.Time {
	return pF.stamp
}

// WithStamp returns a copy of the PoseInFrame observed at stamp.
func (pF *PoseInFrame) WithStamp(stamp time.Time) *PoseInFrame {
	return NewStampedPoseInFrame(pF.frame, pF.pose, stamp)
}

// AlmostEqual compares frame names exactly and poses within epsilon.
func (pF *PoseInFrame) AlmostEqual(other *PoseInFrame, epsilon float64) bool {
	return pF.frame == other.frame && pF.pose.AlmostEqual(other.pose, epsilon)
}

func (pF *PoseInFrame) String() string {
	return fmt.Sprintf("%s@%s", pF.pose, pF.frame)
}

// Transformer converts poses between named frames. Implementations are expected to fail fast
// rather than retry when a lookup cannot be satisfied.
type Transformer interface {
	TransformPose(dst string, pose *PoseInFrame) (*PoseInFrame, error)
}
