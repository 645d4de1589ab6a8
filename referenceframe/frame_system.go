// Package referenceframe defines a tree of planar frames and the transforms between them.
package referenceframe

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/jedib0t/go-pretty/v6/table"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/dwb/spatialmath"
)

// World is the string "world", but made into an exported constant.
const World = "world"

// Frame is a named planar transform from itself to its parent.
type Frame struct {
	name string
	pose spatialmath.Pose2D
}

// NewStaticFrame creates a frame whose origin sits at pose in its parent.
func NewStaticFrame(name string, pose spatialmath.Pose2D) *Frame {
	return &Frame{name: name, pose: pose}
}

// NewZeroStaticFrame creates a frame coincident with its parent.
func NewZeroStaticFrame(name string) *Frame {
	return NewStaticFrame(name, spatialmath.NewZeroPose2D())
}

// Name returns the name of the frame.
func (f *Frame) Name() string {
	return f.name
}

// Pose returns the pose of the frame in its parent.
func (f *Frame) Pose() spatialmath.Pose2D {
	return f.pose
}

// FrameSystem represents a tree of frames connected to each other, allowing for transformations
// between any two frames. Frame poses may be updated in place (e.g. odometry), so access is guarded.
type FrameSystem struct {
	name string

	mu      sync.RWMutex
	frames  map[string]*Frame
	parents map[string]string
}

// NewEmptyFrameSystem creates a frame system containing only the world frame.
func NewEmptyFrameSystem(name string) *FrameSystem {
	return &FrameSystem{
		name:    name,
		frames:  map[string]*Frame{},
		parents: map[string]string{},
	}
}

// Name returns the name of the FrameSystem.
func (fs *FrameSystem) Name() string {
	return fs.name
}

var errNoParent = errors.New("no parent")

// frameExists is a helper function to see if a frame with a given name already exists in the system.
func (fs *FrameSystem) frameExists(name string) bool {
	if name == World {
		return true
	}
	_, ok := fs.frames[name]
	return ok
}

// AddFrame inserts frame into the system as a child of the named parent.
func (fs *FrameSystem) AddFrame(frame *Frame, parent string) error {
	if frame == nil {
		return errors.New("cannot add nil frame")
	}
	if parent == "" {
		return NewParentFrameMissingError()
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if !fs.frameExists(parent) {
		return fmt.Errorf("parent frame with name %q not in frame system", parent)
	}
	if fs.frameExists(frame.Name()) {
		return fmt.Errorf("frame with name %q already in frame system", frame.Name())
	}
	fs.frames[frame.Name()] = frame
	fs.parents[frame.Name()] = parent
	return nil
}

// SetFramePose replaces the pose of an existing frame in its parent.
func (fs *FrameSystem) SetFramePose(name string, pose spatialmath.Pose2D) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if _, ok := fs.frames[name]; !ok {
		return NewFrameMissingError(name)
	}
	fs.frames[name] = NewStaticFrame(name, pose)
	return nil
}

// RemoveFrame will delete the named frame and all descendents from the frame system if it exists.
func (fs *FrameSystem) RemoveFrame(name string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.removeFrame(name)
}

func (fs *FrameSystem) removeFrame(name string) {
	delete(fs.frames, name)
	delete(fs.parents, name)

	for child, parent := range fs.parents {
		if parent == name {
			fs.removeFrame(child)
		}
	}
}

// Parent returns the name of the parent of the named frame.
func (fs *FrameSystem) Parent(name string) (string, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	if !fs.frameExists(name) {
		return "", NewFrameMissingError(name)
	}
	if name == World {
		return "", errNoParent
	}
	return fs.parents[name], nil
}

// TracebackFrame traces the parentage of the given frame up to the world, and returns the full list of frames in between.
// The list will include both the query frame and the world frame.
func (fs *FrameSystem) TracebackFrame(name string) ([]string, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.traceback(name)
}

func (fs *FrameSystem) traceback(name string) ([]string, error) {
	if !fs.frameExists(name) {
		return nil, NewFrameMissingError(name)
	}
	if name == World {
		return []string{World}, nil
	}
	parents, err := fs.traceback(fs.parents[name])
	if err != nil {
		return nil, err
	}
	return append([]string{name}, parents...), nil
}

// FrameNames returns the sorted list of frame names registered in the frame system.
func (fs *FrameSystem) FrameNames() []string {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	frameNames := make([]string, 0, len(fs.frames))
	for k := range fs.frames {
		frameNames = append(frameNames, k)
	}
	sort.Strings(frameNames)
	return frameNames
}

// TransformPose expresses pose in the dst frame.
func (fs *FrameSystem) TransformPose(dst string, pose *PoseInFrame) (*PoseInFrame, error) {
	if pose == nil {
		return nil, errors.New("cannot transform nil pose")
	}
	src := pose.FrameName()
	if src == dst {
		return pose, nil
	}

	fs.mu.RLock()
	defer fs.mu.RUnlock()
	if !fs.frameExists(src) {
		return nil, fmt.Errorf("source frame %s not found in FrameSystem", src)
	}
	if !fs.frameExists(dst) {
		return nil, fmt.Errorf("destination frame %s not found in FrameSystem", dst)
	}

	srcToWorld := fs.composeTransforms(src)
	dstToWorld := fs.composeTransforms(dst)
	var worldToDst mat.Dense
	if err := worldToDst.Inverse(dstToWorld); err != nil {
		return nil, fmt.Errorf("frame %s has a singular transform: %w", dst, err)
	}

	var result mat.Dense
	result.Product(&worldToDst, srcToWorld, homogeneous(pose.Pose()))
	return NewStampedPoseInFrame(dst, poseFromHomogeneous(&result), pose.Stamp()), nil
}

// composeTransforms multiplies the transforms from the named frame up to the world frame.
func (fs *FrameSystem) composeTransforms(name string) *mat.Dense {
	q := homogeneous(spatialmath.NewZeroPose2D())
	for name != World {
		// pose gives FROM frame TO parent. Add new transforms to the left.
		var next mat.Dense
		next.Mul(homogeneous(fs.frames[name].Pose()), q)
		q = &next
		name = fs.parents[name]
	}
	return q
}

// String prints out a table of each frame in the system, with columns of name, parent and pose.
func (fs *FrameSystem) String() string {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	names := make([]string, 0, len(fs.frames))
	for name := range fs.frames {
		names = append(names, name)
	}
	sort.Strings(names)

	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "Name", "Parent", "X", "Y", "Theta"})
	t.AppendRow(table.Row{"0", World, "", "", "", ""})
	for i, name := range names {
		pose := fs.frames[name].Pose()
		t.AppendRow(table.Row{
			fmt.Sprint(i + 1),
			name,
			fs.parents[name],
			fmt.Sprintf("%.3f", pose.X),
			fmt.Sprintf("%.3f", pose.Y),
			fmt.Sprintf("%.3f", pose.Theta),
		})
	}
	return t.Render()
}

// homogeneous returns the 3x3 SE(2) matrix of pose.
func homogeneous(pose spatialmath.Pose2D) *mat.Dense {
	sin, cos := math.Sincos(pose.Theta)
	return mat.NewDense(3, 3, []float64{
		cos, -sin, pose.X,
		sin, cos, pose.Y,
		0, 0, 1,
	})
}

func poseFromHomogeneous(m mat.Matrix) spatialmath.Pose2D {
	return spatialmath.NewPose2D(m.At(0, 2), m.At(1, 2), math.Atan2(m.At(1, 0), m.At(0, 0)))
}
