package dwb

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/dwb/spatialmath"
)

func posesOf(segments []PlanSegment) [][]spatialmath.Pose2D {
	out := make([][]spatialmath.Pose2D, 0, len(segments))
	for _, s := range segments {
		out = append(out, s.Poses)
	}
	return out
}

func TestSplitPath(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		_, err := SplitPath(Path{Frame: "map"}, true)
		var emptyErr *EmptyPlanError
		test.That(t, errors.As(err, &emptyErr), test.ShouldBeTrue)
		test.That(t, err.Error(), test.ShouldEqual, "received plan with zero length")
	})

	t.Run("split disabled", func(t *testing.T) {
		path := Path{Frame: "map", Poses: []spatialmath.Pose2D{
			spatialmath.NewPose2D(0, 0, 0),
			spatialmath.NewPose2D(-1, 0, 0),
			spatialmath.NewPose2D(-1, 0, 1),
		}}
		segments, err := SplitPath(path, false)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, len(segments), test.ShouldEqual, 1)
		test.That(t, segments[0].Direction, test.ShouldEqual, DirectionUnspecified)
		test.That(t, segments[0].Poses, test.ShouldResemble, path.Poses)

		// segments do not alias the caller's poses
		segments[0].Poses[0] = spatialmath.NewPose2D(5, 5, 5)
		test.That(t, path.Poses[0], test.ShouldResemble, spatialmath.NewPose2D(0, 0, 0))
	})

	t.Run("single pose", func(t *testing.T) {
		segments, err := SplitPath(Path{Frame: "map", Poses: []spatialmath.Pose2D{{X: 1}}}, true)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, len(segments), test.ShouldEqual, 1)
		test.That(t, len(segments[0].Poses), test.ShouldEqual, 1)
	})

	t.Run("straight forward line", func(t *testing.T) {
		path := straightPath("map", 10, 0.25)
		segments, err := SplitPath(path, true)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, len(segments), test.ShouldEqual, 1)
		test.That(t, segments[0].Direction, test.ShouldEqual, DirectionForward)
		test.That(t, segments[0].Poses, test.ShouldResemble, path.Poses)
		test.That(t, segments[0].Frame, test.ShouldEqual, "map")
	})

	t.Run("reversal", func(t *testing.T) {
		path := Path{Frame: "map", Poses: []spatialmath.Pose2D{
			spatialmath.NewPose2D(0, 0, 0),
			spatialmath.NewPose2D(1, 0, 0),
			spatialmath.NewPose2D(2, 0, 0),
			spatialmath.NewPose2D(1.5, 0, 0),
			spatialmath.NewPose2D(1, 0, 0),
		}}
		segments, err := SplitPath(path, true)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, len(segments), test.ShouldEqual, 2)
		test.That(t, segments[0].Direction, test.ShouldEqual, DirectionForward)
		test.That(t, segments[1].Direction, test.ShouldEqual, DirectionBackward)
		test.That(t, segments[0].Poses, test.ShouldResemble, path.Poses[:3])
		test.That(t, segments[1].Poses, test.ShouldResemble, path.Poses[2:])
	})

	t.Run("rotation in place ignores heading", func(t *testing.T) {
		for _, theta := range []float64{0, 1, math.Pi, -2.5} {
			a := spatialmath.NewPose2D(3, 4, theta)
			b := spatialmath.NewPose2D(3, 4, theta+1)
			test.That(t, classifyStep(a, b), test.ShouldEqual, DirectionRotateInPlace)
		}
		// sideways steps have no component along the heading either
		test.That(t, classifyStep(spatialmath.NewPose2D(0, 0, 0), spatialmath.NewPose2D(0, 1, 0)),
			test.ShouldEqual, DirectionRotateInPlace)
	})

	t.Run("forward rotate forward", func(t *testing.T) {
		path := Path{Frame: "map", Poses: []spatialmath.Pose2D{
			spatialmath.NewPose2D(0, 0, 0),
			spatialmath.NewPose2D(1, 0, 0),
			spatialmath.NewPose2D(1, 0, math.Pi/2),
			spatialmath.NewPose2D(1, 1, math.Pi/2),
		}}
		segments, err := SplitPath(path, true)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, len(segments), test.ShouldEqual, 3)
		test.That(t, posesOf(segments), test.ShouldResemble, [][]spatialmath.Pose2D{
			{spatialmath.NewPose2D(0, 0, 0), spatialmath.NewPose2D(1, 0, 0)},
			{spatialmath.NewPose2D(1, 0, 0), spatialmath.NewPose2D(1, 0, math.Pi/2)},
			{spatialmath.NewPose2D(1, 0, math.Pi/2), spatialmath.NewPose2D(1, 1, math.Pi/2)},
		})
		test.That(t, segments[0].Direction, test.ShouldEqual, DirectionForward)
		test.That(t, segments[1].Direction, test.ShouldEqual, DirectionRotateInPlace)
		test.That(t, segments[2].Direction, test.ShouldEqual, DirectionForward)
	})
}

func TestDirectionString(t *testing.T) {
	test.That(t, DirectionRotateInPlace.String(), test.ShouldEqual, "rotate_in_place")
	test.That(t, Direction(9).String(), test.ShouldEqual, "Direction(9)")
}
