package goalcheckers

import (
	"math"
	"testing"

	"go.viam.com/test"

	"go.viam.com/dwb/motionplan/dwb"
	"go.viam.com/dwb/spatialmath"
)

var (
	_ dwb.GoalChecker = &Simple{}
	_ dwb.GoalChecker = &Stopped{}
)

func TestSimple(t *testing.T) {
	gc := NewSimple(DefaultSimpleConfig())
	goal := spatialmath.NewPose2D(1, 1, math.Pi)

	test.That(t, gc.IsGoalReached(spatialmath.NewPose2D(1.1, 1.1, math.Pi), goal, spatialmath.Twist2D{}), test.ShouldBeTrue)
	test.That(t, gc.IsGoalReached(spatialmath.NewPose2D(1.3, 1, math.Pi), goal, spatialmath.Twist2D{}), test.ShouldBeFalse)
	// headings either side of the wrap
	test.That(t, gc.IsGoalReached(spatialmath.NewPose2D(1, 1, -math.Pi+0.1), goal, spatialmath.Twist2D{}), test.ShouldBeTrue)
	test.That(t, gc.IsGoalReached(spatialmath.NewPose2D(1, 1, math.Pi/2), goal, spatialmath.Twist2D{}), test.ShouldBeFalse)

	cfg := SimpleConfig{XYGoalTolerance: -1}
	test.That(t, cfg.Validate("goal_checker"), test.ShouldNotBeNil)
	gc.Reset()
}

func TestStopped(t *testing.T) {
	gc := NewStopped(DefaultStoppedConfig())
	goal := spatialmath.NewPose2D(0, 0, 0)

	test.That(t, gc.IsGoalReached(goal, goal, spatialmath.NewTwist2D(0.1, 0, 0.1)), test.ShouldBeTrue)
	test.That(t, gc.IsGoalReached(goal, goal, spatialmath.NewTwist2D(0.3, 0, 0)), test.ShouldBeFalse)
	test.That(t, gc.IsGoalReached(goal, goal, spatialmath.NewTwist2D(0, 0, -0.5)), test.ShouldBeFalse)
	test.That(t, gc.IsGoalReached(spatialmath.NewPose2D(1, 0, 0), goal, spatialmath.Twist2D{}), test.ShouldBeFalse)
}
