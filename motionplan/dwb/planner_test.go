package dwb

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/dwb/logging"
	"go.viam.com/dwb/referenceframe"
	"go.viam.com/dwb/spatialmath"
)

func TestNewLocalPlanner(t *testing.T) {
	_, err := NewLocalPlanner(Dependencies{}, DefaultOptions(), logging.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)
	var cfgErr *ConfigurationError
	test.That(t, errors.As(err, &cfgErr), test.ShouldBeTrue)
	for _, component := range []string{"trajectory_generator", "goal_checker", "costmap", "transformer"} {
		test.That(t, err.Error(), test.ShouldContainSubstring, component)
	}

	h := newPlannerHarness(t, DefaultOptions(), nil)
	opts := DefaultOptions()
	opts.PruneDistance = 0
	_, err = NewLocalPlanner(Dependencies{
		Generator:   h.generator,
		GoalChecker: h.goalChecker,
		Costmap:     h.costmap,
		Transformer: h.transformer,
	}, opts, logging.NewTestLogger(t))
	test.That(t, errors.As(err, &cfgErr), test.ShouldBeTrue)
	test.That(t, cfgErr.Component, test.ShouldEqual, "prune_distance")

	test.That(t, DefaultOptions(), test.ShouldResemble, Options{
		PrunePlan:                        true,
		PruneDistance:                    1.0,
		ShortCircuitTrajectoryEvaluation: true,
		UpdateCostmapBeforePlanning:      true,
	})
}

func TestSetPlan(t *testing.T) {
	critic := newFakeCritic("a", 1, nil)
	opts := DefaultOptions()
	opts.SplitPath = true
	h := newPlannerHarness(t, opts, nil, critic)

	err := h.planner.SetPlan(Path{Frame: "map"})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, critic.resets, test.ShouldEqual, 0)

	path := Path{Frame: "map", Poses: []spatialmath.Pose2D{
		spatialmath.NewPose2D(0, 0, 0),
		spatialmath.NewPose2D(1, 0, 0),
		spatialmath.NewPose2D(0.5, 0, 0),
	}}
	test.That(t, h.planner.SetPlan(path), test.ShouldBeNil)
	gs := h.planner.GoalState()
	test.That(t, gs.Active.Direction, test.ShouldEqual, DirectionForward)
	test.That(t, len(gs.Queue), test.ShouldEqual, 1)
	test.That(t, gs.IntermediateGoal.Pose(), test.ShouldResemble, spatialmath.NewPose2D(1, 0, 0))
	test.That(t, gs.IntermediateGoal.FrameName(), test.ShouldEqual, "map")
	test.That(t, gs.GoalSet(), test.ShouldBeFalse)
	test.That(t, critic.resets, test.ShouldEqual, 1)
	test.That(t, h.generator.resets, test.ShouldEqual, 1)
	test.That(t, h.goalChecker.resets, test.ShouldEqual, 1)
	// only the first segment is published
	test.That(t, h.publisher.globalPlans[0].Poses, test.ShouldResemble, path.Poses[:2])
}

func TestIsGoalReached(t *testing.T) {
	path := Path{Frame: "map", Poses: []spatialmath.Pose2D{
		spatialmath.NewPose2D(0, 0, 0),
		spatialmath.NewPose2D(1, 0, 0),
		spatialmath.NewPose2D(1, 0, math.Pi/2),
		spatialmath.NewPose2D(1, 1, math.Pi/2),
	}}
	goal := referenceframe.NewPoseInFrame("map", spatialmath.NewPose2D(1, 1, math.Pi/2))

	t.Run("goal not set", func(t *testing.T) {
		h := newPlannerHarness(t, DefaultOptions(), nil)
		test.That(t, h.planner.SetPlan(path), test.ShouldBeNil)
		reached, err := h.planner.IsGoalReached(robotAt(0, 0, 0), spatialmath.Twist2D{})
		test.That(t, reached, test.ShouldBeFalse)
		test.That(t, errors.Is(err, ErrGoalNotSet), test.ShouldBeTrue)
	})

	t.Run("segments advance", func(t *testing.T) {
		critic := newFakeCritic("a", 1, nil)
		opts := DefaultOptions()
		opts.SplitPath = true
		h := newPlannerHarness(t, opts, nil, critic)
		h.planner.SetGoalPose(goal)
		test.That(t, h.planner.SetPlan(path), test.ShouldBeNil)
		test.That(t, len(h.planner.GoalState().Queue), test.ShouldEqual, 2)

		reached, err := h.planner.IsGoalReached(robotAt(0, 0, 0), spatialmath.Twist2D{})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, reached, test.ShouldBeFalse)
		test.That(t, len(h.planner.GoalState().Queue), test.ShouldEqual, 2)

		h.goalChecker.reached = true
		reached, err = h.planner.IsGoalReached(robotAt(1, 0, 0), spatialmath.Twist2D{})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, reached, test.ShouldBeFalse)
		gs := h.planner.GoalState()
		test.That(t, gs.Active.Direction, test.ShouldEqual, DirectionRotateInPlace)
		test.That(t, len(gs.Queue), test.ShouldEqual, 1)
		test.That(t, gs.IntermediateGoal.Pose(), test.ShouldResemble, spatialmath.NewPose2D(1, 0, math.Pi/2))
		test.That(t, critic.resets, test.ShouldEqual, 2)
		test.That(t, h.generator.resets, test.ShouldEqual, 2)
		test.That(t, h.goalChecker.resets, test.ShouldEqual, 2)

		reached, err = h.planner.IsGoalReached(robotAt(1, 0, math.Pi/2), spatialmath.Twist2D{})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, reached, test.ShouldBeFalse)
		test.That(t, h.planner.GoalState().Queue, test.ShouldBeEmpty)
		test.That(t, h.planner.GoalState().Active.Direction, test.ShouldEqual, DirectionForward)

		reached, err = h.planner.IsGoalReached(robotAt(1, 1, math.Pi/2), spatialmath.Twist2D{})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, reached, test.ShouldBeTrue)
		test.That(t, critic.resets, test.ShouldEqual, 3)
		test.That(t, h.planner.GoalState().Goal, test.ShouldEqual, goal)
	})

	t.Run("goal set after plan", func(t *testing.T) {
		opts := DefaultOptions()
		opts.SplitPath = true
		h := newPlannerHarness(t, opts, nil)
		h.planner.SetGoalPose(goal)
		test.That(t, h.planner.GoalState().IntermediateGoal, test.ShouldEqual, goal)

		test.That(t, h.planner.SetPlan(path), test.ShouldBeNil)
		h.planner.SetGoalPose(goal)
		gs := h.planner.GoalState()
		test.That(t, gs.Goal, test.ShouldEqual, goal)
		test.That(t, gs.IntermediateGoal.Pose(), test.ShouldResemble, spatialmath.NewPose2D(1, 0, 0))
		test.That(t, len(gs.Queue), test.ShouldEqual, 2)

		// the first segment ends at (1, 0), so the goal checker sees that pose and not the final goal
		h.goalChecker.reached = true
		reached, err := h.planner.IsGoalReached(robotAt(1, 0, 0), spatialmath.Twist2D{})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, reached, test.ShouldBeFalse)
		test.That(t, h.planner.GoalState().Active.Direction, test.ShouldEqual, DirectionRotateInPlace)
	})

	t.Run("transform failure", func(t *testing.T) {
		h := newPlannerHarness(t, DefaultOptions(), nil)
		h.planner.SetGoalPose(goal)
		h.transformer.failFrames["odom"] = true
		_, err := h.planner.IsGoalReached(robotAt(0, 0, 0), spatialmath.Twist2D{})
		var tfErr *TransformError
		test.That(t, errors.As(err, &tfErr), test.ShouldBeTrue)
	})

	t.Run("reset", func(t *testing.T) {
		critic := newFakeCritic("a", 1, nil)
		h := newPlannerHarness(t, DefaultOptions(), nil, critic)
		h.planner.Reset()
		test.That(t, critic.resets, test.ShouldEqual, 1)
		test.That(t, h.planner.Critics(), test.ShouldHaveLength, 1)
	})
}

func TestIllegalTrajectoryTracker(t *testing.T) {
	tracker := NewIllegalTrajectoryTracker()
	test.That(t, tracker.Message(), test.ShouldEqual, "No valid trajectories out of 0! ")
	test.That(t, tracker.Percentages(), test.ShouldBeEmpty)

	tracker.AddLegalTrajectory()
	tracker.AddIllegalTrajectory(&IllegalTrajectoryError{Critic: "BaseObstacle", Reason: "Trajectory Hits Obstacle."})
	tracker.AddIllegalTrajectory(&IllegalTrajectoryError{Critic: "BaseObstacle", Reason: "Trajectory Hits Obstacle."})
	tracker.AddIllegalTrajectory(&IllegalTrajectoryError{Critic: "Oscillation", Reason: "Trajectory is oscillating."})

	test.That(t, tracker.Message(), test.ShouldEqual, "1 valid trajectories found (25.00% of 4). ")
	percents := tracker.Percentages()
	test.That(t, percents[TrajectoryFailure{"BaseObstacle", "Trajectory Hits Obstacle."}], test.ShouldAlmostEqual, 2.0/3)
	test.That(t, percents[TrajectoryFailure{"Oscillation", "Trajectory is oscillating."}], test.ShouldAlmostEqual, 1.0/3)
	test.That(t, tracker.Failures(), test.ShouldResemble, []TrajectoryFailure{
		{"BaseObstacle", "Trajectory Hits Obstacle."},
		{"Oscillation", "Trajectory is oscillating."},
	})
}
