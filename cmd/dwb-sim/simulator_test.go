package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/dwb/costmap"
	"go.viam.com/dwb/logging"
	"go.viam.com/dwb/motionplan/dwb"
	"go.viam.com/dwb/spatialmath"
)

const straightConfig = `{
	"planner": {
		"critics": [
			{"name": "BaseObstacle", "weight": 0.02},
			{"name": "PathDist", "weight": 32},
			{"name": "GoalDist", "weight": 24}
		]
	},
	"plan": [
		{"x": 0, "y": 0}, {"x": 0.25, "y": 0}, {"x": 0.5, "y": 0}, {"x": 0.75, "y": 0},
		{"x": 1, "y": 0}, {"x": 1.25, "y": 0}, {"x": 1.5, "y": 0}
	],
	"max_cycles": 300
}`

func newTestSimulator(t *testing.T, cfg *SimConfig, clk clock.Clock) *Simulator {
	t.Helper()
	sim, err := NewSimulator(cfg, clk, nil, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	return sim
}

func TestParseSimConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := ParseSimConfig([]byte(straightConfig))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, cfg.ControllerFrequency, test.ShouldAlmostEqual, 10.0)
		test.That(t, cfg.FailureTolerance, test.ShouldEqual, 10)
		test.That(t, cfg.Costmap.FrameID, test.ShouldEqual, odomFrame)
		test.That(t, cfg.Costmap.RollingWindow, test.ShouldBeTrue)
		test.That(t, len(cfg.planner.Critics), test.ShouldEqual, 3)
	})

	t.Run("sample file", func(t *testing.T) {
		cfg, err := ReadSimConfig("data/corridor.json")
		test.That(t, err, test.ShouldBeNil)
		test.That(t, len(cfg.Plan), test.ShouldEqual, 7)
		test.That(t, cfg.MapToOdom.X, test.ShouldAlmostEqual, 0.5)
		test.That(t, cfg.planner.GoalChecker.Attributes["xy_goal_tolerance"], test.ShouldAlmostEqual, 0.2)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := ParseSimConfig([]byte(`{"controller_frequency": 0, "planner": {"critics": [{"name": "Nope"}]}}`))
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "plan must have at least one pose")
		test.That(t, err.Error(), test.ShouldContainSubstring, "controller_frequency")
		test.That(t, err.Error(), test.ShouldContainSubstring, "NopeCritic")

		_, err = ParseSimConfig([]byte(`{"plan": 1}`))
		test.That(t, err, test.ShouldNotBeNil)
		_, err = ReadSimConfig("data/missing.json")
		test.That(t, err, test.ShouldNotBeNil)
	})
}

func TestSimulatorReachesGoal(t *testing.T) {
	cfg, err := ParseSimConfig([]byte(straightConfig))
	test.That(t, err, test.ShouldBeNil)
	cfg.Plan = nil
	for i := 0; i <= 30; i++ {
		cfg.Plan = append(cfg.Plan, spatialmath.NewPose2D(0.05*float64(i), 0, 0))
	}
	sim := newTestSimulator(t, cfg, clock.NewMock())

	reached := false
	for i := 0; i < cfg.MaxCycles && !reached; i++ {
		reached, err = sim.Step()
		test.That(t, err, test.ShouldBeNil)
	}
	test.That(t, reached, test.ShouldBeTrue)
	test.That(t, sim.Pose().Distance(spatialmath.NewPose2D(1.5, 0, 0)), test.ShouldBeLessThanOrEqualTo, 0.25)
	test.That(t, sim.Cycles(), test.ShouldBeGreaterThan, 0)
}

func TestSimulatorRun(t *testing.T) {
	cfg, err := ParseSimConfig([]byte(straightConfig))
	test.That(t, err, test.ShouldBeNil)
	cfg.MaxCycles = 3
	mock := clock.NewMock()
	sim := newTestSimulator(t, cfg, mock)

	done := make(chan error, 1)
	go func() {
		done <- sim.Run(context.Background())
	}()

	var runErr error
	timeout := time.After(10 * time.Second)
loop:
	for {
		select {
		case runErr = <-done:
			break loop
		case <-timeout:
			t.Fatal("simulation did not stop")
		default:
			mock.Add(sim.period)
		}
	}
	test.That(t, errors.Is(runErr, errCycleLimit), test.ShouldBeTrue)
	test.That(t, sim.Cycles(), test.ShouldEqual, 3)
	test.That(t, sim.Pose().X, test.ShouldBeGreaterThan, 0)

	cfg.MaxCycles = 10
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	test.That(t, sim.Run(ctx), test.ShouldBeError, context.Canceled)
}

func TestSimulatorBlocked(t *testing.T) {
	cfg, err := ParseSimConfig([]byte(straightConfig))
	test.That(t, err, test.ShouldBeNil)
	cfg.FailureTolerance = 1
	cfg.Obstacles = []costmap.Obstacle{{X: 0, Y: 0, Radius: 0.3}}
	sim := newTestSimulator(t, cfg, clock.NewMock())

	_, err = sim.Step()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, sim.Pose(), test.ShouldResemble, cfg.Start)

	_, err = sim.Step()
	test.That(t, errors.Is(err, errNoCommandFound), test.ShouldBeTrue)
}

func TestFailureTable(t *testing.T) {
	tracker := dwb.NewIllegalTrajectoryTracker()
	for i := 0; i < 3; i++ {
		tracker.AddIllegalTrajectory(&dwb.IllegalTrajectoryError{Critic: "BaseObstacle", Reason: "Trajectory Hits Obstacle."})
	}
	tracker.AddIllegalTrajectory(&dwb.IllegalTrajectoryError{Critic: "Oscillation", Reason: "Trajectory is oscillating."})

	out := failureTable(tracker)
	test.That(t, out, test.ShouldContainSubstring, "No valid trajectories out of 4!")
	test.That(t, out, test.ShouldContainSubstring, "Trajectory Hits Obstacle.")
	test.That(t, out, test.ShouldContainSubstring, "75.00%")
	test.That(t, out, test.ShouldContainSubstring, "25.00%")
}

func TestPluginsAction(t *testing.T) {
	var buf bytes.Buffer
	app.Writer = &buf
	test.That(t, app.Run([]string{"dwb-sim", "plugins"}), test.ShouldBeNil)
	test.That(t, buf.String(), test.ShouldContainSubstring, "dwb_critics:BaseObstacleCritic")
	test.That(t, buf.String(), test.ShouldContainSubstring, "dwb_plugins:StandardTrajectoryGenerator")
}
