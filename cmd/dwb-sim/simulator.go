package main

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"

	"go.viam.com/dwb/costmap"
	"go.viam.com/dwb/logging"
	"go.viam.com/dwb/motionplan/dwb"
	"go.viam.com/dwb/motionplan/dwb/registry"
	"go.viam.com/dwb/referenceframe"
	"go.viam.com/dwb/spatialmath"
)

var (
	errCycleLimit     = errors.New("cycle limit reached before the goal")
	errNoCommandFound = errors.New("no admissible command for too many cycles")
)

// Simulator drives a LocalPlanner against an ideal robot that executes every command exactly.
type Simulator struct {
	cfg     *SimConfig
	planner *dwb.LocalPlanner
	fs      *referenceframe.FrameSystem
	grid    *costmap.Grid
	clock   clock.Clock
	period  time.Duration
	logger  logging.Logger

	pose     spatialmath.Pose2D
	vel      spatialmath.Twist2D
	cycles   int
	failures int
}

// NewSimulator builds the world, the costmap and the planner described by cfg.
func NewSimulator(cfg *SimConfig, clk clock.Clock, publisher dwb.Publisher, logger logging.Logger) (*Simulator, error) {
	if clk == nil {
		clk = clock.New()
	}
	s := &Simulator{
		cfg:    cfg,
		clock:  clk,
		period: time.Duration(float64(time.Second) / cfg.ControllerFrequency),
		logger: logger,
		pose:   cfg.Start,
	}

	s.fs = referenceframe.NewEmptyFrameSystem("sim")
	for _, f := range []struct {
		frame  *referenceframe.Frame
		parent string
	}{
		{referenceframe.NewZeroStaticFrame(mapFrame), referenceframe.World},
		{referenceframe.NewStaticFrame(odomFrame, cfg.MapToOdom), mapFrame},
		{referenceframe.NewStaticFrame(baseFrame, cfg.Start), odomFrame},
	} {
		if err := s.fs.AddFrame(f.frame, f.parent); err != nil {
			return nil, err
		}
	}

	layer, err := costmap.NewObstacleLayer(
		cfg.Inflation.InscribedRadius,
		cfg.Inflation.InflationRadius,
		cfg.Inflation.CostScalingFactor,
		cfg.Obstacles...,
	)
	if err != nil {
		return nil, err
	}
	if s.grid, err = costmap.NewGrid(cfg.Costmap, logger.Sublogger("costmap"), layer); err != nil {
		return nil, err
	}
	s.grid.SetRobotPositionFunc(s.robotPosition)

	s.planner, err = registry.NewLocalPlanner(cfg.planner, registry.Dependencies{
		Costmap:     s.grid,
		Transformer: s.fs,
		Publisher:   publisher,
		Clock:       clk,
	}, logger.Sublogger("planner"))
	if err != nil {
		return nil, err
	}

	s.planner.SetGoalPose(referenceframe.NewPoseInFrame(mapFrame, cfg.Plan[len(cfg.Plan)-1]))
	if err := s.planner.SetPlan(dwb.Path{Frame: mapFrame, Stamp: clk.Now(), Poses: cfg.Plan}); err != nil {
		return nil, err
	}
	// center the rolling window even when the planner is configured not to update the costmap
	if err := s.grid.Update(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Simulator) robotPosition() (float64, float64, error) {
	return s.pose.X, s.pose.Y, nil
}

// Pose returns the robot pose in the odometry frame.
func (s *Simulator) Pose() spatialmath.Pose2D {
	return s.pose
}

// Cycles returns the number of control cycles run.
func (s *Simulator) Cycles() int {
	return s.cycles
}

// Step runs one control cycle and moves the robot by the chosen command. It reports whether
// the goal was reached before moving.
func (s *Simulator) Step() (bool, error) {
	robot := referenceframe.NewStampedPoseInFrame(odomFrame, s.pose, s.clock.Now())
	reached, err := s.planner.IsGoalReached(robot, s.vel)
	if err != nil {
		return false, err
	}
	if reached {
		return true, nil
	}

	s.cycles++
	cmd, err := s.planner.ComputeVelocityCommands(robot, s.vel)
	if err != nil {
		var noLegal *dwb.NoLegalTrajectoriesError
		if !errors.As(err, &noLegal) {
			return false, err
		}
		s.failures++
		s.logger.Warnw("no admissible command", "cycle", s.cycles, "consecutive", s.failures)
		s.logger.Info("\n" + failureTable(noLegal.Tracker))
		if s.failures > s.cfg.FailureTolerance {
			return false, errors.Wrapf(errNoCommandFound, "after %d cycles", s.failures)
		}
		cmd = spatialmath.Twist2D{}
	} else {
		s.failures = 0
	}

	s.vel = cmd
	s.pose = cmd.Integrate(s.pose, s.period.Seconds())
	if err := s.fs.SetFramePose(baseFrame, s.pose); err != nil {
		return false, err
	}
	return false, nil
}

// Run steps once per control period until the goal is reached, the cycle limit is hit or ctx
// is done.
func (s *Simulator) Run(ctx context.Context) error {
	ticker := s.clock.Ticker(s.period)
	defer ticker.Stop()

	for s.cycles < s.cfg.MaxCycles {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		reached, err := s.Step()
		if err != nil {
			return err
		}
		if reached {
			s.logger.Infow("goal reached", "cycles", s.cycles, "pose", s.pose.String())
			return nil
		}
		s.logger.Debugw("cycle", "n", s.cycles, "pose", s.pose.String(), "cmd", s.vel.String())
	}
	return errCycleLimit
}

// failureTable renders the rejection tally of a failed cycle.
func failureTable(tracker *dwb.IllegalTrajectoryTracker) string {
	t := table.NewWriter()
	t.SetTitle(tracker.Message())
	t.AppendHeader(table.Row{"Critic", "Reason", "Count", "Share"})
	percentages := tracker.Percentages()
	for _, f := range tracker.Failures() {
		t.AppendRow(table.Row{f.Critic, f.Reason, tracker.Count(f), fmt.Sprintf("%.2f%%", 100*percentages[f])})
	}
	return t.Render()
}
