// Package publisher contains dwb.Publisher implementations.
package publisher

import (
	"time"

	"github.com/montanaflynn/stats"

	"go.viam.com/dwb/costmap"
	"go.viam.com/dwb/logging"
	"go.viam.com/dwb/motionplan/dwb"
	"go.viam.com/dwb/spatialmath"
)

// EvaluationSummary condenses a LocalPlanEvaluation.
type EvaluationSummary struct {
	Candidates int
	Admissible int
	Best       float64
	Mean       float64
	Median     float64
	StdDev     float64
}

// Summarize computes statistics over the admissible totals of eval.
func Summarize(eval *dwb.LocalPlanEvaluation) (EvaluationSummary, error) {
	summary := EvaluationSummary{Candidates: len(eval.Twists), Best: dwb.RejectedScore}
	totals := make(stats.Float64Data, 0, len(eval.Twists))
	for _, ts := range eval.Twists {
		if ts.Admissible() {
			totals = append(totals, ts.Total)
		}
	}
	summary.Admissible = len(totals)
	if len(totals) == 0 {
		return summary, nil
	}

	var err error
	if summary.Best, err = totals.Min(); err != nil {
		return summary, err
	}
	if summary.Mean, err = totals.Mean(); err != nil {
		return summary, err
	}
	if summary.Median, err = totals.Median(); err != nil {
		return summary, err
	}
	if summary.StdDev, err = totals.StandardDeviation(); err != nil {
		return summary, err
	}
	return summary, nil
}

// Logging writes the planner's telemetry to a logger.
type Logging struct {
	dwb.NoopPublisher
	logger      logging.Logger
	evaluations bool
}

// NewLogging returns a publisher logging to logger. Evaluations are only assembled when
// evaluations is set.
func NewLogging(logger logging.Logger, evaluations bool) *Logging {
	return &Logging{logger: logger, evaluations: evaluations}
}

// ShouldRecordEvaluation implements dwb.Publisher.
func (p *Logging) ShouldRecordEvaluation() bool {
	return p.evaluations
}

// PublishEvaluation logs a summary of eval.
func (p *Logging) PublishEvaluation(eval *dwb.LocalPlanEvaluation) {
	summary, err := Summarize(eval)
	if err != nil {
		p.logger.Warnw("cannot summarize evaluation", "id", eval.ID.String(), "error", err)
		return
	}
	p.logger.Debugw("evaluation",
		"id", eval.ID.String(),
		"candidates", summary.Candidates,
		"admissible", summary.Admissible,
		"best", summary.Best,
		"mean", summary.Mean,
		"median", summary.Median,
		"stddev", summary.StdDev,
	)
}

// PublishGlobalPlan implements dwb.Publisher.
func (p *Logging) PublishGlobalPlan(plan dwb.Path) {
	p.logger.Debugw("global plan", "frame", plan.Frame, "poses", plan.Len())
}

// PublishTransformedPlan implements dwb.Publisher.
func (p *Logging) PublishTransformedPlan(plan dwb.Path) {
	p.logger.Debugw("transformed plan", "frame", plan.Frame, "poses", plan.Len())
}

// PublishLocalPlan implements dwb.Publisher.
func (p *Logging) PublishLocalPlan(frame string, _ time.Time, traj dwb.Trajectory) {
	p.logger.Debugw("local plan", "frame", frame, "cmd", traj.Velocity.String(), "samples", len(traj.Samples))
}

// PublishInputParams implements dwb.Publisher.
func (p *Logging) PublishInputParams(info costmap.Info, start spatialmath.Pose2D, vel spatialmath.Twist2D, goal spatialmath.Pose2D) {
	p.logger.Debugw("input params",
		"costmap_frame", info.FrameID,
		"start", start.String(),
		"velocity", vel.String(),
		"goal", goal.String(),
	)
}

// Multi fans telemetry out to several publishers.
type Multi []dwb.Publisher

// ShouldRecordEvaluation is true if any publisher wants evaluations.
func (m Multi) ShouldRecordEvaluation() bool {
	for _, p := range m {
		if p.ShouldRecordEvaluation() {
			return true
		}
	}
	return false
}

// PublishEvaluation forwards eval to the publishers that asked for it.
func (m Multi) PublishEvaluation(eval *dwb.LocalPlanEvaluation) {
	for _, p := range m {
		if p.ShouldRecordEvaluation() {
			p.PublishEvaluation(eval)
		}
	}
}

// PublishGlobalPlan implements dwb.Publisher.
func (m Multi) PublishGlobalPlan(plan dwb.Path) {
	for _, p := range m {
		p.PublishGlobalPlan(plan)
	}
}

// PublishTransformedPlan implements dwb.Publisher.
func (m Multi) PublishTransformedPlan(plan dwb.Path) {
	for _, p := range m {
		p.PublishTransformedPlan(plan)
	}
}

// PublishLocalPlan implements dwb.Publisher.
func (m Multi) PublishLocalPlan(frame string, stamp time.Time, traj dwb.Trajectory) {
	for _, p := range m {
		p.PublishLocalPlan(frame, stamp, traj)
	}
}

// PublishCostGrid implements dwb.Publisher.
func (m Multi) PublishCostGrid(cm dwb.Costmap, critics []dwb.TrajectoryCritic) {
	for _, p := range m {
		p.PublishCostGrid(cm, critics)
	}
}

// PublishInputParams implements dwb.Publisher.
func (m Multi) PublishInputParams(info costmap.Info, start spatialmath.Pose2D, vel spatialmath.Twist2D, goal spatialmath.Pose2D) {
	for _, p := range m {
		p.PublishInputParams(info, start, vel, goal)
	}
}
