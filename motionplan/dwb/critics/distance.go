package critics

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"go.viam.com/dwb/costmap"
	"go.viam.com/dwb/logging"
	"go.viam.com/dwb/motionplan/dwb"
	"go.viam.com/dwb/spatialmath"
)

// Names of the distance critics.
const (
	PathDistName = "PathDistCritic"
	GoalDistName = "GoalDistCritic"
)

// Aggregation selects how per-pose distances are combined into a trajectory score.
type Aggregation string

// The supported aggregations.
const (
	AggregationLast Aggregation = "last"
	AggregationSum  Aggregation = "sum"
)

// DistanceConfig configures PathDist and GoalDist.
type DistanceConfig struct {
	Aggregation Aggregation `json:"aggregation_type"`
}

// Validate ensures all parts of the config are valid.
func (cfg *DistanceConfig) Validate(path string) error {
	switch cfg.Aggregation {
	case "", AggregationLast, AggregationSum:
		return nil
	default:
		return errors.Errorf("%s: unknown aggregation_type %q", path, cfg.Aggregation)
	}
}

// distanceCritic scores a trajectory by the distance of its poses to a set of targets
// taken from the local plan every cycle.
type distanceCritic struct {
	baseCritic
	cfg     DistanceConfig
	targets func(plan dwb.Path) []spatialmath.Pose2D

	current []spatialmath.Pose2D
}

// Prepare selects the targets. It fails on an empty plan.
func (c *distanceCritic) Prepare(_ spatialmath.Pose2D, _ spatialmath.Twist2D, _ spatialmath.Pose2D, plan dwb.Path) bool {
	c.current = c.targets(plan)
	return len(c.current) > 0
}

// Reset forgets the targets of the last cycle.
func (c *distanceCritic) Reset() {
	c.current = nil
}

// ScoreTrajectory implements dwb.TrajectoryCritic.
func (c *distanceCritic) ScoreTrajectory(traj dwb.Trajectory) (float64, error) {
	if len(c.current) == 0 {
		return 0, errors.Errorf("%s has no plan to score against", c.name)
	}
	if len(traj.Samples) == 0 {
		return 0, nil
	}
	samples := traj.Samples
	if c.cfg.Aggregation != AggregationSum {
		samples = samples[len(samples)-1:]
	}
	scores := make([]float64, 0, len(samples))
	for _, s := range samples {
		scores = append(scores, c.nearest(s.Pose))
	}
	return floats.Sum(scores), nil
}

func (c *distanceCritic) nearest(pose spatialmath.Pose2D) float64 {
	dists := make([]float64, 0, len(c.current))
	for _, target := range c.current {
		dists = append(dists, pose.Distance(target))
	}
	return floats.Min(dists)
}

// PathDist prefers trajectories that stay close to the local plan.
type PathDist struct {
	distanceCritic
}

// NewPathDist returns a PathDist critic.
func NewPathDist(name string, weight float64, cfg DistanceConfig, cm costmap.Costmap, logger logging.Logger) *PathDist {
	return &PathDist{distanceCritic{
		baseCritic: newBaseCritic(name, weight, cm, logger),
		cfg:        cfg,
		targets:    func(plan dwb.Path) []spatialmath.Pose2D { return plan.Poses },
	}}
}

// GoalDist prefers trajectories that end close to the last pose of the local plan.
type GoalDist struct {
	distanceCritic
}

// NewGoalDist returns a GoalDist critic.
func NewGoalDist(name string, weight float64, cfg DistanceConfig, cm costmap.Costmap, logger logging.Logger) *GoalDist {
	return &GoalDist{distanceCritic{
		baseCritic: newBaseCritic(name, weight, cm, logger),
		cfg:        cfg,
		targets: func(plan dwb.Path) []spatialmath.Pose2D {
			last, ok := plan.Last()
			if !ok {
				return nil
			}
			return []spatialmath.Pose2D{last}
		},
	}}
}
