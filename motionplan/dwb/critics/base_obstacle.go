package critics

import (
	"go.viam.com/dwb/costmap"
	"go.viam.com/dwb/logging"
	"go.viam.com/dwb/motionplan/dwb"
	"go.viam.com/dwb/spatialmath"
)

// BaseObstacleName is the registered type of BaseObstacle.
const BaseObstacleName = "BaseObstacleCritic"

// BaseObstacleConfig configures a BaseObstacle critic.
type BaseObstacleConfig struct {
	// SumScores adds the cost of every pose. Otherwise the cost of the final pose is used.
	SumScores bool `json:"sum_scores"`
}

// BaseObstacle rejects trajectories that run through obstacles, unknown space or off the grid
// and otherwise scores them by the cost of the cells they cross.
type BaseObstacle struct {
	baseCritic
	cfg BaseObstacleConfig
}

// NewBaseObstacle returns a BaseObstacle critic.
func NewBaseObstacle(name string, weight float64, cfg BaseObstacleConfig, cm costmap.Costmap, logger logging.Logger) *BaseObstacle {
	return &BaseObstacle{baseCritic: newBaseCritic(name, weight, cm, logger), cfg: cfg}
}

// ScoreTrajectory implements dwb.TrajectoryCritic.
func (c *BaseObstacle) ScoreTrajectory(traj dwb.Trajectory) (float64, error) {
	var score float64
	for _, s := range traj.Samples {
		poseScore, err := c.scorePose(s.Pose)
		if err != nil {
			return 0, err
		}
		if c.cfg.SumScores {
			score += poseScore
		} else {
			score = poseScore
		}
	}
	return score, nil
}

func (c *BaseObstacle) scorePose(pose spatialmath.Pose2D) (float64, error) {
	mx, my, ok := c.costmap.WorldToMap(pose.X, pose.Y)
	if !ok {
		return 0, dwb.NewIllegalTrajectoryError(c.name, "Trajectory Goes Off Grid.")
	}
	cost := c.costmap.Cost(mx, my)
	switch cost {
	case costmap.LethalObstacle, costmap.InscribedInflatedObstacle:
		return 0, dwb.NewIllegalTrajectoryError(c.name, "Trajectory Hits Obstacle.")
	case costmap.NoInformation:
		return 0, dwb.NewIllegalTrajectoryError(c.name, "Trajectory Hits Unknown Region.")
	default:
		return float64(cost), nil
	}
}
