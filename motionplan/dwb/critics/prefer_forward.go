package critics

import (
	"math"

	"go.viam.com/dwb/costmap"
	"go.viam.com/dwb/logging"
	"go.viam.com/dwb/motionplan/dwb"
)

// Names of the command shaping critics.
const (
	PreferForwardName = "PreferForwardCritic"
	TwirlingName      = "TwirlingCritic"
)

// PreferForwardConfig configures a PreferForward critic.
type PreferForwardConfig struct {
	Penalty     float64 `json:"penalty"`
	StrafeX     float64 `json:"strafe_x"`
	StrafeTheta float64 `json:"strafe_theta"`
	ThetaScale  float64 `json:"theta_scale"`
}

// DefaultPreferForwardConfig returns the configuration used for unset attributes.
func DefaultPreferForwardConfig() PreferForwardConfig {
	return PreferForwardConfig{Penalty: 1.0, StrafeX: 0.1, StrafeTheta: 0.2, ThetaScale: 10.0}
}

// PreferForward penalizes driving backwards and creeping forward without turning, and
// otherwise scores by how hard the command turns.
type PreferForward struct {
	baseCritic
	cfg PreferForwardConfig
}

// NewPreferForward returns a PreferForward critic.
func NewPreferForward(name string, weight float64, cfg PreferForwardConfig, cm costmap.Costmap, logger logging.Logger) *PreferForward {
	return &PreferForward{baseCritic: newBaseCritic(name, weight, cm, logger), cfg: cfg}
}

// ScoreTrajectory implements dwb.TrajectoryCritic.
func (c *PreferForward) ScoreTrajectory(traj dwb.Trajectory) (float64, error) {
	v := traj.Velocity
	if v.X < 0 {
		return c.cfg.Penalty, nil
	}
	if v.X < c.cfg.StrafeX && math.Abs(v.Theta) < c.cfg.StrafeTheta {
		return c.cfg.Penalty, nil
	}
	return math.Abs(v.Theta) * c.cfg.ThetaScale, nil
}

// Twirling scores a command by its rotational speed.
type Twirling struct {
	baseCritic
}

// NewTwirling returns a Twirling critic.
func NewTwirling(name string, weight float64, cm costmap.Costmap, logger logging.Logger) *Twirling {
	return &Twirling{baseCritic: newBaseCritic(name, weight, cm, logger)}
}

// ScoreTrajectory implements dwb.TrajectoryCritic.
func (c *Twirling) ScoreTrajectory(traj dwb.Trajectory) (float64, error) {
	return math.Abs(traj.Velocity.Theta), nil
}
