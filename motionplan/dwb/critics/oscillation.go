package critics

import (
	"math"
	"time"

	"github.com/benbjohnson/clock"

	"go.viam.com/dwb/costmap"
	"go.viam.com/dwb/logging"
	"go.viam.com/dwb/motionplan/dwb"
	"go.viam.com/dwb/spatialmath"
	"go.viam.com/dwb/utils"
)

// OscillationName is the registered type of Oscillation.
const OscillationName = "OscillationCritic"

// OscillationConfig configures an Oscillation critic. A negative value disables a reset rule.
type OscillationConfig struct {
	// ResetDist is the distance in meters the robot must travel to clear the flags.
	ResetDist float64 `json:"oscillation_reset_dist"`
	// ResetAngle is the angle in radians the robot must turn to clear the flags.
	ResetAngle float64 `json:"oscillation_reset_angle"`
	// ResetTime is the time in seconds after which the flags clear.
	ResetTime float64 `json:"oscillation_reset_time"`
	// XOnlyThreshold is the x speed above which y and theta sign flips are ignored.
	XOnlyThreshold float64 `json:"x_only_threshold"`
}

// DefaultOscillationConfig returns the configuration used for unset attributes.
func DefaultOscillationConfig() OscillationConfig {
	return OscillationConfig{ResetDist: 0.05, ResetAngle: 0.2, ResetTime: -1, XOnlyThreshold: 0.05}
}

type sign int

const (
	signZero sign = iota
	signPositive
	signNegative
)

// commandTrend tracks the sign of one velocity component. Once the sign flips, only commands
// continuing in the new direction are allowed until the trend is reset.
type commandTrend struct {
	sign         sign
	positiveOnly bool
	negativeOnly bool
}

func (ct *commandTrend) reset() {
	*ct = commandTrend{}
}

// update records velocity and reports whether it set a flag.
func (ct *commandTrend) update(velocity float64) bool {
	flagSet := false
	switch {
	case velocity < 0:
		if ct.sign == signPositive {
			ct.negativeOnly = true
			flagSet = true
		}
		ct.sign = signNegative
	case velocity > 0:
		if ct.sign == signNegative {
			ct.positiveOnly = true
			flagSet = true
		}
		ct.sign = signPositive
	}
	return flagSet
}

func (ct *commandTrend) isOscillating(velocity float64) bool {
	return (ct.positiveOnly && velocity < 0) || (ct.negativeOnly && velocity > 0)
}

func (ct *commandTrend) hasSignFlipped() bool {
	return ct.positiveOnly || ct.negativeOnly
}

// Oscillation rejects commands that reverse a recent change of direction until the robot has
// moved, turned or waited enough.
type Oscillation struct {
	baseCritic
	cfg   OscillationConfig
	clock clock.Clock

	x, y, theta commandTrend

	pose           spatialmath.Pose2D
	prevStationary spatialmath.Pose2D
	prevResetTime  time.Time
}

// NewOscillation returns an Oscillation critic. A nil clock uses the wall clock.
func NewOscillation(
	name string,
	weight float64,
	cfg OscillationConfig,
	clk clock.Clock,
	cm costmap.Costmap,
	logger logging.Logger,
) *Oscillation {
	if clk == nil {
		clk = clock.New()
	}
	return &Oscillation{baseCritic: newBaseCritic(name, weight, cm, logger), cfg: cfg, clock: clk}
}

// Prepare remembers the robot pose of this cycle.
func (c *Oscillation) Prepare(start spatialmath.Pose2D, _ spatialmath.Twist2D, _ spatialmath.Pose2D, _ dwb.Path) bool {
	c.pose = start
	return true
}

// Debrief updates the trends with the chosen command.
func (c *Oscillation) Debrief(cmd spatialmath.Twist2D) {
	if c.setOscillationFlags(cmd) {
		c.prevStationary = c.pose
		c.prevResetTime = c.clock.Now()
	}
	if (c.x.hasSignFlipped() || c.y.hasSignFlipped() || c.theta.hasSignFlipped()) && c.resetAvailable() {
		c.Reset()
	}
}

func (c *Oscillation) setOscillationFlags(cmd spatialmath.Twist2D) bool {
	flagSet := c.x.update(cmd.X)
	// a robot driving forward may strafe and turn freely
	if math.Abs(cmd.X) < c.cfg.XOnlyThreshold {
		flagSet = c.y.update(cmd.Y) || flagSet
		flagSet = c.theta.update(cmd.Theta) || flagSet
	}
	return flagSet
}

func (c *Oscillation) resetAvailable() bool {
	if c.cfg.ResetDist >= 0 && c.pose.SquaredDistance(c.prevStationary) >= c.cfg.ResetDist*c.cfg.ResetDist {
		return true
	}
	if c.cfg.ResetAngle >= 0 && math.Abs(utils.AngleDiffRad(c.prevStationary.Theta, c.pose.Theta)) > c.cfg.ResetAngle {
		return true
	}
	if c.cfg.ResetTime >= 0 && c.clock.Since(c.prevResetTime).Seconds() > c.cfg.ResetTime {
		return true
	}
	return false
}

// Reset clears every trend.
func (c *Oscillation) Reset() {
	c.x.reset()
	c.y.reset()
	c.theta.reset()
}

// ScoreTrajectory implements dwb.TrajectoryCritic.
func (c *Oscillation) ScoreTrajectory(traj dwb.Trajectory) (float64, error) {
	v := traj.Velocity
	if c.x.isOscillating(v.X) || c.y.isOscillating(v.Y) || c.theta.isOscillating(v.Theta) {
		return 0, dwb.NewIllegalTrajectoryError(c.name, "Trajectory is oscillating.")
	}
	return 0, nil
}
