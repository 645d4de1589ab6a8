package generators

import (
	"math"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/dwb/logging"
	"go.viam.com/dwb/motionplan/dwb"
	"go.viam.com/dwb/spatialmath"
)

// StandardName is the registered name of the StandardGenerator.
const StandardName = "StandardTrajectoryGenerator"

// Samples is the number of velocities sampled per axis.
type Samples struct {
	X     int `json:"vx_samples"`
	Y     int `json:"vy_samples"`
	Theta int `json:"vtheta_samples"`
}

// StandardConfig configures a StandardGenerator.
type StandardConfig struct {
	Kinematics KinematicParameters `json:"kinematics"`
	Samples    Samples             `json:"samples"`

	// SimTime is how far ahead trajectories are simulated, in seconds.
	SimTime float64 `json:"sim_time"`
	// SimPeriod is the control period in seconds. It bounds the dynamic window.
	SimPeriod float64 `json:"sim_period"`

	DiscretizeByTime   bool    `json:"discretize_by_time"`
	TimeGranularity    float64 `json:"time_granularity"`
	LinearGranularity  float64 `json:"linear_granularity"`
	AngularGranularity float64 `json:"angular_granularity"`
	// IncludeLastPoint appends the pose reached at the end of the simulation.
	IncludeLastPoint bool `json:"include_last_point"`
}

// DefaultStandardConfig returns the configuration used for unset attributes.
func DefaultStandardConfig() StandardConfig {
	return StandardConfig{
		Kinematics:         DefaultKinematicParameters(),
		Samples:            Samples{X: 20, Y: 5, Theta: 20},
		SimTime:            1.7,
		SimPeriod:          0.05,
		TimeGranularity:    0.5,
		LinearGranularity:  0.5,
		AngularGranularity: 0.025,
		IncludeLastPoint:   true,
	}
}

// Validate ensures all parts of the config are valid.
func (cfg *StandardConfig) Validate(path string) error {
	err := cfg.Kinematics.Validate(path + ".kinematics")
	if cfg.Samples.X <= 0 || cfg.Samples.Y <= 0 || cfg.Samples.Theta <= 0 {
		err = multierr.Append(err, errors.Errorf("%s: every sample count must be positive", path))
	}
	if cfg.SimTime <= 0 {
		err = multierr.Append(err, errors.Errorf("%s: sim_time must be positive", path))
	}
	if cfg.SimPeriod <= 0 {
		err = multierr.Append(err, errors.Errorf("%s: sim_period must be positive", path))
	}
	if cfg.DiscretizeByTime && cfg.TimeGranularity <= 0 {
		err = multierr.Append(err, errors.Errorf("%s: time_granularity must be positive", path))
	}
	if !cfg.DiscretizeByTime && (cfg.LinearGranularity <= 0 || cfg.AngularGranularity <= 0) {
		err = multierr.Append(err, errors.Errorf("%s: linear and angular granularity must be positive", path))
	}
	return err
}

// StandardGenerator samples the dynamic window around the current velocity and simulates
// every sampled command under the acceleration limits.
type StandardGenerator struct {
	cfg    StandardConfig
	logger logging.Logger
	iter   *xyThetaIterator
}

// NewStandardGenerator returns a generator for cfg.
func NewStandardGenerator(cfg StandardConfig, logger logging.Logger) (*StandardGenerator, error) {
	if err := cfg.Validate(StandardName); err != nil {
		return nil, err
	}
	return &StandardGenerator{cfg: cfg, logger: logger}, nil
}

// Name returns StandardName.
func (g *StandardGenerator) Name() string {
	return StandardName
}

// Kinematics returns the kinematic limits of the generator.
func (g *StandardGenerator) Kinematics() KinematicParameters {
	return g.cfg.Kinematics
}

// StartNewIteration implements dwb.TrajectoryGenerator.
func (g *StandardGenerator) StartNewIteration(current spatialmath.Twist2D) {
	g.iter = newXYThetaIterator(&g.cfg.Kinematics, g.cfg.Samples, current, g.cfg.SimPeriod)
}

// HasMoreTwists implements dwb.TrajectoryGenerator.
func (g *StandardGenerator) HasMoreTwists() bool {
	return g.iter != nil && g.iter.hasMore()
}

// NextTwist implements dwb.TrajectoryGenerator.
func (g *StandardGenerator) NextTwist() spatialmath.Twist2D {
	return g.iter.nextTwist()
}

// Reset implements dwb.TrajectoryGenerator.
func (g *StandardGenerator) Reset() {
	g.iter = nil
}

// timeSteps returns the duration of every simulation step for cmd.
func (g *StandardGenerator) timeSteps(cmd spatialmath.Twist2D) []float64 {
	var n int
	if g.cfg.DiscretizeByTime {
		n = int(math.Ceil(g.cfg.SimTime / g.cfg.TimeGranularity))
	} else {
		linear := math.Hypot(cmd.X, cmd.Y) * g.cfg.SimTime
		angular := math.Abs(cmd.Theta) * g.cfg.SimTime
		n = int(math.Ceil(math.Max(linear/g.cfg.LinearGranularity, angular/g.cfg.AngularGranularity)))
	}
	n = max(n, 1)
	steps := make([]float64, n)
	for i := range steps {
		steps[i] = g.cfg.SimTime / float64(n)
	}
	return steps
}

// GenerateTrajectory implements dwb.TrajectoryGenerator.
func (g *StandardGenerator) GenerateTrajectory(
	start spatialmath.Pose2D,
	current, cmd spatialmath.Twist2D,
) (dwb.Trajectory, error) {
	kp := &g.cfg.Kinematics
	if !kp.withinLimits(cmd) {
		return dwb.Trajectory{}, errors.Errorf("command %v exceeds the kinematic limits", cmd)
	}

	traj := dwb.Trajectory{Velocity: cmd}
	steps := g.timeSteps(cmd)
	traj.Samples = make([]dwb.TrajectorySample, 0, len(steps)+1)

	pose, vel := start, current
	var elapsed float64
	for _, dt := range steps {
		traj.Samples = append(traj.Samples, dwb.TrajectorySample{Pose: pose, Velocity: vel, Time: seconds(elapsed)})
		vel = spatialmath.NewTwist2D(
			projectVelocity(vel.X, kp.AccLimX, kp.DecelLimX, dt, cmd.X),
			projectVelocity(vel.Y, kp.AccLimY, kp.DecelLimY, dt, cmd.Y),
			projectVelocity(vel.Theta, kp.AccLimTheta, kp.DecelLimTheta, dt, cmd.Theta),
		)
		pose = vel.Integrate(pose, dt)
		elapsed += dt
	}
	if g.cfg.IncludeLastPoint {
		traj.Samples = append(traj.Samples, dwb.TrajectorySample{Pose: pose, Velocity: vel, Time: seconds(elapsed)})
	}
	return traj, nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
