// Package generators contains trajectory generators for the dwb local planner.
package generators

import (
	"math"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/dwb/spatialmath"
)

// KinematicParameters bound the velocities and accelerations of the robot. Decelerations are
// given as positive magnitudes. A negative speed limit disables that limit.
type KinematicParameters struct {
	MinVelX       float64 `json:"min_vel_x"`
	MaxVelX       float64 `json:"max_vel_x"`
	MinVelY       float64 `json:"min_vel_y"`
	MaxVelY       float64 `json:"max_vel_y"`
	MaxVelTheta   float64 `json:"max_vel_theta"`
	MinSpeedXY    float64 `json:"min_speed_xy"`
	MaxSpeedXY    float64 `json:"max_speed_xy"`
	MinSpeedTheta float64 `json:"min_speed_theta"`
	AccLimX       float64 `json:"acc_lim_x"`
	AccLimY       float64 `json:"acc_lim_y"`
	AccLimTheta   float64 `json:"acc_lim_theta"`
	DecelLimX     float64 `json:"decel_lim_x"`
	DecelLimY     float64 `json:"decel_lim_y"`
	DecelLimTheta float64 `json:"decel_lim_theta"`
}

// DefaultKinematicParameters describes a slow differential drive robot.
func DefaultKinematicParameters() KinematicParameters {
	return KinematicParameters{
		MinVelX:       0,
		MaxVelX:       0.55,
		MinVelY:       0,
		MaxVelY:       0,
		MaxVelTheta:   1.0,
		MinSpeedXY:    0,
		MaxSpeedXY:    0.55,
		MinSpeedTheta: 0.4,
		AccLimX:       2.5,
		AccLimY:       0,
		AccLimTheta:   3.2,
		DecelLimX:     2.5,
		DecelLimY:     0,
		DecelLimTheta: 3.2,
	}
}

// Validate ensures all parts of the config are valid.
func (kp *KinematicParameters) Validate(path string) error {
	var err error
	if kp.MinVelX > kp.MaxVelX {
		err = multierr.Append(err, errors.Errorf("%s: min_vel_x (%v) is greater than max_vel_x (%v)", path, kp.MinVelX, kp.MaxVelX))
	}
	if kp.MinVelY > kp.MaxVelY {
		err = multierr.Append(err, errors.Errorf("%s: min_vel_y (%v) is greater than max_vel_y (%v)", path, kp.MinVelY, kp.MaxVelY))
	}
	if kp.MaxVelTheta < 0 {
		err = multierr.Append(err, errors.Errorf("%s: max_vel_theta must not be negative", path))
	}
	for name, v := range map[string]float64{
		"acc_lim_x": kp.AccLimX, "acc_lim_y": kp.AccLimY, "acc_lim_theta": kp.AccLimTheta,
		"decel_lim_x": kp.DecelLimX, "decel_lim_y": kp.DecelLimY, "decel_lim_theta": kp.DecelLimTheta,
	} {
		if v < 0 {
			err = multierr.Append(err, errors.Errorf("%s: %s must not be negative", path, name))
		}
	}
	return err
}

// MinVelTheta is the lowest rotational velocity, the mirror of MaxVelTheta.
func (kp *KinematicParameters) MinVelTheta() float64 {
	return -kp.MaxVelTheta
}

// IsValidSpeed checks the combined speed limits. The zero twist is always valid so that the
// robot can be commanded to stop.
func (kp *KinematicParameters) IsValidSpeed(tw spatialmath.Twist2D) bool {
	if tw.IsZero() {
		return true
	}
	sqSpeed := tw.X*tw.X + tw.Y*tw.Y
	if kp.MaxSpeedXY >= 0 && sqSpeed > kp.MaxSpeedXY*kp.MaxSpeedXY+1e-9 {
		return false
	}
	if kp.MinSpeedXY >= 0 && sqSpeed < kp.MinSpeedXY*kp.MinSpeedXY &&
		kp.MinSpeedTheta >= 0 && math.Abs(tw.Theta) < kp.MinSpeedTheta {
		return false
	}
	return true
}

// withinLimits reports whether every component lies in its velocity range.
func (kp *KinematicParameters) withinLimits(tw spatialmath.Twist2D) bool {
	const eps = 1e-9
	return tw.X >= kp.MinVelX-eps && tw.X <= kp.MaxVelX+eps &&
		tw.Y >= kp.MinVelY-eps && tw.Y <= kp.MaxVelY+eps &&
		tw.Theta >= kp.MinVelTheta()-eps && tw.Theta <= kp.MaxVelTheta+eps
}

// projectVelocity moves current toward target limited by the acceleration and deceleration
// magnitudes over dt.
func projectVelocity(current, acc, decel, dt, target float64) float64 {
	if current < target {
		if current >= 0 {
			return math.Min(target, current+acc*dt)
		}
		return math.Min(target, current+decel*dt)
	}
	if current > 0 {
		return math.Max(target, current-decel*dt)
	}
	return math.Max(target, current-acc*dt)
}
