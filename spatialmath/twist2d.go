package spatialmath

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
)

// Twist2D is a planar velocity: linear x/y in m/s and angular theta in rad/s, expressed in the
// robot's body frame. It is an immutable value.
type Twist2D struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Theta float64 `json:"theta"`
}

// NewTwist2D constructs a Twist2D.
func NewTwist2D(x, y, theta float64) Twist2D {
	return Twist2D{X: x, Y: y, Theta: theta}
}

// IsZero reports whether every component is exactly zero.
func (t Twist2D) IsZero() bool {
	return t.X == 0 && t.Y == 0 && t.Theta == 0
}

// Linear returns the translational part of the twist.
func (t Twist2D) Linear() r2.Point {
	return r2.Point{X: t.X, Y: t.Y}
}

// Speed is the magnitude of the translational velocity.
func (t Twist2D) Speed() float64 {
	return math.Hypot(t.X, t.Y)
}

// Integrate advances pose by this twist held constant for dt seconds, using the heading at the
// start of the step.
func (t Twist2D) Integrate(pose Pose2D, dt float64) Pose2D {
	sin, cos := math.Sincos(pose.Theta)
	return Pose2D{
		X:     pose.X + (t.X*cos-t.Y*sin)*dt,
		Y:     pose.Y + (t.X*sin+t.Y*cos)*dt,
		Theta: pose.Theta + t.Theta*dt,
	}
}

func (t Twist2D) String() string {
	return fmt.Sprintf("[%.3f, %.3f, %.3f]", t.X, t.Y, t.Theta)
}
