// Package spatialmath defines the planar pose and velocity value types used by the planner.
package spatialmath

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"

	"go.viam.com/dwb/utils"
)

// Pose2D is a planar pose: a position and a heading in radians. It is an immutable value.
type Pose2D struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Theta float64 `json:"theta"`
}

// NewPose2D constructs a Pose2D.
func NewPose2D(x, y, theta float64) Pose2D {
	return Pose2D{X: x, Y: y, Theta: theta}
}

// NewZeroPose2D returns the pose at the origin facing along +x.
func NewZeroPose2D() Pose2D {
	return Pose2D{}
}

// Point returns the position of the pose.
func (p Pose2D) Point() r2.Point {
	return r2.Point{X: p.X, Y: p.Y}
}

// Heading returns the unit vector the pose faces.
func (p Pose2D) Heading() r2.Point {
	return r2.Point{X: math.Cos(p.Theta), Y: math.Sin(p.Theta)}
}

// Compose applies other in the frame of p, i.e. returns p * other.
func (p Pose2D) Compose(other Pose2D) Pose2D {
	sin, cos := math.Sincos(p.Theta)
	return Pose2D{
		X:     p.X + cos*other.X - sin*other.Y,
		Y:     p.Y + sin*other.X + cos*other.Y,
		Theta: utils.NormalizeRadians(p.Theta + other.Theta),
	}
}

// Inverse returns the pose q such that p.Compose(q) is the identity.
func (p Pose2D) Inverse() Pose2D {
	sin, cos := math.Sincos(p.Theta)
	return Pose2D{
		X:     -cos*p.X - sin*p.Y,
		Y:     sin*p.X - cos*p.Y,
		Theta: utils.NormalizeRadians(-p.Theta),
	}
}

// Between returns other expressed in the frame of p.
func (p Pose2D) Between(other Pose2D) Pose2D {
	return p.Inverse().Compose(other)
}

// SquaredDistance is the squared euclidean distance between the positions of two poses.
func (p Pose2D) SquaredDistance(other Pose2D) float64 {
	d := p.Point().Sub(other.Point())
	return d.Dot(d)
}

// Distance is the euclidean distance between the positions of two poses.
func (p Pose2D) Distance(other Pose2D) float64 {
	return p.Point().Sub(other.Point()).Norm()
}

// AlmostEqual compares positions and headings within epsilon.
func (p Pose2D) AlmostEqual(other Pose2D, epsilon float64) bool {
	return utils.Float64AlmostEqual(p.X, other.X, epsilon) &&
		utils.Float64AlmostEqual(p.Y, other.Y, epsilon) &&
		math.Abs(utils.AngleDiffRad(p.Theta, other.Theta)) <= epsilon
}

func (p Pose2D) String() string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", p.X, p.Y, p.Theta)
}
