package spatialmath

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func TestPoseCompose(t *testing.T) {
	t.Run("identity", func(t *testing.T) {
		p := NewPose2D(1, 2, 0.5)
		test.That(t, p.Compose(NewZeroPose2D()).AlmostEqual(p, 1e-9), test.ShouldBeTrue)
		test.That(t, NewZeroPose2D().Compose(p).AlmostEqual(p, 1e-9), test.ShouldBeTrue)
	})

	t.Run("rotated offset", func(t *testing.T) {
		p := NewPose2D(1, 0, math.Pi/2)
		q := p.Compose(NewPose2D(1, 0, 0))
		test.That(t, q.X, test.ShouldAlmostEqual, 1)
		test.That(t, q.Y, test.ShouldAlmostEqual, 1)
		test.That(t, q.Theta, test.ShouldAlmostEqual, math.Pi/2)
	})

	t.Run("inverse", func(t *testing.T) {
		p := NewPose2D(3, -2, 2.1)
		test.That(t, p.Compose(p.Inverse()).AlmostEqual(NewZeroPose2D(), 1e-9), test.ShouldBeTrue)
		test.That(t, p.Inverse().Compose(p).AlmostEqual(NewZeroPose2D(), 1e-9), test.ShouldBeTrue)
	})

	t.Run("between", func(t *testing.T) {
		a := NewPose2D(1, 1, math.Pi)
		b := NewPose2D(0, 1, math.Pi)
		rel := a.Between(b)
		test.That(t, rel.X, test.ShouldAlmostEqual, 1)
		test.That(t, rel.Y, test.ShouldAlmostEqual, 0)
		test.That(t, rel.Theta, test.ShouldAlmostEqual, 0)
	})
}

func TestPoseDistance(t *testing.T) {
	a := NewPose2D(0, 0, 0)
	b := NewPose2D(3, 4, 1)
	test.That(t, a.SquaredDistance(b), test.ShouldAlmostEqual, 25)
	test.That(t, a.Distance(b), test.ShouldAlmostEqual, 5)
	test.That(t, a.Heading().X, test.ShouldAlmostEqual, 1)
}

func TestTwistIntegrate(t *testing.T) {
	tw := NewTwist2D(1, 0, 0)
	p := tw.Integrate(NewPose2D(0, 0, math.Pi/2), 2)
	test.That(t, p.X, test.ShouldAlmostEqual, 0)
	test.That(t, p.Y, test.ShouldAlmostEqual, 2)

	spin := NewTwist2D(0, 0, 1)
	p = spin.Integrate(NewZeroPose2D(), 0.5)
	test.That(t, p.Theta, test.ShouldAlmostEqual, 0.5)
	test.That(t, p.X, test.ShouldAlmostEqual, 0)

	test.That(t, Twist2D{}.IsZero(), test.ShouldBeTrue)
	test.That(t, NewTwist2D(3, 4, 0).Speed(), test.ShouldAlmostEqual, 5)
}
