package utils

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func TestAngles(t *testing.T) {
	test.That(t, DegToRad(180), test.ShouldAlmostEqual, math.Pi)
	test.That(t, RadToDeg(math.Pi/2), test.ShouldAlmostEqual, 90.0)

	for _, tc := range []struct {
		in, out float64
	}{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi, math.Pi},
		{3 * math.Pi / 2, -math.Pi / 2},
		{-3 * math.Pi / 2, math.Pi / 2},
	} {
		test.That(t, NormalizeRadians(tc.in), test.ShouldAlmostEqual, tc.out)
	}

	test.That(t, AngleDiffRad(0.1, -0.1), test.ShouldAlmostEqual, -0.2)
	test.That(t, AngleDiffRad(math.Pi-0.1, -math.Pi+0.1), test.ShouldAlmostEqual, 0.2)
}

func TestScalars(t *testing.T) {
	test.That(t, Square(-3), test.ShouldAlmostEqual, 9.0)
	test.That(t, Clamp(5, 0, 1), test.ShouldAlmostEqual, 1.0)
	test.That(t, Clamp(-5, 0, 1), test.ShouldAlmostEqual, 0.0)
	test.That(t, Clamp(0.5, 0, 1), test.ShouldAlmostEqual, 0.5)
	test.That(t, Sign(-2), test.ShouldAlmostEqual, -1.0)
	test.That(t, Sign(0), test.ShouldAlmostEqual, 0.0)
	test.That(t, Sign(3), test.ShouldAlmostEqual, 1.0)
	test.That(t, Float64AlmostEqual(1, 1.0001, 1e-3), test.ShouldBeTrue)
	test.That(t, Float64AlmostEqual(1, 1.1, 1e-3), test.ShouldBeFalse)
}
