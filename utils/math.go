// Package utils contains small numeric helpers shared across the planner packages.
package utils

import (
	"math"
)

// DegToRad converts degrees to radians.
func DegToRad(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(radians float64) float64 {
	return radians * 180 / math.Pi
}

// NormalizeRadians wraps an angle into the (-pi, pi] range.
func NormalizeRadians(theta float64) float64 {
	theta = math.Mod(theta+math.Pi, 2*math.Pi)
	if theta <= 0 {
		theta += 2 * math.Pi
	}
	return theta - math.Pi
}

// AngleDiffRad returns the shortest signed rotation from a1 to a2.
func AngleDiffRad(a1, a2 float64) float64 {
	return NormalizeRadians(a2 - a1)
}

// Square is faster than math.Pow(n, 2).
func Square(n float64) float64 {
	return n * n
}

// Clamp limits value to [lo, hi].
func Clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

// Sign returns -1, 0 or 1.
func Sign(n float64) float64 {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}

// Float64AlmostEqual compares two float64s and returns if the difference between them is less than epsilon.
func Float64AlmostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) <= epsilon
}
