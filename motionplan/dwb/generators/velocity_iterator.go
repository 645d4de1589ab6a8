package generators

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"go.viam.com/dwb/spatialmath"
)

// velocityWindow returns num evenly spaced velocities reachable from current within dt,
// clamped to [minVel, maxVel].
func velocityWindow(current, minVel, maxVel, acc, decel, dt float64, num int) []float64 {
	hi := math.Min(maxVel, projectVelocity(current, acc, decel, dt, maxVel))
	lo := math.Max(minVel, projectVelocity(current, acc, decel, dt, minVel))
	if hi < lo {
		// current is outside the limits; only the nearest limit is offered
		if current > maxVel {
			lo = hi
		} else {
			hi = lo
		}
	}
	if num < 2 || hi == lo {
		return []float64{lo}
	}
	return floats.Span(make([]float64, num), lo, hi)
}

// xyThetaIterator walks the cartesian product of the x, y and theta windows, x outermost,
// skipping combinations that violate the speed limits.
type xyThetaIterator struct {
	kp *KinematicParameters

	xs, ys, thetas []float64
	ix, iy, it     int
	next           spatialmath.Twist2D
	hasNext        bool
}

func newXYThetaIterator(kp *KinematicParameters, samples Samples, current spatialmath.Twist2D, dt float64) *xyThetaIterator {
	iter := &xyThetaIterator{
		kp:     kp,
		xs:     velocityWindow(current.X, kp.MinVelX, kp.MaxVelX, kp.AccLimX, kp.DecelLimX, dt, samples.X),
		ys:     velocityWindow(current.Y, kp.MinVelY, kp.MaxVelY, kp.AccLimY, kp.DecelLimY, dt, samples.Y),
		thetas: velocityWindow(current.Theta, kp.MinVelTheta(), kp.MaxVelTheta, kp.AccLimTheta, kp.DecelLimTheta, dt, samples.Theta),
	}
	iter.advance()
	return iter
}

// advance moves to the next valid twist, starting at the current indices.
func (iter *xyThetaIterator) advance() {
	for iter.ix < len(iter.xs) {
		tw := spatialmath.NewTwist2D(iter.xs[iter.ix], iter.ys[iter.iy], iter.thetas[iter.it])
		iter.step()
		if iter.kp.IsValidSpeed(tw) {
			iter.next = tw
			iter.hasNext = true
			return
		}
	}
	iter.hasNext = false
}

func (iter *xyThetaIterator) step() {
	iter.it++
	if iter.it < len(iter.thetas) {
		return
	}
	iter.it = 0
	iter.iy++
	if iter.iy < len(iter.ys) {
		return
	}
	iter.iy = 0
	iter.ix++
}

func (iter *xyThetaIterator) hasMore() bool {
	return iter.hasNext
}

func (iter *xyThetaIterator) nextTwist() spatialmath.Twist2D {
	tw := iter.next
	iter.advance()
	return tw
}
