package costmap

import (
	"math"

	"github.com/pkg/errors"
)

// Obstacle is a circular obstacle in the grid frame.
type Obstacle struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
}

// ObstacleLayer marks cells covered by circular obstacles as lethal and inflates the cost
// around them, decaying exponentially with distance past the robot's inscribed radius.
type ObstacleLayer struct {
	Obstacles []Obstacle

	InscribedRadius   float64
	InflationRadius   float64
	CostScalingFactor float64
}

// NewObstacleLayer returns a layer with the given inflation parameters.
func NewObstacleLayer(inscribedRadius, inflationRadius, costScalingFactor float64, obstacles ...Obstacle) (*ObstacleLayer, error) {
	if inscribedRadius < 0 || inflationRadius < inscribedRadius {
		return nil, errors.Errorf(
			"inflation radius (%.3f) must not be smaller than a non-negative inscribed radius (%.3f)",
			inflationRadius, inscribedRadius)
	}
	return &ObstacleLayer{
		Obstacles:         obstacles,
		InscribedRadius:   inscribedRadius,
		InflationRadius:   inflationRadius,
		CostScalingFactor: costScalingFactor,
	}, nil
}

// Name implements Layer.
func (l *ObstacleLayer) Name() string {
	return "obstacles"
}

// UpdateCosts implements Layer. Cells keep the highest cost any obstacle assigns them.
func (l *ObstacleLayer) UpdateCosts(g *Grid) error {
	res := g.cfg.Resolution
	for _, o := range l.Obstacles {
		if o.Radius < 0 {
			return errors.Errorf("obstacle at (%.3f, %.3f) has negative radius", o.X, o.Y)
		}
		reach := o.Radius + l.InflationRadius
		if !g.overlaps(o.X-reach, o.Y-reach, o.X+reach, o.Y+reach) {
			continue
		}
		minX, minY := g.clampedCell(o.X-reach, o.Y-reach)
		maxX, maxY := g.clampedCell(o.X+reach, o.Y+reach)
		for my := minY; my <= maxY; my++ {
			for mx := minX; mx <= maxX; mx++ {
				wx, wy := g.mapToWorld(mx, my)
				// distance from the cell center to the obstacle boundary, never below zero
				d := math.Max(0, math.Hypot(wx-o.X, wy-o.Y)-o.Radius-res/2)
				cost := l.costAt(d, o.Radius)
				if cost > g.costs[my*g.cfg.Width+mx] || g.costs[my*g.cfg.Width+mx] == NoInformation {
					g.SetCost(mx, my, cost)
				}
			}
		}
	}
	return nil
}

func (l *ObstacleLayer) costAt(d, radius float64) uint8 {
	switch {
	case d == 0 && radius > 0:
		return LethalObstacle
	case d <= l.InscribedRadius:
		return InscribedInflatedObstacle
	case d > l.InflationRadius:
		return FreeSpace
	default:
		factor := math.Exp(-l.CostScalingFactor * (d - l.InscribedRadius))
		return uint8(float64(InscribedInflatedObstacle-1) * factor)
	}
}

func (g *Grid) overlaps(minX, minY, maxX, maxY float64) bool {
	return maxX >= g.originX && maxY >= g.originY &&
		minX < g.originX+float64(g.cfg.Width)*g.cfg.Resolution &&
		minY < g.originY+float64(g.cfg.Height)*g.cfg.Resolution
}

// clampedCell converts a world position to the nearest in-grid cell.
func (g *Grid) clampedCell(wx, wy float64) (uint, uint) {
	fx := math.Floor((wx - g.originX) / g.cfg.Resolution)
	fy := math.Floor((wy - g.originY) / g.cfg.Resolution)
	fx = math.Max(0, math.Min(fx, float64(g.cfg.Width-1)))
	fy = math.Max(0, math.Min(fy, float64(g.cfg.Height-1)))
	return uint(fx), uint(fy)
}
