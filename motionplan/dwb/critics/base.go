// Package critics contains trajectory critics for the dwb local planner.
package critics

import (
	"go.viam.com/dwb/costmap"
	"go.viam.com/dwb/logging"
	"go.viam.com/dwb/motionplan/dwb"
	"go.viam.com/dwb/spatialmath"
)

// baseCritic carries the name, weight and costmap shared by every critic. It prepares
// successfully and keeps no state between cycles.
type baseCritic struct {
	name    string
	weight  float64
	costmap costmap.Costmap
	logger  logging.Logger
}

func newBaseCritic(name string, weight float64, cm costmap.Costmap, logger logging.Logger) baseCritic {
	return baseCritic{name: name, weight: weight, costmap: cm, logger: logger}
}

// Name returns the configured name of the critic.
func (c *baseCritic) Name() string {
	return c.name
}

// Weight returns the configured weight of the critic.
func (c *baseCritic) Weight() float64 {
	return c.weight
}

// Prepare does nothing.
func (c *baseCritic) Prepare(spatialmath.Pose2D, spatialmath.Twist2D, spatialmath.Pose2D, dwb.Path) bool {
	return true
}

// Debrief does nothing.
func (c *baseCritic) Debrief(spatialmath.Twist2D) {}

// Reset does nothing.
func (c *baseCritic) Reset() {}
