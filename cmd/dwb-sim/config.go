package main

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/dwb/costmap"
	"go.viam.com/dwb/motionplan/dwb/registry"
	"go.viam.com/dwb/spatialmath"
)

// Frames of the simulated world.
const (
	mapFrame  = "map"
	odomFrame = "odom"
	baseFrame = "base_link"
)

// InflationConfig configures the obstacle layer of the simulated costmap.
type InflationConfig struct {
	InscribedRadius   float64 `json:"inscribed_radius"`
	InflationRadius   float64 `json:"inflation_radius"`
	CostScalingFactor float64 `json:"cost_scaling_factor"`
}

// SimConfig describes a simulated run.
type SimConfig struct {
	Planner   json.RawMessage    `json:"planner"`
	Costmap   costmap.Config     `json:"costmap"`
	Inflation InflationConfig    `json:"inflation"`
	Obstacles []costmap.Obstacle `json:"obstacles"`

	// MapToOdom is the pose of the odometry frame in the map frame.
	MapToOdom spatialmath.Pose2D `json:"map_to_odom"`
	// Start is the robot pose in the odometry frame.
	Start spatialmath.Pose2D `json:"start"`
	// Plan is the reference path in the map frame.
	Plan []spatialmath.Pose2D `json:"plan"`

	ControllerFrequency float64 `json:"controller_frequency"`
	MaxCycles           int     `json:"max_cycles"`
	// FailureTolerance is the number of consecutive cycles without a command before giving up.
	FailureTolerance int `json:"failure_tolerance"`

	planner *registry.Config
}

// Validate ensures all parts of the config are valid.
func (cfg *SimConfig) Validate(path string) error {
	var err error
	if len(cfg.Plan) == 0 {
		err = multierr.Append(err, errors.Errorf("%s: plan must have at least one pose", path))
	}
	if cfg.ControllerFrequency <= 0 {
		err = multierr.Append(err, errors.Errorf("%s: controller_frequency must be positive", path))
	}
	if cfg.MaxCycles <= 0 {
		err = multierr.Append(err, errors.Errorf("%s: max_cycles must be positive", path))
	}
	if cfg.FailureTolerance < 0 {
		err = multierr.Append(err, errors.Errorf("%s: failure_tolerance must not be negative", path))
	}
	err = multierr.Append(err, cfg.Costmap.Validate(path+".costmap"))
	if cfg.planner != nil {
		err = multierr.Append(err, cfg.planner.Validate(path+".planner"))
	}
	return err
}

// ParseSimConfig decodes and validates a simulation config.
func ParseSimConfig(data []byte) (*SimConfig, error) {
	cfg := SimConfig{
		ControllerFrequency: 10,
		MaxCycles:           600,
		FailureTolerance:    10,
		Costmap: costmap.Config{
			Width:         60,
			Height:        60,
			Resolution:    0.05,
			FrameID:       odomFrame,
			RollingWindow: true,
		},
		Inflation: InflationConfig{InscribedRadius: 0.2, InflationRadius: 0.55, CostScalingFactor: 3},
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "cannot parse simulation config")
	}

	planner := cfg.Planner
	if len(planner) == 0 {
		planner = json.RawMessage(`{}`)
	}
	var err error
	if cfg.planner, err = registry.ParseConfig(planner); err != nil {
		return nil, err
	}
	if err := cfg.Validate("sim"); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ReadSimConfig reads a simulation config from a file.
func ReadSimConfig(path string) (*SimConfig, error) {
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read %s", path)
	}
	return ParseSimConfig(data)
}
