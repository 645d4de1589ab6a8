package costmap

import (
	"math"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/dwb/logging"
)

// Config describes a Grid.
type Config struct {
	Width      uint    `json:"width"`
	Height     uint    `json:"height"`
	Resolution float64 `json:"resolution"`
	FrameID    string  `json:"frame_id"`
	OriginX    float64 `json:"origin_x"`
	OriginY    float64 `json:"origin_y"`
	// RollingWindow recenters the grid on the robot every Update.
	RollingWindow bool `json:"rolling_window"`
	// DefaultValue is the cost every cell is reset to before the layers run.
	DefaultValue uint8 `json:"default_value"`
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	var err error
	if cfg.Width == 0 || cfg.Height == 0 {
		err = multierr.Append(err, errors.Errorf("%s: width and height must be positive", path))
	}
	if cfg.Resolution <= 0 {
		err = multierr.Append(err, errors.Errorf("%s: resolution must be positive", path))
	}
	if cfg.FrameID == "" {
		err = multierr.Append(err, errors.Errorf("%s: frame_id is required", path))
	}
	return err
}

// Layer writes costs into a grid during Update.
type Layer interface {
	Name() string
	UpdateCosts(grid *Grid) error
}

// RobotPositionFunc reports the robot position in the grid frame for rolling windows.
type RobotPositionFunc func() (x, y float64, err error)

// Grid is an in-memory Costmap built up by layers.
type Grid struct {
	mu sync.RWMutex

	cfg     Config
	originX float64
	originY float64
	costs   []uint8

	layers        []Layer
	robotPosition RobotPositionFunc
	logger        logging.Logger
	updates       int
}

// NewGrid creates a grid with every cell set to the configured default value.
func NewGrid(cfg Config, logger logging.Logger, layers ...Layer) (*Grid, error) {
	if err := cfg.Validate("costmap"); err != nil {
		return nil, err
	}
	g := &Grid{
		cfg:     cfg,
		originX: cfg.OriginX,
		originY: cfg.OriginY,
		costs:   make([]uint8, cfg.Width*cfg.Height),
		layers:  layers,
		logger:  logger,
	}
	g.resetCosts()
	return g, nil
}

// SetRobotPositionFunc installs the callback used to recenter a rolling window.
func (g *Grid) SetRobotPositionFunc(f RobotPositionFunc) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.robotPosition = f
}

// Update recenters a rolling window, clears the grid and reruns every layer.
func (g *Grid) Update() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cfg.RollingWindow {
		if g.robotPosition == nil {
			return errors.New("rolling window costmap has no robot position source")
		}
		x, y, err := g.robotPosition()
		if err != nil {
			return errors.Wrap(err, "cannot recenter costmap")
		}
		g.updateOrigin(
			x-float64(g.cfg.Width)*g.cfg.Resolution/2,
			y-float64(g.cfg.Height)*g.cfg.Resolution/2,
		)
	}

	g.resetCosts()
	var errs error
	for _, layer := range g.layers {
		if err := layer.UpdateCosts(g); err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "layer %q", layer.Name()))
		}
	}
	g.updates++
	if errs != nil {
		return errs
	}
	g.logger.Debugw("costmap updated", "origin_x", g.originX, "origin_y", g.originY, "updates", g.updates)
	return nil
}

// UpdateOrigin moves the grid's lower left corner. Costs are cleared.
func (g *Grid) UpdateOrigin(x, y float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.updateOrigin(x, y)
	g.resetCosts()
}

func (g *Grid) updateOrigin(x, y float64) {
	// Snap to the cell grid so that cells do not drift between updates.
	g.originX = math.Floor(x/g.cfg.Resolution) * g.cfg.Resolution
	g.originY = math.Floor(y/g.cfg.Resolution) * g.cfg.Resolution
}

func (g *Grid) resetCosts() {
	for i := range g.costs {
		g.costs[i] = g.cfg.DefaultValue
	}
}

// Width is the number of cells along x.
func (g *Grid) Width() uint {
	return g.cfg.Width
}

// Height is the number of cells along y.
func (g *Grid) Height() uint {
	return g.cfg.Height
}

// Resolution is the side of a cell in meters.
func (g *Grid) Resolution() float64 {
	return g.cfg.Resolution
}

// FrameID is the frame the grid is anchored in.
func (g *Grid) FrameID() string {
	return g.cfg.FrameID
}

// Info returns the current geometry of the grid.
func (g *Grid) Info() Info {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return Info{
		Width:      g.cfg.Width,
		Height:     g.cfg.Height,
		Resolution: g.cfg.Resolution,
		FrameID:    g.cfg.FrameID,
		OriginX:    g.originX,
		OriginY:    g.originY,
	}
}

// Cost returns the cost of a cell, or NoInformation when the cell is off the grid.
func (g *Grid) Cost(mx, my uint) uint8 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if mx >= g.cfg.Width || my >= g.cfg.Height {
		return NoInformation
	}
	return g.costs[my*g.cfg.Width+mx]
}

// SetCost writes the cost of a cell. Off-grid writes are ignored.
func (g *Grid) SetCost(mx, my uint, cost uint8) {
	if mx >= g.cfg.Width || my >= g.cfg.Height {
		return
	}
	g.costs[my*g.cfg.Width+mx] = cost
}

// WorldToMap converts a position into cell coordinates.
func (g *Grid) WorldToMap(wx, wy float64) (uint, uint, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.worldToMap(wx, wy)
}

func (g *Grid) worldToMap(wx, wy float64) (uint, uint, bool) {
	if wx < g.originX || wy < g.originY {
		return 0, 0, false
	}
	mx := uint((wx - g.originX) / g.cfg.Resolution)
	my := uint((wy - g.originY) / g.cfg.Resolution)
	if mx >= g.cfg.Width || my >= g.cfg.Height {
		return 0, 0, false
	}
	return mx, my, true
}

// MapToWorld returns the center of a cell.
func (g *Grid) MapToWorld(mx, my uint) (float64, float64) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.mapToWorld(mx, my)
}

func (g *Grid) mapToWorld(mx, my uint) (float64, float64) {
	return g.originX + (float64(mx)+0.5)*g.cfg.Resolution, g.originY + (float64(my)+0.5)*g.cfg.Resolution
}
