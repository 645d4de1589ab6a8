package publisher

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"go.viam.com/dwb/costmap"
	"go.viam.com/dwb/logging"
	"go.viam.com/dwb/motionplan/dwb"
	"go.viam.com/dwb/spatialmath"
)

// PlotConfig configures a Plot publisher.
type PlotConfig struct {
	OutputDir string `json:"output_dir"`
	// Every renders one image per this many cycles.
	Every int `json:"every"`
	// Size is the side of the square image in inches.
	Size float64 `json:"size"`
}

// Validate ensures all parts of the config are valid.
func (cfg *PlotConfig) Validate(path string) error {
	if cfg.OutputDir == "" {
		return errors.Errorf("%s: output_dir is required", path)
	}
	if cfg.Every < 0 || cfg.Size < 0 {
		return errors.Errorf("%s: every and size must not be negative", path)
	}
	return nil
}

// costGrid is the part of a costmap needed to draw it.
type costGrid interface {
	Width() uint
	Height() uint
	Cost(mx, my uint) uint8
	MapToWorld(mx, my uint) (float64, float64)
}

// gridXYZ adapts a costGrid to plotter.GridXYZ. Unknown cells are drawn as lethal.
type gridXYZ struct {
	grid costGrid
}

func (g gridXYZ) Dims() (int, int) {
	return int(g.grid.Width()), int(g.grid.Height())
}

func (g gridXYZ) Z(c, r int) float64 {
	cost := g.grid.Cost(uint(c), uint(r))
	if cost == costmap.NoInformation {
		return float64(costmap.LethalObstacle)
	}
	return float64(cost)
}

func (g gridXYZ) X(c int) float64 {
	x, _ := g.grid.MapToWorld(uint(c), 0)
	return x
}

func (g gridXYZ) Y(r int) float64 {
	_, y := g.grid.MapToWorld(0, uint(r))
	return y
}

// Plot renders the cost grid, the plans and the chosen trajectory of every Nth cycle to PNG.
type Plot struct {
	dwb.NoopPublisher
	cfg    PlotConfig
	logger logging.Logger

	cycle       int
	globalPlan  dwb.Path
	transformed dwb.Path
	local       dwb.Trajectory
	start       spatialmath.Pose2D
	written     []string
}

// NewPlot returns a Plot publisher writing into cfg.OutputDir.
func NewPlot(cfg PlotConfig, logger logging.Logger) (*Plot, error) {
	if err := cfg.Validate("plot"); err != nil {
		return nil, err
	}
	if cfg.Every == 0 {
		cfg.Every = 1
	}
	if cfg.Size == 0 {
		cfg.Size = 6
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o750); err != nil {
		return nil, errors.Wrap(err, "failed to create output dir")
	}
	return &Plot{cfg: cfg, logger: logger}, nil
}

// Written returns the files rendered so far.
func (p *Plot) Written() []string {
	return append([]string(nil), p.written...)
}

// PublishGlobalPlan implements dwb.Publisher.
func (p *Plot) PublishGlobalPlan(plan dwb.Path) {
	p.globalPlan = plan
}

// PublishTransformedPlan implements dwb.Publisher.
func (p *Plot) PublishTransformedPlan(plan dwb.Path) {
	p.transformed = plan
}

// PublishLocalPlan implements dwb.Publisher.
func (p *Plot) PublishLocalPlan(_ string, _ time.Time, traj dwb.Trajectory) {
	p.local = traj
}

// PublishInputParams implements dwb.Publisher.
func (p *Plot) PublishInputParams(_ costmap.Info, start spatialmath.Pose2D, _ spatialmath.Twist2D, _ spatialmath.Pose2D) {
	p.start = start
}

// PublishCostGrid renders the cycle. It is the last call the planner makes each cycle.
func (p *Plot) PublishCostGrid(cm dwb.Costmap, _ []dwb.TrajectoryCritic) {
	p.cycle++
	if (p.cycle-1)%p.cfg.Every != 0 {
		return
	}
	file := filepath.Join(p.cfg.OutputDir, fmt.Sprintf("cycle_%06d.png", p.cycle))
	if err := p.render(cm, file); err != nil {
		p.logger.Warnw("failed to render cycle", "file", file, "error", err)
		return
	}
	p.written = append(p.written, file)
}

func (p *Plot) render(cm dwb.Costmap, file string) error {
	plt := plot.New()
	plt.Title.Text = fmt.Sprintf("cycle %d", p.cycle)
	plt.X.Label.Text = cm.FrameID() + " x (m)"
	plt.Y.Label.Text = cm.FrameID() + " y (m)"

	if grid, ok := cm.(costGrid); ok && grid.Width() > 0 && grid.Height() > 0 {
		heat := plotter.NewHeatMap(gridXYZ{grid: grid}, palette.Heat(16, 1))
		heat.Min, heat.Max = 0, float64(costmap.LethalObstacle)
		plt.Add(heat)
	}

	// the global plan is in its own frame and only drawn when it matches the costmap's
	if p.globalPlan.Frame == cm.FrameID() {
		if err := addPath(plt, p.globalPlan.Poses, color.RGBA{B: 255, A: 255}, "global"); err != nil {
			return err
		}
	}
	if err := addPath(plt, p.transformed.Poses, color.RGBA{G: 160, A: 255}, "local plan"); err != nil {
		return err
	}
	if err := addPath(plt, p.local.Poses(), color.RGBA{R: 255, A: 255}, "trajectory"); err != nil {
		return err
	}

	robot, err := plotter.NewScatter(plotter.XYs{{X: p.start.X, Y: p.start.Y}})
	if err != nil {
		return err
	}
	robot.GlyphStyle.Radius = vg.Points(4)
	plt.Add(robot)
	plt.Legend.Add("robot", robot)

	size := vg.Length(p.cfg.Size) * vg.Inch
	return plt.Save(size, size, file)
}

func addPath(plt *plot.Plot, poses []spatialmath.Pose2D, c color.Color, name string) error {
	if len(poses) == 0 {
		return nil
	}
	pts := make(plotter.XYs, 0, len(poses))
	for _, pose := range poses {
		pts = append(pts, plotter.XY{X: pose.X, Y: pose.Y})
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.Color = c
	line.Width = vg.Points(1)
	plt.Add(line)
	plt.Legend.Add(name, line)
	return nil
}
