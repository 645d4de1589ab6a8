// Package main runs the dwb local planner against a simulated robot.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"go.viam.com/dwb/logging"
	"go.viam.com/dwb/motionplan/dwb/publisher"
	_ "go.viam.com/dwb/motionplan/dwb/register"
	"go.viam.com/dwb/motionplan/dwb/registry"
)

const (
	flagConfig      = "config"
	flagDebug       = "debug"
	flagLogFile     = "log-file"
	flagPlotDir     = "plot-dir"
	flagPlotEvery   = "plot-every"
	flagEvaluations = "evaluations"
)

var app = &cli.App{
	Name:            "dwb-sim",
	Usage:           "drive a simulated robot along a plan with the dwb local planner",
	HideHelpCommand: true,
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  flagDebug,
			Usage: "enable debug logging",
		},
		&cli.StringFlag{
			Name:  flagLogFile,
			Usage: "also write logs to a size rotated `FILE`",
		},
	},
	Commands: []*cli.Command{
		{
			Name:      "run",
			Usage:     "run a simulation",
			UsageText: "dwb-sim run --config FILE [--plot-dir DIR]",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     flagConfig,
					Aliases:  []string{"c"},
					Required: true,
					Usage:    "load the simulation from `FILE`",
				},
				&cli.StringFlag{
					Name:  flagPlotDir,
					Usage: "render cycles as PNG images into `DIR`",
				},
				&cli.IntFlag{
					Name:  flagPlotEvery,
					Value: 10,
					Usage: "render one image every `N` cycles",
				},
				&cli.BoolFlag{
					Name:  flagEvaluations,
					Usage: "log a summary of every scored candidate set",
				},
			},
			Action: RunAction,
		},
		{
			Name:   "plugins",
			Usage:  "list the registered generators, critics and goal checkers",
			Action: PluginsAction,
		},
	},
}

func newLogger(c *cli.Context) (logging.Logger, func()) {
	logger := logging.NewLogger("dwb-sim")
	if c.Bool(flagDebug) {
		logger.SetLevel(logging.DEBUG)
	}
	closer := func() {}
	if file := c.String(flagLogFile); file != "" {
		appender, roller := logging.NewFileAppender(logging.FileAppenderConfig{Filename: file})
		logger.AddAppender(appender)
		closer = func() {
			//nolint:errcheck
			roller.Close()
		}
	}
	return logger, closer
}

// RunAction runs a simulation until the goal is reached or it fails.
func RunAction(c *cli.Context) error {
	logger, closeLogs := newLogger(c)
	defer closeLogs()

	cfg, err := ReadSimConfig(c.String(flagConfig))
	if err != nil {
		return err
	}

	publishers := publisher.Multi{publisher.NewLogging(logger.Sublogger("telemetry"), c.Bool(flagEvaluations))}
	if dir := c.String(flagPlotDir); dir != "" {
		plot, err := publisher.NewPlot(publisher.PlotConfig{OutputDir: dir, Every: c.Int(flagPlotEvery)}, logger.Sublogger("plot"))
		if err != nil {
			return err
		}
		publishers = append(publishers, plot)
	}

	sim, err := NewSimulator(cfg, nil, publishers, logger)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt)
	defer cancel()
	if err := sim.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("interrupted")
			return nil
		}
		return errors.Wrapf(err, "simulation stopped at %s after %d cycles", sim.Pose(), sim.Cycles())
	}
	printf(c, "reached goal in %d cycles at %s\n", sim.Cycles(), sim.Pose())
	return nil
}

// PluginsAction prints every registered plugin.
func PluginsAction(c *cli.Context) error {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Kind", "Name"})
	for _, name := range registry.RegisteredGenerators() {
		t.AppendRow(table.Row{"trajectory_generator", name})
	}
	for _, name := range registry.RegisteredGoalCheckers() {
		t.AppendRow(table.Row{"goal_checker", name})
	}
	for _, name := range registry.RegisteredCritics() {
		t.AppendRow(table.Row{"critic", name})
	}
	printf(c, "%s\n", t.Render())
	return nil
}

func printf(c *cli.Context, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(c.App.Writer, format, a...)
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
