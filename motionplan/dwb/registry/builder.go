package registry

import (
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/dwb/costmap"
	"go.viam.com/dwb/logging"
	"go.viam.com/dwb/motionplan/dwb"
	"go.viam.com/dwb/referenceframe"
)

// Dependencies are the collaborators a configured planner is built around. Publisher and
// Clock are optional.
type Dependencies struct {
	Costmap     costmap.Costmap
	Transformer referenceframe.Transformer
	Publisher   dwb.Publisher
	Clock       clock.Clock
}

// NewLocalPlanner validates cfg, builds every plugin it names and returns the planner.
// Construction errors of all plugins are reported together.
func NewLocalPlanner(cfg *Config, deps Dependencies, logger logging.Logger) (*dwb.LocalPlanner, error) {
	if cfg == nil {
		return nil, dwb.NewConfigurationError("local_planner", errors.New("missing config"))
	}
	if err := cfg.Validate("local_planner"); err != nil {
		return nil, err
	}
	if deps.Costmap == nil {
		return nil, dwb.NewConfigurationError("costmap", errors.New("missing"))
	}
	if deps.Clock == nil {
		deps.Clock = clock.New()
	}
	pluginDeps := func(name string) PluginDeps {
		return PluginDeps{Costmap: deps.Costmap, Clock: deps.Clock, Logger: logger.Sublogger(name)}
	}

	var errs error
	generator, err := buildGenerator(cfg.TrajectoryGenerator, pluginDeps("generator"))
	errs = multierr.Append(errs, err)
	goalChecker, err := buildGoalChecker(cfg.GoalChecker, pluginDeps("goal_checker"))
	errs = multierr.Append(errs, err)

	criticList := make([]dwb.TrajectoryCritic, 0, len(cfg.Critics))
	for i, cc := range cfg.Critics {
		critic, err := buildCritic(cc, cfg.DefaultCriticNamespaces, pluginDeps(cc.Name))
		if err != nil {
			errs = multierr.Append(errs, dwb.NewConfigurationError(fmt.Sprintf("critics.%d", i), err))
			continue
		}
		criticList = append(criticList, critic)
	}
	if errs != nil {
		return nil, errs
	}

	logger.Infow("built local planner",
		"trajectory_generator", cfg.TrajectoryGenerator.Type,
		"goal_checker", cfg.GoalChecker.Type,
		"critics", len(criticList),
	)
	return dwb.NewLocalPlanner(dwb.Dependencies{
		Generator:   generator,
		GoalChecker: goalChecker,
		Critics:     criticList,
		Costmap:     deps.Costmap,
		Transformer: deps.Transformer,
		Publisher:   deps.Publisher,
		Clock:       deps.Clock,
	}, cfg.Options(), logger)
}

func buildGenerator(pc PluginConfig, deps PluginDeps) (dwb.TrajectoryGenerator, error) {
	constructor, ok := LookupGenerator(pc.Type)
	if !ok {
		return nil, dwb.NewConfigurationError("trajectory_generator", errors.Errorf("no trajectory generator registered as %q", pc.Type))
	}
	generator, err := constructor(pc.Attributes, deps)
	if err != nil {
		return nil, dwb.NewConfigurationError("trajectory_generator", err)
	}
	return generator, nil
}

func buildGoalChecker(pc PluginConfig, deps PluginDeps) (dwb.GoalChecker, error) {
	constructor, ok := LookupGoalChecker(pc.Type)
	if !ok {
		return nil, dwb.NewConfigurationError("goal_checker", errors.Errorf("no goal checker registered as %q", pc.Type))
	}
	checker, err := constructor(pc.Attributes, deps)
	if err != nil {
		return nil, dwb.NewConfigurationError("goal_checker", err)
	}
	return checker, nil
}

func buildCritic(cc CriticConfig, namespaces []string, deps PluginDeps) (dwb.TrajectoryCritic, error) {
	typeName, err := ResolveCriticName(cc.CriticType(), namespaces)
	if err != nil {
		return nil, err
	}
	constructor, _ := LookupCritic(typeName)
	critic, err := constructor(cc.Name, cc.CriticWeight(), cc.Attributes, deps)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot build critic %q", cc.Name)
	}
	deps.Logger.Debugw("built critic", "name", cc.Name, "type", typeName, "weight", cc.CriticWeight())
	return critic, nil
}
