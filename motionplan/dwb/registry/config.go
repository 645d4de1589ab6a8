package registry

import (
	"encoding/json"
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/dwb/motionplan/dwb"
)

// Default plugins.
var (
	DefaultGenerator   = QualifiedName(PluginsNamespace, "StandardTrajectoryGenerator")
	DefaultGoalChecker = QualifiedName(PluginsNamespace, "SimpleGoalChecker")
)

const defaultCriticWeight = 1.0

// PluginConfig selects a generator or goal checker.
type PluginConfig struct {
	Type       string     `json:"type"`
	Attributes Attributes `json:"attributes,omitempty"`
}

// CriticConfig is one entry of the ordered critic list.
type CriticConfig struct {
	// Name identifies the instance in scores and logs.
	Name string `json:"name"`
	// Type is the critic to build. It defaults to Name.
	Type string `json:"type,omitempty"`
	// Weight scales the critic's raw score and defaults to 1.
	Weight     *float64   `json:"weight,omitempty"`
	Attributes Attributes `json:"attributes,omitempty"`
}

// CriticType returns the configured type, falling back to the name.
func (cc CriticConfig) CriticType() string {
	if cc.Type != "" {
		return cc.Type
	}
	return cc.Name
}

// CriticWeight returns the configured weight, falling back to 1.
func (cc CriticConfig) CriticWeight() float64 {
	if cc.Weight == nil {
		return defaultCriticWeight
	}
	return *cc.Weight
}

// Config describes a LocalPlanner and its plugins.
type Config struct {
	TrajectoryGenerator     PluginConfig   `json:"trajectory_generator"`
	GoalChecker             PluginConfig   `json:"goal_checker"`
	Critics                 []CriticConfig `json:"critics"`
	DefaultCriticNamespaces []string       `json:"default_critic_namespaces"`

	SplitPath                        bool    `json:"split_path"`
	PrunePlan                        bool    `json:"prune_plan"`
	PruneDistance                    float64 `json:"prune_distance"`
	ShortCircuitTrajectoryEvaluation bool    `json:"short_circuit_trajectory_evaluation"`
	UpdateCostmapBeforePlanning      bool    `json:"update_costmap_before_planning"`
	DebugTrajectoryDetails           bool    `json:"debug_trajectory_details"`
}

// DefaultConfig returns the configuration used for every unset field.
func DefaultConfig() Config {
	opts := dwb.DefaultOptions()
	return Config{
		TrajectoryGenerator:              PluginConfig{Type: DefaultGenerator},
		GoalChecker:                      PluginConfig{Type: DefaultGoalChecker},
		DefaultCriticNamespaces:          []string{CriticsNamespace},
		SplitPath:                        opts.SplitPath,
		PrunePlan:                        opts.PrunePlan,
		PruneDistance:                    opts.PruneDistance,
		ShortCircuitTrajectoryEvaluation: opts.ShortCircuitTrajectoryEvaluation,
		UpdateCostmapBeforePlanning:      opts.UpdateCostmapBeforePlanning,
		DebugTrajectoryDetails:           opts.DebugTrajectoryDetails,
	}
}

// ParseConfig decodes a JSON configuration on top of DefaultConfig.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "cannot parse local planner config")
	}
	if cfg.TrajectoryGenerator.Type == "" {
		cfg.TrajectoryGenerator.Type = DefaultGenerator
	}
	if cfg.GoalChecker.Type == "" {
		cfg.GoalChecker.Type = DefaultGoalChecker
	}
	if len(cfg.DefaultCriticNamespaces) == 0 {
		cfg.DefaultCriticNamespaces = []string{CriticsNamespace}
	}
	return &cfg, nil
}

// Options returns the planner options of the config.
func (cfg *Config) Options() dwb.Options {
	return dwb.Options{
		SplitPath:                        cfg.SplitPath,
		PrunePlan:                        cfg.PrunePlan,
		PruneDistance:                    cfg.PruneDistance,
		ShortCircuitTrajectoryEvaluation: cfg.ShortCircuitTrajectoryEvaluation,
		UpdateCostmapBeforePlanning:      cfg.UpdateCostmapBeforePlanning,
		DebugTrajectoryDetails:           cfg.DebugTrajectoryDetails,
	}
}

// Validate ensures all parts of the config are valid and every plugin is registered. All
// problems are reported together.
func (cfg *Config) Validate(path string) error {
	var err error
	if _, ok := LookupGenerator(cfg.TrajectoryGenerator.Type); !ok {
		err = multierr.Append(err, dwb.NewConfigurationError(path+".trajectory_generator",
			errors.Errorf("no trajectory generator registered as %q", cfg.TrajectoryGenerator.Type)))
	}
	if _, ok := LookupGoalChecker(cfg.GoalChecker.Type); !ok {
		err = multierr.Append(err, dwb.NewConfigurationError(path+".goal_checker",
			errors.Errorf("no goal checker registered as %q", cfg.GoalChecker.Type)))
	}
	if cfg.PrunePlan && cfg.PruneDistance <= 0 {
		err = multierr.Append(err, dwb.NewConfigurationError(path+".prune_distance",
			errors.Errorf("must be positive when pruning, got %v", cfg.PruneDistance)))
	}

	seen := map[string]bool{}
	for i, cc := range cfg.Critics {
		criticPath := fmt.Sprintf("%s.critics.%d", path, i)
		if cc.Name == "" {
			err = multierr.Append(err, dwb.NewConfigurationError(criticPath, errors.New("name is required")))
			continue
		}
		if seen[cc.Name] {
			err = multierr.Append(err, dwb.NewConfigurationError(criticPath, errors.Errorf("duplicate critic name %q", cc.Name)))
		}
		seen[cc.Name] = true
		if w := cc.CriticWeight(); w < 0 {
			err = multierr.Append(err, dwb.NewConfigurationError(criticPath, errors.Errorf("weight must not be negative, got %v", w)))
		}
		if _, resolveErr := ResolveCriticName(cc.CriticType(), cfg.DefaultCriticNamespaces); resolveErr != nil {
			err = multierr.Append(err, dwb.NewConfigurationError(criticPath, resolveErr))
		}
	}
	return err
}

// DecodeAttributes decodes attrs into out, which should already hold the defaults. Keys are
// matched against json tags and unknown keys are an error.
func DecodeAttributes(attrs Attributes, out interface{}) error {
	if len(attrs) == 0 {
		return nil
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Squash:           true,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(map[string]interface{}(attrs))
}
