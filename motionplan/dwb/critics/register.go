package critics

import (
	"go.viam.com/dwb/motionplan/dwb"
	"go.viam.com/dwb/motionplan/dwb/registry"
)

func init() {
	registry.RegisterCritic(registry.QualifiedName(registry.CriticsNamespace, BaseObstacleName),
		func(name string, weight float64, attrs registry.Attributes, deps registry.PluginDeps) (dwb.TrajectoryCritic, error) {
			var cfg BaseObstacleConfig
			if err := registry.DecodeAttributes(attrs, &cfg); err != nil {
				return nil, err
			}
			return NewBaseObstacle(name, weight, cfg, deps.Costmap, deps.Logger), nil
		})
	registry.RegisterCritic(registry.QualifiedName(registry.CriticsNamespace, PathDistName),
		func(name string, weight float64, attrs registry.Attributes, deps registry.PluginDeps) (dwb.TrajectoryCritic, error) {
			cfg, err := distanceConfig(name, attrs)
			if err != nil {
				return nil, err
			}
			return NewPathDist(name, weight, cfg, deps.Costmap, deps.Logger), nil
		})
	registry.RegisterCritic(registry.QualifiedName(registry.CriticsNamespace, GoalDistName),
		func(name string, weight float64, attrs registry.Attributes, deps registry.PluginDeps) (dwb.TrajectoryCritic, error) {
			cfg, err := distanceConfig(name, attrs)
			if err != nil {
				return nil, err
			}
			return NewGoalDist(name, weight, cfg, deps.Costmap, deps.Logger), nil
		})
	registry.RegisterCritic(registry.QualifiedName(registry.CriticsNamespace, OscillationName),
		func(name string, weight float64, attrs registry.Attributes, deps registry.PluginDeps) (dwb.TrajectoryCritic, error) {
			cfg := DefaultOscillationConfig()
			if err := registry.DecodeAttributes(attrs, &cfg); err != nil {
				return nil, err
			}
			return NewOscillation(name, weight, cfg, deps.Clock, deps.Costmap, deps.Logger), nil
		})
	registry.RegisterCritic(registry.QualifiedName(registry.CriticsNamespace, PreferForwardName),
		func(name string, weight float64, attrs registry.Attributes, deps registry.PluginDeps) (dwb.TrajectoryCritic, error) {
			cfg := DefaultPreferForwardConfig()
			if err := registry.DecodeAttributes(attrs, &cfg); err != nil {
				return nil, err
			}
			return NewPreferForward(name, weight, cfg, deps.Costmap, deps.Logger), nil
		})
	registry.RegisterCritic(registry.QualifiedName(registry.CriticsNamespace, TwirlingName),
		func(name string, weight float64, _ registry.Attributes, deps registry.PluginDeps) (dwb.TrajectoryCritic, error) {
			return NewTwirling(name, weight, deps.Costmap, deps.Logger), nil
		})
}

func distanceConfig(name string, attrs registry.Attributes) (DistanceConfig, error) {
	cfg := DistanceConfig{Aggregation: AggregationLast}
	if err := registry.DecodeAttributes(attrs, &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate(name)
}
