package goalcheckers

import (
	"go.viam.com/dwb/motionplan/dwb"
	"go.viam.com/dwb/motionplan/dwb/registry"
)

func init() {
	registry.RegisterGoalChecker(registry.QualifiedName(registry.PluginsNamespace, SimpleName),
		func(attrs registry.Attributes, _ registry.PluginDeps) (dwb.GoalChecker, error) {
			cfg := DefaultSimpleConfig()
			if err := registry.DecodeAttributes(attrs, &cfg); err != nil {
				return nil, err
			}
			if err := cfg.Validate(SimpleName); err != nil {
				return nil, err
			}
			return NewSimple(cfg), nil
		})
	registry.RegisterGoalChecker(registry.QualifiedName(registry.PluginsNamespace, StoppedName),
		func(attrs registry.Attributes, _ registry.PluginDeps) (dwb.GoalChecker, error) {
			cfg := DefaultStoppedConfig()
			if err := registry.DecodeAttributes(attrs, &cfg); err != nil {
				return nil, err
			}
			if err := cfg.Validate(StoppedName); err != nil {
				return nil, err
			}
			return NewStopped(cfg), nil
		})
}
