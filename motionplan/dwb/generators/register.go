package generators

import (
	"go.viam.com/dwb/motionplan/dwb"
	"go.viam.com/dwb/motionplan/dwb/registry"
)

func init() {
	registry.RegisterGenerator(registry.QualifiedName(registry.PluginsNamespace, StandardName),
		func(attrs registry.Attributes, deps registry.PluginDeps) (dwb.TrajectoryGenerator, error) {
			cfg := DefaultStandardConfig()
			if err := registry.DecodeAttributes(attrs, &cfg); err != nil {
				return nil, err
			}
			return NewStandardGenerator(cfg, deps.Logger)
		})
}
