// Package registry builds LocalPlanners from configuration. Generators, critics and goal
// checkers register a constructor under a namespaced name, usually from an init function;
// import the register package to make the built-in plugins available.
package registry

import (
	"sort"
	"strings"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/dwb/costmap"
	"go.viam.com/dwb/logging"
	"go.viam.com/dwb/motionplan/dwb"
)

// Namespaces of the built-in plugins.
const (
	CriticsNamespace = "dwb_critics"
	PluginsNamespace = "dwb_plugins"
)

const (
	namespaceSeparator = ":"
	criticSuffix       = "Critic"
)

// Attributes are the plugin specific settings of a configuration entry.
type Attributes map[string]interface{}

// PluginDeps are handed to every plugin constructor.
type PluginDeps struct {
	Costmap costmap.Costmap
	Clock   clock.Clock
	Logger  logging.Logger
}

type (
	// GeneratorConstructor builds a trajectory generator.
	GeneratorConstructor func(attrs Attributes, deps PluginDeps) (dwb.TrajectoryGenerator, error)

	// CriticConstructor builds a critic. name is the configured name of the instance.
	CriticConstructor func(name string, weight float64, attrs Attributes, deps PluginDeps) (dwb.TrajectoryCritic, error)

	// GoalCheckerConstructor builds a goal checker.
	GoalCheckerConstructor func(attrs Attributes, deps PluginDeps) (dwb.GoalChecker, error)
)

var (
	registryMu   sync.RWMutex
	generators   = map[string]GeneratorConstructor{}
	critics      = map[string]CriticConstructor{}
	goalCheckers = map[string]GoalCheckerConstructor{}
)

// QualifiedName joins a namespace and a plugin name.
func QualifiedName(namespace, name string) string {
	return namespace + namespaceSeparator + name
}

func register[T any](kind string, table map[string]T, name string, constructor T, isNil bool) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if name == "" {
		panic(errors.Errorf("cannot register a %s with no name", kind))
	}
	if isNil {
		panic(errors.Errorf("cannot register a nil constructor for %s %q", kind, name))
	}
	if _, old := table[name]; old {
		panic(errors.Errorf("trying to register two %ss with the same name %q", kind, name))
	}
	table[name] = constructor
}

// RegisterGenerator registers a trajectory generator under its qualified name.
func RegisterGenerator(name string, constructor GeneratorConstructor) {
	register("trajectory generator", generators, name, constructor, constructor == nil)
}

// RegisterCritic registers a critic under its qualified name.
func RegisterCritic(name string, constructor CriticConstructor) {
	register("critic", critics, name, constructor, constructor == nil)
}

// RegisterGoalChecker registers a goal checker under its qualified name.
func RegisterGoalChecker(name string, constructor GoalCheckerConstructor) {
	register("goal checker", goalCheckers, name, constructor, constructor == nil)
}

// LookupGenerator returns the generator registered under name.
func LookupGenerator(name string) (GeneratorConstructor, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	c, ok := generators[name]
	return c, ok
}

// LookupCritic returns the critic registered under the exact name.
func LookupCritic(name string) (CriticConstructor, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	c, ok := critics[name]
	return c, ok
}

// LookupGoalChecker returns the goal checker registered under name.
func LookupGoalChecker(name string) (GoalCheckerConstructor, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	c, ok := goalCheckers[name]
	return c, ok
}

func sortedKeys[T any](table map[string]T) []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	keys := lo.Keys(table)
	sort.Strings(keys)
	return keys
}

// RegisteredGenerators lists the registered generator names.
func RegisteredGenerators() []string {
	return sortedKeys(generators)
}

// RegisteredCritics lists the registered critic names.
func RegisteredCritics() []string {
	return sortedKeys(critics)
}

// RegisteredGoalCheckers lists the registered goal checker names.
func RegisteredGoalCheckers() []string {
	return sortedKeys(goalCheckers)
}

// ResolveCriticName finds the registered name of a critic type. A qualified name must match
// exactly. Otherwise the "Critic" suffix is appended when missing and the namespaces are
// searched in order.
func ResolveCriticName(name string, namespaces []string) (string, error) {
	if name == "" {
		return "", errors.New("critic type is empty")
	}
	if strings.Contains(name, namespaceSeparator) {
		if _, ok := LookupCritic(name); ok {
			return name, nil
		}
		return "", errors.Errorf("no critic registered as %q", name)
	}

	if !strings.HasSuffix(name, criticSuffix) {
		name += criticSuffix
	}
	candidates := lo.Map(namespaces, func(ns string, _ int) string {
		return QualifiedName(ns, name)
	})
	if found, ok := lo.Find(candidates, func(candidate string) bool {
		_, ok := LookupCritic(candidate)
		return ok
	}); ok {
		return found, nil
	}
	return "", errors.Errorf("no critic %q in namespaces %v", name, namespaces)
}
