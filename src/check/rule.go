package check

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/sofmeright/buildcheck/src/project"
	"github.com/sofmeright/buildcheck/src/ruleconfig"
)

// Rule is the interface every build check implements. Check may be called
// concurrently for different files.
type Rule interface {
	ID() string
	Description() string
	DefaultConfiguration() ruleconfig.DefaultConfiguration
	Check(ctx context.Context, file project.File) ([]Finding, error)
}

// ConfigurableRule receives its custom configuration once per build, before
// the first Check. The data is identical for every project of the build.
type ConfigurableRule interface {
	Rule
	Configure(custom ruleconfig.CustomConfigurationData) error
}

var (
	registryMu sync.RWMutex
	registry   = map[string]func() Rule{}
)

// Register adds a rule constructor to the global registry. Called from
// init() in each rule file. Duplicate ids and incomplete defaults panic.
func Register(id string, constructor func() Rule) {
	def := constructor().DefaultConfiguration()
	if err := def.Validate(); err != nil {
		panic(fmt.Sprintf("check: rule %s: %v", id, err))
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[id]; exists {
		panic(fmt.Sprintf("check: duplicate rule registration: %s", id))
	}
	registry[id] = constructor
}

// Get returns a new instance of the named rule.
func Get(id string) (Rule, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	ctor, ok := registry[id]
	if !ok {
		return nil, fmt.Errorf("check: unknown rule: %s", id)
	}
	return ctor(), nil
}

// All returns the sorted ids of all registered rules.
func All() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
