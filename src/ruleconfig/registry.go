package ruleconfig

import (
	"fmt"
	"maps"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// customRegistry remembers the first custom configuration seen for each rule
// in a build and rejects any later one that differs.
type customRegistry struct {
	mu        sync.Mutex
	reference map[string]registeredCustom
	log       zerolog.Logger
}

type registeredCustom struct {
	data        CustomConfigurationData
	projectPath string
}

func newCustomRegistry(log zerolog.Logger) *customRegistry {
	return &customRegistry{reference: make(map[string]registeredCustom), log: log}
}

// check records data as the reference for its rule if none exists, otherwise
// compares against the reference. The decision happens under one lock so
// racing registrations observe a single winner.
func (r *customRegistry) check(projectPath string, data CustomConfigurationData) error {
	key := strings.ToLower(data.RuleID)

	r.mu.Lock()
	ref, ok := r.reference[key]
	if !ok {
		data.Values = maps.Clone(data.Values)
		r.reference[key] = registeredCustom{data: data, projectPath: projectPath}
	}
	r.mu.Unlock()

	if !ok {
		r.log.Debug().Str("rule", data.RuleID).Str("project", projectPath).Stringer("custom", data).Msg("registered custom configuration")
		return nil
	}
	if ref.data.Equal(data) {
		return nil
	}
	return &ConfigurationError{
		Kind:        ConfigurationInconsistency,
		ProjectPath: projectPath,
		RuleID:      data.RuleID,
		Err: fmt.Errorf("custom configuration %s differs from %s set by project %s; it must be identical for every project in the build",
			data, ref.data, ref.projectPath),
	}
}

func (r *customRegistry) lookup(ruleID string) (CustomConfigurationData, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ref, ok := r.reference[strings.ToLower(ruleID)]
	data := ref.data
	data.Values = maps.Clone(data.Values)
	return data, ok
}
