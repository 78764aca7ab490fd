package ruleconfig

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// RawConfig is the lower-cased, rule-prefix-stripped key/value view of one
// rule in one project.
type RawConfig map[string]string

// UserConfiguration is what a project's .editorconfig chain says about a rule.
// Every field is optional.
type UserConfiguration struct {
	RuleID   string
	Severity Setting[Severity]
	Scope    Setting[EvaluationScope]
	// Raw holds every key found for the rule, infrastructure keys included.
	Raw RawConfig
}

// DefaultConfiguration is the rule author's configuration. Severity and
// Scope must both hold values.
type DefaultConfiguration struct {
	Severity Setting[Severity]
	Scope    Setting[EvaluationScope]
}

// Defaults is shorthand for a complete DefaultConfiguration.
func Defaults(sev Severity, scope EvaluationScope) DefaultConfiguration {
	return DefaultConfiguration{Severity: Value(sev), Scope: Value(scope)}
}

// Validate reports a missing severity or scope.
func (d DefaultConfiguration) Validate() error {
	if _, ok := d.Severity.Get(); !ok {
		return fmt.Errorf("default severity is %s, a concrete severity is required", d.Severity)
	}
	if _, ok := d.Scope.Get(); !ok {
		return fmt.Errorf("default scope is %s, a concrete scope is required", d.Scope)
	}
	return nil
}

// EffectiveConfiguration is the fully resolved configuration of a rule in a
// project.
type EffectiveConfiguration struct {
	RuleID   string          `yaml:"rule" json:"rule"`
	Severity Severity        `yaml:"severity" json:"severity"`
	Scope    EvaluationScope `yaml:"scope" json:"scope"`
}

// Enabled reports whether the rule should run at all.
func (e EffectiveConfiguration) Enabled() bool {
	return e.Severity != SeverityNone
}

// CustomConfigurationData holds a rule's non-infrastructure keys.
// A nil or empty Values map means "no custom configuration".
type CustomConfigurationData struct {
	RuleID string
	Values map[string]string
}

// NullCustomConfiguration returns the empty variant for ruleID.
func NullCustomConfiguration(ruleID string) CustomConfigurationData {
	return CustomConfigurationData{RuleID: ruleID}
}

// IsNull reports whether no custom keys are present.
func (c CustomConfigurationData) IsNull() bool { return len(c.Values) == 0 }

// Get looks a custom key up case-insensitively.
func (c CustomConfigurationData) Get(key string) (string, bool) {
	v, ok := c.Values[strings.ToLower(key)]
	return v, ok
}

// Equal compares rule ids and key/value sets; insertion order is irrelevant
// and nil equals empty.
func (c CustomConfigurationData) Equal(other CustomConfigurationData) bool {
	if !strings.EqualFold(c.RuleID, other.RuleID) {
		return false
	}
	if c.IsNull() || other.IsNull() {
		return c.IsNull() == other.IsNull()
	}
	return maps.Equal(c.Values, other.Values)
}

// Fingerprint is a stable rendering of the data, usable as a cache key part.
func (c CustomConfigurationData) Fingerprint() string {
	keys := slices.Sorted(maps.Keys(c.Values))
	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s=%s;", k, c.Values[k])
	}
	return sb.String()
}

func (c CustomConfigurationData) String() string {
	if c.IsNull() {
		return "<none>"
	}
	return "{" + strings.TrimSuffix(c.Fingerprint(), ";") + "}"
}
