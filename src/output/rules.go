package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sofmeright/buildcheck/src/ruleconfig"
)

// ProjectConfig is the resolved configuration of every rule in a project.
type ProjectConfig struct {
	Project string                              `yaml:"project"`
	Rules   []ruleconfig.EffectiveConfiguration `yaml:"rules"`
	Custom  map[string]map[string]string        `yaml:"custom,omitempty"`
	Error   string                              `yaml:"error,omitempty"`
}

// ConfigTable renders one section per project listing each rule's
// effective severity and scope plus its custom keys.
func ConfigTable(w io.Writer, projects []ProjectConfig, color bool) {
	for _, p := range projects {
		sec := NewSection(w, p.Project, 0, color)
		if p.Error != "" {
			sec.Row("%s %s", StatusIcon("failed", color), p.Error)
			sec.Close()
			continue
		}
		sec.Row("%-16s %-11s %-18s %s", "rule", "severity", "scope", "custom")
		for _, r := range p.Rules {
			sec.Row("%-16s %-11s %-18s %s", r.RuleID, r.Severity, r.Scope, formatCustom(p.Custom[r.RuleID]))
		}
		sec.Close()
	}
}

func formatCustom(values map[string]string) string {
	if len(values) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + values[k]
	}
	return strings.Join(parts, " ")
}

// WriteConfigYAML exports the resolved configuration as YAML.
func WriteConfigYAML(w io.Writer, projects []ProjectConfig) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(projects); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}

// RuleInfo describes a registered rule for listing.
type RuleInfo struct {
	ID          string
	Description string
	Default     ruleconfig.DefaultConfiguration
}

// RuleList renders the registered rules with their defaults.
func RuleList(w io.Writer, rules []RuleInfo, color bool) {
	sec := NewSection(w, "Rules", 0, color)
	sec.Row("%-16s %-11s %-18s %s", "rule", "severity", "scope", "description")
	for _, r := range rules {
		sec.Row("%-16s %-11s %-18s %s", r.ID, r.Default.Severity, r.Default.Scope, r.Description)
	}
	sec.Close()
}
