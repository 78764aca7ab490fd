package output

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sofmeright/buildcheck/src/check"
	"github.com/sofmeright/buildcheck/src/ruleconfig"
)

func sampleResult() *check.Result {
	eff := func(rule string, sev ruleconfig.Severity) ruleconfig.EffectiveConfiguration {
		return ruleconfig.EffectiveConfiguration{RuleID: rule, Severity: sev, Scope: ruleconfig.ScopeWorkTreeImports}
	}
	return &check.Result{
		Findings: []check.Finding{
			{Project: "a.proj", File: "a.txt", Line: 2, Rule: "tabs", Severity: ruleconfig.SeverityWarning, Message: "tab"},
			{Project: "b.proj", File: "b/x.txt", Line: 1, Rule: "tabs", Severity: ruleconfig.SeverityError, Message: "tab"},
		},
		Projects: []check.ProjectReport{
			{Project: "a.proj", Rules: []ruleconfig.EffectiveConfiguration{eff("tabs", ruleconfig.SeverityWarning)}},
			{Project: "b.proj", Rules: []ruleconfig.EffectiveConfiguration{eff("tabs", ruleconfig.SeverityError)}},
			{Project: "c.proj", Rules: []ruleconfig.EffectiveConfiguration{eff("tabs", ruleconfig.SeverityNone)}},
		},
		Stats: []check.RuleStats{{Rule: "tabs", Files: 3, Findings: 2}},
	}
}

func TestSummaryLine(t *testing.T) {
	c := CountFindings(sampleResult().Findings)
	assert.Equal(t, Counts{Total: 2, Errors: 1, Warnings: 1}, c)
	assert.Equal(t, "2 findings in 3 files: 1 error, 1 warning", SummaryLine(c, 3, false))
	assert.Equal(t, "0 findings in 0 files: no findings", SummaryLine(Counts{}, 0, false))
}

func TestSectionFindings(t *testing.T) {
	var buf bytes.Buffer
	sec := NewSection(&buf, "Findings", time.Second, false)
	SectionFindings(sec, sampleResult().Findings, false)
	sec.Close()

	out := buf.String()
	assert.Contains(t, out, "── Findings")
	assert.Contains(t, out, "1.0s")
	assert.Contains(t, out, "[a.proj]")
	assert.Contains(t, out, "ERR")
	assert.Less(t, strings.Index(out, "a.txt"), strings.Index(out, "b/x.txt"))
}

func TestBuildJUnit(t *testing.T) {
	suites := BuildJUnit(sampleResult(), ruleconfig.SeverityError, time.Second)
	require.Len(t, suites.Suites, 1)
	s := suites.Suites[0]
	assert.Equal(t, 2, s.Tests, "disabled project is not a test case")
	assert.Equal(t, 1, s.Failures)
	assert.Nil(t, s.Cases[0].Failure)
	require.NotNil(t, s.Cases[1].Failure)
	assert.Equal(t, "error", s.Cases[1].Failure.Type)

	dir := t.TempDir()
	require.NoError(t, WriteJUnit(dir, suites))
	data, err := os.ReadFile(filepath.Join(dir, "buildcheck.xml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `<testsuite name="buildcheck/tabs"`)
}

func TestWriteConfigYAML(t *testing.T) {
	projects := []ProjectConfig{{
		Project: "a.proj",
		Rules: []ruleconfig.EffectiveConfiguration{
			{RuleID: "filesize", Severity: ruleconfig.SeverityWarning, Scope: ruleconfig.ScopeAll},
		},
		Custom: map[string]map[string]string{"filesize": {"max_bytes": "10"}},
	}}
	var buf bytes.Buffer
	require.NoError(t, WriteConfigYAML(&buf, projects))

	var back []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &back))
	require.Len(t, back, 1)
	rules := back[0]["rules"].([]any)
	rule := rules[0].(map[string]any)
	assert.Equal(t, "warning", rule["severity"])
	assert.Equal(t, "all", rule["scope"])

	var table bytes.Buffer
	ConfigTable(&table, projects, false)
	assert.Contains(t, table.String(), "max_bytes=10")
}
