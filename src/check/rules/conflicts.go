package rules

import (
	"bufio"
	"context"
	"os"
	"strings"

	"github.com/sofmeright/buildcheck/src/check"
	"github.com/sofmeright/buildcheck/src/project"
	"github.com/sofmeright/buildcheck/src/ruleconfig"
)

// Markers with a trailing space carry a label; the separator stands alone.
var conflictMarkers = []string{"<<<<<<< ", "=======", ">>>>>>> "}

func init() {
	check.Register("conflicts", func() check.Rule { return &conflictsRule{} })
}

type conflictsRule struct{}

func (r *conflictsRule) ID() string          { return "conflicts" }
func (r *conflictsRule) Description() string { return "unresolved merge conflict markers" }

func (r *conflictsRule) DefaultConfiguration() ruleconfig.DefaultConfiguration {
	return ruleconfig.Defaults(ruleconfig.SeverityError, ruleconfig.ScopeWorkTreeImports)
}

func (r *conflictsRule) Check(ctx context.Context, file project.File) ([]check.Finding, error) {
	f, err := os.Open(file.AbsPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var findings []check.Finding
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		for _, marker := range conflictMarkers {
			if text == strings.TrimSpace(marker) || (strings.HasSuffix(marker, " ") && strings.HasPrefix(text, marker)) {
				findings = append(findings, check.Finding{
					File:    file.Path,
					Line:    line,
					Message: "merge conflict marker: " + strings.TrimSpace(marker),
				})
				break
			}
		}
	}
	return findings, scanner.Err()
}
