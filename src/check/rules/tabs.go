package rules

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/sofmeright/buildcheck/src/check"
	"github.com/sofmeright/buildcheck/src/project"
	"github.com/sofmeright/buildcheck/src/ruleconfig"
)

// defaultTabExtensions lists file suffixes where tab indentation breaks
// syntax. Compound template suffixes match on the full base name.
var defaultTabExtensions = []string{
	".yml", ".yaml",
	".yaml.gotmpl", ".yml.gotmpl",
	".yaml.tmpl", ".yml.tmpl",
	".yaml.tpl", ".yml.tpl",
	".yaml.j2", ".yml.j2",
}

func init() {
	check.Register("tabs", func() check.Rule { return &tabsRule{extensions: defaultTabExtensions} })
}

type tabsRule struct {
	extensions []string
}

func (r *tabsRule) ID() string          { return "tabs" }
func (r *tabsRule) Description() string { return "tab indentation in files listed by extensions" }

func (r *tabsRule) DefaultConfiguration() ruleconfig.DefaultConfiguration {
	return ruleconfig.Defaults(ruleconfig.SeveritySuggestion, ruleconfig.ScopeWorkTreeImports)
}

func (r *tabsRule) Configure(custom ruleconfig.CustomConfigurationData) error {
	exts := listOption(custom, "extensions", defaultTabExtensions)
	for i, ext := range exts {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[i] = ext
	}
	r.extensions = exts
	return nil
}

func (r *tabsRule) Check(ctx context.Context, file project.File) ([]check.Finding, error) {
	if !r.applies(file.Path) {
		return nil, nil
	}

	f, err := os.Open(file.AbsPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var findings []check.Finding
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		if strings.HasPrefix(scanner.Text(), "\t") {
			findings = append(findings, check.Finding{
				File:    file.Path,
				Line:    line,
				Message: "tab indentation (spaces expected)",
			})
		}
	}
	return findings, scanner.Err()
}

func (r *tabsRule) applies(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	for _, ext := range r.extensions {
		if strings.HasSuffix(base, ext) {
			return true
		}
	}
	return false
}
