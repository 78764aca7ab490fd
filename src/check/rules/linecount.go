package rules

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/sofmeright/buildcheck/src/check"
	"github.com/sofmeright/buildcheck/src/project"
	"github.com/sofmeright/buildcheck/src/ruleconfig"
)

const defaultMaxLines = 1000

func init() {
	check.Register("linecount", func() check.Rule {
		return &linecountRule{maxLines: defaultMaxLines}
	})
}

type linecountRule struct {
	maxLines int64
}

func (r *linecountRule) ID() string          { return "linecount" }
func (r *linecountRule) Description() string { return "files with more than max_lines lines" }

func (r *linecountRule) DefaultConfiguration() ruleconfig.DefaultConfiguration {
	return ruleconfig.Defaults(ruleconfig.SeveritySuggestion, ruleconfig.ScopeWorkTreeImports)
}

func (r *linecountRule) Configure(custom ruleconfig.CustomConfigurationData) error {
	n, err := intOption(custom, r.ID(), "max_lines", defaultMaxLines)
	if err != nil {
		return err
	}
	r.maxLines = n
	return nil
}

func (r *linecountRule) Check(ctx context.Context, file project.File) ([]check.Finding, error) {
	data, err := os.ReadFile(file.AbsPath)
	if err != nil {
		return nil, err
	}

	count := int64(bytes.Count(data, []byte("\n")))
	if len(data) > 0 && data[len(data)-1] != '\n' {
		count++
	}
	if count <= r.maxLines {
		return nil, nil
	}
	return []check.Finding{{
		File:    file.Path,
		Line:    int(count),
		Message: fmt.Sprintf("file has %d lines, exceeds threshold %d", count, r.maxLines),
	}}, nil
}
