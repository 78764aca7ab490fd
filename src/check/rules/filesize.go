package rules

import (
	"context"
	"fmt"

	"github.com/sofmeright/buildcheck/src/check"
	"github.com/sofmeright/buildcheck/src/project"
	"github.com/sofmeright/buildcheck/src/ruleconfig"
)

const defaultMaxBytes int64 = 500 * 1024

func init() {
	check.Register("filesize", func() check.Rule {
		return &filesizeRule{maxBytes: defaultMaxBytes}
	})
}

type filesizeRule struct {
	maxBytes int64
}

func (r *filesizeRule) ID() string          { return "filesize" }
func (r *filesizeRule) Description() string { return "files larger than max_bytes" }

func (r *filesizeRule) DefaultConfiguration() ruleconfig.DefaultConfiguration {
	return ruleconfig.Defaults(ruleconfig.SeverityWarning, ruleconfig.ScopeWorkTreeImports)
}

func (r *filesizeRule) Configure(custom ruleconfig.CustomConfigurationData) error {
	n, err := intOption(custom, r.ID(), "max_bytes", defaultMaxBytes)
	if err != nil {
		return err
	}
	r.maxBytes = n
	return nil
}

func (r *filesizeRule) Check(ctx context.Context, file project.File) ([]check.Finding, error) {
	if file.Size <= r.maxBytes {
		return nil, nil
	}
	return []check.Finding{{
		File:    file.Path,
		Message: fmt.Sprintf("file size %s exceeds threshold %s", humanSize(file.Size), humanSize(r.maxBytes)),
	}}, nil
}

func humanSize(b int64) string {
	switch {
	case b >= 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(b)/(1024*1024))
	case b >= 1024:
		return fmt.Sprintf("%.1f KB", float64(b)/1024)
	default:
		return fmt.Sprintf("%d B", b)
	}
}
