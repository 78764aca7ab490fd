package rules

import (
	"context"
	"os"
	"sync"

	"github.com/zricethezav/gitleaks/v8/detect"

	"github.com/sofmeright/buildcheck/src/check"
	"github.com/sofmeright/buildcheck/src/project"
	"github.com/sofmeright/buildcheck/src/ruleconfig"
)

func init() {
	check.Register("secrets", func() check.Rule { return &secretsRule{} })
}

// secretsRule scans file contents with the gitleaks default ruleset.
// Detectors accumulate state between scans, so each concurrent Check takes
// its own from a free list.
type secretsRule struct {
	mu   sync.Mutex
	free []*detect.Detector
}

func (r *secretsRule) ID() string          { return "secrets" }
func (r *secretsRule) Description() string { return "credentials and keys committed to the tree" }

func (r *secretsRule) DefaultConfiguration() ruleconfig.DefaultConfiguration {
	return ruleconfig.Defaults(ruleconfig.SeverityError, ruleconfig.ScopeAll)
}

func (r *secretsRule) acquire() (*detect.Detector, error) {
	r.mu.Lock()
	if n := len(r.free); n > 0 {
		d := r.free[n-1]
		r.free = r.free[:n-1]
		r.mu.Unlock()
		return d, nil
	}
	r.mu.Unlock()
	return detect.NewDetectorDefaultConfig()
}

func (r *secretsRule) release(d *detect.Detector) {
	r.mu.Lock()
	r.free = append(r.free, d)
	r.mu.Unlock()
}

func (r *secretsRule) Check(ctx context.Context, file project.File) ([]check.Finding, error) {
	data, err := os.ReadFile(file.AbsPath)
	if err != nil {
		return nil, err
	}

	d, err := r.acquire()
	if err != nil {
		return nil, err
	}
	hits := d.DetectBytes(data)
	r.release(d)

	if len(hits) == 0 {
		return nil, nil
	}
	findings := make([]check.Finding, 0, len(hits))
	for _, h := range hits {
		findings = append(findings, check.Finding{
			File:    file.Path,
			Line:    h.StartLine + 1,
			Column:  h.StartColumn,
			Message: h.Description + " (" + h.RuleID + ")",
		})
	}
	return findings, nil
}
