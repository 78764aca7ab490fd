package config

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/hashicorp/go-multierror"

	"github.com/sofmeright/buildcheck/src/ruleconfig"
	"github.com/sofmeright/buildcheck/src/version"
)

// Validate checks a loaded Config. Warnings are soft issues; the error
// collects every hard problem.
func Validate(cfg *Config) (warnings []string, err error) {
	var errs *multierror.Error

	if cfg.Version != 1 {
		errs = multierror.Append(errs, fmt.Errorf("version: must be 1, got %d", cfg.Version))
	}

	if cfg.Requires != "" {
		if w, rerr := checkRequires(cfg.Requires, version.Version); rerr != nil {
			errs = multierror.Append(errs, rerr)
		} else if w != "" {
			warnings = append(warnings, w)
		}
	}

	if len(cfg.Projects.Markers) == 0 {
		errs = multierror.Append(errs, fmt.Errorf("projects.markers: at least one marker is required"))
	}
	if cfg.EditorConfig.FileName == "" || strings.ContainsAny(cfg.EditorConfig.FileName, `/\`) {
		errs = multierror.Append(errs, fmt.Errorf("editorconfig.file_name: must be a plain file name, got %q", cfg.EditorConfig.FileName))
	}

	switch cfg.Check.Level {
	case LevelChanged, LevelFull:
	default:
		errs = multierror.Append(errs, fmt.Errorf("check.level: must be %q or %q, got %q", LevelChanged, LevelFull, cfg.Check.Level))
	}
	if cfg.Check.Parallelism < 0 {
		errs = multierror.Append(errs, fmt.Errorf("check.parallelism: must be non-negative, got %d", cfg.Check.Parallelism))
	}
	if sev, perr := ruleconfig.ParseSeverity(cfg.Check.FailOn); perr != nil {
		errs = multierror.Append(errs, fmt.Errorf("check.fail_on: %w", perr))
	} else if _, ok := sev.Get(); !ok {
		errs = multierror.Append(errs, fmt.Errorf("check.fail_on: must be a concrete severity, got %q", cfg.Check.FailOn))
	}

	skip := make(map[string]bool, len(cfg.Check.Skip))
	for _, id := range cfg.Check.Skip {
		skip[id] = true
	}
	for _, id := range cfg.Check.Rules {
		if skip[id] {
			warnings = append(warnings, fmt.Sprintf("check: rule %q is both selected and skipped", id))
		}
	}

	return warnings, errs.ErrorOrNil()
}

// FailOnSeverity returns the parsed fail_on threshold. Call after Validate.
func (c CheckConfig) FailOnSeverity() ruleconfig.Severity {
	s, err := ruleconfig.ParseSeverity(c.FailOn)
	if err != nil {
		return ruleconfig.SeverityError
	}
	if v, ok := s.Get(); ok {
		return v
	}
	return ruleconfig.SeverityError
}

// checkRequires tests the running version against a semver constraint.
// Development builds only warn.
func checkRequires(constraint, running string) (string, error) {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return "", fmt.Errorf("requires: invalid constraint %q: %w", constraint, err)
	}
	v, err := semver.NewVersion(running)
	if err != nil {
		return fmt.Sprintf("requires: cannot check %q against development build %q", constraint, running), nil
	}
	if ok, reasons := c.Validate(v); !ok {
		msgs := make([]string, len(reasons))
		for i, r := range reasons {
			msgs[i] = r.Error()
		}
		return "", fmt.Errorf("requires: buildcheck %s does not satisfy %q: %s", running, constraint, strings.Join(msgs, "; "))
	}
	return "", nil
}
