package ruleconfig

import (
	"fmt"
	"strings"
)

// inheritLiteral is the on-disk spelling of "defer to the next tier".
const inheritLiteral = "default"

// Severity classifies a rule's findings. There is deliberately no "default"
// member: deferral is expressed as Inherit on a Setting.
type Severity int

const (
	SeverityNone Severity = iota
	SeveritySuggestion
	SeverityInfo
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityNone:
		return "none"
	case SeveritySuggestion:
		return "suggestion"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// MarshalText renders the severity with its configuration spelling.
func (s Severity) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText accepts concrete severities only; "default" is rejected.
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	v, ok := parsed.Get()
	if !ok {
		return fmt.Errorf("severity %q is not concrete", text)
	}
	*s = v
	return nil
}

// ParseSeverity parses a severity value case-insensitively.
// "default" yields Inherit; unknown input is reported as an error.
func ParseSeverity(raw string) (Setting[Severity], error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case inheritLiteral:
		return Inherit[Severity](), nil
	case "none":
		return Value(SeverityNone), nil
	case "suggestion":
		return Value(SeveritySuggestion), nil
	case "info":
		return Value(SeverityInfo), nil
	case "warning":
		return Value(SeverityWarning), nil
	case "error":
		return Value(SeverityError), nil
	}
	return Unset[Severity](), fmt.Errorf("unknown severity %q (valid: default, none, suggestion, info, warning, error)", raw)
}

// EvaluationScope is how much of the build graph a rule looks at.
type EvaluationScope int

const (
	ScopeProjectFile EvaluationScope = iota
	ScopeWorkTreeImports
	ScopeAll
)

func (s EvaluationScope) String() string {
	switch s {
	case ScopeProjectFile:
		return "project_file"
	case ScopeWorkTreeImports:
		return "work_tree_imports"
	case ScopeAll:
		return "all"
	default:
		return fmt.Sprintf("scope(%d)", int(s))
	}
}

// MarshalText renders the scope by its configuration name.
func (s EvaluationScope) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText accepts a concrete scope name and rejects "default".
func (s *EvaluationScope) UnmarshalText(text []byte) error {
	parsed, err := ParseScope(string(text))
	if err != nil {
		return err
	}
	v, ok := parsed.Get()
	if !ok {
		return fmt.Errorf("scope %q is not concrete", text)
	}
	*s = v
	return nil
}

// ParseScope parses an evaluation scope value case-insensitively.
func ParseScope(raw string) (Setting[EvaluationScope], error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case inheritLiteral:
		return Inherit[EvaluationScope](), nil
	case "project_file", "project":
		return Value(ScopeProjectFile), nil
	case "work_tree_imports":
		return Value(ScopeWorkTreeImports), nil
	case "all":
		return Value(ScopeAll), nil
	}
	return Unset[EvaluationScope](), fmt.Errorf("unknown scope %q (valid: default, project_file, work_tree_imports, all)", raw)
}
