package ruleconfig

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies configuration failures.
type ErrorKind int

const (
	// ParserFailure: the hierarchical source failed for a project.
	ParserFailure ErrorKind = iota
	// ConfigurationInconsistency: custom data for a rule differs between
	// projects of one build.
	ConfigurationInconsistency
	// InternalConsistencyFailure: a rule's default tier is incomplete.
	InternalConsistencyFailure
)

// Sentinels matched by errors.Is against a ConfigurationError of the
// corresponding kind.
var (
	ErrParserFailure              = errors.New("configuration parser failure")
	ErrConfigurationInconsistency = errors.New("inconsistent custom configuration")
	ErrInternalConsistency        = errors.New("incomplete default configuration")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case ParserFailure:
		return ErrParserFailure
	case ConfigurationInconsistency:
		return ErrConfigurationInconsistency
	default:
		return ErrInternalConsistency
	}
}

// Scope is the machine-readable tag a build driver keys its diagnostic on.
func (k ErrorKind) Scope() string {
	switch k {
	case ParserFailure:
		return "EditorConfigParser"
	case ConfigurationInconsistency:
		return "CustomConfiguration"
	default:
		return "DefaultConfiguration"
	}
}

func (k ErrorKind) String() string {
	switch k {
	case ParserFailure:
		return "parser failure"
	case ConfigurationInconsistency:
		return "configuration inconsistency"
	default:
		return "internal consistency failure"
	}
}

// ConfigurationError is the only error type the resolver surfaces.
type ConfigurationError struct {
	Kind        ErrorKind
	ProjectPath string
	RuleID      string
	Err         error
}

func (e *ConfigurationError) Error() string {
	var sb strings.Builder
	sb.WriteString("buildcheck configuration [")
	sb.WriteString(e.Kind.Scope())
	sb.WriteString("]")
	if e.RuleID != "" {
		fmt.Fprintf(&sb, " rule %s", e.RuleID)
	}
	if e.ProjectPath != "" {
		fmt.Fprintf(&sb, " project %s", e.ProjectPath)
	}
	sb.WriteString(": ")
	if e.Err != nil {
		sb.WriteString(e.Err.Error())
	} else {
		sb.WriteString(e.Kind.String())
	}
	return sb.String()
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Is matches the sentinel of the error's kind.
func (e *ConfigurationError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// Scope returns the machine-readable scope tag.
func (e *ConfigurationError) Scope() string { return e.Kind.Scope() }

// Fatal reports whether the failure concerns the whole build rather than a
// single project.
func (e *ConfigurationError) Fatal() bool {
	return e.Kind != ParserFailure
}

// IsFatal reports whether err carries a build-wide ConfigurationError.
func IsFatal(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce) && ce.Fatal()
}
