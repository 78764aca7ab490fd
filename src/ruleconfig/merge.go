package ruleconfig

import "fmt"

// Merge resolves a rule's effective configuration. A user value wins;
// an Unset or Inherit user field falls through to the default tier, which
// must hold a value.
func Merge(ruleID string, def DefaultConfiguration, user UserConfiguration) (EffectiveConfiguration, error) {
	sev, ok := user.Severity.Or(def.Severity).Get()
	if !ok {
		return EffectiveConfiguration{}, &ConfigurationError{
			Kind:   InternalConsistencyFailure,
			RuleID: ruleID,
			Err:    fmt.Errorf("no severity after falling through every tier (default is %s)", def.Severity),
		}
	}
	scope, ok := user.Scope.Or(def.Scope).Get()
	if !ok {
		return EffectiveConfiguration{}, &ConfigurationError{
			Kind:   InternalConsistencyFailure,
			RuleID: ruleID,
			Err:    fmt.Errorf("no scope after falling through every tier (default is %s)", def.Scope),
		}
	}
	return EffectiveConfiguration{RuleID: ruleID, Severity: sev, Scope: scope}, nil
}
