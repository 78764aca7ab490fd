package ruleconfig

import (
	"maps"
	"slices"
	"strings"
)

// NamespacePrefix marks keys that belong to build checks in the flat
// .editorconfig key space.
const NamespacePrefix = "build_check."

// Infrastructure keys are owned by the typed configuration and never
// surface as custom data.
const (
	KeySeverity = "severity"
	KeyScope    = "scope"
)

var infrastructureKeys = map[string]bool{
	KeySeverity: true,
	KeyScope:    true,
}

// IsInfrastructureKey reports whether key (already stripped of the rule
// prefix) is reserved.
func IsInfrastructureKey(key string) bool {
	return infrastructureKeys[strings.ToLower(key)]
}

// FilterNamespace returns the entries of m whose key starts with prefix,
// compared case-insensitively. Returned keys are lower-cased; with strip set
// the prefix is removed from them. Values pass through untouched.
//
// Keys that differ only in case collapse into one entry. The byte-wise
// greatest spelling wins, so an all-lower-case key beats its variants.
func FilterNamespace(prefix string, m map[string]string, strip bool) map[string]string {
	prefix = strings.ToLower(prefix)
	out := make(map[string]string)
	for _, k := range slices.Sorted(maps.Keys(m)) {
		v := m[k]
		lk := strings.ToLower(k)
		if !strings.HasPrefix(lk, prefix) {
			continue
		}
		if strip {
			lk = lk[len(prefix):]
		}
		out[lk] = v
	}
	return out
}

// rulePrefix is the per-rule namespace below NamespacePrefix.
func rulePrefix(ruleID string) string {
	return strings.ToLower(ruleID) + "."
}
