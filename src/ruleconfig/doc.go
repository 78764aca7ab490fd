// Package ruleconfig resolves the effective configuration of build check
// rules from hierarchical .editorconfig data.
//
// Three tiers take part, highest first: keys a project sets under
// build_check.<rule>., the rule author's defaults, and nothing else. A user
// value of "default" defers to the next tier explicitly.
//
// Keys outside the infrastructure set (severity, scope) are custom data,
// opaque to this package. Custom data for a rule must be identical for every
// project of a build; the first project to resolve it sets the reference
// and any project that differs fails with ConfigurationInconsistency.
//
// A Provider holds all per-build state. Construct a new one per build.
package ruleconfig
