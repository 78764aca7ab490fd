// Package rules contains the built-in build checks. Import it for its side
// effect of registering every rule with the check registry.
package rules
