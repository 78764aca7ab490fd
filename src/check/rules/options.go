package rules

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sofmeright/buildcheck/src/ruleconfig"
)

// intOption reads a positive integer custom key, falling back to def when
// the key is absent.
func intOption(custom ruleconfig.CustomConfigurationData, ruleID, key string, def int64) (int64, error) {
	raw, ok := custom.Get(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %s must be an integer, got %q", ruleID, key, raw)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s: %s must be positive, got %d", ruleID, key, n)
	}
	return n, nil
}

// listOption reads a comma separated custom key.
func listOption(custom ruleconfig.CustomConfigurationData, key string, def []string) []string {
	raw, ok := custom.Get(key)
	if !ok {
		return append([]string(nil), def...)
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
