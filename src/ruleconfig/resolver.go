package ruleconfig

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/sofmeright/buildcheck/src/memo"
)

type userKey struct {
	ruleID      string
	projectPath string
}

// userResolver memoizes the per-(rule, project) user configuration.
type userResolver struct {
	projects *projectCache
	log      zerolog.Logger
	cache    *memo.Cache[userKey, UserConfiguration]
}

func newUserResolver(projects *projectCache, log zerolog.Logger) *userResolver {
	return &userResolver{
		projects: projects,
		log:      log,
		cache: memo.New[userKey, UserConfiguration](func(k userKey) string {
			return k.ruleID + "\x00" + k.projectPath
		}),
	}
}

func (r *userResolver) get(projectPath, ruleID string) (UserConfiguration, error) {
	key := userKey{ruleID: strings.ToLower(ruleID), projectPath: projectPath}
	cfg, _, err := r.cache.GetOrCompute(key, func() (UserConfiguration, error) {
		namespaced, err := r.projects.get(projectPath)
		if err != nil {
			return UserConfiguration{}, err
		}
		raw := RawConfig(FilterNamespace(rulePrefix(ruleID), namespaced, true))
		return r.parse(projectPath, ruleID, raw), nil
	})
	return cfg, err
}

// parse extracts the typed fields from raw. Unrecognised enum values are
// logged and left Unset.
func (r *userResolver) parse(projectPath, ruleID string, raw RawConfig) UserConfiguration {
	cfg := UserConfiguration{RuleID: ruleID, Raw: raw}
	if len(raw) == 0 {
		return cfg
	}
	if v, ok := raw[KeySeverity]; ok {
		sev, err := ParseSeverity(v)
		if err != nil {
			r.log.Warn().Err(err).Str("rule", ruleID).Str("project", projectPath).Msg("ignoring severity")
		}
		cfg.Severity = sev
	}
	if v, ok := raw[KeyScope]; ok {
		scope, err := ParseScope(v)
		if err != nil {
			r.log.Warn().Err(err).Str("rule", ruleID).Str("project", projectPath).Msg("ignoring scope")
		}
		cfg.Scope = scope
	}
	return cfg
}

// customData strips infrastructure keys from a user configuration.
func customData(cfg UserConfiguration) CustomConfigurationData {
	values := make(map[string]string, len(cfg.Raw))
	for k, v := range cfg.Raw {
		if IsInfrastructureKey(k) {
			continue
		}
		values[k] = v
	}
	if len(values) == 0 {
		return NullCustomConfiguration(cfg.RuleID)
	}
	return CustomConfigurationData{RuleID: cfg.RuleID, Values: values}
}
