package ruleconfig

import (
	"github.com/rs/zerolog"

	"github.com/sofmeright/buildcheck/src/memo"
)

// projectCache memoizes the namespaced subset of each project's
// configuration so the hierarchy is parsed once per project per build.
type projectCache struct {
	source Source
	prefix string
	log    zerolog.Logger
	cache  *memo.Cache[string, map[string]string]
}

func newProjectCache(source Source, prefix string, log zerolog.Logger) *projectCache {
	return &projectCache{
		source: source,
		prefix: prefix,
		log:    log,
		cache:  memo.NewString[map[string]string](),
	}
}

// get returns the namespace-filtered configuration for projectPath with the
// namespace prefix stripped.
func (c *projectCache) get(projectPath string) (map[string]string, error) {
	cfg, parsed, err := c.cache.GetOrCompute(projectPath, func() (map[string]string, error) {
		all, err := c.source.Parse(projectPath)
		if err != nil {
			return nil, &ConfigurationError{Kind: ParserFailure, ProjectPath: projectPath, Err: err}
		}
		return FilterNamespace(c.prefix, all, true), nil
	})
	if err != nil {
		c.log.Warn().Err(err).Str("project", projectPath).Msg("parsing configuration failed")
		return nil, err
	}
	if parsed {
		c.log.Debug().Str("project", projectPath).Int("keys", len(cfg)).Msg("parsed project configuration")
	}
	return cfg, nil
}
