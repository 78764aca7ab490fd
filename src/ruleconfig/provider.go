package ruleconfig

import (
	"github.com/rs/zerolog"
)

// Rule is the part of a rule the resolver needs.
type Rule interface {
	ID() string
	DefaultConfiguration() DefaultConfiguration
}

// Option configures a Provider.
type Option func(*Provider)

// WithLogger sets the logger used for cache and registry events.
func WithLogger(log zerolog.Logger) Option {
	return func(p *Provider) { p.log = log }
}

// WithPrefix overrides the namespace prefix. Only useful in tests; on-disk
// files always use NamespacePrefix.
func WithPrefix(prefix string) Option {
	return func(p *Provider) { p.prefix = prefix }
}

// Provider answers configuration queries for one build. It is safe for
// concurrent use.
type Provider struct {
	log    zerolog.Logger
	prefix string

	projects *projectCache
	users    *userResolver
	customs  *customRegistry
}

// New returns a Provider reading project configuration from source.
func New(source Source, opts ...Option) *Provider {
	p := &Provider{
		log:    zerolog.Nop(),
		prefix: NamespacePrefix,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.projects = newProjectCache(source, p.prefix, p.log)
	p.users = newUserResolver(p.projects, p.log)
	p.customs = newCustomRegistry(p.log)
	return p
}

// NamespacedConfig returns every build_check key of a project with the
// namespace prefix stripped. The returned map must not be modified.
func (p *Provider) NamespacedConfig(projectPath string) (map[string]string, error) {
	return p.projects.get(projectPath)
}

// UserConfiguration returns what the project configures for ruleID.
func (p *Provider) UserConfiguration(projectPath, ruleID string) (UserConfiguration, error) {
	return p.users.get(projectPath, ruleID)
}

// MergedConfiguration resolves the effective configuration of rule in a
// project.
func (p *Provider) MergedConfiguration(projectPath string, rule Rule) (EffectiveConfiguration, error) {
	user, err := p.users.get(projectPath, rule.ID())
	if err != nil {
		return EffectiveConfiguration{}, err
	}
	eff, err := Merge(rule.ID(), rule.DefaultConfiguration(), user)
	if err != nil {
		if ce, ok := err.(*ConfigurationError); ok {
			ce.ProjectPath = projectPath
		}
		return EffectiveConfiguration{}, err
	}
	return eff, nil
}

// MergedConfigurations resolves rules in order; the result is one-to-one
// with rules.
func (p *Provider) MergedConfigurations(projectPath string, rules []Rule) ([]EffectiveConfiguration, error) {
	out := make([]EffectiveConfiguration, len(rules))
	for i, rule := range rules {
		eff, err := p.MergedConfiguration(projectPath, rule)
		if err != nil {
			return nil, err
		}
		out[i] = eff
	}
	return out, nil
}

// CustomConfiguration returns the non-infrastructure keys a project sets for
// ruleID, or the null variant when there are none. It does not register the
// result; see CheckCustomConfiguration.
func (p *Provider) CustomConfiguration(projectPath, ruleID string) (CustomConfigurationData, error) {
	user, err := p.users.get(projectPath, ruleID)
	if err != nil {
		return CustomConfigurationData{}, err
	}
	data := customData(user)
	data.RuleID = ruleID
	return data, nil
}

// CustomConfigurations resolves and registers custom data for each rule id,
// in order. A mismatch with the build's reference fails the whole call.
func (p *Provider) CustomConfigurations(projectPath string, ruleIDs []string) ([]CustomConfigurationData, error) {
	out := make([]CustomConfigurationData, len(ruleIDs))
	for i, id := range ruleIDs {
		data, err := p.CheckCustomConfiguration(projectPath, id)
		if err != nil {
			return nil, err
		}
		out[i] = data
	}
	return out, nil
}

// CheckCustomConfiguration resolves custom data for ruleID and checks it
// against the build-wide reference, registering it if it is the first.
func (p *Provider) CheckCustomConfiguration(projectPath, ruleID string) (CustomConfigurationData, error) {
	data, err := p.CustomConfiguration(projectPath, ruleID)
	if err != nil {
		return CustomConfigurationData{}, err
	}
	if err := p.customs.check(projectPath, data); err != nil {
		return CustomConfigurationData{}, err
	}
	return data, nil
}

// RegisterAndCheck records data as the reference for its rule or verifies it
// matches the existing reference.
func (p *Provider) RegisterAndCheck(ruleID string, data CustomConfigurationData) error {
	data.RuleID = ruleID
	return p.customs.check("", data)
}

// ReferenceCustomConfiguration returns the custom data registered for
// ruleID in this build, if any.
func (p *Provider) ReferenceCustomConfiguration(ruleID string) (CustomConfigurationData, bool) {
	return p.customs.lookup(ruleID)
}
