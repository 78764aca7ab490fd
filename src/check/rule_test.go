package check

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sofmeright/buildcheck/src/project"
	"github.com/sofmeright/buildcheck/src/ruleconfig"
)

type stubRule struct {
	id  string
	def ruleconfig.DefaultConfiguration
}

func (r *stubRule) ID() string                                            { return r.id }
func (r *stubRule) Description() string                                   { return "stub" }
func (r *stubRule) DefaultConfiguration() ruleconfig.DefaultConfiguration { return r.def }
func (r *stubRule) Check(context.Context, project.File) ([]Finding, error) {
	return nil, nil
}

func TestRegister_DuplicatePanics(t *testing.T) {
	ctor := func() Rule {
		return &stubRule{id: "test.dup", def: ruleconfig.Defaults(ruleconfig.SeverityInfo, ruleconfig.ScopeAll)}
	}
	Register("test.dup", ctor)
	assert.Panics(t, func() { Register("test.dup", ctor) })

	r, err := Get("test.dup")
	require.NoError(t, err)
	assert.Equal(t, "test.dup", r.ID())
	assert.Contains(t, All(), "test.dup")
}

func TestRegister_IncompleteDefaultPanics(t *testing.T) {
	assert.Panics(t, func() {
		Register("test.incomplete", func() Rule {
			return &stubRule{id: "test.incomplete", def: ruleconfig.DefaultConfiguration{
				Severity: ruleconfig.Value(ruleconfig.SeverityInfo),
			}}
		})
	})
	_, err := Get("test.incomplete")
	assert.Error(t, err)
}

func TestGet_Unknown(t *testing.T) {
	_, err := Get("no-such-rule")
	assert.ErrorContains(t, err, "unknown rule")
}
