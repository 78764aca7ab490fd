package ruleconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		raw     string
		want    Setting[Severity]
		wantErr bool
	}{
		{raw: "error", want: Value(SeverityError)},
		{raw: "Warning", want: Value(SeverityWarning)},
		{raw: " INFO ", want: Value(SeverityInfo)},
		{raw: "suggestion", want: Value(SeveritySuggestion)},
		{raw: "none", want: Value(SeverityNone)},
		{raw: "Default", want: Inherit[Severity]()},
		{raw: "fatal", want: Unset[Severity](), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseSeverity(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseScope(t *testing.T) {
	tests := []struct {
		raw     string
		want    Setting[EvaluationScope]
		wantErr bool
	}{
		{raw: "project_file", want: Value(ScopeProjectFile)},
		{raw: "Project", want: Value(ScopeProjectFile)},
		{raw: "work_tree_imports", want: Value(ScopeWorkTreeImports)},
		{raw: "ALL", want: Value(ScopeAll)},
		{raw: "default", want: Inherit[EvaluationScope]()},
		{raw: "solution", want: Unset[EvaluationScope](), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseScope(tt.raw)
			assert.Equal(t, tt.wantErr, err != nil)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetting_States(t *testing.T) {
	var zero Setting[Severity]
	assert.True(t, zero.IsUnset())
	_, ok := zero.Get()
	assert.False(t, ok)

	inh := Inherit[Severity]()
	assert.True(t, inh.IsInherit())
	_, ok = inh.Get()
	assert.False(t, ok, "inherit must never expose a concrete value")

	v := Value(SeverityError)
	got, ok := v.Get()
	assert.True(t, ok)
	assert.Equal(t, SeverityError, got)

	assert.Equal(t, v, inh.Or(v))
	assert.Equal(t, v, zero.Or(v))
	assert.Equal(t, v, v.Or(Value(SeverityInfo)))

	assert.Equal(t, "error", v.String())
	assert.Equal(t, "default", inh.String())
	assert.Equal(t, "unset", zero.String())
}

func TestSeverity_TextRoundTrip(t *testing.T) {
	var s Severity
	require.NoError(t, s.UnmarshalText([]byte("Error")))
	assert.Equal(t, SeverityError, s)

	text, err := SeverityWarning.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "warning", string(text))

	assert.Error(t, s.UnmarshalText([]byte("default")))
	assert.Error(t, s.UnmarshalText([]byte("bogus")))
}
