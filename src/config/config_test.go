package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sofmeright/buildcheck/src/ruleconfig"
	"github.com/sofmeright/buildcheck/src/version"
)

func TestLoad_DefaultsWhenMissing(t *testing.T) {
	cfg, err := Load(t.TempDir(), "")
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, LevelFull, cfg.Check.Level)
	assert.Equal(t, ".editorconfig", cfg.EditorConfig.FileName)
	assert.Empty(t, cfg.Path)

	_, err = Validate(cfg)
	assert.NoError(t, err)
}

func TestLoad_YAML(t *testing.T) {
	root := t.TempDir()
	content := `version: 1
projects:
  markers: ["*.csproj"]
  exclude: ["vendor/**"]
check:
  level: changed
  rules: [filesize, tabs]
  fail_on: warning
`
	require.NoError(t, os.WriteFile(filepath.Join(root, ".buildcheck.yml"), []byte(content), 0o644))

	cfg, err := Load(root, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, ".buildcheck.yml"), cfg.Path)
	assert.Equal(t, []string{"*.csproj"}, cfg.Projects.Markers)
	assert.Equal(t, []string{"vendor/**"}, cfg.Projects.Exclude)
	assert.Equal(t, LevelChanged, cfg.Check.Level)
	assert.Equal(t, []string{"filesize", "tabs"}, cfg.Check.Rules)
	assert.True(t, cfg.Check.Cache, "unset keys keep their defaults")
	assert.Equal(t, ruleconfig.SeverityWarning, cfg.Check.FailOnSeverity())
}

func TestLoad_TOML(t *testing.T) {
	root := t.TempDir()
	content := `version = 1

[editorconfig]
file_name = ".buildconfig"

[check]
level = "full"
cache = false
skip = ["secrets"]
`
	path := filepath.Join(root, ".buildcheck.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(root, "")
	require.NoError(t, err)
	assert.Equal(t, ".buildconfig", cfg.EditorConfig.FileName)
	assert.False(t, cfg.Check.Cache)
	assert.Equal(t, []string{"secrets"}, cfg.Check.Skip)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvLevel, "CHANGED")
	t.Setenv(EnvTargetBranch, "develop")

	cfg, err := Load(t.TempDir(), "")
	require.NoError(t, err)
	assert.Equal(t, LevelChanged, cfg.Check.Level)
	assert.Equal(t, "develop", cfg.Check.TargetBranch)
}

func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("check: [unclosed"), 0o644))
	_, err := Load("", path)
	assert.ErrorContains(t, err, "parsing")
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := Defaults()
	cfg.Version = 2
	cfg.Projects.Markers = nil
	cfg.Check.Level = "sometimes"
	cfg.Check.Parallelism = -1
	cfg.Check.FailOn = "default"

	_, err := Validate(cfg)
	require.Error(t, err)
	for _, want := range []string{"version", "projects.markers", "check.level", "check.parallelism", "check.fail_on"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestValidate_Warnings(t *testing.T) {
	cfg := Defaults()
	cfg.Check.Rules = []string{"tabs"}
	cfg.Check.Skip = []string{"tabs"}
	warnings, err := Validate(cfg)
	require.NoError(t, err)
	assert.Len(t, warnings, 1)
}

func TestCheckRequires(t *testing.T) {
	w, err := checkRequires(">= 1.2.0", "1.4.0")
	assert.NoError(t, err)
	assert.Empty(t, w)

	_, err = checkRequires(">= 2.0.0", "1.4.0")
	assert.ErrorContains(t, err, "does not satisfy")

	_, err = checkRequires("not a constraint !!", "1.4.0")
	assert.ErrorContains(t, err, "invalid constraint")

	w, err = checkRequires(">= 1.0.0", version.Version)
	assert.NoError(t, err)
	assert.Contains(t, w, "development build")
}
