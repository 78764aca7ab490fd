package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		abs := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
		require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
	}
	return root
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CI", "")
	t.Setenv("NO_COLOR", "1")
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestConfigCommand_YAML(t *testing.T) {
	root := writeTree(t, map[string]string{
		".editorconfig": "root = true\n\n[*.csproj]\nbuild_check.filesize.severity = error\nbuild_check.filesize.max_bytes = 10\n",
		"app/app.csproj": "<Project/>\n",
	})

	out, err := execute(t, "config", "-C", root, "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "project: app/app.csproj")
	assert.Contains(t, out, "severity: error")
	assert.Contains(t, out, "max_bytes: \"10\"")
}

func TestCheckCommand_FailsOnErrorFindings(t *testing.T) {
	root := writeTree(t, map[string]string{
		".editorconfig":  "root = true\n\n[*.csproj]\nbuild_check.filesize.severity = error\nbuild_check.filesize.max_bytes = 4\n",
		"app/app.csproj": "<Project/>\n",
	})

	out, err := execute(t, "check", root, "--rule", "filesize", "--no-cache", "--junit", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "check failed")
	assert.Contains(t, out, "filesize")
	assert.Contains(t, out, "exceeds threshold")
}

func TestCheckCommand_InconsistentCustomConfigurationAborts(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a/.editorconfig": "root = true\n\n[*.csproj]\nbuild_check.linecount.max_lines = 10\n",
		"a/a.csproj":      "<Project/>\n",
		"b/.editorconfig": "root = true\n\n[*.csproj]\nbuild_check.linecount.max_lines = 20\n",
		"b/b.csproj":      "<Project/>\n",
	})

	_, err := execute(t, "check", root, "--rule", "linecount", "--no-cache", "--junit", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "check aborted")
	assert.Contains(t, err.Error(), "CustomConfiguration")
}
