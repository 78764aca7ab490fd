package rules

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sofmeright/buildcheck/src/check"
	"github.com/sofmeright/buildcheck/src/ruleconfig"
)

func runUnicode(t *testing.T, data ruleconfig.CustomConfigurationData, logicalPath, content string) []check.Finding {
	t.Helper()
	r := newUnicodeRule()
	require.NoError(t, r.Configure(data))
	f := writeFile(t, "f.go", content)
	f.Path = logicalPath
	fs, err := r.Check(context.Background(), f)
	require.NoError(t, err)
	return fs
}

func hasMessage(fs []check.Finding, substr string) bool {
	for _, f := range fs {
		if strings.Contains(f.Message, substr) {
			return true
		}
	}
	return false
}

func TestUnicode_AllowlistScopesOnlyASCIIControl(t *testing.T) {
	ansi := "package p\n\nvar _ = \"\x1b[31mred\x1b[0m\"\n"
	opts := custom("unicode",
		"allow_control_ascii_in_paths", "src/output/banner_art.go",
	)

	assert.False(t, hasMessage(runUnicode(t, opts, "src/output/banner_art.go", ansi), "ASCII control"))
	assert.True(t, hasMessage(runUnicode(t, opts, "src/output/other.go", ansi), "ASCII control"))

	bidi := "package p\n\n// \u202e bidi\n"
	assert.True(t, hasMessage(runUnicode(t, opts, "src/output/banner_art.go", bidi), "right-to-left override"))
}

func TestUnicode_AllowSpecificCodes(t *testing.T) {
	ansi := "x\x1b[0m\x07\n"
	fs := runUnicode(t, custom("unicode", "allow_control_ascii", "27"), "a.txt", ansi)
	require.Len(t, fs, 1)
	assert.Contains(t, fs[0].Message, "U+0007")
	assert.Equal(t, 1, fs[0].Line)
	assert.Equal(t, 6, fs[0].Column)
}

func TestUnicode_DetectorsCanBeDisabled(t *testing.T) {
	content := "a\u200bb \x1b \u202e\n"
	fs := runUnicode(t, custom("unicode",
		"detect_zero_width", "false",
		"detect_control_ascii", "false",
	), "a.txt", content)
	require.Len(t, fs, 1)
	assert.Contains(t, fs[0].Message, "bidi override")
}

func TestUnicode_InvalidUTF8(t *testing.T) {
	fs := runUnicode(t, ruleconfig.NullCustomConfiguration("unicode"), "a.txt", "ok\n\xff\xfe\n")
	require.Len(t, fs, 1)
	assert.Equal(t, 2, fs[0].Line)
}

func TestUnicode_ConfigValidation(t *testing.T) {
	for _, bad := range []ruleconfig.CustomConfigurationData{
		custom("unicode", "allow_control_ascii", "9"),
		custom("unicode", "allow_control_ascii", "999"),
		custom("unicode", "allow_control_ascii", "-1"),
		custom("unicode", "detect_bidi", "maybe"),
		custom("unicode", "allow_control_ascii_in_paths", "[unclosed"),
	} {
		assert.Error(t, newUnicodeRule().Configure(bad), bad.String())
	}
}
