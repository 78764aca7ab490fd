package editorconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestParse_NearerFileOverrides(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".editorconfig"), `root = true

[*]
indent_style = space

[*.proj]
build_check.R1.severity = warning
build_check.R1.threshold = 5
`)
	writeFile(t, filepath.Join(root, "a", ".editorconfig"), `
[*.proj]
build_check.R1.severity = error
`)
	proj := filepath.Join(root, "a", "a.proj")
	writeFile(t, proj, "")

	props, err := NewParser().Parse(proj)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"indent_style":             "space",
		"build_check.r1.severity":  "error",
		"build_check.r1.threshold": "5",
	}, props)
}

func TestParse_RootStopsWalk(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".editorconfig"), "root = true\n[*]\nbuild_check.r.opt = outer\nouter_only = 1\n")
	writeFile(t, filepath.Join(root, "inner", ".editorconfig"), "root = TRUE\n[*]\nbuild_check.r.opt = inner\n")

	props, err := NewParser().Parse(filepath.Join(root, "inner", "x.proj"))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"build_check.r.opt": "inner"}, props)
}

func TestParse_SectionMatching(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".editorconfig"), `root = true

[*.{csproj,vbproj}]
lang = dotnet

[sub/*.proj]
anchored = yes

[**/deep/*.proj]
deep = yes

[*.txt]
never = true
`)
	p := NewParser()

	tests := []struct {
		path string
		want map[string]string
	}{
		{path: "x/app.csproj", want: map[string]string{"lang": "dotnet"}},
		{path: "app.vbproj", want: map[string]string{"lang": "dotnet"}},
		{path: "sub/a.proj", want: map[string]string{"anchored": "yes"}},
		{path: "other/sub/a.proj", want: map[string]string{}},
		{path: "a/b/deep/c.proj", want: map[string]string{"deep": "yes"}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			props, err := p.Parse(filepath.Join(root, filepath.FromSlash(tt.path)))
			require.NoError(t, err)
			assert.Equal(t, tt.want, props)
		})
	}
}

func TestParse_LaterSectionWins(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".editorconfig"), "root = true\n[*]\nk = first\n[*.proj]\nk = second\n")

	props, err := NewParser().Parse(filepath.Join(root, "a.proj"))
	require.NoError(t, err)
	assert.Equal(t, "second", props["k"])
}

func TestParse_KeysLowerCasedValuesUntouched(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".editorconfig"), "root = true\n[*]\nBuild_Check.MyRule.Foo = MixedCase\n")

	props, err := NewParser().Parse(filepath.Join(root, "a.proj"))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"build_check.myrule.foo": "MixedCase"}, props)
}

func TestParse_CachesFiles(t *testing.T) {
	root := t.TempDir()
	cfgPath := filepath.Join(root, ".editorconfig")
	writeFile(t, cfgPath, "root = true\n[*]\nk = v\n")
	p := NewParser()

	_, err := p.Parse(filepath.Join(root, "a.proj"))
	require.NoError(t, err)

	// Changes after the first read are not observed by the same parser.
	writeFile(t, cfgPath, "root = true\n[*]\nk = changed\n")
	props, err := p.Parse(filepath.Join(root, "b.proj"))
	require.NoError(t, err)
	assert.Equal(t, "v", props["k"])
	assert.Equal(t, 1, p.files.Len())

	fresh, err := NewParser().Parse(filepath.Join(root, "b.proj"))
	require.NoError(t, err)
	assert.Equal(t, "changed", fresh["k"])
}

func TestParse_CustomFileName(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".buildcheckconfig"), "root = true\n[*]\nk = v\n")

	props, err := NewParser(WithFileName(".buildcheckconfig")).Parse(filepath.Join(root, "a.proj"))
	require.NoError(t, err)
	assert.Equal(t, "v", props["k"])
}

func TestParse_MalformedFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".editorconfig"), "root = true\n[*]\nthis line has no delimiter\n")

	_, err := NewParser().Parse(filepath.Join(root, "a.proj"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".editorconfig")
}
