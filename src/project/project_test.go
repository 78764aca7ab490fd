package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sofmeright/buildcheck/src/ruleconfig"
)

func touch(t *testing.T, root string, rels ...string) {
	t.Helper()
	for _, rel := range rels {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}
}

func paths(files []File) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Path
	}
	return out
}

func mustMatcher(t *testing.T, patterns ...string) *Matcher {
	t.Helper()
	m, err := NewMatcher(patterns)
	require.NoError(t, err)
	return m
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	touch(t, root,
		"app.proj",
		"main.src",
		"lib/lib.proj",
		"lib/util.src",
		"lib/deep/more.src",
		"docs/readme.md",
		"vendor/dep/dep.proj",
		".git/config",
	)

	projects, err := Discover(root, mustMatcher(t, "*.proj"), mustMatcher(t, "vendor/**"))
	require.NoError(t, err)
	require.Len(t, projects, 2)

	app := projects[0]
	assert.Equal(t, "app.proj", app.Name)
	assert.Equal(t, ".", app.Dir)
	assert.ElementsMatch(t, []string{"app.proj", "main.src", "docs/readme.md"}, paths(app.Files))
	assert.ElementsMatch(t, []string{"lib/lib.proj", "lib/util.src", "lib/deep/more.src"}, paths(app.Nested))

	lib := projects[1]
	assert.Equal(t, "lib/lib.proj", lib.Name)
	assert.Equal(t, "lib", lib.Dir)
	assert.ElementsMatch(t, []string{"lib/lib.proj", "lib/util.src", "lib/deep/more.src"}, paths(lib.Files))
	assert.Empty(t, lib.Nested)
	assert.True(t, filepath.IsAbs(lib.Path))
}

func TestProject_FilesFor(t *testing.T) {
	p := Project{
		File:   File{Path: "a.proj"},
		Files:  []File{{Path: "a.proj"}, {Path: "x.src"}},
		Nested: []File{{Path: "sub/b.proj"}},
	}
	assert.Equal(t, []string{"a.proj"}, paths(p.FilesFor(ruleconfig.ScopeProjectFile)))
	assert.Equal(t, []string{"a.proj", "x.src"}, paths(p.FilesFor(ruleconfig.ScopeWorkTreeImports)))
	assert.Equal(t, []string{"a.proj", "x.src", "sub/b.proj"}, paths(p.FilesFor(ruleconfig.ScopeAll)))
}

func TestDiscover_OneProjectPerDirectory(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "b.proj", "a.proj")

	projects, err := Discover(root, mustMatcher(t, "*.proj"), nil)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "a.proj", projects[0].Name)
	assert.ElementsMatch(t, []string{"a.proj", "b.proj"}, paths(projects[0].Files))
}

func TestMatcher(t *testing.T) {
	m := mustMatcher(t, "*.{csproj,vbproj}", "build/**", "./go.mod")
	assert.True(t, m.Match("src/app.csproj"))
	assert.True(t, m.Match("lib.vbproj"))
	assert.True(t, m.Match("build/out/x.bin"))
	assert.True(t, m.Match("go.mod"))
	assert.False(t, m.Match("src/go.mod"))
	assert.False(t, m.Match("src/build/x"))

	var nilMatcher *Matcher
	assert.False(t, nilMatcher.Match("anything"))

	_, err := NewMatcher([]string{"[unclosed"})
	assert.Error(t, err)
}
