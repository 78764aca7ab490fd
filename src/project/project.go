// Package project discovers the projects of a build under a root directory
// and assigns every file to the nearest enclosing project.
package project

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/sofmeright/buildcheck/src/ruleconfig"
)

// File is a regular file inside the build root.
type File struct {
	Path    string // slash-separated, relative to the root
	AbsPath string
	Size    int64
}

// Project is a directory identified by a marker file such as go.mod or
// *.csproj.
type Project struct {
	Name string // root-relative path of the project file
	Path string // absolute path of the project file
	Dir  string // root-relative directory, "." for the root
	File File
	// Files belong to this project directly, the project file included.
	Files []File
	// Nested holds files of projects nested below this one.
	Nested []File
}

// FilesFor returns the files a rule with the given scope inspects.
func (p Project) FilesFor(scope ruleconfig.EvaluationScope) []File {
	switch scope {
	case ruleconfig.ScopeProjectFile:
		return []File{p.File}
	case ruleconfig.ScopeAll:
		out := make([]File, 0, len(p.Files)+len(p.Nested))
		out = append(out, p.Files...)
		return append(out, p.Nested...)
	default:
		return p.Files
	}
}

// Matcher matches root-relative paths against glob patterns. Patterns
// containing "/" match the whole path; others match the base name.
type Matcher struct {
	full []glob.Glob
	base []glob.Glob
}

// NewMatcher compiles patterns.
func NewMatcher(patterns []string) (*Matcher, error) {
	m := &Matcher{}
	for _, p := range patterns {
		p = filepath.ToSlash(p)
		g, err := glob.Compile(strings.TrimPrefix(p, "./"), '/')
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
		}
		if strings.Contains(p, "/") {
			m.full = append(m.full, g)
		} else {
			m.base = append(m.base, g)
		}
	}
	return m, nil
}

// Match reports whether rel matches any pattern.
func (m *Matcher) Match(rel string) bool {
	if m == nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, g := range m.full {
		if g.Match(rel) {
			return true
		}
	}
	base := path.Base(rel)
	for _, g := range m.base {
		if g.Match(base) {
			return true
		}
	}
	return false
}

// Discover walks root and returns the projects found, sorted by name.
// Hidden directories are skipped. A directory with several marker files
// yields one project, using the first marker in lexical order.
func Discover(root string, markers *Matcher, exclude *Matcher) ([]Project, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var files []File
	byDir := map[string]*Project{}

	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." && (strings.HasPrefix(d.Name(), ".") || exclude.Match(rel)) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || exclude.Match(rel) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		f := File{Path: rel, AbsPath: p, Size: info.Size()}
		files = append(files, f)

		if markers.Match(rel) {
			dir := path.Dir(rel)
			if existing, ok := byDir[dir]; !ok || rel < existing.Name {
				byDir[dir] = &Project{Name: rel, Path: p, Dir: dir, File: f}
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	for _, f := range files {
		owner := nearest(byDir, path.Dir(f.Path))
		if owner == nil {
			continue
		}
		owner.Files = append(owner.Files, f)
		for dir := parentDir(owner.Dir); dir != ""; dir = parentDir(dir) {
			if ancestor, ok := byDir[dir]; ok {
				ancestor.Nested = append(ancestor.Nested, f)
			}
		}
	}

	projects := make([]Project, 0, len(byDir))
	for _, p := range byDir {
		projects = append(projects, *p)
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].Name < projects[j].Name })
	return projects, nil
}

// nearest returns the project whose directory is dir or its closest ancestor.
func nearest(byDir map[string]*Project, dir string) *Project {
	for d := dir; d != ""; d = parentDir(d) {
		if p, ok := byDir[d]; ok {
			return p
		}
	}
	return nil
}

// parentDir returns the parent of a root-relative directory, "" above ".".
func parentDir(dir string) string {
	if dir == "." {
		return ""
	}
	return path.Dir(dir)
}
