// Package editorconfig resolves the .editorconfig properties that apply to a
// file by walking the directory hierarchy upward.
package editorconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"github.com/rs/zerolog"
	"gopkg.in/ini.v1"

	"github.com/sofmeright/buildcheck/src/memo"
)

// DefaultFileName is the conventional configuration file name.
const DefaultFileName = ".editorconfig"

// Parser reads and caches .editorconfig files. A Parser is meant to live
// for one build; it never notices files that change after they were read.
type Parser struct {
	fileName string
	log      zerolog.Logger
	files    *memo.Cache[string, *file]
}

// Option configures a Parser.
type Option func(*Parser)

// WithFileName overrides the file name looked up in each directory.
func WithFileName(name string) Option {
	return func(p *Parser) {
		if name != "" {
			p.fileName = name
		}
	}
}

// WithLogger sets the parser's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(p *Parser) { p.log = log }
}

// NewParser returns a Parser with an empty file cache.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		fileName: DefaultFileName,
		log:      zerolog.Nop(),
		files:    memo.NewString[*file](),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse returns the properties applying to path. Files closer to path
// override those further up; the walk stops at a file declaring root = true.
// Keys are lower-cased.
func (p *Parser) Parse(path string) (map[string]string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	var chain []*file
	dir := filepath.Dir(abs)
	for {
		f, err := p.load(filepath.Join(dir, p.fileName))
		if err != nil {
			return nil, err
		}
		if f != nil {
			chain = append(chain, f)
			if f.root {
				break
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	props := make(map[string]string)
	for i := len(chain) - 1; i >= 0; i-- {
		chain[i].apply(abs, props)
	}
	return props, nil
}

func (p *Parser) load(path string) (*file, error) {
	f, loaded, err := p.files.GetOrCompute(path, func() (*file, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, nil
			}
			return nil, err
		}
		f, err := parseFile(filepath.Dir(path), data)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		return f, nil
	})
	if err != nil {
		return nil, err
	}
	if loaded && f != nil {
		p.log.Debug().Str("file", path).Int("sections", len(f.sections)).Bool("root", f.root).Msg("loaded editorconfig")
	}
	return f, nil
}

type property struct {
	key   string
	value string
}

type section struct {
	pattern  string
	matcher  glob.Glob
	basename bool
	props    []property
}

type file struct {
	dir      string
	root     bool
	sections []section
}

func parseFile(dir string, data []byte) (*file, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		InsensitiveKeys:     true,
		IgnoreInlineComment: true,
		IgnoreContinuation:  true,
	}, data)
	if err != nil {
		return nil, err
	}

	f := &file{dir: dir}
	for _, s := range cfg.Sections() {
		if s.Name() == ini.DefaultSection {
			if k, err := s.GetKey("root"); err == nil {
				f.root = strings.EqualFold(strings.TrimSpace(k.String()), "true")
			}
			continue
		}
		sec, err := compileSection(s.Name())
		if err != nil {
			return nil, err
		}
		for _, k := range s.Keys() {
			sec.props = append(sec.props, property{key: strings.ToLower(k.Name()), value: k.String()})
		}
		f.sections = append(f.sections, sec)
	}
	return f, nil
}

// compileSection turns a section header into a matcher. Headers without a
// slash match a file's base name at any depth; headers with a slash match
// the path relative to the .editorconfig directory.
func compileSection(pattern string) (section, error) {
	sec := section{pattern: pattern}
	p := pattern
	if strings.Contains(p, "/") {
		p = strings.TrimPrefix(p, "/")
	} else {
		sec.basename = true
	}
	g, err := glob.Compile(p, '/')
	if err != nil {
		return sec, fmt.Errorf("section [%s]: %w", pattern, err)
	}
	sec.matcher = g
	return sec, nil
}

func (f *file) apply(abs string, props map[string]string) {
	rel, err := filepath.Rel(f.dir, abs)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)
	base := filepath.Base(abs)
	for _, s := range f.sections {
		target := rel
		if s.basename {
			target = base
		}
		if !s.matcher.Match(target) {
			continue
		}
		for _, prop := range s.props {
			props[prop.key] = prop.value
		}
	}
}
