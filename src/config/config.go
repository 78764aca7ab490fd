package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// DefaultFiles are tried in order when no config path is given.
var DefaultFiles = []string{".buildcheck.yml", ".buildcheck.yaml", ".buildcheck.toml"}

// Environment overrides, applied after the file is read.
const (
	EnvLevel        = "BUILDCHECK_LEVEL"
	EnvTargetBranch = "BUILDCHECK_TARGET_BRANCH"
)

// Config is the top-level buildcheck configuration.
type Config struct {
	Version      int                `yaml:"version" toml:"version"`
	Requires     string             `yaml:"requires,omitempty" toml:"requires,omitempty"`
	Projects     ProjectsConfig     `yaml:"projects" toml:"projects"`
	EditorConfig EditorConfigConfig `yaml:"editorconfig" toml:"editorconfig"`
	Check        CheckConfig        `yaml:"check" toml:"check"`

	// Path is the file the configuration was read from, empty for defaults.
	Path string `yaml:"-" toml:"-"`
}

// ProjectsConfig controls project discovery.
type ProjectsConfig struct {
	Markers []string `yaml:"markers" toml:"markers"`
	Exclude []string `yaml:"exclude" toml:"exclude"`
}

// EditorConfigConfig controls the hierarchical rule configuration source.
type EditorConfigConfig struct {
	FileName string `yaml:"file_name" toml:"file_name"`
}

// Load reads configuration from path, or from the first of DefaultFiles
// found in root when path is empty. Missing files yield defaults.
func Load(root, path string) (*Config, error) {
	if path == "" {
		for _, name := range DefaultFiles {
			candidate := filepath.Join(root, name)
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	cfg := Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := decode(path, data, cfg); err != nil {
				return nil, fmt.Errorf("parsing %s: %w", path, err)
			}
			cfg.Path = path
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return toml.Unmarshal(data, cfg)
	}
	return yaml.Unmarshal(data, cfg)
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvLevel); v != "" {
		cfg.Check.Level = Level(strings.ToLower(v))
	}
	if v := os.Getenv(EnvTargetBranch); v != "" {
		cfg.Check.TargetBranch = v
	}
}

// Defaults returns the configuration used when no file exists.
func Defaults() *Config {
	return &Config{
		Version: 1,
		Projects: ProjectsConfig{
			Markers: []string{"*.csproj", "*.fsproj", "*.vbproj", "*.proj"},
			Exclude: []string{},
		},
		EditorConfig: EditorConfigConfig{FileName: ".editorconfig"},
		Check:        DefaultCheckConfig(),
	}
}
