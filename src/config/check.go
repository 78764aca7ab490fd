package config

// Level controls how much of the tree gets checked.
type Level string

const (
	LevelChanged Level = "changed"
	LevelFull    Level = "full"
)

// CheckConfig holds engine settings.
type CheckConfig struct {
	Level        Level    `yaml:"level" toml:"level"`
	Cache        bool     `yaml:"cache" toml:"cache"`
	CacheDir     string   `yaml:"cache_dir,omitempty" toml:"cache_dir,omitempty"`
	TargetBranch string   `yaml:"target_branch,omitempty" toml:"target_branch,omitempty"`
	Parallelism  int      `yaml:"parallelism,omitempty" toml:"parallelism,omitempty"`
	Rules        []string `yaml:"rules,omitempty" toml:"rules,omitempty"`
	Skip         []string `yaml:"skip,omitempty" toml:"skip,omitempty"`
	// FailOn is the lowest severity that makes the check command exit
	// non-zero.
	FailOn string `yaml:"fail_on" toml:"fail_on"`
}

// DefaultCheckConfig returns production defaults.
func DefaultCheckConfig() CheckConfig {
	return CheckConfig{
		Level:  LevelFull,
		Cache:  true,
		FailOn: "error",
	}
}
