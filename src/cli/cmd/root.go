package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/sofmeright/buildcheck/src/config"
)

var (
	cfgFile string
	rootDir string
	verbose bool
	cfg     *config.Config
	logger  zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "buildcheck",
	Short: "Configurable build checks driven by .editorconfig",
	Long: `buildcheck runs build checks over every project in a tree.

Each rule's severity, evaluation scope and rule-specific options are read
from build_check.<rule>.* keys in the .editorconfig files that apply to a
project file.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = newLogger(verbose)
		if cmd.Name() == "version" {
			return nil
		}

		dir := rootDir
		if cmd.Name() == "check" && len(args) > 0 {
			dir = args[0]
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", dir, err)
		}
		rootDir = abs

		cfg, err = config.Load(rootDir, cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		warnings, err := config.Validate(cfg)
		for _, w := range warnings {
			logger.Warn().Msg(w)
		}
		if err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		logger.Debug().Str("root", rootDir).Str("config", cfg.Path).Msg("configuration loaded")
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .buildcheck.yml or .buildcheck.toml in the root)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "C", ".", "root directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly, NoColor: os.Getenv("NO_COLOR") != ""}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}
