package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/sofmeright/buildcheck/src/check"
	_ "github.com/sofmeright/buildcheck/src/check/rules"
	"github.com/sofmeright/buildcheck/src/config"
	"github.com/sofmeright/buildcheck/src/output"
	"github.com/sofmeright/buildcheck/src/ruleconfig"
)

var (
	checkLevel   string
	checkRules   []string
	checkNoRules []string
	checkNoCache bool
	checkWatch   bool
	checkJUnit   string
)

var checkCmd = &cobra.Command{
	Use:   "check [root]",
	Short: "Run build checks over every project",
	Long: `Run build checks over every project under root.

Rules run per project with the severity and scope resolved from that
project's .editorconfig chain. Rule-specific options must be identical
across all projects of a build.

With --level changed only files changed relative to the target branch are
checked. Results are cached by file content.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkLevel, "level", "", "check level: changed or full (default: from config)")
	checkCmd.Flags().StringSliceVar(&checkRules, "rule", nil, "run only these rules (comma-separated)")
	checkCmd.Flags().StringSliceVar(&checkNoRules, "no-rule", nil, "skip these rules (comma-separated)")
	checkCmd.Flags().BoolVar(&checkNoCache, "no-cache", false, "clear and bypass the findings cache")
	checkCmd.Flags().BoolVar(&checkWatch, "watch", false, "rerun when configuration files change")
	checkCmd.Flags().StringVar(&checkJUnit, "junit", "", "write a JUnit report to this directory (default in CI: .buildcheck/reports)")

	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if checkLevel != "" {
		cfg.Check.Level = config.Level(checkLevel)
		if _, err := config.Validate(cfg); err != nil {
			return err
		}
	}

	cache := check.NewCache(rootDir, cfg.Check.CacheDir, cfg.Check.Cache && !checkNoCache)
	if checkNoCache {
		if err := cache.Clear(); err != nil {
			logger.Debug().Err(err).Msg("cache clear failed")
		}
	}

	if !checkWatch {
		return checkOnce(ctx, cmd, cache)
	}
	first := true
	return watch(ctx, func() {
		if !first {
			if err := reloadConfig(); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return
			}
		}
		first = false
		if err := checkOnce(ctx, cmd, cache); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), err)
		}
	})
}

// checkOnce runs one build with a fresh configuration provider.
func checkOnce(ctx context.Context, cmd *cobra.Command, cache *check.Cache) error {
	start := time.Now()
	w := cmd.OutOrStdout()
	color := output.UseColor()

	projects, err := discoverProjects()
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		logger.Warn().Strs("markers", cfg.Projects.Markers).Msg("no projects found")
		return nil
	}

	rules := checkRules
	if len(rules) == 0 {
		rules = cfg.Check.Rules
	}
	skip := append(append([]string{}, cfg.Check.Skip...), checkNoRules...)

	opts := []check.EngineOption{
		check.WithCache(cache),
		check.WithParallelism(cfg.Check.Parallelism),
		check.WithEngineLogger(logger.With().Str("component", "check").Logger()),
	}
	if cfg.Check.Level == config.LevelChanged {
		delta := &check.Delta{RootDir: rootDir, TargetBranch: cfg.Check.TargetBranch, Log: logger}
		changed, err := delta.ChangedFiles(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("delta failed, checking all files")
		}
		opts = append(opts, check.WithChanged(changed))
	}

	engine, err := check.NewEngine(newProvider(), rules, skip, opts...)
	if err != nil {
		return err
	}
	logger.Debug().Strs("rules", engine.RuleIDs()).Msg("rules selected")

	res, runErr := engine.Run(ctx, projects)
	if res == nil {
		var ce *ruleconfig.ConfigurationError
		if errors.As(runErr, &ce) {
			logger.Error().Str("scope", ce.Scope()).Str("rule", ce.RuleID).Str("project", ce.ProjectPath).Msg("build configuration rejected")
		}
		return fmt.Errorf("check aborted: %w", runErr)
	}
	elapsed := time.Since(start)

	files := 0
	for _, p := range res.Projects {
		files += p.Files
	}
	counts := output.CountFindings(res.Findings)

	output.SectionStart(w, "buildcheck", "Build checks")
	sec := output.NewSection(w, "Build checks", elapsed, color)
	output.RuleTable(sec, res.Stats)
	sec.Separator()
	sec.Row("%d projects, %d cached of %d checks", len(projects), int(engine.CacheHits.Load()), files)
	sec.Close()
	output.SectionEnd(w, "buildcheck")

	if len(res.Findings) > 0 {
		fsec := output.NewSection(w, "Findings", 0, color)
		output.SectionFindings(fsec, res.Findings, color)
		fsec.Separator()
		fsec.Row("%s", output.SummaryLine(counts, files, color))
		fsec.Close()
	}

	failOn := cfg.Check.FailOnSeverity()
	junitDir := checkJUnit
	if junitDir == "" && output.IsCI() {
		junitDir = ".buildcheck/reports"
	}
	if junitDir != "" {
		if err := output.WriteJUnit(junitDir, output.BuildJUnit(res, failOn, elapsed)); err != nil {
			logger.Warn().Err(err).Msg("writing junit report")
		}
	}

	var failures *multierror.Error
	if runErr != nil {
		logger.Error().Err(runErr).Msg("some projects could not be checked")
		failures = multierror.Append(failures, runErr)
	}
	if worst := res.MaxSeverity(); worst != ruleconfig.SeverityNone && worst >= failOn {
		failures = multierror.Append(failures, fmt.Errorf("check failed: findings at %s or above", failOn))
	}
	status := "success"
	if failures.ErrorOrNil() != nil {
		status = "failed"
	}
	output.SummaryTotal(w, elapsed, status, color)
	return failures.ErrorOrNil()
}

// reloadConfig rereads the tool configuration between watch runs. Command
// line overrides are reapplied.
func reloadConfig() error {
	next, err := config.Load(rootDir, cfgFile)
	if err != nil {
		return fmt.Errorf("reloading config: %w", err)
	}
	if checkLevel != "" {
		next.Check.Level = config.Level(checkLevel)
	}
	if _, err := config.Validate(next); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	cfg = next
	return nil
}
