package check

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/sofmeright/buildcheck/src/project"
	"github.com/sofmeright/buildcheck/src/ruleconfig"
)

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithCache enables the content-addressed findings cache.
func WithCache(c *Cache) EngineOption {
	return func(e *Engine) { e.Cache = c }
}

// WithChanged restricts checks to the given root-relative paths. A nil set
// checks every file.
func WithChanged(changed map[string]bool) EngineOption {
	return func(e *Engine) { e.Changed = changed }
}

// WithParallelism bounds the number of concurrent file checks.
func WithParallelism(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.parallelism = n
		}
	}
}

// WithEngineLogger sets the engine logger.
func WithEngineLogger(log zerolog.Logger) EngineOption {
	return func(e *Engine) { e.log = log }
}

// Engine runs the selected rules over every project of one build. An Engine
// owns a single Provider and must not be reused across builds.
type Engine struct {
	Provider *ruleconfig.Provider
	Cache    *Cache
	Changed  map[string]bool

	rules       []*ruleEntry
	parallelism int
	log         zerolog.Logger

	CacheHits   atomic.Int64
	CacheMisses atomic.Int64
}

type ruleEntry struct {
	rule Rule
	once sync.Once
	err  error
}

// configure hands the build's custom data to the rule on first use.
func (r *ruleEntry) configure(custom ruleconfig.CustomConfigurationData) error {
	r.once.Do(func() {
		if cr, ok := r.rule.(ConfigurableRule); ok {
			r.err = cr.Configure(custom)
		}
	})
	return r.err
}

// NewEngine creates an engine with the named rules, or every registered rule
// when ids is empty, minus skip.
func NewEngine(provider *ruleconfig.Provider, ids, skip []string, opts ...EngineOption) (*Engine, error) {
	skipSet := make(map[string]bool, len(skip))
	for _, id := range skip {
		skipSet[id] = true
	}
	if len(ids) == 0 {
		ids = All()
	}

	e := &Engine{
		Provider:    provider,
		parallelism: runtime.NumCPU() * 2,
		log:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	for _, id := range ids {
		if skipSet[id] {
			continue
		}
		r, err := Get(id)
		if err != nil {
			return nil, err
		}
		e.rules = append(e.rules, &ruleEntry{rule: r})
	}
	if len(e.rules) == 0 {
		return nil, fmt.Errorf("no rules selected")
	}
	return e, nil
}

// RuleIDs returns the ids of the active rules in execution order.
func (e *Engine) RuleIDs() []string {
	ids := make([]string, len(e.rules))
	for i, r := range e.rules {
		ids[i] = r.rule.ID()
	}
	return ids
}

// Rules returns the active rules as seen by the configuration provider.
func (e *Engine) Rules() []ruleconfig.Rule {
	out := make([]ruleconfig.Rule, len(e.rules))
	for i, r := range e.rules {
		out[i] = r.rule
	}
	return out
}

// RuleStats holds per-rule statistics for one run.
type RuleStats struct {
	Rule     string
	Files    int
	Cached   int
	Findings int
	Errors   int
	Warnings int
}

// ProjectReport describes what happened to one project.
type ProjectReport struct {
	Project  string
	Rules    []ruleconfig.EffectiveConfiguration
	Files    int
	Findings int
	Err      error
}

// Result is the outcome of a run.
type Result struct {
	Findings []Finding
	Projects []ProjectReport
	Stats    []RuleStats
}

// MaxSeverity returns the highest severity among the findings.
func (r *Result) MaxSeverity() ruleconfig.Severity {
	worst := ruleconfig.SeverityNone
	for _, f := range r.Findings {
		if f.Severity > worst {
			worst = f.Severity
		}
	}
	return worst
}

// Run checks every project. Projects whose configuration cannot be parsed
// are reported and skipped; the returned error aggregates those failures
// and rule errors. Custom configuration mismatches and incomplete rule
// defaults abort the run and are returned alone with a nil Result.
func (e *Engine) Run(ctx context.Context, projects []project.Project) (*Result, error) {
	var (
		mu       sync.Mutex
		findings []Finding
		errs     *multierror.Error
	)

	sem := semaphore.NewWeighted(int64(e.parallelism))
	stats := make([]RuleStats, len(e.rules))
	for i, r := range e.rules {
		stats[i].Rule = r.rule.ID()
	}
	reports := make([]ProjectReport, len(projects))

	record := func(idx int, fs []Finding, cached bool) {
		mu.Lock()
		defer mu.Unlock()
		stats[idx].Files++
		if cached {
			stats[idx].Cached++
		}
		for _, x := range fs {
			stats[idx].Findings++
			switch x.Severity {
			case ruleconfig.SeverityError:
				stats[idx].Errors++
			case ruleconfig.SeverityWarning:
				stats[idx].Warnings++
			}
		}
		findings = append(findings, fs...)
	}
	fail := func(err error) {
		mu.Lock()
		errs = multierror.Append(errs, err)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range projects {
		p := projects[i]
		report := &reports[i]
		report.Project = p.Name
		g.Go(func() error {
			return e.runProject(gctx, sem, p, report, record, fail)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sortFindings(findings)
	for i := range reports {
		for _, f := range findings {
			if f.Project == reports[i].Project {
				reports[i].Findings++
			}
		}
	}
	return &Result{Findings: findings, Projects: reports, Stats: stats}, errs.ErrorOrNil()
}

func (e *Engine) runProject(
	ctx context.Context,
	sem *semaphore.Weighted,
	p project.Project,
	report *ProjectReport,
	record func(int, []Finding, bool),
	fail func(error),
) error {
	log := e.log.With().Str("project", p.Name).Logger()

	effective, err := e.Provider.MergedConfigurations(p.Path, e.Rules())
	if err != nil {
		if ruleconfig.IsFatal(err) {
			return err
		}
		log.Warn().Err(err).Msg("skipping project")
		report.Err = err
		fail(err)
		return nil
	}
	report.Rules = effective

	var wg sync.WaitGroup
	defer wg.Wait()

	for idx, entry := range e.rules {
		eff := effective[idx]
		if !eff.Enabled() {
			log.Debug().Str("rule", eff.RuleID).Msg("rule disabled")
			continue
		}

		custom, err := e.Provider.CheckCustomConfiguration(p.Path, entry.rule.ID())
		if err != nil {
			return err
		}
		if err := entry.configure(custom); err != nil {
			return fmt.Errorf("configuring rule %s: %w", entry.rule.ID(), err)
		}

		for _, file := range e.filter(p.FilesFor(eff.Scope)) {
			if err := sem.Acquire(ctx, 1); err != nil {
				return err
			}
			report.Files++
			wg.Add(1)
			go func(idx int, entry *ruleEntry, eff ruleconfig.EffectiveConfiguration, custom ruleconfig.CustomConfigurationData, f project.File) {
				defer wg.Done()
				defer sem.Release(1)

				results, cached, err := e.checkFile(ctx, entry.rule, custom, f)
				if err != nil {
					fail(fmt.Errorf("%s: %s: %w", entry.rule.ID(), f.Path, err))
					return
				}
				stamped := make([]Finding, len(results))
				for i, r := range results {
					r.Project = p.Name
					r.Rule = eff.RuleID
					r.Severity = eff.Severity
					if r.File == "" {
						r.File = f.Path
					}
					stamped[i] = r
				}
				record(idx, stamped, cached)
			}(idx, entry, eff, custom, file)
		}
	}
	return nil
}

// checkFile runs one rule on one file, consulting the cache when enabled.
func (e *Engine) checkFile(ctx context.Context, r Rule, custom ruleconfig.CustomConfigurationData, f project.File) ([]Finding, bool, error) {
	if e.Cache == nil || !e.Cache.Enabled {
		results, err := r.Check(ctx, f)
		return results, false, err
	}

	content, err := os.ReadFile(f.AbsPath)
	if err != nil {
		results, err := r.Check(ctx, f)
		return results, false, err
	}

	key := e.Cache.Key(content, r.ID(), custom.Fingerprint())
	if cached, ok := e.Cache.Get(key); ok {
		e.CacheHits.Add(1)
		return cached, true, nil
	}
	e.CacheMisses.Add(1)

	results, err := r.Check(ctx, f)
	if err != nil {
		return nil, false, err
	}
	if err := e.Cache.Put(key, results); err != nil {
		e.log.Debug().Err(err).Str("file", f.Path).Msg("cache write failed")
	}
	return results, false, nil
}

func (e *Engine) filter(files []project.File) []project.File {
	if e.Changed == nil {
		return files
	}
	out := make([]project.File, 0, len(files))
	for _, f := range files {
		if e.Changed[f.Path] {
			out = append(out, f)
		}
	}
	return out
}

func sortFindings(fs []Finding) {
	sort.SliceStable(fs, func(i, j int) bool {
		a, b := fs[i], fs[j]
		if a.Project != b.Project {
			return a.Project < b.Project
		}
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Rule < b.Rule
	})
}
