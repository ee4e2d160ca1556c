// Package harness drives a verification run end to end: it loads fixture
// declarations, hands each fixture to the analyzer for its toolchain,
// matches the diagnostics against the declared expectation, and folds
// everything into an ordered report.
package harness

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/flanksource/clicky"
	"github.com/flanksource/clicky/api"
	"github.com/flanksource/clicky/task"
	commonsCtx "github.com/flanksource/commons/context"
	"github.com/flanksource/commons/logger"
	"github.com/samber/lo"

	"github.com/flanksource/verdict/analyzers"
	"github.com/flanksource/verdict/config"
	"github.com/flanksource/verdict/fixtures"
	"github.com/flanksource/verdict/models"
)

// RunOptions configures a harness run. Rendering options (format, color)
// live on the clicky flag set, not here.
type RunOptions struct {
	Paths      []string `json:"paths,omitempty"`
	Filter     []string `json:"filter,omitempty"`
	WorkDir    string   `json:"work_dir,omitempty"`
	MaxWorkers int      `json:"max_workers,omitempty"`
	Timeout    string   `json:"timeout,omitempty"`
}

func (opts RunOptions) Pretty() api.Text {
	t := clicky.Text("")
	if len(opts.Paths) > 0 {
		t = t.Append(strings.Join(opts.Paths, " "), "text-blue-600")
	} else {
		t = t.Append(".", "text-blue-600")
	}
	if len(opts.Filter) > 0 {
		t = t.Append(" filter=", "text-gray-500").Append(strings.Join(opts.Filter, ","), "text-yellow-600")
	}
	if opts.MaxWorkers > 0 {
		t = t.Append(fmt.Sprintf(" workers=%d", opts.MaxWorkers), "text-gray-500")
	}
	if opts.Timeout != "" {
		t = t.Append(" timeout=", "text-gray-500").Append(opts.Timeout, "text-yellow-600")
	}
	return t
}

// Runner wires the fixture registry, the analyzer adapter and the merged
// configuration together for a single run.
type Runner struct {
	RunOptions
	Config   config.HarnessConfig
	registry *fixtures.Registry
	adapter  *analyzers.Adapter

	done   chan struct{}
	cancel sync.Once
}

// New builds a runner from resolved options and configuration.
func New(opts RunOptions, cfg config.HarnessConfig) *Runner {
	return &Runner{
		RunOptions: opts,
		Config:     cfg,
		registry:   fixtures.NewRegistry(),
		adapter:    analyzers.NewAdapter(analyzers.DefaultRegistry(), cfg),
		done:       make(chan struct{}),
	}
}

// Cancel stops the run: no further fixture starts analyzing, fixtures
// already analyzing record a cancelled outcome when their tools die.
// Completed outcomes stay in the report.
func (r *Runner) Cancel() {
	r.cancel.Do(func() { close(r.done) })
}

func (r *Runner) cancelled() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

// Prepare resolves configuration and loads fixtures without verifying
// anything, so callers can list or narrow the selection first.
func Prepare(opts RunOptions) (*Runner, error) {
	if opts.WorkDir == "" {
		opts.WorkDir, _ = os.Getwd()
	}

	cfg, err := config.LoadConfig(opts.WorkDir)
	if err != nil {
		return nil, err
	}
	cfg = config.MergeHarnessConfig(cfg, config.HarnessConfig{
		MaxWorkers: opts.MaxWorkers,
		Timeout:    opts.Timeout,
	})

	runner := New(opts, cfg)
	if err := runner.Load(); err != nil {
		return nil, err
	}
	return runner, nil
}

// Load populates the registry from the configured paths.
func (r *Runner) Load() error {
	paths := r.Paths
	if len(paths) == 0 {
		paths = []string{r.WorkDir}
	}
	return r.registry.Load(paths...)
}

// Registry exposes the loaded fixtures, mainly for listing.
func (r *Runner) Registry() *fixtures.Registry {
	return r.registry
}

// Verify runs every selected fixture and assembles the report. The run
// aborts only when nothing loaded at all; anything that goes wrong with a
// single fixture lands in that fixture's outcome instead.
func (r *Runner) Verify() (*Report, error) {
	logger.Infof("Verifying fixtures  %s", r.RunOptions.Pretty().ANSI())

	failures := r.registry.Failures()
	if r.registry.Len() == 0 {
		if len(failures) > 0 {
			return nil, fmt.Errorf("no fixtures loaded: all %d declarations failed to parse", len(failures))
		}
		return nil, fmt.Errorf("no fixtures found")
	}

	selected := r.Selected()
	report := NewReport(r.WorkDir)
	for _, failure := range failures {
		report.Record(failure.Outcome())
	}

	// MaxWorkers bounds how many fixtures analyze concurrently. The
	// default is serial, toolchain invocations are expensive.
	sem := make(chan struct{}, r.maxWorkers())

	group := task.StartGroup[models.MatchOutcome]("Verifying fixtures")
	for _, fixture := range selected {
		fixture := fixture
		group.Add(fixture.Name, func(ctx commonsCtx.Context, t *task.Task) (models.MatchOutcome, error) {
			if !r.acquire(ctx, sem) {
				outcome := fixture.Outcome().Cancelf("run cancelled")
				report.Record(outcome)
				return outcome, nil
			}
			defer func() { <-sem }()
			outcome := r.verifyFixture(ctx, t, fixture)
			report.Record(outcome)
			return outcome, nil
		})
	}

	if _, err := group.GetResults(); err != nil {
		logger.Warnf("verification interrupted: %v", err)
	}

	report.Finish(selected)
	return report, nil
}

// acquire claims a worker slot for one fixture. Cancellation wins over a
// free slot: once the run is cancelled no waiting fixture starts, even
// when the semaphore could admit it immediately.
func (r *Runner) acquire(ctx commonsCtx.Context, sem chan struct{}) bool {
	select {
	case <-r.done:
		return false
	case <-ctx.Done():
		return false
	default:
	}

	select {
	case sem <- struct{}{}:
		return true
	case <-r.done:
		return false
	case <-ctx.Done():
		return false
	}
}

// Selected applies the config exclusions and the filter globs to the
// registry, preserving its stable order. Excluded fixtures are not part
// of the run and do not appear in the report.
func (r *Runner) Selected() []fixtures.Fixture {
	selected := r.registry.Filter(r.Filter...)
	if len(r.Config.Exclude) == 0 {
		return selected
	}
	return lo.Filter(selected, func(f fixtures.Fixture, _ int) bool {
		return !fixtures.MatchAny(f.Name, r.Config.Exclude)
	})
}

func (r *Runner) maxWorkers() int {
	if r.MaxWorkers > 0 {
		return r.MaxWorkers
	}
	if r.Config.MaxWorkers > 0 {
		return r.Config.MaxWorkers
	}
	return 1
}

// verifyFixture analyzes one fixture and matches the result against its
// expectation. It always returns an outcome; a missing or crashed tool
// becomes an error outcome rather than aborting the run.
func (r *Runner) verifyFixture(ctx commonsCtx.Context, t *task.Task, fixture fixtures.Fixture) models.MatchOutcome {
	outcome := fixture.Outcome()

	analysis, err := r.adapter.Analyze(ctx, t, fixture)
	if err != nil && (ctx.Err() != nil || r.cancelled()) {
		t.Warnf("cancelled: %v", err)
		return outcome.Cancelf("run cancelled")
	}

	outcome = evaluate(outcome, fixture, analysis, err)
	if outcome.IsOK() {
		t.SetName(outcome.Pretty().ANSI())
		t.Success()
	} else {
		t.Errorf("%s", outcome.Reason)
		t.Failed()
	}
	return outcome
}

// evaluate classifies one analysis attempt into the started outcome. An
// invocation error becomes an error outcome carrying the partial
// analysis, anything else goes through the fixture's expectation.
func evaluate(outcome models.MatchOutcome, fixture fixtures.Fixture, analysis models.AnalysisResult, err error) models.MatchOutcome {
	if err != nil {
		outcome.Analysis = &analysis
		return outcome.Errorf(err, "analysis failed")
	}
	return fixtures.ForFixture(fixture).Evaluate(outcome, analysis)
}
