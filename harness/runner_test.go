package harness

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	commonsCtx "github.com/flanksource/commons/context"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flanksource/verdict/config"
	"github.com/flanksource/verdict/fixtures"
	"github.com/flanksource/verdict/models"
)

func lintDiag(rule string) models.DiagnosticRecord {
	return models.DiagnosticRecord{
		Kind:     models.KindLint,
		Tool:     "clippy",
		Rule:     rule,
		Severity: models.SeverityWarning,
		Message:  "lint finding",
		File:     "src/main.rs",
		Line:     3,
	}
}

func rustFixture(name string, expect models.ExpectedOutcome) fixtures.Fixture {
	return fixtures.Fixture{
		Name:      name,
		Path:      name + ".rs",
		Toolchain: models.ToolchainRust,
		Expected:  expect,
	}
}

func TestEvaluateExpectation(t *testing.T) {
	clean := rustFixture("clean", models.ExpectClean)
	outcome := evaluate(clean.Outcome(), clean, models.AnalysisResult{}, nil)
	assert.True(t, outcome.IsOK())

	outcome = evaluate(clean.Outcome(), clean, models.AnalysisResult{
		Diagnostics: []models.DiagnosticRecord{lintDiag("clippy::needless_return")},
	}, nil)
	assert.False(t, outcome.IsOK())
	assert.Contains(t, outcome.Reason, "unexpected diagnostics")

	needless := rustFixture("needless", models.ExpectLintIssues)
	outcome = evaluate(needless.Outcome(), needless, models.AnalysisResult{
		Diagnostics: []models.DiagnosticRecord{lintDiag("clippy::needless_return")},
	}, nil)
	assert.True(t, outcome.IsOK())
}

func TestEvaluateInvocationError(t *testing.T) {
	fixture := rustFixture("broken", models.ExpectClean)
	analysis := models.AnalysisResult{Tools: []models.ToolInfo{{Name: "cargo", Version: "1.79.0"}}}

	outcome := evaluate(fixture.Outcome(), fixture, analysis, errors.New("rust lint: cargo exited with code 127"))

	assert.False(t, outcome.IsOK())
	assert.Contains(t, outcome.Reason, "cargo exited with code 127")
	require.NotNil(t, outcome.Analysis)
	assert.Equal(t, "cargo", outcome.Analysis.Tools[0].Name)
	assert.Equal(t, 1, outcome.Stats().Error)
}

// One broken analyzer invocation must not take the rest of the run with
// it: every other fixture still gets its own verdict.
func TestPartialFailureIsolation(t *testing.T) {
	a := rustFixture("a-clean", models.ExpectClean)
	b := rustFixture("b-broken", models.ExpectClean)
	c := rustFixture("c-needless", models.ExpectLintIssues)

	report := NewReport(t.TempDir())
	report.Record(evaluate(a.Outcome(), a, models.AnalysisResult{}, nil))
	report.Record(evaluate(b.Outcome(), b, models.AnalysisResult{}, errors.New("cargo: signal: killed")))
	report.Record(evaluate(c.Outcome(), c, models.AnalysisResult{
		Diagnostics: []models.DiagnosticRecord{lintDiag("clippy::needless_return")},
	}, nil))
	report.Finish([]fixtures.Fixture{a, b, c})

	outcomes := report.Outcomes()
	require.Len(t, outcomes, 3)
	assert.True(t, outcomes[0].IsOK())
	assert.False(t, outcomes[1].IsOK())
	assert.Contains(t, outcomes[1].Reason, "signal: killed")
	assert.True(t, outcomes[2].IsOK())

	stats := report.Stats()
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Passed)
	assert.Equal(t, 1, stats.Error)
	assert.Equal(t, 1, report.ExitCode())
}

// Two runs over the same fixtures and analyses must agree on every
// verdict and on their order, regardless of recording order.
func TestEvaluateIsDeterministic(t *testing.T) {
	run := func() []string {
		report := NewReport(t.TempDir())
		for _, name := range []string{"zeta", "alpha", "mid"} {
			fixture := rustFixture(name, models.ExpectClean)
			report.Record(evaluate(fixture.Outcome(), fixture, models.AnalysisResult{}, nil))
		}
		report.Finish(nil)
		return lo.Map(report.Outcomes(), func(o models.MatchOutcome, _ int) string {
			return o.Fixture + "/" + o.Status.String()
		})
	}

	first := run()
	assert.Equal(t, first, run())

	names := lo.Map(first, func(s string, _ int) string { return strings.Split(s, "/")[0] })
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, names)
}

func TestRunnerSelected(t *testing.T) {
	dir := t.TempDir()
	makeCrate(t, filepath.Join(dir, "clean-a"))
	makeCrate(t, filepath.Join(dir, "clean-b"))
	makeCrate(t, filepath.Join(dir, "lint-c"))
	writeFile(t, filepath.Join(dir, "verdict-fixtures.yaml"), `
toolchain: rust
expect: clean
fixtures:
  - path: clean-a
  - path: clean-b
  - path: lint-c
    expect: lint-issues
`)

	cfg := config.DefaultHarnessConfig()
	cfg.Exclude = []string{"clean-b"}

	runner := New(RunOptions{Paths: []string{dir}, WorkDir: dir}, cfg)
	require.NoError(t, runner.Load())
	require.Equal(t, 3, runner.Registry().Len())

	names := lo.Map(runner.Selected(), func(f fixtures.Fixture, _ int) string { return f.Name })
	assert.Equal(t, []string{"clean-a", "lint-c"}, names)

	runner.Filter = []string{"lint-*"}
	names = lo.Map(runner.Selected(), func(f fixtures.Fixture, _ int) string { return f.Name })
	assert.Equal(t, []string{"lint-c"}, names)
}

func TestVerifyNoFixtures(t *testing.T) {
	dir := t.TempDir()
	runner := New(RunOptions{WorkDir: dir}, config.DefaultHarnessConfig())
	require.NoError(t, runner.Load())

	_, err := runner.Verify()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no fixtures found")
}

func TestVerifyAbortsWhenNothingParsed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "verdict-fixtures.yaml"), `
fixtures:
  - name: ghost
    path: does-not-exist.rs
    expect: clean
`)

	runner := New(RunOptions{Paths: []string{dir}, WorkDir: dir}, config.DefaultHarnessConfig())
	require.NoError(t, runner.Load())

	_, err := runner.Verify()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no fixtures loaded")
}

func TestMaxWorkers(t *testing.T) {
	cfg := config.DefaultHarnessConfig()
	runner := New(RunOptions{}, cfg)
	assert.Equal(t, 1, runner.maxWorkers())

	cfg.MaxWorkers = 3
	runner = New(RunOptions{}, cfg)
	assert.Equal(t, 3, runner.maxWorkers())

	runner = New(RunOptions{MaxWorkers: 8}, cfg)
	assert.Equal(t, 8, runner.maxWorkers())
}

func TestPrepare(t *testing.T) {
	dir := t.TempDir()
	makeCrate(t, filepath.Join(dir, "clean"))
	writeFile(t, filepath.Join(dir, "verdict-fixtures.yaml"), `
toolchain: rust
fixtures:
  - path: clean
    expect: clean
`)
	writeFile(t, filepath.Join(dir, ".verdict.yaml"), `
harness:
  max_workers: 2
  timeout: 45s
`)

	runner, err := Prepare(RunOptions{Paths: []string{dir}, WorkDir: dir})
	require.NoError(t, err)
	assert.Equal(t, 1, runner.Registry().Len())
	assert.Equal(t, 2, runner.maxWorkers())
	assert.Equal(t, "45s", runner.Config.Timeout)

	runner, err = Prepare(RunOptions{Paths: []string{dir}, WorkDir: dir, MaxWorkers: 5, Timeout: "10s"})
	require.NoError(t, err)
	assert.Equal(t, 5, runner.maxWorkers())
	assert.Equal(t, "10s", runner.Config.Timeout)
}

func TestRunnerCancel(t *testing.T) {
	runner := New(RunOptions{}, config.DefaultHarnessConfig())
	assert.False(t, runner.cancelled())

	runner.Cancel()
	runner.Cancel()
	assert.True(t, runner.cancelled())
}

// Once Cancel is called no waiting fixture may start analyzing, even with
// free worker slots. A single select over both the semaphore and the done
// channel does not guarantee this, it picks a ready case at random.
func TestAcquireAfterCancel(t *testing.T) {
	runner := New(RunOptions{}, config.DefaultHarnessConfig())
	ctx := commonsCtx.NewContext(context.Background())
	sem := make(chan struct{}, 4)

	require.True(t, runner.acquire(ctx, sem))
	<-sem

	runner.Cancel()
	for i := 0; i < 100; i++ {
		assert.False(t, runner.acquire(ctx, sem), "fixture launched after cancel")
	}
	assert.Len(t, sem, 0)
}

func TestAcquireAfterContextDone(t *testing.T) {
	runner := New(RunOptions{}, config.DefaultHarnessConfig())
	base, cancel := context.WithCancel(context.Background())
	cancel()

	assert.False(t, runner.acquire(commonsCtx.NewContext(base), make(chan struct{}, 1)))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func makeCrate(t *testing.T, dir string) {
	t.Helper()
	writeFile(t, filepath.Join(dir, "Cargo.toml"), "[package]\nname = \"fixture\"\nversion = \"0.1.0\"\n")
	writeFile(t, filepath.Join(dir, "src", "main.rs"), "fn main() {}\n")
}
