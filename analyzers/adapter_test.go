package analyzers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flanksource/verdict/analyzers/checkers"
	"github.com/flanksource/verdict/config"
	"github.com/flanksource/verdict/fixtures"
	"github.com/flanksource/verdict/models"
)

// fakeAnalyzer implements both capabilities with canned results so the
// adapter's orchestration can be exercised without real toolchains.
type fakeAnalyzer struct {
	tools     []string
	lint      []models.DiagnosticRecord
	format    []models.DiagnosticRecord
	lintErr   error
	formatErr error
	cleaned   bool
}

func (f *fakeAnalyzer) Name() string                { return "fake" }
func (f *fakeAnalyzer) Toolchain() models.Toolchain { return models.ToolchainRust }
func (f *fakeAnalyzer) Tools() []string             { return f.tools }

func (f *fakeAnalyzer) Prepare(inv *checkers.Invocation) (func(), error) {
	inv.WorkDir = inv.Path
	return func() { f.cleaned = true }, nil
}

func (f *fakeAnalyzer) CheckLint(ctx context.Context, inv checkers.Invocation) ([]models.DiagnosticRecord, error) {
	return f.lint, f.lintErr
}

func (f *fakeAnalyzer) CheckFormat(ctx context.Context, inv checkers.Invocation) ([]models.DiagnosticRecord, error) {
	return f.format, f.formatErr
}

// lintOnlyAnalyzer carries no format capability at all.
type lintOnlyAnalyzer struct {
	lint []models.DiagnosticRecord
}

func (l *lintOnlyAnalyzer) Name() string                { return "lint-only" }
func (l *lintOnlyAnalyzer) Toolchain() models.Toolchain { return models.ToolchainRust }
func (l *lintOnlyAnalyzer) Tools() []string             { return nil }

func (l *lintOnlyAnalyzer) Prepare(inv *checkers.Invocation) (func(), error) {
	inv.WorkDir = inv.Path
	return func() {}, nil
}

func (l *lintOnlyAnalyzer) CheckLint(ctx context.Context, inv checkers.Invocation) ([]models.DiagnosticRecord, error) {
	return l.lint, nil
}

func registryWith(analyzer checkers.Analyzer) *Registry {
	registry := NewRegistry()
	registry.Register(analyzer)
	return registry
}

func rustFixture(t *testing.T) fixtures.Fixture {
	t.Helper()
	return fixtures.Fixture{
		Name:      "demo",
		Path:      t.TempDir(),
		Toolchain: models.ToolchainRust,
		Expected:  models.ExpectClean,
	}
}

func TestAdapterMergesCapabilities(t *testing.T) {
	fake := &fakeAnalyzer{
		lint:   []models.DiagnosticRecord{{Kind: models.KindLint, Tool: "clippy", Rule: "clippy::needless_return"}},
		format: []models.DiagnosticRecord{{Kind: models.KindFormat, Tool: "rustfmt"}},
	}
	adapter := NewAdapter(registryWith(fake), config.DefaultHarnessConfig())

	result, err := adapter.Analyze(context.Background(), nil, rustFixture(t))
	require.NoError(t, err)

	assert.Equal(t, 1, result.LintCount())
	assert.Equal(t, 1, result.FormatCount())
	assert.True(t, fake.cleaned, "cleanup must run after a successful analysis")
	assert.GreaterOrEqual(t, result.Duration, time.Duration(0))
}

func TestAdapterEmptyDiagnosticsIsValid(t *testing.T) {
	fake := &fakeAnalyzer{}
	adapter := NewAdapter(registryWith(fake), config.DefaultHarnessConfig())

	result, err := adapter.Analyze(context.Background(), nil, rustFixture(t))
	require.NoError(t, err)
	assert.Empty(t, result.Diagnostics)
}

func TestAdapterLintFailureIsInvocationError(t *testing.T) {
	fake := &fakeAnalyzer{lintErr: fmt.Errorf("cargo: signal: killed")}
	adapter := NewAdapter(registryWith(fake), config.DefaultHarnessConfig())

	_, err := adapter.Analyze(context.Background(), nil, rustFixture(t))
	require.Error(t, err)
	assert.True(t, IsInvocationError(err))
	assert.Contains(t, err.Error(), "rust lint")
	assert.True(t, fake.cleaned, "cleanup must run on the error path too")
}

func TestAdapterUnknownToolchain(t *testing.T) {
	adapter := NewAdapter(NewRegistry(), config.DefaultHarnessConfig())

	fixture := rustFixture(t)
	fixture.Toolchain = models.ToolchainPython

	_, err := adapter.Analyze(context.Background(), nil, fixture)
	require.Error(t, err)
	assert.True(t, IsInvocationError(err))
	assert.Contains(t, err.Error(), "no analyzer registered")
}

func TestAdapterMissingToolIsInvocationError(t *testing.T) {
	fake := &fakeAnalyzer{tools: []string{"definitely-not-a-real-tool"}}
	adapter := NewAdapter(registryWith(fake), config.DefaultHarnessConfig())

	_, err := adapter.Analyze(context.Background(), nil, rustFixture(t))
	require.Error(t, err)
	assert.True(t, IsInvocationError(err))
	assert.Contains(t, err.Error(), "not installed")

	// The failed probe is cached and fails the next fixture identically.
	_, err = adapter.Analyze(context.Background(), nil, rustFixture(t))
	require.Error(t, err)
	assert.True(t, IsInvocationError(err))
}

func TestAdapterLintOnlyCapability(t *testing.T) {
	only := &lintOnlyAnalyzer{
		lint: []models.DiagnosticRecord{{Kind: models.KindLint, Tool: "clippy"}},
	}
	adapter := NewAdapter(registryWith(only), config.DefaultHarnessConfig())

	result, err := adapter.Analyze(context.Background(), nil, rustFixture(t))
	require.NoError(t, err)
	assert.Equal(t, 1, result.LintCount())
	assert.Equal(t, 0, result.FormatCount())
}

func TestAdapterFixtureTimeoutOverride(t *testing.T) {
	timeout := 30 * time.Second
	fixture := fixtures.Fixture{Timeout: &timeout}

	adapter := NewAdapter(NewRegistry(), config.DefaultHarnessConfig())
	assert.Equal(t, timeout, adapter.timeoutFor(fixture))

	assert.Equal(t, config.DefaultTimeout, adapter.timeoutFor(fixtures.Fixture{}))
}
