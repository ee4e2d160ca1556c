package analyzers

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/flanksource/clicky/task"
	"github.com/flanksource/commons/logger"

	"github.com/flanksource/verdict/analyzers/checkers"
	"github.com/flanksource/verdict/config"
	"github.com/flanksource/verdict/fixtures"
	"github.com/flanksource/verdict/models"
)

// Adapter runs the registered analyzer for each fixture's toolchain and
// merges lint and format diagnostics into one AnalysisResult. Tool
// probes are cached for the lifetime of the adapter, one run probes
// cargo once, not once per fixture.
type Adapter struct {
	registry *Registry
	config   config.HarnessConfig

	mu     sync.Mutex
	probes map[models.Toolchain]toolProbe
}

type toolProbe struct {
	tools []models.ToolInfo
	err   error
}

func NewAdapter(registry *Registry, cfg config.HarnessConfig) *Adapter {
	return &Adapter{
		registry: registry,
		config:   cfg,
		probes:   make(map[models.Toolchain]toolProbe),
	}
}

// Analyze runs every capability the fixture's analyzer carries and
// returns the merged diagnostics. All tool failures surface as
// *InvocationError; matching diagnostics against the fixture's
// expectation happens elsewhere.
func (a *Adapter) Analyze(ctx context.Context, t *task.Task, fixture fixtures.Fixture) (result models.AnalysisResult, err error) {
	start := time.Now()
	result = models.AnalysisResult{Toolchain: fixture.Toolchain}
	defer func() {
		result.Duration = time.Since(start)
	}()

	analyzer, ok := a.registry.Get(fixture.Toolchain)
	if !ok {
		return result, &InvocationError{
			Toolchain: fixture.Toolchain,
			Op:        "prepare",
			Err:       fmt.Errorf("no analyzer registered for toolchain %s", fixture.Toolchain),
		}
	}

	tools, err := a.ensureTools(analyzer)
	if err != nil {
		return result, err
	}
	result.Tools = tools

	inv := checkers.Invocation{
		Path:     fixture.Path,
		Timeout:  a.timeoutFor(fixture),
		Commands: a.config.Commands[fixture.Toolchain.String()],
		Vars:     fixture.TemplateVars(),
		Task:     t,
	}

	cleanup, err := analyzer.Prepare(&inv)
	if err != nil {
		return result, &InvocationError{Toolchain: fixture.Toolchain, Op: "prepare", Err: err}
	}
	defer cleanup()

	if lint, ok := analyzer.(checkers.LintChecker); ok {
		diagnostics, err := lint.CheckLint(ctx, inv)
		if err != nil {
			return result, &InvocationError{Toolchain: fixture.Toolchain, Op: "lint", Err: err}
		}
		result.Diagnostics = append(result.Diagnostics, diagnostics...)
	}

	if format, ok := analyzer.(checkers.FormatChecker); ok {
		diagnostics, err := format.CheckFormat(ctx, inv)
		if err != nil {
			return result, &InvocationError{Toolchain: fixture.Toolchain, Op: "format", Err: err}
		}
		result.Diagnostics = append(result.Diagnostics, diagnostics...)
	}

	return result, nil
}

// ensureTools probes the analyzer's external tools once, verifying each
// is installed and satisfies the configured minimum version. The probe
// result, success or failure, is cached: a missing cargo fails every
// rust fixture the same way without re-probing.
func (a *Adapter) ensureTools(analyzer checkers.Analyzer) ([]models.ToolInfo, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if probe, ok := a.probes[analyzer.Toolchain()]; ok {
		return probe.tools, probe.err
	}

	probe := a.probe(analyzer)
	a.probes[analyzer.Toolchain()] = probe
	return probe.tools, probe.err
}

// ProbeToolchain resolves and version-checks the tools for one toolchain
// without analyzing anything. Probe results are cached either way.
func (a *Adapter) ProbeToolchain(toolchain models.Toolchain) ([]models.ToolInfo, error) {
	analyzer, ok := a.registry.Get(toolchain)
	if !ok {
		return nil, &InvocationError{
			Toolchain: toolchain,
			Op:        "prepare",
			Err:       fmt.Errorf("no analyzer registered for toolchain %s", toolchain),
		}
	}
	return a.ensureTools(analyzer)
}

func (a *Adapter) probe(analyzer checkers.Analyzer) toolProbe {
	var tools []models.ToolInfo

	for _, tool := range analyzer.Tools() {
		version, path, err := checkers.ToolVersion(tool)
		if err != nil {
			return toolProbe{err: &InvocationError{Toolchain: analyzer.Toolchain(), Op: "version", Err: err}}
		}
		logger.V(2).Infof("%s %s (%s)", tool, version, path)

		if min, ok := a.config.MinVersions[tool]; ok {
			required, err := semver.NewVersion(strings.TrimPrefix(min, "v"))
			if err != nil {
				return toolProbe{err: &InvocationError{
					Toolchain: analyzer.Toolchain(),
					Op:        "version",
					Err:       fmt.Errorf("invalid minimum version %q for %s: %w", min, tool, err),
				}}
			}
			if version.LessThan(required) {
				return toolProbe{err: &InvocationError{
					Toolchain: analyzer.Toolchain(),
					Op:        "version",
					Err:       fmt.Errorf("%s %s is older than required %s", tool, version, required),
				}}
			}
		}

		tools = append(tools, models.ToolInfo{
			Name:    tool,
			Version: version.String(),
			Path:    path,
		})
	}

	return toolProbe{tools: tools}
}

func (a *Adapter) timeoutFor(fixture fixtures.Fixture) time.Duration {
	if fixture.Timeout != nil {
		return *fixture.Timeout
	}
	return a.config.TimeoutDuration()
}
