// Package checkers implements the per-toolchain analyzers. Each checker
// shells out to that toolchain's lint and format tools and normalizes
// their output through the parsers package.
package checkers

import (
	"context"
	"time"

	"github.com/flanksource/clicky/task"

	"github.com/flanksource/verdict/config"
	"github.com/flanksource/verdict/models"
)

// Invocation carries everything a checker needs to analyze one fixture:
// the fixture source, the resolved working directory, and any command
// overrides from configuration.
type Invocation struct {
	// Path is the fixture source, a single file or a project directory.
	Path string

	// WorkDir is the directory tools run in. Prepare fills it, wrapping
	// single-file fixtures in a scratch project when tools need one.
	WorkDir string

	// Timeout bounds each tool run. Zero means no bound.
	Timeout time.Duration

	// Commands overrides the default tool command lines. Overrides are
	// gomplate templates run through bash -c; they may reference
	// {{.dir}}, {{.file}}, {{.filename}} and {{.ext}}.
	Commands config.ToolCommands

	// Vars feeds command templates, usually fixture.TemplateVars().
	Vars map[string]any

	// Task receives streamed tool output when running under a task group.
	Task *task.Task
}

// Analyzer identifies one toolchain's analysis tools. Concrete analyzers
// implement LintChecker, FormatChecker or both; the harness dispatches
// on which capabilities an analyzer carries.
type Analyzer interface {
	// Name identifies the analyzer in reports and registry listings.
	Name() string

	// Toolchain returns the toolchain this analyzer covers.
	Toolchain() models.Toolchain

	// Tools lists the external binaries the analyzer shells out to.
	// Each is probed before a run for availability and version gating.
	Tools() []string

	// Prepare resolves the invocation working directory, building a
	// scratch project around single-file fixtures when the tools are
	// project-scoped. The returned cleanup runs on every exit path.
	Prepare(inv *Invocation) (cleanup func(), err error)
}

// LintChecker runs the toolchain linter over a prepared fixture. An
// error means the tool could not deliver a verdict; a tool that found
// issues returns them as diagnostics with a nil error.
type LintChecker interface {
	Analyzer
	CheckLint(ctx context.Context, inv Invocation) ([]models.DiagnosticRecord, error)
}

// FormatChecker diffs a prepared fixture against canonical formatting.
type FormatChecker interface {
	Analyzer
	CheckFormat(ctx context.Context, inv Invocation) ([]models.DiagnosticRecord, error)
}
