package checkers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/flanksource/verdict/analyzers/parsers"
	"github.com/flanksource/verdict/models"
)

// Python analyzes fixtures with ruff, covering both its linter and its
// formatter. Ruff runs directly on files, so single-file fixtures need
// no scratch project.
type Python struct{}

var (
	_ LintChecker   = Python{}
	_ FormatChecker = Python{}
)

func (Python) Name() string { return "python" }

func (Python) Toolchain() models.Toolchain { return models.ToolchainPython }

func (Python) Tools() []string { return []string{"ruff"} }

func (Python) Prepare(inv *Invocation) (func(), error) {
	info, err := os.Stat(inv.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat fixture: %w", err)
	}

	if info.IsDir() {
		inv.WorkDir = inv.Path
	} else {
		inv.WorkDir = filepath.Dir(inv.Path)
	}
	return func() {}, nil
}

func (p Python) CheckLint(ctx context.Context, inv Invocation) ([]models.DiagnosticRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := execTool(inv, inv.Commands.Lint, "ruff", "check", "--output-format=json", p.target(inv))
	if err != nil {
		return nil, err
	}

	// Ruff exits 1 when it finds violations and 2 when it cannot run.
	if result.ExitCode > 1 {
		return nil, crash("ruff check", result)
	}

	diagnostics, parseErr := parsers.RuffCheck{}.Parse(strings.NewReader(result.Stdout))
	if parseErr != nil {
		return nil, fmt.Errorf("ruff check: %w", parseErr)
	}
	return diagnostics, nil
}

func (p Python) CheckFormat(ctx context.Context, inv Invocation) ([]models.DiagnosticRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := execTool(inv, inv.Commands.Format, "ruff", "format", "--check", p.target(inv))
	if err != nil {
		return nil, err
	}
	if result.ExitCode > 1 {
		return nil, crash("ruff format", result)
	}

	diagnostics, parseErr := parsers.RuffFormat{}.Parse(strings.NewReader(result.Stdout))
	if parseErr != nil {
		return nil, fmt.Errorf("ruff format: %w", parseErr)
	}
	return diagnostics, nil
}

// target picks what ruff is pointed at, the whole directory for project
// fixtures or the bare file for single-file ones.
func (Python) target(inv Invocation) string {
	if inv.WorkDir == inv.Path {
		return "."
	}
	return filepath.Base(inv.Path)
}
