package checkers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/flanksource/commons/logger"

	"github.com/flanksource/verdict/analyzers/parsers"
	"github.com/flanksource/verdict/models"
)

const scratchGoMod = "module fixture\n\ngo 1.22\n"

// Golang analyzes fixtures with go vet and gofmt. Directory fixtures
// must carry a go.mod; single .go files are wrapped in a scratch module.
type Golang struct{}

var (
	_ LintChecker   = Golang{}
	_ FormatChecker = Golang{}
)

func (Golang) Name() string { return "go" }

func (Golang) Toolchain() models.Toolchain { return models.ToolchainGo }

func (Golang) Tools() []string { return []string{"go", "gofmt"} }

func (Golang) Prepare(inv *Invocation) (func(), error) {
	info, err := os.Stat(inv.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat fixture: %w", err)
	}

	if info.IsDir() {
		if _, err := os.Stat(filepath.Join(inv.Path, "go.mod")); err != nil {
			return nil, fmt.Errorf("fixture has no go.mod: %w", err)
		}
		inv.WorkDir = inv.Path
		return func() {}, nil
	}

	source, err := os.ReadFile(inv.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}

	dir, cleanup, err := scratchProject("go", map[string]string{
		"go.mod":                scratchGoMod,
		filepath.Base(inv.Path): string(source),
	})
	if err != nil {
		return nil, err
	}
	inv.WorkDir = dir
	return cleanup, nil
}

func (Golang) CheckLint(ctx context.Context, inv Invocation) ([]models.DiagnosticRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := execTool(inv, inv.Commands.Lint, "go", "vet", "./...")
	if err != nil {
		return nil, err
	}

	// Vet reports findings on stderr and exits non-zero when it finds
	// any, so the exit code alone proves nothing.
	diagnostics, parseErr := parsers.GoVet{}.Parse(strings.NewReader(result.Stderr))
	if parseErr != nil {
		if result.ExitCode != 0 {
			return nil, crash("go vet", result)
		}
		return nil, fmt.Errorf("go vet: %w", parseErr)
	}
	if result.ExitCode != 0 && len(diagnostics) == 0 {
		return nil, crash("go vet", result)
	}

	return diagnostics, nil
}

func (g Golang) CheckFormat(ctx context.Context, inv Invocation) ([]models.DiagnosticRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := execTool(inv, inv.Commands.Format, "gofmt", "-l", ".")
	if err != nil {
		return nil, err
	}
	if result.ExitCode != 0 {
		return nil, crash("gofmt", result)
	}

	diagnostics, parseErr := parsers.Gofmt{}.Parse(strings.NewReader(result.Stdout))
	if parseErr != nil {
		return nil, fmt.Errorf("gofmt: %w", parseErr)
	}

	for i := range diagnostics {
		diagnostics[i].Detail = g.formatDiff(inv, diagnostics[i].File)
	}
	return diagnostics, nil
}

// formatDiff renders what gofmt would change in one file. A diff failure
// leaves the detail empty.
func (Golang) formatDiff(inv Invocation, file string) string {
	path := file
	if !filepath.IsAbs(path) {
		path = filepath.Join(inv.WorkDir, path)
	}

	original, err := os.ReadFile(path)
	if err != nil {
		logger.V(3).Infof("failed to read %s for diff: %v", path, err)
		return ""
	}

	result, err := run(inv, "gofmt", path)
	if err != nil || result.ExitCode != 0 {
		return ""
	}
	return parsers.Diff(string(original), result.Stdout)
}
