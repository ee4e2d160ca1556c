package checkers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/flanksource/commons/logger"

	"github.com/flanksource/verdict/analyzers/parsers"
	"github.com/flanksource/verdict/models"
)

// cargoManifest is the slice of Cargo.toml the checker cares about,
// enough to name the crate in logs and confirm the manifest parses
// before cargo is asked to.
type cargoManifest struct {
	Package cargoPackage `toml:"package"`
}

type cargoPackage struct {
	Name    string `toml:"name"`
	Edition string `toml:"edition"`
}

const scratchCargoToml = `[package]
name = "fixture"
version = "0.1.0"
edition = "2021"
`

// Rust analyzes fixtures with cargo clippy and rustfmt. Directory
// fixtures must carry a Cargo.toml; single .rs files are wrapped in a
// scratch crate first.
type Rust struct{}

var (
	_ LintChecker   = Rust{}
	_ FormatChecker = Rust{}
)

func (Rust) Name() string { return "rust" }

func (Rust) Toolchain() models.Toolchain { return models.ToolchainRust }

func (Rust) Tools() []string { return []string{"cargo", "rustfmt"} }

func (Rust) Prepare(inv *Invocation) (func(), error) {
	info, err := os.Stat(inv.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat fixture: %w", err)
	}

	if info.IsDir() {
		manifest := filepath.Join(inv.Path, "Cargo.toml")
		var crate cargoManifest
		if _, err := toml.DecodeFile(manifest, &crate); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", manifest, err)
		}
		logger.V(3).Infof("analyzing crate %s", crate.Package.Name)
		inv.WorkDir = inv.Path
		return func() {}, nil
	}

	source, err := os.ReadFile(inv.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}

	// Snippets without an entry point become library crates so cargo
	// does not demand a main function.
	target := "src/lib.rs"
	if strings.Contains(string(source), "fn main") {
		target = "src/main.rs"
	}

	dir, cleanup, err := scratchProject("rust", map[string]string{
		"Cargo.toml": scratchCargoToml,
		target:       string(source),
	})
	if err != nil {
		return nil, err
	}
	inv.WorkDir = dir
	return cleanup, nil
}

func (r Rust) CheckLint(ctx context.Context, inv Invocation) ([]models.DiagnosticRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := execTool(inv, inv.Commands.Lint, "cargo", "clippy", "--message-format=json", "--quiet")
	if err != nil {
		return nil, err
	}

	diagnostics, parseErr := parsers.Clippy{}.Parse(strings.NewReader(result.Stdout))
	if parseErr != nil {
		if result.ExitCode != 0 {
			return nil, crash("cargo clippy", result)
		}
		return nil, fmt.Errorf("cargo clippy: %w", parseErr)
	}

	// Clippy exits non-zero when the crate does not compile; compile
	// errors still arrive as JSON diagnostics. A non-zero exit with
	// nothing parsed means cargo itself fell over.
	if result.ExitCode != 0 && len(diagnostics) == 0 {
		return nil, crash("cargo clippy", result)
	}

	return r.remapScratch(inv, diagnostics), nil
}

func (r Rust) CheckFormat(ctx context.Context, inv Invocation) ([]models.DiagnosticRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := execTool(inv, inv.Commands.Format, "cargo", "fmt", "--check")
	if err != nil {
		return nil, err
	}

	diagnostics, parseErr := parsers.Rustfmt{}.Parse(strings.NewReader(result.Stdout))
	if parseErr != nil {
		return nil, fmt.Errorf("cargo fmt: %w", parseErr)
	}
	if result.ExitCode != 0 && len(diagnostics) == 0 {
		return nil, crash("cargo fmt", result)
	}

	return r.remapScratch(inv, diagnostics), nil
}

// remapScratch rewrites scratch-crate paths back to the fixture file so
// diagnostics point at the real source.
func (Rust) remapScratch(inv Invocation, diagnostics []models.DiagnosticRecord) []models.DiagnosticRecord {
	if inv.WorkDir == inv.Path || inv.WorkDir == "" {
		return diagnostics
	}

	base := filepath.Base(inv.Path)
	for i := range diagnostics {
		file := diagnostics[i].File
		if filepath.IsAbs(file) {
			if rel, err := filepath.Rel(inv.WorkDir, file); err == nil && !strings.HasPrefix(rel, "..") {
				file = rel
			}
		}
		switch file {
		case "src/main.rs", "src/lib.rs":
			diagnostics[i].File = base
		}
	}
	return diagnostics
}
