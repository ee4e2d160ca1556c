// Package fixtures loads and matches verification fixtures: sample source
// trees paired with the lint/format outcome an analyzer is expected to
// produce for them.
//
// Fixtures are declared in manifests, either YAML or markdown tables.
// Loading is eager, every declaration is parsed and validated before a run
// starts, and declarations that cannot be loaded are excluded with a warning
// while the rest of the run proceeds.
//
// # YAML Manifest Format
//
// Declare fixtures in a verdict-fixtures.yaml file:
//
//	toolchain: rust
//	timeout: 90s
//	fixtures:
//	  - name: clean-crate
//	    path: clean-crate
//	    expect: clean
//	  - name: bad-lint
//	    path: crates/bad lint
//	    expect: lint-issues
//	    rules:
//	      - clippy::needless_return
//
// # Markdown Manifest Format
//
// Declare fixtures as markdown table rows in a fixtures.md file:
//
//	| Fixture     | Path         | Expect        | Rules                   |
//	|-------------|--------------|---------------|-------------------------|
//	| clean-crate | clean-crate/ | clean         |                         |
//	| bad-fmt     | bad-fmt/     | format-issues |                         |
//	| bad-both    | bad-both/    | both          | clippy::needless_return |
//
// File-level defaults (toolchain, expect, timeout) come from YAML
// front-matter at the top of the file.
//
// # Expectations
//
// Four outcomes can be declared:
//
//   - clean: the analyzer must report no diagnostics at all
//   - lint-issues: at least one lint diagnostic must be reported
//   - format-issues: at least one format diagnostic must be reported
//   - both: at least one diagnostic of each kind must be reported
//
// Presence is binary. A fixture expecting lint-issues passes whether the
// analyzer reports one lint diagnostic or fifty.
//
// # CEL Expressions
//
// An optional expr refines the check after the base expectation matched:
//
//	lint >= 2 && format == 0
//	rules.exists(r, r.startsWith("clippy::"))
//	diagnostics.all(d, d.severity != "error")
//
// Expressions are compiled at load time, a malformed expression excludes the
// fixture instead of failing mid-run.
//
// # Toolchain Detection
//
// When a fixture does not declare its toolchain it is detected from the
// fixture path: Cargo.toml marks a Rust crate, go.mod a Go module,
// pyproject.toml or requirements.txt a Python project. Single files are
// classified by extension.
//
// See also: github.com/flanksource/verdict/harness for running loaded
// fixtures through analyzers.
package fixtures
