// Package parsers converts raw analyzer tool output into normalized
// diagnostic records. Each parser understands exactly one tool's output
// format, clippy JSON lines, rustfmt diffs, vet text, ruff JSON.
package parsers

import (
	"io"
	"strings"

	"github.com/flanksource/verdict/models"
)

// Tool names as they appear on diagnostic records.
const (
	ToolClippy  = "clippy"
	ToolRustfmt = "rustfmt"
	ToolGoVet   = "go vet"
	ToolGofmt   = "gofmt"
	ToolRuff    = "ruff"
)

// DiagnosticParser converts one tool's raw output into diagnostics.
// Parse is strict: output that does not match the tool's format is an
// error, distinguishing a crashed tool from a tool that found issues.
type DiagnosticParser interface {
	// Tool returns the tool name stamped on parsed diagnostics.
	Tool() string

	// Parse reads the tool output and returns normalized diagnostics.
	// An empty result with a nil error means the tool found nothing.
	Parse(r io.Reader) ([]models.DiagnosticRecord, error)
}

// normalizePath strips the noise tools prepend to file paths, "./" prefixes
// and trailing colons, keeping paths comparable across tools.
func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	path = strings.TrimPrefix(path, "./")
	return strings.TrimSuffix(path, ":")
}
