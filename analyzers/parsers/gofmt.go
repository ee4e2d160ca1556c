package parsers

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/flanksource/verdict/models"
)

// Gofmt parses `gofmt -l` output, a bare list of files that differ from
// canonical formatting. The caller attaches the per-file diff as detail.
type Gofmt struct{}

func (Gofmt) Tool() string { return ToolGofmt }

func (Gofmt) Parse(r io.Reader) ([]models.DiagnosticRecord, error) {
	var diagnostics []models.DiagnosticRecord

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !strings.HasSuffix(line, ".go") {
			return nil, fmt.Errorf("unrecognized gofmt output: %s", line)
		}

		diagnostics = append(diagnostics, models.DiagnosticRecord{
			Kind:     models.KindFormat,
			Tool:     ToolGofmt,
			Severity: models.SeverityWarning,
			Message:  "file is not gofmt-formatted",
			File:     normalizePath(line),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read gofmt output: %w", err)
	}

	return diagnostics, nil
}
