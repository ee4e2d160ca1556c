package parsers

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/flanksource/verdict/models"
)

// GoVet parses `go vet` findings, one "file.go:line:col: message" line
// each, from the stderr stream. Package headers and module download
// chatter are skipped; indented lines attach to the preceding finding.
type GoVet struct{}

func (GoVet) Tool() string { return ToolGoVet }

func (GoVet) Parse(r io.Reader) ([]models.DiagnosticRecord, error) {
	var diagnostics []models.DiagnosticRecord

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			continue
		case strings.HasPrefix(trimmed, "#"):
			continue
		case strings.HasPrefix(trimmed, "go: "):
			continue
		}

		// Continuation lines carry suggested fixes or related positions.
		if line != trimmed && len(diagnostics) > 0 {
			last := &diagnostics[len(diagnostics)-1]
			if last.Detail != "" {
				last.Detail += "\n"
			}
			last.Detail += trimmed
			continue
		}

		record, ok := parseVetLine(trimmed)
		if !ok {
			return nil, fmt.Errorf("unrecognized go vet output: %s", trimmed)
		}
		diagnostics = append(diagnostics, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read go vet output: %w", err)
	}

	return diagnostics, nil
}

// parseVetLine splits "file.go:line:col: message". Lines with a "vet: "
// prefix are type or parse errors in the code under analysis, reported
// at error severity; regular findings are warnings.
func parseVetLine(line string) (models.DiagnosticRecord, bool) {
	severity := models.SeverityWarning
	if rest, ok := strings.CutPrefix(line, "vet: "); ok {
		severity = models.SeverityError
		line = rest
	}

	idx := strings.Index(line, ".go:")
	if idx < 0 {
		return models.DiagnosticRecord{}, false
	}

	file := normalizePath(line[:idx+3])
	parts := strings.SplitN(line[idx+4:], ":", 3)
	if len(parts) < 2 {
		return models.DiagnosticRecord{}, false
	}

	lineNo, err := strconv.Atoi(parts[0])
	if err != nil {
		return models.DiagnosticRecord{}, false
	}

	record := models.DiagnosticRecord{
		Kind:     models.KindLint,
		Tool:     ToolGoVet,
		Severity: severity,
		File:     file,
		Line:     lineNo,
	}

	// The column is optional: "file.go:3: message" is still valid.
	if len(parts) == 3 {
		if col, err := strconv.Atoi(parts[1]); err == nil {
			record.Column = col
			record.Message = strings.TrimSpace(parts[2])
			return record, record.Message != ""
		}
		record.Message = strings.TrimSpace(strings.Join(parts[1:], ":"))
		return record, record.Message != ""
	}

	record.Message = strings.TrimSpace(parts[1])
	return record, record.Message != ""
}
