package parsers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/samber/lo"

	"github.com/flanksource/verdict/models"
)

// ruffFinding is one entry of `ruff check --output-format=json`.
type ruffFinding struct {
	Code     *string      `json:"code"`
	Message  string       `json:"message"`
	Filename string       `json:"filename"`
	Location ruffLocation `json:"location"`
}

type ruffLocation struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

// RuffCheck parses ruff's JSON lint report. Findings without a rule code
// are syntax errors and surface at error severity.
type RuffCheck struct{}

func (RuffCheck) Tool() string { return ToolRuff }

func (RuffCheck) Parse(r io.Reader) ([]models.DiagnosticRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read ruff output: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, nil
	}

	var findings []ruffFinding
	if err := json.Unmarshal(data, &findings); err != nil {
		return nil, fmt.Errorf("ruff output is not a JSON report: %w", err)
	}

	return lo.Map(findings, func(f ruffFinding, _ int) models.DiagnosticRecord {
		record := models.DiagnosticRecord{
			Kind:     models.KindLint,
			Tool:     ToolRuff,
			Severity: models.SeverityError,
			Message:  f.Message,
			File:     normalizePath(f.Filename),
			Line:     f.Location.Row,
			Column:   f.Location.Column,
		}
		if f.Code != nil && *f.Code != "" {
			record.Rule = *f.Code
			record.Severity = models.SeverityWarning
		}
		return record
	}), nil
}

var ruffFormatSummary = regexp.MustCompile(`^\d+ files? (would be reformatted|already formatted|left unchanged)`)

// RuffFormat parses `ruff format --check` output, one "Would reformat:"
// line per file plus a trailing summary.
type RuffFormat struct{}

func (RuffFormat) Tool() string { return ToolRuff }

func (RuffFormat) Parse(r io.Reader) ([]models.DiagnosticRecord, error) {
	var diagnostics []models.DiagnosticRecord

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case ruffFormatSummary.MatchString(line):
			continue
		}

		file, ok := strings.CutPrefix(line, "Would reformat: ")
		if !ok {
			return nil, fmt.Errorf("unrecognized ruff format output: %s", line)
		}

		diagnostics = append(diagnostics, models.DiagnosticRecord{
			Kind:     models.KindFormat,
			Tool:     ToolRuff,
			Severity: models.SeverityWarning,
			Message:  "file is not ruff-formatted",
			File:     normalizePath(file),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ruff format output: %w", err)
	}

	return diagnostics, nil
}
