package parsers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/samber/lo"

	"github.com/flanksource/verdict/models"
)

// clippyEvent is one line of `cargo clippy --message-format=json` output.
// Cargo emits several event kinds; only compiler-message events carry
// diagnostics, the rest (compiler-artifact, build-finished) are skipped.
type clippyEvent struct {
	Reason  string         `json:"reason"`
	Message *clippyMessage `json:"message,omitempty"`
}

type clippyMessage struct {
	Message  string       `json:"message"`
	Code     *clippyCode  `json:"code"`
	Level    string       `json:"level"`
	Spans    []clippySpan `json:"spans"`
	Rendered string       `json:"rendered"`
}

type clippyCode struct {
	Code string `json:"code"`
}

type clippySpan struct {
	FileName    string `json:"file_name"`
	LineStart   int    `json:"line_start"`
	ColumnStart int    `json:"column_start"`
	IsPrimary   bool   `json:"is_primary"`
}

// Clippy parses cargo clippy JSON output into lint diagnostics. Plain
// rustc warnings ride the same stream and are kept, they are lint
// findings whether or not a clippy:: code is attached.
type Clippy struct{}

func (Clippy) Tool() string { return ToolClippy }

func (Clippy) Parse(r io.Reader) ([]models.DiagnosticRecord, error) {
	var diagnostics []models.DiagnosticRecord

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var event clippyEvent
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			return nil, fmt.Errorf("line %d is not a cargo JSON event: %w", lineNo, err)
		}

		if record, ok := event.record(); ok {
			diagnostics = append(diagnostics, record)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read clippy output: %w", err)
	}

	return diagnostics, nil
}

// record converts a compiler-message event into a diagnostic. Events
// without a primary span are summaries like "2 warnings emitted" and
// produce nothing.
func (e clippyEvent) record() (models.DiagnosticRecord, bool) {
	if e.Reason != "compiler-message" || e.Message == nil {
		return models.DiagnosticRecord{}, false
	}

	msg := e.Message
	switch msg.Level {
	case "error", "warning":
	default:
		return models.DiagnosticRecord{}, false
	}

	span, ok := lo.Find(msg.Spans, func(s clippySpan) bool { return s.IsPrimary })
	if !ok {
		return models.DiagnosticRecord{}, false
	}

	record := models.DiagnosticRecord{
		Kind:     models.KindLint,
		Tool:     ToolClippy,
		Severity: models.ParseSeverity(msg.Level),
		Message:  msg.Message,
		File:     normalizePath(span.FileName),
		Line:     span.LineStart,
		Column:   span.ColumnStart,
		Detail:   strings.TrimSpace(msg.Rendered),
	}
	if msg.Code != nil {
		record.Rule = msg.Code.Code
	}
	return record, true
}
