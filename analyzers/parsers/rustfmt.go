package parsers

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/flanksource/verdict/models"
)

// rustfmt --check prints one block per mis-formatted region:
//
//	Diff in /work/src/main.rs at line 1:
//	 fn main() {
//	-let x = 1;
//	+    let x = 1;
//	 }
//
// Newer releases use "Diff in file.rs:1:" headers; both are accepted.
var rustfmtDiffHeader = regexp.MustCompile(`^Diff in (.+?)(?: at line |:)(\d+):?\s*$`)

// Rustfmt parses `rustfmt --check` and `cargo fmt --check` output into
// format diagnostics, one per diff block, with the diff as detail.
type Rustfmt struct{}

func (Rustfmt) Tool() string { return ToolRustfmt }

func (Rustfmt) Parse(r io.Reader) ([]models.DiagnosticRecord, error) {
	var diagnostics []models.DiagnosticRecord
	var detail []string

	flush := func() {
		if len(diagnostics) == 0 {
			return
		}
		last := &diagnostics[len(diagnostics)-1]
		last.Detail = strings.TrimRight(strings.Join(detail, "\n"), "\n")
		detail = nil
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()

		if match := rustfmtDiffHeader.FindStringSubmatch(line); match != nil {
			flush()
			lineNo, _ := strconv.Atoi(match[2])
			diagnostics = append(diagnostics, models.DiagnosticRecord{
				Kind:     models.KindFormat,
				Tool:     ToolRustfmt,
				Severity: models.SeverityWarning,
				Message:  fmt.Sprintf("formatting differs starting at line %d", lineNo),
				File:     normalizePath(match[1]),
				Line:     lineNo,
			})
			continue
		}

		if len(diagnostics) > 0 {
			detail = append(detail, line)
			continue
		}
		if strings.TrimSpace(line) != "" {
			return nil, fmt.Errorf("unrecognized rustfmt output: %s", line)
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rustfmt output: %w", err)
	}
	return diagnostics, nil
}
