package models

import (
	"fmt"
	"strings"

	"github.com/flanksource/clicky/api"
)

// DiagnosticKind classifies a diagnostic as a lint finding or a formatting deviation.
type DiagnosticKind string

const (
	KindLint   DiagnosticKind = "lint"
	KindFormat DiagnosticKind = "format"
)

func (k DiagnosticKind) String() string {
	return string(k)
}

func (k DiagnosticKind) Style() string {
	switch k {
	case KindLint:
		return "text-yellow-600"
	case KindFormat:
		return "text-cyan-600"
	default:
		return "text-gray-500"
	}
}

// ParseDiagnosticKind converts a string to a DiagnosticKind type
func ParseDiagnosticKind(s string) (DiagnosticKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lint":
		return KindLint, nil
	case "format", "fmt":
		return KindFormat, nil
	default:
		return "", fmt.Errorf("unknown diagnostic kind: %q", s)
	}
}

// DiagnosticRecord is a single normalized finding reported by an analyzer tool.
// Tool-specific output (clippy JSON, rustfmt diffs, vet text) is flattened into
// this shape so matching and reporting never depend on the tool that produced it.
type DiagnosticRecord struct {
	Kind     DiagnosticKind `json:"kind" pretty:"label=Kind"`
	Tool     string         `json:"tool,omitempty" pretty:"label=Tool,style=text-gray-500,omitempty"`
	Rule     string         `json:"rule,omitempty" pretty:"label=Rule,style=text-purple-500,omitempty"`
	Severity Severity       `json:"severity,omitempty" pretty:"label=Severity,omitempty"`
	Message  string         `json:"message" pretty:"label=Message"`
	File     string         `json:"file,omitempty" pretty:"label=File,style=text-blue-600,omitempty"`
	Line     int            `json:"line,omitempty" pretty:"label=Line,omitempty"`
	Column   int            `json:"column,omitempty" pretty:"label=Column,omitempty"`

	// Detail carries raw supporting output, e.g. the unified diff a formatter
	// produced for the file.
	Detail string `json:"detail,omitempty"`
}

// Location returns file:line:column, omitting missing parts.
func (d DiagnosticRecord) Location() string {
	if d.File == "" {
		return ""
	}
	loc := d.File
	if d.Line > 0 {
		loc = fmt.Sprintf("%s:%d", loc, d.Line)
		if d.Column > 0 {
			loc = fmt.Sprintf("%s:%d", loc, d.Column)
		}
	}
	return loc
}

func (d DiagnosticRecord) String() string {
	parts := []string{string(d.Kind)}
	if d.Rule != "" {
		parts = append(parts, d.Rule)
	}
	if loc := d.Location(); loc != "" {
		parts = append(parts, loc)
	}
	parts = append(parts, d.Message)
	return strings.Join(parts, " ")
}

func (d DiagnosticRecord) Pretty() api.Text {
	t := api.Text{}.Append(string(d.Kind), d.Kind.Style())
	if d.Rule != "" {
		t = t.Append(" [").Append(d.Rule, "text-purple-500").Append("]")
	}
	if loc := d.Location(); loc != "" {
		t = t.Space().Append(loc, "text-blue-600")
	}
	return t.Space().Append(d.Message)
}
