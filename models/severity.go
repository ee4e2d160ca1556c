package models

import "strings"

// Severity represents the severity level a tool assigned to a diagnostic
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityNote    Severity = "note"
	SeverityHelp    Severity = "help"
)

// Value returns the numeric value for ordering/comparison
// Higher values indicate higher severity
func (s Severity) Value() int {
	switch s {
	case SeverityError:
		return 4
	case SeverityWarning:
		return 3
	case SeverityNote:
		return 2
	case SeverityHelp:
		return 1
	default:
		return 0
	}
}

// String returns the string representation
func (s Severity) String() string {
	return string(s)
}

// ParseSeverity converts a tool-reported level to a Severity type
func ParseSeverity(s string) Severity {
	switch strings.ToLower(s) {
	case "error", "e", "fatal":
		return SeverityError
	case "warning", "warn", "w":
		return SeverityWarning
	case "note", "info":
		return SeverityNote
	case "help", "hint":
		return SeverityHelp
	default:
		return SeverityWarning // default fallback
	}
}

// MaxSeverity returns the higher severity between two severities
func MaxSeverity(a, b Severity) Severity {
	if a.Value() > b.Value() {
		return a
	}
	return b
}

// SeverityDistribution tracks counts of each severity level
type SeverityDistribution struct {
	Error   int `json:"error,omitempty"`
	Warning int `json:"warning,omitempty"`
	Note    int `json:"note,omitempty"`
	Help    int `json:"help,omitempty"`
}

// Add increments the count for the given severity
func (sd *SeverityDistribution) Add(s Severity) {
	switch s {
	case SeverityError:
		sd.Error++
	case SeverityWarning:
		sd.Warning++
	case SeverityNote:
		sd.Note++
	case SeverityHelp:
		sd.Help++
	}
}

// Total returns the total count across all severities
func (sd *SeverityDistribution) Total() int {
	return sd.Error + sd.Warning + sd.Note + sd.Help
}

// Max returns the highest severity with non-zero count
func (sd *SeverityDistribution) Max() Severity {
	if sd.Error > 0 {
		return SeverityError
	}
	if sd.Warning > 0 {
		return SeverityWarning
	}
	if sd.Note > 0 {
		return SeverityNote
	}
	if sd.Help > 0 {
		return SeverityHelp
	}
	return SeverityWarning
}
