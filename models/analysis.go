package models

import (
	"fmt"
	"time"

	"github.com/flanksource/clicky/api"
	"github.com/samber/lo"
)

// ToolInfo records which external tool produced part of an analysis.
type ToolInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
	Path    string `json:"path,omitempty"`
}

func (t ToolInfo) String() string {
	if t.Version == "" {
		return t.Name
	}
	return fmt.Sprintf("%s %s", t.Name, t.Version)
}

// AnalysisResult is the normalized output of analyzing one fixture: every
// diagnostic the tools reported, plus metadata about the tools themselves.
// An empty Diagnostics slice is a valid result and means the fixture is clean.
type AnalysisResult struct {
	Toolchain   Toolchain          `json:"toolchain,omitempty"`
	Diagnostics []DiagnosticRecord `json:"diagnostics,omitempty"`
	Tools       []ToolInfo         `json:"tools,omitempty"`
	Duration    time.Duration      `json:"duration,omitempty"`
}

// ByKind returns the diagnostics of the given kind, preserving report order.
func (r AnalysisResult) ByKind(kind DiagnosticKind) []DiagnosticRecord {
	return lo.Filter(r.Diagnostics, func(d DiagnosticRecord, _ int) bool {
		return d.Kind == kind
	})
}

func (r AnalysisResult) LintCount() int {
	return len(r.ByKind(KindLint))
}

func (r AnalysisResult) FormatCount() int {
	return len(r.ByKind(KindFormat))
}

// HasLint reports whether at least one lint diagnostic was recorded.
// Presence is binary, the count beyond the first does not matter.
func (r AnalysisResult) HasLint() bool {
	return r.LintCount() > 0
}

// HasFormat reports whether at least one format diagnostic was recorded.
func (r AnalysisResult) HasFormat() bool {
	return r.FormatCount() > 0
}

// Rules returns the distinct rule identifiers seen across all diagnostics.
func (r AnalysisResult) Rules() []string {
	rules := lo.FilterMap(r.Diagnostics, func(d DiagnosticRecord, _ int) (string, bool) {
		return d.Rule, d.Rule != ""
	})
	return lo.Uniq(rules)
}

// HasRule reports whether any diagnostic carries the given rule identifier.
func (r AnalysisResult) HasRule(rule string) bool {
	return lo.ContainsBy(r.Diagnostics, func(d DiagnosticRecord) bool {
		return d.Rule == rule
	})
}

// Severities returns the distribution of tool-reported severities.
func (r AnalysisResult) Severities() SeverityDistribution {
	dist := SeverityDistribution{}
	for _, d := range r.Diagnostics {
		dist.Add(d.Severity)
	}
	return dist
}

func (r AnalysisResult) String() string {
	return fmt.Sprintf("%d lint, %d format", r.LintCount(), r.FormatCount())
}

func (r AnalysisResult) Pretty() api.Text {
	t := api.Text{}
	if lint := r.LintCount(); lint > 0 {
		t = t.Append(fmt.Sprintf("%d lint", lint), KindLint.Style())
	}
	if format := r.FormatCount(); format > 0 {
		if !t.IsEmpty() {
			t = t.Append(", ", "text-gray-500")
		}
		t = t.Append(fmt.Sprintf("%d format", format), KindFormat.Style())
	}
	if t.IsEmpty() {
		t = t.Append("no diagnostics", "text-green-500")
	}
	return t
}
