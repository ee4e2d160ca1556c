package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/flanksource/clicky/api"
	"github.com/flanksource/clicky/task"
)

// ExpectedOutcome declares what an analyzer run over a fixture should find.
type ExpectedOutcome string

const (
	// ExpectClean passes only when the analyzer reports no diagnostics at all.
	ExpectClean ExpectedOutcome = "clean"
	// ExpectLintIssues passes when at least one lint diagnostic is reported.
	ExpectLintIssues ExpectedOutcome = "lint-issues"
	// ExpectFormatIssues passes when at least one format diagnostic is reported.
	ExpectFormatIssues ExpectedOutcome = "format-issues"
	// ExpectBoth passes when at least one of each kind is reported.
	ExpectBoth ExpectedOutcome = "both"
)

func (e ExpectedOutcome) String() string {
	return string(e)
}

func (e ExpectedOutcome) Describe() string {
	switch e {
	case ExpectClean:
		return "no diagnostics"
	case ExpectLintIssues:
		return "at least one lint issue"
	case ExpectFormatIssues:
		return "at least one format issue"
	case ExpectBoth:
		return "lint and format issues"
	default:
		return string(e)
	}
}

// ParseExpectedOutcome converts a manifest value to an ExpectedOutcome.
// Unlike tool severities there is no safe fallback, a typo here would
// silently invert a verdict, so unknown values are an error.
func ParseExpectedOutcome(s string) (ExpectedOutcome, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "clean", "none":
		return ExpectClean, nil
	case "lint-issues", "lint":
		return ExpectLintIssues, nil
	case "format-issues", "format":
		return ExpectFormatIssues, nil
	case "both", "lint-and-format":
		return ExpectBoth, nil
	default:
		return "", fmt.Errorf("unknown expected outcome: %q (want clean, lint-issues, format-issues or both)", s)
	}
}

// Matches applies the expectation to an analysis result. Presence is binary,
// one diagnostic of a kind satisfies the expectation as well as fifty.
// The returned reason is empty on a match.
func (e ExpectedOutcome) Matches(r AnalysisResult) (bool, string) {
	lint, format := r.LintCount(), r.FormatCount()
	switch e {
	case ExpectClean:
		if len(r.Diagnostics) == 0 {
			return true, ""
		}
		return false, fmt.Sprintf("unexpected diagnostics: %d lint, %d format", lint, format)
	case ExpectLintIssues:
		if lint > 0 {
			return true, ""
		}
		return false, "expected lint issues, found none"
	case ExpectFormatIssues:
		if format > 0 {
			return true, ""
		}
		return false, "expected format issues, found none"
	case ExpectBoth:
		if lint > 0 && format > 0 {
			return true, ""
		}
		return false, fmt.Sprintf("expected both kinds, found %d lint and %d format", lint, format)
	default:
		return false, fmt.Sprintf("unknown expectation %q", e)
	}
}

// MatchOutcome represents the verdict for a single fixture.
// It contains the expectation, the analysis it was matched against, and
// metadata about the run.
type MatchOutcome struct {
	// Core fields
	Fixture   string          `json:"fixture" pretty:"label=Fixture,style=text-blue-600"`
	Toolchain Toolchain       `json:"toolchain,omitempty" pretty:"label=Toolchain,style=text-gray-500,omitempty"`
	Expected  ExpectedOutcome `json:"expected,omitempty" pretty:"label=Expected,omitempty"`
	Status    task.Status     `json:"status,omitempty"`
	Duration  time.Duration   `json:"duration,omitempty" pretty:"label=Duration,style=text-yellow-600,omitempty"`

	// Result data
	Reason   string          `json:"reason,omitempty" pretty:"label=Reason,style=text-red-600,omitempty"`
	Analysis *AnalysisResult `json:"analysis,omitempty"`

	Start *time.Time `json:"start,omitempty" pretty:"label=Start Time,omitempty"`
}

func (m MatchOutcome) Passed() MatchOutcome {
	if m.Start != nil {
		m.Duration = time.Since(*m.Start)
	}
	m.Status = task.StatusPASS
	return m
}

func (m MatchOutcome) Failf(format string, args ...interface{}) MatchOutcome {
	if m.Start != nil {
		m.Duration = time.Since(*m.Start)
	}
	m.Status = task.StatusFAIL
	m.Reason = fmt.Sprintf(format, args...)
	return m
}

func (m MatchOutcome) Errorf(err error, format string, args ...interface{}) MatchOutcome {
	if m.Start != nil {
		m.Duration = time.Since(*m.Start)
	}
	m.Status = task.StatusERR
	m.Reason = err.Error() + ": " + fmt.Sprintf(format, args...)
	return m
}

func (m MatchOutcome) Skipf(format string, args ...interface{}) MatchOutcome {
	m.Status = task.StatusSKIP
	m.Reason = fmt.Sprintf(format, args...)
	return m
}

// Cancelf marks a fixture whose verification never finished. Cancelled
// fixtures count as errors in run stats, an interrupted run is not green.
func (m MatchOutcome) Cancelf(format string, args ...interface{}) MatchOutcome {
	if m.Start != nil {
		m.Duration = time.Since(*m.Start)
	}
	m.Status = task.StatusCancelled
	m.Reason = fmt.Sprintf(format, args...)
	return m
}

func (m MatchOutcome) IsOK() bool {
	return m.Status == task.StatusPASS || m.Status == task.StatusSuccess
}

func (m MatchOutcome) Stats() Stats {
	switch m.Status {
	case task.StatusPASS, task.StatusSuccess:
		return Stats{Passed: 1, Total: 1}
	case task.StatusFAIL, task.StatusFailed:
		return Stats{Failed: 1, Total: 1}
	case task.StatusSKIP:
		return Stats{Excluded: 1, Total: 1}
	case task.StatusERR, task.StatusCancelled:
		return Stats{Error: 1, Total: 1}
	default:
		return Stats{}
	}
}

func (m MatchOutcome) String() string {
	return fmt.Sprintf("%s - %s", m.Fixture, m.Status.String())
}

func (m MatchOutcome) Pretty() api.Text {
	t := m.Status.Pretty().Append(" ").Append(m.Fixture, "text-blue-600")
	if m.Reason != "" {
		t = t.Space().Append(m.Reason, "text-red-600")
	}
	if m.Analysis != nil && len(m.Analysis.Diagnostics) > 0 {
		t = t.Space().Append("(").Add(m.Analysis.Pretty()).Append(")")
	}
	return t
}

// Stats provides summary statistics for a harness run.
type Stats struct {
	Total    int `json:"total,omitempty"`
	Passed   int `json:"passed,omitempty"`
	Failed   int `json:"failed,omitempty"`
	Excluded int `json:"excluded,omitempty"`
	Error    int `json:"error,omitempty"`
}

func (s Stats) Merge(o Stats) Stats {
	return Stats{
		Total:    s.Total + o.Total,
		Passed:   s.Passed + o.Passed,
		Failed:   s.Failed + o.Failed,
		Excluded: s.Excluded + o.Excluded,
		Error:    s.Error + o.Error,
	}
}

func (s Stats) Add(outcome *MatchOutcome) Stats {
	if outcome == nil {
		return s
	}
	return s.Merge(outcome.Stats())
}

// IsOK reports whether every fixture passed. Excluded fixtures and
// invocation errors count against the run, only a fully green report is OK.
func (s Stats) IsOK() bool {
	return s.Total > 0 && s.Passed == s.Total
}

func (s Stats) HasFailures() bool {
	return s.Failed > 0 || s.Error > 0
}

// Pretty prints counts, green for passed, red for failed and errors,
// yellow for excluded
func (s Stats) Pretty() api.Text {
	t := api.Text{}
	if s.Passed > 0 {
		t = t.Append(strconv.Itoa(s.Passed), "text-green-500")
	}
	if s.Failed > 0 {
		if !t.IsEmpty() {
			t = t.Append("/", "text-gray-500")
		}
		t = t.Append(strconv.Itoa(s.Failed), "text-red-500")
	}
	if s.Excluded > 0 {
		t = t.Append(fmt.Sprintf(" %d excluded", s.Excluded), "text-yellow-500")
	}
	if s.Error > 0 {
		t = t.Append(fmt.Sprintf(" %d errors", s.Error), "text-red-500")
	}
	return t
}

func (s Stats) String() string {
	if s.Total == 0 {
		return "-"
	}
	str := fmt.Sprintf("%d/%d", s.Passed, s.Total)

	if s.Excluded > 0 {
		str += fmt.Sprintf(" %d excluded", s.Excluded)
	}

	if s.Error > 0 {
		str += fmt.Sprintf(" %d error", s.Error)
	}

	return str
}

func (s *Stats) Health() task.Health {
	if s.Failed+s.Error > 0 {
		return task.HealthError
	}
	if s.Total == 0 || s.Excluded > 0 {
		return task.HealthWarning
	}
	return task.HealthOK
}
