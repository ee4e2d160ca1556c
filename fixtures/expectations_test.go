package fixtures

import (
	"testing"

	"github.com/flanksource/clicky/task"
	"github.com/flanksource/verdict/models"
	"github.com/stretchr/testify/assert"
)

func lintDiag(rule string) models.DiagnosticRecord {
	return models.DiagnosticRecord{
		Kind:     models.KindLint,
		Tool:     "clippy",
		Rule:     rule,
		Severity: models.SeverityWarning,
		Message:  "lint finding",
		File:     "src/main.rs",
		Line:     3,
	}
}

func formatDiag() models.DiagnosticRecord {
	return models.DiagnosticRecord{
		Kind:    models.KindFormat,
		Tool:    "rustfmt",
		Message: "formatting differs",
		File:    "src/main.rs",
	}
}

func TestEvaluateBaseExpectation(t *testing.T) {
	tests := []struct {
		name       string
		expect     models.ExpectedOutcome
		analysis   models.AnalysisResult
		wantStatus task.Status
		wantReason string
	}{
		{
			name:       "clean passes on empty analysis",
			expect:     models.ExpectClean,
			analysis:   models.AnalysisResult{},
			wantStatus: task.StatusPASS,
		},
		{
			name:       "clean fails on any diagnostic",
			expect:     models.ExpectClean,
			analysis:   models.AnalysisResult{Diagnostics: []models.DiagnosticRecord{formatDiag()}},
			wantStatus: task.StatusFAIL,
			wantReason: "unexpected diagnostics: 0 lint, 1 format",
		},
		{
			name:       "lint-issues passes regardless of format noise",
			expect:     models.ExpectLintIssues,
			analysis:   models.AnalysisResult{Diagnostics: []models.DiagnosticRecord{lintDiag("clippy::needless_return"), formatDiag()}},
			wantStatus: task.StatusPASS,
		},
		{
			name:       "both fails when one side is missing",
			expect:     models.ExpectBoth,
			analysis:   models.AnalysisResult{Diagnostics: []models.DiagnosticRecord{lintDiag("clippy::needless_return")}},
			wantStatus: task.StatusFAIL,
			wantReason: "expected both kinds, found 1 lint and 0 format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectations := Expectations{Expect: tt.expect}
			outcome := expectations.Evaluate(models.MatchOutcome{Fixture: "fx"}, tt.analysis)

			assert.Equal(t, tt.wantStatus, outcome.Status)
			assert.Equal(t, tt.wantReason, outcome.Reason)
			if assert.NotNil(t, outcome.Analysis) {
				assert.Equal(t, len(tt.analysis.Diagnostics), len(outcome.Analysis.Diagnostics))
			}
		})
	}
}

func TestEvaluateRules(t *testing.T) {
	analysis := models.AnalysisResult{Diagnostics: []models.DiagnosticRecord{
		lintDiag("clippy::needless_return"),
		lintDiag("clippy::redundant_clone"),
	}}

	expectations := Expectations{
		Expect: models.ExpectLintIssues,
		Rules:  []string{"clippy::needless_return", "clippy::redundant_clone"},
	}
	outcome := expectations.Evaluate(models.MatchOutcome{Fixture: "fx"}, analysis)
	assert.Equal(t, task.StatusPASS, outcome.Status)

	expectations.Rules = []string{"clippy::unwrap_used"}
	outcome = expectations.Evaluate(models.MatchOutcome{Fixture: "fx"}, analysis)
	assert.Equal(t, task.StatusFAIL, outcome.Status)
	assert.Equal(t, "expected rule clippy::unwrap_used not reported, got: clippy::needless_return, clippy::redundant_clone", outcome.Reason)
}

func TestEvaluateRulesSkippedWhenBaseFails(t *testing.T) {
	expectations := Expectations{
		Expect: models.ExpectLintIssues,
		Rules:  []string{"clippy::needless_return"},
	}

	outcome := expectations.Evaluate(models.MatchOutcome{Fixture: "fx"}, models.AnalysisResult{})
	assert.Equal(t, task.StatusFAIL, outcome.Status)
	assert.Equal(t, "expected lint issues, found none", outcome.Reason)
}

func TestEvaluateExpr(t *testing.T) {
	analysis := models.AnalysisResult{Diagnostics: []models.DiagnosticRecord{
		lintDiag("clippy::needless_return"),
		lintDiag("clippy::redundant_clone"),
		formatDiag(),
	}}

	tests := []struct {
		name       string
		expr       string
		wantStatus task.Status
	}{
		{name: "count comparison", expr: "lint == 2 && format == 1", wantStatus: task.StatusPASS},
		{name: "total", expr: "total >= 3", wantStatus: task.StatusPASS},
		{name: "rule membership", expr: `rules.exists(r, r.startsWith("clippy::"))`, wantStatus: task.StatusPASS},
		{name: "diagnostic fields", expr: `diagnostics.all(d, d.severity != "error")`, wantStatus: task.StatusPASS},
		{name: "false expression", expr: "lint > 10", wantStatus: task.StatusFAIL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectations := Expectations{Expect: models.ExpectBoth, Expr: tt.expr}
			outcome := expectations.Evaluate(models.MatchOutcome{Fixture: "fx"}, analysis)
			assert.Equal(t, tt.wantStatus, outcome.Status, "reason: %s", outcome.Reason)
		})
	}
}

func TestEvaluateExprError(t *testing.T) {
	expectations := Expectations{Expect: models.ExpectClean, Expr: "no_such_var > 1"}
	outcome := expectations.Evaluate(models.MatchOutcome{Fixture: "fx"}, models.AnalysisResult{})
	assert.Equal(t, task.StatusERR, outcome.Status)
	assert.Contains(t, outcome.Reason, "no_such_var")
}

func TestForFixture(t *testing.T) {
	fixture := Fixture{
		Name:     "bad-lint",
		Expected: models.ExpectLintIssues,
		Rules:    []string{"clippy::needless_return"},
		Expr:     "lint >= 1",
	}

	expectations := ForFixture(fixture)
	assert.Equal(t, models.ExpectLintIssues, expectations.Expect)
	assert.Equal(t, []string{"clippy::needless_return"}, expectations.Rules)
	assert.Equal(t, "lint >= 1", expectations.Expr)
}
