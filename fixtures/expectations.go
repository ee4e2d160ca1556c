package fixtures

import (
	"strings"

	"github.com/flanksource/verdict/models"
)

// Expectations is everything a fixture demands from its analysis: the base
// outcome, optional rule identifiers that must appear, and an optional CEL
// expression.
type Expectations struct {
	Expect models.ExpectedOutcome `yaml:"expect,omitempty" json:"expect,omitempty"`
	Rules  []string               `yaml:"rules,omitempty" json:"rules,omitempty"`
	Expr   string                 `yaml:"expr,omitempty" json:"expr,omitempty"`
}

// ForFixture extracts the expectations declared on a fixture.
func ForFixture(f Fixture) Expectations {
	return Expectations{
		Expect: f.Expected,
		Rules:  f.Rules,
		Expr:   f.Expr,
	}
}

// Evaluate matches an analysis result against the expectations. The base
// outcome is checked first, rule and expression checks only run once it
// matched. Presence checks are binary, a single diagnostic of the right
// kind satisfies them.
func (e Expectations) Evaluate(outcome models.MatchOutcome, analysis models.AnalysisResult) models.MatchOutcome {
	outcome.Analysis = &analysis

	if pass, reason := e.Expect.Matches(analysis); !pass {
		return outcome.Failf("%s", reason)
	}

	for _, rule := range e.Rules {
		if !analysis.HasRule(rule) {
			reported := strings.Join(analysis.Rules(), ", ")
			if reported == "" {
				reported = "none"
			}
			return outcome.Failf("expected rule %s not reported, got: %s", rule, reported)
		}
	}

	if e.Expr != "" {
		evaluator, err := getDefaultEvaluator()
		if err != nil {
			return outcome.Errorf(err, "failed to create expression evaluator")
		}
		ok, err := evaluator.Evaluate(e.Expr, analysis)
		if err != nil {
			return outcome.Errorf(err, "failed to evaluate %q", e.Expr)
		}
		if !ok {
			return outcome.Failf("expression %q evaluated to false", e.Expr)
		}
	}

	return outcome.Passed()
}
