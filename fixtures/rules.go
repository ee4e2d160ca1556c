package fixtures

import (
	"fmt"
	"sync"

	"github.com/flanksource/verdict/models"
	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/ext"
)

// ExprEvaluator compiles and evaluates fixture CEL expressions against
// analysis results.
type ExprEvaluator struct {
	env *cel.Env
}

// NewExprEvaluator creates an evaluator with the analysis context declared:
//
//	lint        - number of lint diagnostics
//	format      - number of format diagnostics
//	total       - total diagnostic count
//	rules       - distinct rule identifiers reported
//	diagnostics - full diagnostic records
func NewExprEvaluator() (*ExprEvaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("lint", cel.IntType),
		cel.Variable("format", cel.IntType),
		cel.Variable("total", cel.IntType),
		cel.Variable("rules", cel.ListType(cel.StringType)),
		cel.Variable("diagnostics", cel.ListType(cel.MapType(cel.StringType, cel.DynType))),
		ext.Strings(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return &ExprEvaluator{env: env}, nil
}

// Compile compiles a CEL expression into a program
func (e *ExprEvaluator) Compile(expr string) (cel.Program, error) {
	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("CEL compilation error: %w", issues.Err())
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("CEL program creation error: %w", err)
	}

	return program, nil
}

// Evaluate compiles and runs an expression against the analysis result.
func (e *ExprEvaluator) Evaluate(expr string, result models.AnalysisResult) (bool, error) {
	if expr == "" || expr == "true" {
		return true, nil
	}

	program, err := e.Compile(expr)
	if err != nil {
		return false, err
	}

	out, _, err := program.Eval(ExprContext(result))
	if err != nil {
		return false, fmt.Errorf("evaluation error: %w", err)
	}

	if boolVal, ok := out.(types.Bool); ok {
		return boolVal == types.True, nil
	}
	return false, fmt.Errorf("expression returned %s, expected bool", out.Type().TypeName())
}

// ExprContext flattens an analysis result into the CEL evaluation context.
func ExprContext(result models.AnalysisResult) map[string]any {
	diagnostics := make([]map[string]any, 0, len(result.Diagnostics))
	for _, d := range result.Diagnostics {
		diagnostics = append(diagnostics, map[string]any{
			"kind":     string(d.Kind),
			"tool":     d.Tool,
			"rule":     d.Rule,
			"severity": string(d.Severity),
			"message":  d.Message,
			"file":     d.File,
			"line":     d.Line,
			"column":   d.Column,
		})
	}

	return map[string]any{
		"lint":        result.LintCount(),
		"format":      result.FormatCount(),
		"total":       len(result.Diagnostics),
		"rules":       result.Rules(),
		"diagnostics": diagnostics,
	}
}

var (
	defaultEvaluator     *ExprEvaluator
	defaultEvaluatorErr  error
	defaultEvaluatorOnce sync.Once
)

func getDefaultEvaluator() (*ExprEvaluator, error) {
	defaultEvaluatorOnce.Do(func() {
		defaultEvaluator, defaultEvaluatorErr = NewExprEvaluator()
	})
	return defaultEvaluator, defaultEvaluatorErr
}

// ValidateExpr compiles an expression without running it, so malformed
// declarations surface at load time instead of mid-run.
func ValidateExpr(expr string) error {
	if expr == "" || expr == "true" {
		return nil
	}
	evaluator, err := getDefaultEvaluator()
	if err != nil {
		return err
	}
	_, err = evaluator.Compile(expr)
	return err
}
