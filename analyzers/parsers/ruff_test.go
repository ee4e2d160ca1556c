package parsers

import (
	"strings"
	"testing"

	"github.com/flanksource/verdict/models"
)

func TestRuffCheckParse(t *testing.T) {
	input := `[{"code":"F401","message":"os imported but unused","filename":"/work/app.py","location":{"row":1,"column":8},"end_location":{"row":1,"column":10}},{"code":null,"message":"SyntaxError: unexpected indent","filename":"/work/bad.py","location":{"row":4,"column":1},"end_location":{"row":4,"column":2}}]`

	diagnostics, err := RuffCheck{}.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(diagnostics) != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", len(diagnostics))
	}

	first := diagnostics[0]
	if first.Rule != "F401" {
		t.Errorf("expected rule F401, got %s", first.Rule)
	}
	if first.Severity != models.SeverityWarning {
		t.Errorf("expected warning severity, got %s", first.Severity)
	}
	if first.File != "/work/app.py" || first.Line != 1 || first.Column != 8 {
		t.Errorf("unexpected location: %s", first.Location())
	}

	// Findings without a rule code are syntax errors.
	second := diagnostics[1]
	if second.Rule != "" {
		t.Errorf("expected empty rule, got %s", second.Rule)
	}
	if second.Severity != models.SeverityError {
		t.Errorf("expected error severity, got %s", second.Severity)
	}
}

func TestRuffCheckParseClean(t *testing.T) {
	diagnostics, err := RuffCheck{}.Parse(strings.NewReader("[]"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(diagnostics) != 0 {
		t.Errorf("expected no diagnostics, got %d", len(diagnostics))
	}
}

func TestRuffCheckParseRejectsJunk(t *testing.T) {
	_, err := RuffCheck{}.Parse(strings.NewReader("ruff failed\n  Cause: No such file or directory"))
	if err == nil {
		t.Fatal("expected an error for non-JSON output")
	}
}

func TestRuffFormatParse(t *testing.T) {
	input := `Would reformat: src/app.py
Would reformat: src/util.py
2 files would be reformatted, 1 file already formatted`

	diagnostics, err := RuffFormat{}.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(diagnostics) != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", len(diagnostics))
	}
	if diagnostics[0].Kind != models.KindFormat {
		t.Errorf("expected format kind, got %s", diagnostics[0].Kind)
	}
	if diagnostics[0].File != "src/app.py" {
		t.Errorf("unexpected file: %s", diagnostics[0].File)
	}
}

func TestRuffFormatParseClean(t *testing.T) {
	diagnostics, err := RuffFormat{}.Parse(strings.NewReader("1 file already formatted\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(diagnostics) != 0 {
		t.Errorf("expected no diagnostics, got %d", len(diagnostics))
	}
}

func TestRuffFormatParseRejectsJunk(t *testing.T) {
	_, err := RuffFormat{}.Parse(strings.NewReader("error: unrecognized subcommand"))
	if err == nil {
		t.Fatal("expected an error for unrecognized output")
	}
}
