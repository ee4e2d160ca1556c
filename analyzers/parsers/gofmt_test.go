package parsers

import (
	"strings"
	"testing"

	"github.com/flanksource/verdict/models"
)

func TestGofmtParse(t *testing.T) {
	input := `main.go
internal/server/server.go`

	diagnostics, err := Gofmt{}.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(diagnostics) != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", len(diagnostics))
	}
	if diagnostics[0].Kind != models.KindFormat {
		t.Errorf("expected format kind, got %s", diagnostics[0].Kind)
	}
	if diagnostics[0].File != "main.go" {
		t.Errorf("unexpected file: %s", diagnostics[0].File)
	}
	if diagnostics[1].File != "internal/server/server.go" {
		t.Errorf("unexpected file: %s", diagnostics[1].File)
	}
}

func TestGofmtParseClean(t *testing.T) {
	diagnostics, err := Gofmt{}.Parse(strings.NewReader("\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(diagnostics) != 0 {
		t.Errorf("expected no diagnostics, got %d", len(diagnostics))
	}
}

func TestGofmtParseRejectsJunk(t *testing.T) {
	_, err := Gofmt{}.Parse(strings.NewReader("main.go:3:1: expected declaration, found func"))
	if err == nil {
		t.Fatal("expected an error for non-path output")
	}
}
