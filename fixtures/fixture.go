package fixtures

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/flanksource/clicky"
	"github.com/flanksource/clicky/api"
	"github.com/flanksource/verdict/models"
)

// Fixture is a single declared verification case: a path to analyze and the
// outcome the analyzer is expected to produce for it.
type Fixture struct {
	Name      string                 `json:"name" yaml:"name" pretty:"label=Name,style=text-blue-600"`
	Path      string                 `json:"path" yaml:"path" pretty:"label=Path,style=text-purple-500"`
	Toolchain models.Toolchain       `json:"toolchain,omitempty" yaml:"toolchain,omitempty" pretty:"label=Toolchain,omitempty"`
	Expected  models.ExpectedOutcome `json:"expect" yaml:"expect" pretty:"label=Expect"`

	// Rules narrows a lint expectation to specific rule identifiers that must
	// appear among the reported diagnostics.
	Rules []string `json:"rules,omitempty" yaml:"rules,omitempty"`

	// Expr is an optional CEL expression evaluated against the analysis after
	// the base expectation matched.
	Expr string `json:"expr,omitempty" yaml:"expr,omitempty"`

	Timeout *time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	// Manifest is the file this fixture was declared in.
	Manifest string `json:"manifest,omitempty" yaml:"-"`
}

func (f Fixture) String() string {
	return fmt.Sprintf("%s (%s -> %s)", f.Name, f.Path, f.Expected)
}

func (f Fixture) Pretty() api.Text {
	t := clicky.Text(f.Name, "text-blue-600").
		Space().Append(f.Expected.String(), "text-gray-500")
	if f.Toolchain != "" && f.Toolchain != models.ToolchainUnknown {
		t = t.Space().Append(f.Toolchain.Icon())
	}
	return t
}

// TemplateVars returns the variables available to templated analyzer
// commands for this fixture.
func (f Fixture) TemplateVars() map[string]interface{} {
	base := filepath.Base(f.Path)
	ext := filepath.Ext(base)
	return map[string]interface{}{
		"name":     f.Name,
		"file":     f.Path,
		"dir":      filepath.Dir(f.Path),
		"basename": base,
		"filename": strings.TrimSuffix(base, ext),
		"ext":      ext,
	}
}

// Outcome returns the skeleton MatchOutcome for this fixture with the clock
// started.
func (f Fixture) Outcome() models.MatchOutcome {
	now := time.Now()
	return models.MatchOutcome{
		Fixture:   f.Name,
		Toolchain: f.Toolchain,
		Expected:  f.Expected,
		Start:     &now,
	}
}

// LoadError records a fixture declaration that could not be loaded. The
// fixture is excluded from the run, the run itself continues.
type LoadError struct {
	Manifest string `json:"manifest,omitempty"`
	Fixture  string `json:"fixture,omitempty"`
	Err      error  `json:"-"`
}

func (e LoadError) Error() string {
	switch {
	case e.Fixture != "" && e.Manifest != "":
		return fmt.Sprintf("fixture %q in %s: %v", e.Fixture, e.Manifest, e.Err)
	case e.Manifest != "":
		return fmt.Sprintf("manifest %s: %v", e.Manifest, e.Err)
	default:
		return e.Err.Error()
	}
}

func (e LoadError) Unwrap() error {
	return e.Err
}

// Subject returns the best available name for report entries, falling back
// to the manifest path when the fixture name never parsed.
func (e LoadError) Subject() string {
	if e.Fixture != "" {
		return e.Fixture
	}
	return e.Manifest
}

// Outcome converts the load failure into an excluded report entry.
func (e LoadError) Outcome() models.MatchOutcome {
	return models.MatchOutcome{Fixture: e.Subject()}.Skipf("%v", e.Err)
}
