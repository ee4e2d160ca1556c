package fixtures

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/flanksource/verdict/models"
	"github.com/goccy/go-yaml"
)

// manifestDefaults are file-level settings inherited by every entry that does
// not override them.
type manifestDefaults struct {
	Toolchain string         `yaml:"toolchain,omitempty"`
	Expect    string         `yaml:"expect,omitempty"`
	Timeout   *time.Duration `yaml:"timeout,omitempty"`
}

// manifest mirrors the verdict-fixtures.yaml layout.
type manifest struct {
	Toolchain string          `yaml:"toolchain,omitempty"`
	Expect    string          `yaml:"expect,omitempty"`
	Timeout   *time.Duration  `yaml:"timeout,omitempty"`
	Fixtures  []manifestEntry `yaml:"fixtures"`
}

func (m manifest) defaults() manifestDefaults {
	return manifestDefaults{Toolchain: m.Toolchain, Expect: m.Expect, Timeout: m.Timeout}
}

type manifestEntry struct {
	Name      string         `yaml:"name,omitempty"`
	Path      string         `yaml:"path"`
	Toolchain string         `yaml:"toolchain,omitempty"`
	Expect    string         `yaml:"expect,omitempty"`
	Rules     []string       `yaml:"rules,omitempty"`
	Expr      string         `yaml:"expr,omitempty"`
	Timeout   *time.Duration `yaml:"timeout,omitempty"`
}

// ParseManifest loads fixtures declared in a verdict-fixtures.yaml file.
// Entries that fail to resolve are returned as LoadErrors alongside the
// fixtures that did load.
func ParseManifest(path string) ([]Fixture, []LoadError) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, []LoadError{{Manifest: path, Err: err}}
	}

	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, []LoadError{{Manifest: path, Err: fmt.Errorf("invalid manifest: %w", err)}}
	}

	if len(m.Fixtures) == 0 {
		return nil, []LoadError{{Manifest: path, Err: fmt.Errorf("manifest declares no fixtures")}}
	}

	var fixtures []Fixture
	var failures []LoadError
	for _, entry := range m.Fixtures {
		fixture, loadErr := resolveEntry(path, m.defaults(), entry)
		if loadErr != nil {
			failures = append(failures, *loadErr)
			continue
		}
		fixtures = append(fixtures, fixture)
	}

	return fixtures, failures
}

// resolveEntry turns a raw manifest entry into a loadable Fixture, validating
// the declaration and probing the fixture path on disk.
func resolveEntry(manifestPath string, defaults manifestDefaults, entry manifestEntry) (Fixture, *LoadError) {
	fail := func(name string, err error) (Fixture, *LoadError) {
		return Fixture{}, &LoadError{Manifest: manifestPath, Fixture: name, Err: err}
	}

	if entry.Path == "" {
		return fail(entry.Name, fmt.Errorf("missing path"))
	}

	name := entry.Name
	if name == "" {
		name = filepath.Base(filepath.Clean(entry.Path))
	}

	path := entry.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(filepath.Dir(manifestPath), path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fail(name, fmt.Errorf("fixture path %q: %w", entry.Path, err))
	}
	if !info.IsDir() && info.Size() == 0 {
		return fail(name, fmt.Errorf("fixture source %q is empty", entry.Path))
	}

	expectRaw := entry.Expect
	if expectRaw == "" {
		expectRaw = defaults.Expect
	}
	if expectRaw == "" {
		return fail(name, fmt.Errorf("missing expect"))
	}
	expected, err := models.ParseExpectedOutcome(expectRaw)
	if err != nil {
		return fail(name, err)
	}

	toolchain := models.ParseToolchain(entry.Toolchain)
	if entry.Toolchain == "" {
		toolchain = models.ParseToolchain(defaults.Toolchain)
	}
	if toolchain == models.ToolchainUnknown {
		toolchain = DetectToolchain(path)
	}
	if toolchain == models.ToolchainUnknown {
		return fail(name, fmt.Errorf("unable to detect toolchain for %q", entry.Path))
	}

	if entry.Expr != "" {
		if err := ValidateExpr(entry.Expr); err != nil {
			return fail(name, err)
		}
	}

	timeout := entry.Timeout
	if timeout == nil {
		timeout = defaults.Timeout
	}

	return Fixture{
		Name:      name,
		Path:      path,
		Toolchain: toolchain,
		Expected:  expected,
		Rules:     entry.Rules,
		Expr:      entry.Expr,
		Timeout:   timeout,
		Manifest:  manifestPath,
	}, nil
}
