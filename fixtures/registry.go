package fixtures

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/flanksource/commons/logger"
	"github.com/samber/lo"
)

var manifestGlobs = []string{
	"**/verdict-fixtures.yaml",
	"**/verdict-fixtures.yml",
	"**/fixtures.md",
}

// IsManifest reports whether the file name is a fixture manifest.
func IsManifest(path string) bool {
	base := filepath.Base(path)
	return base == "verdict-fixtures.yaml" || base == "verdict-fixtures.yml" || base == "fixtures.md"
}

// Registry holds the loaded fixture set for a run. Loading is eager, every
// declaration is parsed and validated up front so the run operates on a
// fixed, known set. Fixtures that fail to load are excluded and remembered
// as failures, they never abort the load.
type Registry struct {
	mu       sync.RWMutex
	fixtures map[string]Fixture
	failures []LoadError
}

// NewRegistry creates an empty fixture registry
func NewRegistry() *Registry {
	return &Registry{
		fixtures: make(map[string]Fixture),
	}
}

// Load discovers and parses every fixture manifest under the given paths.
// A path may be a manifest file or a directory to search recursively.
// Only unusable input paths return an error, per-fixture problems are
// recorded as failures.
func (r *Registry) Load(paths ...string) error {
	manifests, err := discoverManifests(paths)
	if err != nil {
		return err
	}

	for _, manifest := range manifests {
		logger.V(3).Infof("loading fixture manifest %s", manifest)
		fixtures, failures := parseManifestFile(manifest)
		r.record(failures...)
		for _, fixture := range fixtures {
			if loadErr := r.Add(fixture); loadErr != nil {
				r.record(*loadErr)
			}
		}
	}

	return nil
}

// Add registers a fixture, rejecting duplicate names.
func (r *Registry) Add(fixture Fixture) *LoadError {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, exists := r.fixtures[fixture.Name]; exists {
		return &LoadError{
			Manifest: fixture.Manifest,
			Fixture:  fixture.Name,
			Err:      fmt.Errorf("duplicate fixture name, first declared in %s", existing.Manifest),
		}
	}

	r.fixtures[fixture.Name] = fixture
	return nil
}

// Get retrieves a fixture by name
func (r *Registry) Get(name string) (Fixture, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fixture, ok := r.fixtures[name]
	return fixture, ok
}

// List returns all loaded fixtures sorted by name. The order is stable
// across runs, reports built from it enumerate fixtures deterministically.
func (r *Registry) List() []Fixture {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fixtures := lo.Values(r.fixtures)
	sort.Slice(fixtures, func(i, j int) bool {
		return fixtures[i].Name < fixtures[j].Name
	})
	return fixtures
}

// Len returns the number of loaded fixtures
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.fixtures)
}

// Failures returns the declarations that were excluded during load, sorted
// by subject.
func (r *Registry) Failures() []LoadError {
	r.mu.RLock()
	defer r.mu.RUnlock()

	failures := make([]LoadError, len(r.failures))
	copy(failures, r.failures)
	sort.Slice(failures, func(i, j int) bool {
		return failures[i].Subject() < failures[j].Subject()
	})
	return failures
}

// Filter returns the fixtures whose name matches any of the given glob
// patterns, in List order. With no patterns every fixture is returned.
func (r *Registry) Filter(patterns ...string) []Fixture {
	all := r.List()
	if len(patterns) == 0 {
		return all
	}

	return lo.Filter(all, func(fixture Fixture, _ int) bool {
		return MatchAny(fixture.Name, patterns)
	})
}

// MatchAny reports whether the name equals or glob-matches any pattern.
func MatchAny(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if name == pattern {
			return true
		}
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

func (r *Registry) record(failures ...LoadError) {
	if len(failures) == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, failure := range failures {
		logger.Warnf("excluding %s: %v", failure.Subject(), failure.Err)
		r.failures = append(r.failures, failure)
	}
}

func parseManifestFile(path string) ([]Fixture, []LoadError) {
	if strings.HasSuffix(path, ".md") {
		return ParseMarkdownManifest(path)
	}
	return ParseManifest(path)
}

func discoverManifests(paths []string) ([]string, error) {
	var manifests []string
	seen := make(map[string]bool)

	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			manifests = append(manifests, path)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("fixture path %s: %w", path, err)
		}

		if !info.IsDir() {
			if !IsManifest(path) {
				return nil, fmt.Errorf("%s is not a fixture manifest", path)
			}
			add(path)
			continue
		}

		for _, glob := range manifestGlobs {
			matches, err := doublestar.Glob(os.DirFS(path), glob)
			if err != nil {
				return nil, fmt.Errorf("searching %s: %w", path, err)
			}
			for _, match := range matches {
				add(filepath.Join(path, match))
			}
		}
	}

	sort.Strings(manifests)
	return manifests, nil
}
