// Package analyzers routes fixtures to their toolchain's analyzer and
// folds tool output into a single analysis result per fixture.
package analyzers

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/samber/lo"

	"github.com/flanksource/verdict/analyzers/checkers"
	"github.com/flanksource/verdict/models"
)

// InvocationError marks an analysis that never delivered a verdict: the
// tool was missing, crashed, timed out, or produced output no parser
// understood. A tool that ran and reported issues is a normal result,
// not an InvocationError.
type InvocationError struct {
	Toolchain models.Toolchain
	Op        string // "prepare", "lint", "format" or "version"
	Err       error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Toolchain, e.Op, e.Err)
}

func (e *InvocationError) Unwrap() error { return e.Err }

// IsInvocationError reports whether err marks a tool failure rather
// than a failed expectation.
func IsInvocationError(err error) bool {
	var invocationErr *InvocationError
	return errors.As(err, &invocationErr)
}

// Registry maps toolchains to their analyzers.
type Registry struct {
	mu        sync.RWMutex
	analyzers map[models.Toolchain]checkers.Analyzer
}

func NewRegistry() *Registry {
	return &Registry{analyzers: make(map[models.Toolchain]checkers.Analyzer)}
}

// Register adds an analyzer, replacing any previous one for the same
// toolchain.
func (r *Registry) Register(analyzer checkers.Analyzer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.analyzers[analyzer.Toolchain()] = analyzer
}

// Get returns the analyzer for a toolchain.
func (r *Registry) Get(toolchain models.Toolchain) (checkers.Analyzer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	analyzer, ok := r.analyzers[toolchain]
	return analyzer, ok
}

// List returns registered analyzers sorted by name.
func (r *Registry) List() []checkers.Analyzer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	analyzers := lo.Values(r.analyzers)
	sort.Slice(analyzers, func(i, j int) bool {
		return analyzers[i].Name() < analyzers[j].Name()
	})
	return analyzers
}

// DefaultRegistry returns a registry with every built-in analyzer
// registered.
func DefaultRegistry() *Registry {
	registry := NewRegistry()
	registry.Register(checkers.Rust{})
	registry.Register(checkers.Golang{})
	registry.Register(checkers.Python{})
	return registry
}
