// Package strategies connects file-level parsers to the scanner.
// A strategy decides from the file name and content whether it understands a
// file, and turns it into a [domain.TestFile].
package strategies

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/specvital/jstd/pkg/domain"
)

// DefaultPriority is the priority of a strategy without special placement.
// Higher priority strategies are asked first.
const DefaultPriority = 100

// ErrDuplicateStrategy is returned when a strategy name is registered twice.
var ErrDuplicateStrategy = errors.New("strategies: duplicate strategy")

var defaultRegistry = NewRegistry()

// Strategy parses the test files of one framework.
type Strategy interface {
	// Name returns the framework identifier (e.g. "jstestdriver").
	Name() string
	// Priority returns the strategy priority (higher = asked first).
	Priority() int
	// Languages returns the languages this strategy reads.
	Languages() []domain.Language
	// CanHandle reports whether this strategy can parse the given file.
	CanHandle(filename string, content []byte) bool
	// Parse extracts the test inventory of one file.
	Parse(ctx context.Context, source []byte, filename string) (*domain.TestFile, error)
}

// Registry holds strategies ordered by priority.
type Registry struct {
	mu         sync.RWMutex
	strategies []Strategy
	byName     map[string]Strategy
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Strategy)}
}

// DefaultRegistry returns the registry strategies add themselves to in init.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Register adds s to the default registry. It panics on a duplicate name,
// which can only come from a programming error in an init function.
func Register(s Strategy) {
	if err := defaultRegistry.Register(s); err != nil {
		panic(err)
	}
}

// FindStrategy returns the first strategy of the default registry that can
// handle the file, or nil.
func FindStrategy(filename string, content []byte) Strategy {
	return defaultRegistry.FindStrategy(filename, content)
}

// Register adds a strategy. Strategies with equal priority keep their
// registration order.
func (r *Registry) Register(s Strategy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[s.Name()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateStrategy, s.Name())
	}

	r.byName[s.Name()] = s
	r.strategies = append(r.strategies, s)
	sort.SliceStable(r.strategies, func(i, j int) bool {
		return r.strategies[i].Priority() > r.strategies[j].Priority()
	})
	return nil
}

// Strategies returns a copy of the registered strategies in priority order.
func (r *Registry) Strategies() []Strategy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.strategies)
}

// FindStrategy returns the first strategy that can handle the file, or nil.
func (r *Registry) FindStrategy(filename string, content []byte) Strategy {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.strategies {
		if s.CanHandle(filename, content) {
			return s
		}
	}
	return nil
}

// FindByName returns the strategy registered under name, or nil.
func (r *Registry) FindByName(name string) Strategy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byName[name]
}

// Languages returns every language at least one strategy reads, in
// registration order without duplicates.
func (r *Registry) Languages() []domain.Language {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var langs []domain.Language
	for _, s := range r.strategies {
		for _, l := range s.Languages() {
			if !slices.Contains(langs, l) {
				langs = append(langs, l)
			}
		}
	}
	return langs
}

// Clear removes all strategies.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies = nil
	r.byName = make(map[string]Strategy)
}
