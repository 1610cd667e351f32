// Package recipe holds the registry of recipes that turn document sections
// into actions.
package recipe

import (
	"fmt"
	"sort"
	"sync"

	"github.com/kingrea/gobi/internal/action"
	"github.com/kingrea/gobi/internal/document"
	"github.com/kingrea/gobi/internal/errs"
)

// DefaultMaxDepth bounds how deeply documents may include each other.
const DefaultMaxDepth = 16

// ErrDepthExceeded is returned when a document sits deeper than the limit.
var ErrDepthExceeded = errs.New(1, "Include depth limit exceeded")

// Recipe inspects a reserved section of a document and emits actions. A
// recipe whose section is absent returns no actions and no error.
type Recipe interface {
	Name() string
	Help() string
	CreateActions(m *Manager, doc document.File) ([]action.Action, error)
}

// Manager maintains known recipes and the native modules that supplied them.
type Manager struct {
	mu       sync.RWMutex
	recipes  map[string]Recipe
	modules  []nativeModule
	maxDepth int
}

// NewManager returns an empty manager.
func NewManager() *Manager {
	return &Manager{recipes: map[string]Recipe{}, maxDepth: DefaultMaxDepth}
}

// SetMaxDepth changes the include depth limit. Values below 1 are ignored.
func (m *Manager) SetMaxDepth(depth int) {
	if depth < 1 {
		return
	}
	m.mu.Lock()
	m.maxDepth = depth
	m.mu.Unlock()
}

// MaxDepth reports the include depth limit.
func (m *Manager) MaxDepth() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.maxDepth
}

// Register installs r under its name, replacing any recipe already using it.
func (m *Manager) Register(r Recipe) error {
	if r == nil {
		return fmt.Errorf("recipe: recipe is required")
	}
	if r.Name() == "" {
		return fmt.Errorf("recipe: name is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recipes[r.Name()] = r
	return nil
}

// MustRegister panics if registration fails.
func (m *Manager) MustRegister(r Recipe) {
	if err := m.Register(r); err != nil {
		panic(err)
	}
}

// Recipe looks a recipe up by name.
func (m *Manager) Recipe(name string) (Recipe, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.recipes[name]
	return r, ok
}

// Recipes returns every registered recipe sorted by name.
func (m *Manager) Recipes() []Recipe {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Recipe, 0, len(m.recipes))
	for _, r := range m.recipes {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Names returns the sorted recipe names.
func (m *Manager) Names() []string {
	recipes := m.Recipes()
	out := make([]string, len(recipes))
	for i, r := range recipes {
		out[i] = r.Name()
	}
	return out
}

// CreateActions runs every recipe against doc. All recipes are attempted;
// if any fails, the merged error is returned and no actions are.
func (m *Manager) CreateActions(doc document.File) ([]action.Action, error) {
	if limit := m.MaxDepth(); doc.Depth() > limit {
		return nil, errs.Wrapf(ErrDepthExceeded, "Include depth limit of %d exceeded at '%s'", limit, doc.Path())
	}
	return errs.Gather(m.Recipes(), func(r Recipe) ([]action.Action, error) {
		return r.CreateActions(m, doc)
	})
}
