package recipe

import (
	"fmt"
	"path/filepath"
	"plugin"
)

// EntryPoint is the symbol a native recipe module must export. Its type is
// func(*recipe.Manager) or func(*recipe.Manager) error.
const EntryPoint = "GobiRegisterRecipes"

type nativeModule struct {
	path   string
	handle *plugin.Plugin
}

// LoadNativeModule opens a module built with -buildmode=plugin and lets it
// register its recipes. Loaded code runs with full process privileges; no
// provenance check is made. The handle stays referenced for the life of the
// manager.
func (m *Manager) LoadNativeModule(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("recipe: resolve %s: %w", path, err)
	}
	handle, err := plugin.Open(abs)
	if err != nil {
		return fmt.Errorf("recipe: open module %s: %w", abs, err)
	}
	sym, err := handle.Lookup(EntryPoint)
	if err != nil {
		return fmt.Errorf("recipe: module %s has no %s symbol: %w", abs, EntryPoint, err)
	}
	if err := invokeEntryPoint(sym, m); err != nil {
		return fmt.Errorf("recipe: module %s: %w", abs, err)
	}
	m.mu.Lock()
	m.modules = append(m.modules, nativeModule{path: abs, handle: handle})
	m.mu.Unlock()
	return nil
}

func invokeEntryPoint(sym any, m *Manager) error {
	switch fn := sym.(type) {
	case func(*Manager):
		fn(m)
		return nil
	case func(*Manager) error:
		return fn(m)
	default:
		return fmt.Errorf("%s has signature %T, want func(*recipe.Manager)", EntryPoint, sym)
	}
}

// Modules lists the paths of loaded native modules in load order.
func (m *Manager) Modules() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.modules))
	for i, mod := range m.modules {
		out[i] = mod.path
	}
	return out
}
