// Package plugins loads scripted recipes from a plugin directory. A plugin is
// either a YAML file of recipe definitions or a Go file interpreted at
// startup that returns them from RecipeDefinitions().
package plugins

import (
	"fmt"

	"github.com/kingrea/gobi/internal/recipe"
)

// RegisterDir discovers YAML and Go recipe definitions under dir and
// registers a recipe for each. A missing directory registers nothing.
func RegisterDir(m *recipe.Manager, dir string) error {
	if m == nil {
		return nil
	}
	defs, err := LoadDir(dir)
	if err != nil {
		return err
	}
	for _, file := range defs {
		if err := m.Register(NewRecipe(file)); err != nil {
			return fmt.Errorf("plugin: register %s from %s: %w", file.Definition.Name, file.Path, err)
		}
	}
	return nil
}

// LoadDir returns every definition under dir, YAML first. Two definitions
// sharing a name are an error.
func LoadDir(dir string) ([]DefinitionFile, error) {
	yamlDefs, err := LoadDefinitionDir(dir)
	if err != nil {
		return nil, err
	}
	goDefs, err := LoadGoDefinitionDir(dir)
	if err != nil {
		return nil, err
	}
	defs := append(yamlDefs, goDefs...)
	seen := make(map[string]string, len(defs))
	for _, file := range defs {
		name := file.Definition.Name
		if existing, ok := seen[name]; ok {
			return nil, fmt.Errorf("plugin: duplicate recipe %s (%s and %s)", name, existing, file.Path)
		}
		seen[name] = file.Path
	}
	return defs, nil
}
