package plugins

import (
	"fmt"
	"strings"
)

// RecipeDefinition describes a scripted recipe loaded from a plugin file.
//
// Every entry of the section named after the recipe becomes an action that
// runs Command through Shell. The entry's fields are exported to the command
// environment, so "{{.target}}" in Command expands to the entry's target.
type RecipeDefinition struct {
	Name       string   `json:"name" yaml:"name"`
	Help       string   `json:"help,omitempty" yaml:"help,omitempty"`
	Command    string   `json:"command" yaml:"command"`
	Shell      string   `json:"shell,omitempty" yaml:"shell,omitempty"`
	Extension  string   `json:"extension,omitempty" yaml:"extension,omitempty"`
	Params     []string `json:"params,omitempty" yaml:"params,omitempty"`
	Completion string   `json:"completion,omitempty" yaml:"completion,omitempty"`
	Priority   *bool    `json:"priority,omitempty" yaml:"priority,omitempty"`
}

// Normalized returns a trimmed, copy-on-write variant of the definition.
func (def RecipeDefinition) Normalized() RecipeDefinition {
	clone := RecipeDefinition{
		Name:       strings.TrimSpace(def.Name),
		Help:       strings.TrimSpace(def.Help),
		Command:    strings.TrimSpace(def.Command),
		Shell:      strings.TrimSpace(def.Shell),
		Extension:  strings.TrimSpace(def.Extension),
		Completion: strings.TrimSpace(def.Completion),
	}
	if def.Priority != nil {
		p := *def.Priority
		clone.Priority = &p
	}
	for _, param := range def.Params {
		if trimmed := strings.TrimSpace(param); trimmed != "" {
			clone.Params = append(clone.Params, trimmed)
		}
	}
	return clone
}

// Validate ensures the definition can back a recipe.
func (def RecipeDefinition) Validate() error {
	normalized := def.Normalized()
	if normalized.Name == "" {
		return fmt.Errorf("plugin: name is required")
	}
	if strings.ContainsAny(normalized.Name, ". \t") {
		return fmt.Errorf("plugin %s: name must not contain dots or spaces", normalized.Name)
	}
	if normalized.Command == "" {
		return fmt.Errorf("plugin %s: command is required", normalized.Name)
	}
	return nil
}
