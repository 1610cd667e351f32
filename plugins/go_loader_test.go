package plugins

import (
	"testing"
)

const goPluginSource = `package main

import "strings"

func RecipeDefinitions() ([]map[string]any, error) {
	return []map[string]any{
		{
			"name":    "greet",
			"help":    strings.ToUpper("says hello"),
			"command": "echo hello {{.who}}",
		},
	}, nil
}`

func TestLoadGoDefinitionDir(t *testing.T) {
	dir := t.TempDir()
	path := writePlugin(t, dir, "greet.go", goPluginSource)
	defs, err := LoadGoDefinitionDir(dir)
	if err != nil {
		t.Fatalf("load go defs: %v", err)
	}
	if len(defs) != 1 {
		t.Fatalf("expected 1 definition, got %d", len(defs))
	}
	def := defs[0].Definition
	if def.Name != "greet" || def.Help != "SAYS HELLO" || def.Command != "echo hello {{.who}}" {
		t.Fatalf("unexpected definition: %+v", def)
	}
	if defs[0].Path != path+"#1" {
		t.Fatalf("unexpected path %s", defs[0].Path)
	}
}

func TestLoadGoDefinitionDirMissingFunc(t *testing.T) {
	dir := t.TempDir()
	writePlugin(t, dir, "broken.go", "package main\n")
	if _, err := LoadGoDefinitionDir(dir); err == nil {
		t.Fatalf("expected error for missing RecipeDefinitions function")
	}
}

func TestLoadGoDefinitionDirReturnedError(t *testing.T) {
	dir := t.TempDir()
	writePlugin(t, dir, "fails.go", `package main

import "errors"

func RecipeDefinitions() ([]map[string]any, error) {
	return nil, errors.New("not today")
}`)
	if _, err := LoadGoDefinitionDir(dir); err == nil {
		t.Fatalf("expected the returned error to surface")
	}
}
