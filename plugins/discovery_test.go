package plugins

import (
	"strings"
	"testing"

	"github.com/kingrea/gobi/internal/recipe"
)

func TestRegisterDir(t *testing.T) {
	dir := t.TempDir()
	writePlugin(t, dir, "make.yaml", sampleDefinition)
	writePlugin(t, dir, "greet.go", goPluginSource)
	m := recipe.NewManager()
	if err := RegisterDir(m, dir); err != nil {
		t.Fatalf("register plugins: %v", err)
	}
	for _, name := range []string{"make", "greet"} {
		if _, ok := m.Recipe(name); !ok {
			t.Fatalf("recipe %s was not registered", name)
		}
	}
}

func TestRegisterDirMissing(t *testing.T) {
	m := recipe.NewManager()
	if err := RegisterDir(m, ""); err != nil {
		t.Fatalf("empty dir should register nothing: %v", err)
	}
	if len(m.Names()) != 0 {
		t.Fatalf("expected no recipes, got %v", m.Names())
	}
}

func TestLoadDirDuplicateNames(t *testing.T) {
	dir := t.TempDir()
	writePlugin(t, dir, "a.yaml", "name: greet\ncommand: echo a\n")
	writePlugin(t, dir, "greet.go", goPluginSource)
	_, err := LoadDir(dir)
	if err == nil || !strings.Contains(err.Error(), "duplicate recipe greet") {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}
