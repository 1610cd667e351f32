package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func envFunc(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	s, err := load(home, "/opt/gobi", "/work", envFunc(nil))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	base := filepath.Join(home, ".config", "gobi")
	if s.CoreFile != filepath.Join(base, "gobi.yaml") {
		t.Fatalf("unexpected core file %s", s.CoreFile)
	}
	if s.RecipeModule != filepath.Join("/opt/gobi", ModuleName) {
		t.Fatalf("unexpected recipe module %s", s.RecipeModule)
	}
	if s.PluginDir != filepath.Join(base, "recipes") || s.LogFile != filepath.Join(base, "logs", "gobi.log") {
		t.Fatalf("unexpected dirs %+v", s)
	}
	if s.MaxDepth != DefaultMaxDepth || !s.LoggingEnabled() || s.BuiltinRecipes() {
		t.Fatalf("unexpected defaults %+v", s)
	}
}

func TestLoadSettingsFileAndEnv(t *testing.T) {
	home := t.TempDir()
	dir := t.TempDir()
	core := filepath.Join(dir, "gobi.yaml")
	settings := strings.TrimSpace(`
plugin_dir: plugins
recipe_module: Builtin
log_file: logs/run.log
max_depth: 4
`)
	if err := os.WriteFile(filepath.Join(dir, SettingsFile), []byte(settings), 0644); err != nil {
		t.Fatal(err)
	}
	s, err := load(home, "/opt/gobi", "/work", envFunc(map[string]string{
		EnvCoreFile: core,
		EnvLogFile:  "OFF",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.CoreFile != core {
		t.Fatalf("unexpected core file %s", s.CoreFile)
	}
	if s.PluginDir != filepath.Join(dir, "plugins") {
		t.Fatalf("settings paths should resolve against the settings file, got %s", s.PluginDir)
	}
	if !s.BuiltinRecipes() || s.MaxDepth != 4 {
		t.Fatalf("unexpected settings %+v", s)
	}
	if s.LoggingEnabled() {
		t.Fatalf("env should disable logging over the settings file")
	}
}

func TestLoadRelativeEnvPaths(t *testing.T) {
	s, err := load(t.TempDir(), "/opt/gobi", "/work", envFunc(map[string]string{
		EnvCoreFile:  "proj/gobi.yaml",
		EnvPluginDir: "recipes",
		EnvMaxDepth:  "3",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.CoreFile != "/work/proj/gobi.yaml" || s.PluginDir != "/work/recipes" || s.MaxDepth != 3 {
		t.Fatalf("unexpected settings %+v", s)
	}
}

func TestLoadValidation(t *testing.T) {
	for _, raw := range []string{"0", "-2", "deep"} {
		_, err := load(t.TempDir(), "/opt/gobi", "/work", envFunc(map[string]string{EnvMaxDepth: raw}))
		if err == nil {
			t.Fatalf("expected %s=%s to fail", EnvMaxDepth, raw)
		}
	}
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, SettingsFile), []byte("max_depth: [1"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := load(t.TempDir(), "", "/work", envFunc(map[string]string{EnvCoreFile: filepath.Join(dir, "gobi.yaml")}))
	if err == nil || !strings.HasPrefix(err.Error(), "config: parse") {
		t.Fatalf("expected parse error, got %v", err)
	}
}
