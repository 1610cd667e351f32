package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kingrea/gobi/internal/config"
)

func setup(t *testing.T, core string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "gobi.yaml")
	if err := os.WriteFile(path, []byte(core), 0644); err != nil {
		t.Fatalf("write core file: %v", err)
	}
	t.Setenv(config.EnvCoreFile, path)
	t.Setenv(config.EnvRecipeModule, config.BuiltinModule)
	t.Setenv(config.EnvPluginDir, filepath.Join(dir, "plugins"))
	t.Setenv(config.EnvLogFile, config.LogOff)
	t.Setenv(config.EnvMaxDepth, "")
	return dir
}

func invoke(args ...string) (int, string, string) {
	var out, errOut bytes.Buffer
	code := execute(args, strings.NewReader(""), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestUnknownMode(t *testing.T) {
	code, _, stderr := invoke("explode", "now")
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if stderr != "Unknown mode: explode\nUsage: gobi <mode> [args]\n" {
		t.Fatalf("unexpected usage %q", stderr)
	}
}

func TestRunAction(t *testing.T) {
	setup(t, "shell:\n  hi:\n    command: echo hi \"$@\"\n")
	code, stdout, stderr := invoke("run", "hi", "-v", "there")
	if code != 0 {
		t.Fatalf("unexpected exit %d: %s", code, stderr)
	}
	if stdout != "hi -v there\n" {
		t.Fatalf("unexpected output %q", stdout)
	}
}

func TestRunExitCode(t *testing.T) {
	setup(t, "shell:\n  fail:\n    command: exit 5\n")
	code, _, stderr := invoke("run", "fail")
	if code != 5 {
		t.Fatalf("expected exit code 5, got %d", code)
	}
	if stderr != "Error: Command failed\n" {
		t.Fatalf("unexpected stderr %q", stderr)
	}
}

func TestRunUnknownAction(t *testing.T) {
	setup(t, "shell:\n  build:\n    command: 'true'\n")
	code, _, stderr := invoke("run", "nope")
	if code != 1 || !strings.HasPrefix(stderr, "Error: ") {
		t.Fatalf("expected error exit, got %d %q", code, stderr)
	}
}

func TestCompletion(t *testing.T) {
	setup(t, "shell:\n  build:\n    command: 'true'\n  test:\n    command: 'true'\n")
	code, stdout, stderr := invoke("completion")
	if code != 0 {
		t.Fatalf("unexpected exit %d: %s", code, stderr)
	}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	for _, want := range []string{"build", "test", "help", "list"} {
		found := false
		for _, line := range lines {
			if line == want {
				found = true
			}
		}
		if !found {
			t.Fatalf("completion is missing %s: %v", want, lines)
		}
	}
}

func TestScriptedPlugin(t *testing.T) {
	dir := setup(t, "greet:\n  bob:\n    who: bob\n")
	plugins := filepath.Join(dir, "plugins")
	if err := os.MkdirAll(plugins, 0755); err != nil {
		t.Fatal(err)
	}
	def := "name: greet\ncommand: echo hello {{.who}}\n"
	if err := os.WriteFile(filepath.Join(plugins, "greet.yaml"), []byte(def), 0644); err != nil {
		t.Fatal(err)
	}
	code, stdout, stderr := invoke("run", "bob")
	if code != 0 || stdout != "hello bob\n" {
		t.Fatalf("unexpected result %d %q %q", code, stdout, stderr)
	}
}

func TestMissingRecipeModule(t *testing.T) {
	dir := setup(t, "{}\n")
	t.Setenv(config.EnvRecipeModule, filepath.Join(dir, "gobi_recipes.so"))
	code, _, stderr := invoke("run", "anything")
	if code != 1 || stderr != "Error: Could not find gobi_recipes.so\n" {
		t.Fatalf("unexpected result %d %q", code, stderr)
	}
}
