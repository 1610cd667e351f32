package action

import (
	"strings"
	"testing"
)

type stubAction struct {
	Base
}

func (s *stubAction) Run(*Context, []Action, []string) error { return nil }

func TestBaseDefaults(t *testing.T) {
	a := &stubAction{Base: NewBase("shell.build", "build")}
	if !a.Priority() {
		t.Fatalf("priority should default to true")
	}
	if a.Help() != DefaultHelp {
		t.Fatalf("unexpected default help %q", a.Help())
	}
	got, err := a.Completion(nil, nil, nil)
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty completion, got %v %v", got, err)
	}
	b := &stubAction{Base: NewBase("x", "y").WithPriority(false).WithHelp("does x")}
	if b.Priority() || b.Help() != "does x" {
		t.Fatalf("options not applied: %+v", b.Base)
	}
}

func TestContextEnv(t *testing.T) {
	root := NewContext(nil)
	if root.RunID == "" {
		t.Fatalf("expected run id")
	}
	ctx := root.WithProject("gobi", "/home/u/.config/gobi/gobi.yaml", true)
	ctx = ctx.WithProject("api", "/src/api/gobi.yaml", false)
	ctx = ctx.WithProject("worker", "/src/api/worker/gobi.yaml", false)
	ctx = ctx.WithAction(&stubAction{Base: NewBase("shell.build", "build")})

	env := ctx.Env()
	want := map[string]string{
		EnvFile:        "/src/api/worker/gobi.yaml",
		EnvDir:         "/src/api/worker",
		EnvAction:      "build",
		EnvActionFull:  "shell.build",
		EnvProject:     "worker",
		EnvProjectList: "api;worker",
		EnvRunID:       root.RunID,
	}
	for k, v := range want {
		if env[k] != v {
			t.Fatalf("%s: expected %q, got %q", k, v, env[k])
		}
	}
	if len(root.Chain) != 0 || root.Project != "" {
		t.Fatalf("derived contexts must not mutate the parent")
	}
}

func TestContextRootDropsProjectList(t *testing.T) {
	ctx := NewContext(nil).WithProject("api", "/a/gobi.yaml", false)
	ctx = ctx.WithProject("gobi", "/core/gobi.yaml", true)
	if _, ok := ctx.Env()[EnvProjectList]; ok {
		t.Fatalf("root project must not export a project list")
	}
}

func TestEnvironOverridesInherited(t *testing.T) {
	ctx := NewContext(nil).WithProject("gobi", "/core/gobi.yaml", true).WithVars(map[string]string{"VERBOSE": "1"})
	base := []string{"PATH=/bin", "GOBI_PROJECT_LIST=stale", "GOBI_PROJECT=old", "VERBOSE=0"}
	out := strings.Join(ctx.Environ(base), "\n")
	for _, want := range []string{"PATH=/bin", "GOBI_PROJECT=gobi", "VERBOSE=1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in environ:\n%s", want, out)
		}
	}
	for _, bad := range []string{"stale", "GOBI_PROJECT=old", "VERBOSE=0"} {
		if strings.Contains(out, bad) {
			t.Fatalf("unexpected %q in environ:\n%s", bad, out)
		}
	}
}
