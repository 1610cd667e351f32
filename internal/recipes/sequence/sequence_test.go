package sequence

import (
	"bytes"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/kingrea/gobi/internal/action"
	"github.com/kingrea/gobi/internal/document"
	"github.com/kingrea/gobi/internal/errs"
	"github.com/kingrea/gobi/internal/recipe"
	"github.com/kingrea/gobi/internal/resolve"
)

type stubAction struct {
	action.Base
	err  error
	runs *[]string
}

func (s *stubAction) Run(ctx *action.Context, _ []action.Action, args []string) error {
	*s.runs = append(*s.runs, ctx.ActionFull+":"+strings.Join(args, ","))
	return s.err
}

func stubs(runs *[]string, failing map[string]int) []action.Action {
	var out []action.Action
	for _, name := range []string{"lint", "test", "build"} {
		s := &stubAction{Base: action.NewBase("stub."+name, name), runs: runs}
		if code, ok := failing[name]; ok {
			s.err = errs.Newf(code, "%s broke", name)
		}
		out = append(out, s)
	}
	return out
}

func create(t *testing.T, body string) ([]action.Action, error) {
	t.Helper()
	doc, err := document.Parse(filepath.Join(t.TempDir(), "gobi.yaml"), []byte(body))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return Recipe{}.CreateActions(recipe.NewManager(), doc)
}

func only(t *testing.T, body string) action.Action {
	t.Helper()
	out, err := create(t, body)
	if err != nil {
		t.Fatalf("create actions: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected one action, got %d", len(out))
	}
	return out[0]
}

func TestHelp(t *testing.T) {
	a := only(t, "sequence:\n  ci:\n    subactions: [lint, test]\n    allow-fail: true\n")
	if a.Name() != "sequence.ci" || a.Subname() != "ci" {
		t.Fatalf("unexpected identity %s/%s", a.Name(), a.Subname())
	}
	if got := a.Help(); got != "Runs [lint test] in a sequence allowing failures" {
		t.Fatalf("unexpected help %q", got)
	}
	b := only(t, "sequence:\n  ci:\n    subactions: [lint]\n")
	if got := b.Help(); got != "Runs [lint] in a sequence exiting on failures" {
		t.Fatalf("unexpected help %q", got)
	}
}

func TestRunInOrderWithSharedArgs(t *testing.T) {
	runs := []string{}
	seq := only(t, "sequence:\n  ci:\n    subactions: [lint, build]\n")
	if err := seq.Run(action.NewContext(nil), stubs(&runs, nil), []string{"-v"}); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []string{"stub.lint:-v", "stub.build:-v"}
	if !reflect.DeepEqual(runs, want) {
		t.Fatalf("expected %v, got %v", want, runs)
	}
}

func TestRunResolvesBeforeRunning(t *testing.T) {
	runs := []string{}
	seq := only(t, "sequence:\n  ci:\n    subactions: [lint, nope, gone]\n")
	err := seq.Run(action.NewContext(nil), stubs(&runs, nil), nil)
	if !errors.Is(err, resolve.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err.Error() != "Action nope not found\nAction gone not found" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if len(runs) != 0 {
		t.Fatalf("nothing should run when resolution fails, ran %v", runs)
	}
}

func TestRunStopsOnFailure(t *testing.T) {
	runs := []string{}
	seq := only(t, "sequence:\n  ci:\n    subactions: [lint, test, build]\n")
	err := seq.Run(action.NewContext(nil), stubs(&runs, map[string]int{"test": 4}), nil)
	if err == nil || err.Error() != "Sequence failed: \ntest broke" {
		t.Fatalf("unexpected error %v", err)
	}
	if errs.Code(err) != 4 {
		t.Fatalf("expected code 4, got %d", errs.Code(err))
	}
	if len(runs) != 2 {
		t.Fatalf("expected build to be skipped, ran %v", runs)
	}
}

func TestRunAllowFail(t *testing.T) {
	runs := []string{}
	seq := only(t, "sequence:\n  ci:\n    subactions: [lint, test, build]\n    allow-fail: true\n")
	err := seq.Run(action.NewContext(nil), stubs(&runs, map[string]int{"lint": 2, "build": 3}), nil)
	if err == nil || err.Error() != "Sequence finished with errors: \nlint broke\nbuild broke" {
		t.Fatalf("unexpected error %v", err)
	}
	if errs.Code(err) != errs.CollapsedCode {
		t.Fatalf("expected collapsed code, got %d", errs.Code(err))
	}
	if len(runs) != 3 {
		t.Fatalf("expected every subaction to run, ran %v", runs)
	}
}

func TestRunDecorate(t *testing.T) {
	runs := []string{}
	var out bytes.Buffer
	seq := only(t, "sequence:\n  ci:\n    subactions: [lint]\n    decorate: true\n")
	ctx := action.NewContext(nil).WithIO(nil, &out, nil)
	if err := seq.Run(ctx, stubs(&runs, nil), nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := "#############\n# stub.lint #\n#############\n"
	if out.String() != want {
		t.Fatalf("expected banner %q, got %q", want, out.String())
	}
}

func TestCreateActionsInvalid(t *testing.T) {
	out, err := create(t, "sequence:\n  a:\n    allow-fail: true\n  b:\n    subactions: [x]\n  c: nope\n")
	if out != nil || !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected invalid config, got %v %v", out, err)
	}
	want := "Invalid sequence config for action 'a'\nInvalid sequence config for action 'c'"
	if err.Error() != want {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
