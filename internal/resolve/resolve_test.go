package resolve

import (
	"errors"
	"reflect"
	"testing"

	"github.com/kingrea/gobi/internal/action"
)

type stubAction struct {
	action.Base
}

func (s *stubAction) Run(*action.Context, []action.Action, []string) error { return nil }

func newStub(name, subname string, priority bool) action.Action {
	return &stubAction{Base: action.NewBase(name, subname).WithPriority(priority)}
}

func TestFindPriorityTieBreak(t *testing.T) {
	build := newStub("shell.build", "build", true)
	quick := newStub("shell.quick-build", "build", false)
	actions := []action.Action{build, quick}

	got, err := Find("build", actions)
	if err != nil {
		t.Fatalf("find build: %v", err)
	}
	if got != build {
		t.Fatalf("expected shell.build, got %s", got.Name())
	}
	got, err = Find("shell.quick-build", actions)
	if err != nil {
		t.Fatalf("find qualified: %v", err)
	}
	if got != quick {
		t.Fatalf("expected shell.quick-build, got %s", got.Name())
	}
}

func TestFindAmbiguous(t *testing.T) {
	actions := []action.Action{
		newStub("a.test", "test", true),
		newStub("b.test", "test", true),
	}
	_, err := Find("test", actions)
	if !errors.Is(err, ErrAmbiguous) {
		t.Fatalf("expected ambiguity, got %v", err)
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("ambiguity must not look like not found")
	}
	if err.Error() != "Action test is ambiguous" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	got, err := Find("b.test", actions)
	if err != nil || got.Name() != "b.test" {
		t.Fatalf("qualified lookup failed: %v", err)
	}
}

func TestFindNotFound(t *testing.T) {
	_, err := Find("missing", nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if errors.Is(err, ErrAmbiguous) {
		t.Fatalf("not found must not look ambiguous")
	}
	if err.Error() != "Action missing not found" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestFindSubnameBeatsQualifiedName(t *testing.T) {
	// "list" is both the subname of one action and the qualified name of another.
	sub := newStub("list.list", "list", true)
	named := newStub("list", "other", true)
	got, err := Find("list", []action.Action{named, sub})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got != sub {
		t.Fatalf("expected subname match to win, got %s", got.Name())
	}
}

func TestFindNonPriorityCollisionIsAmbiguous(t *testing.T) {
	actions := []action.Action{
		newStub("x.run", "run", false),
		newStub("y.run", "run", false),
	}
	if _, err := Find("run", actions); !errors.Is(err, ErrAmbiguous) {
		t.Fatalf("expected ambiguity, got %v", err)
	}
}

func TestMinimalNames(t *testing.T) {
	cases := []struct {
		name    string
		actions []action.Action
		want    []string
	}{
		{
			name:    "single action",
			actions: []action.Action{newStub("list", "list", true)},
			want:    []string{"list"},
		},
		{
			name: "two priority members",
			actions: []action.Action{
				newStub("b.test", "test", true),
				newStub("a.test", "test", true),
			},
			want: []string{"a.test", "b.test"},
		},
		{
			name: "one priority member wins the subname",
			actions: []action.Action{
				newStub("shell.quick-build", "build", false),
				newStub("shell.build", "build", true),
			},
			want: []string{"build"},
		},
		{
			name: "lone non-priority action",
			actions: []action.Action{
				newStub("api", "api", false),
			},
			want: []string{"api"},
		},
		{
			name: "non-priority collision",
			actions: []action.Action{
				newStub("y.run", "run", false),
				newStub("x.run", "run", false),
			},
			want: []string{"x.run", "y.run"},
		},
		{
			name: "groups sorted by subname",
			actions: []action.Action{
				newStub("shell.zip", "zip", true),
				newStub("shell.build", "build", true),
			},
			want: []string{"build", "zip"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Names(MinimalNames(tc.actions))
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestMinimalNamesResolve(t *testing.T) {
	actions := []action.Action{
		newStub("shell.build", "build", true),
		newStub("shell.quick-build", "build", false),
		newStub("a.test", "test", true),
		newStub("b.test", "test", true),
		newStub("api", "api", false),
	}
	for _, n := range MinimalNames(actions) {
		got, err := Find(n.Name, actions)
		if err != nil {
			t.Fatalf("minimal name %q does not resolve: %v", n.Name, err)
		}
		if got != n.Action {
			t.Fatalf("minimal name %q resolved to %s", n.Name, got.Name())
		}
	}
}
