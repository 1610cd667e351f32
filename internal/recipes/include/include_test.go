package include

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/kingrea/gobi/internal/action"
	"github.com/kingrea/gobi/internal/document"
	"github.com/kingrea/gobi/internal/recipe"
)

// echoRecipe creates one action per key under "echo"; the value becomes the
// action's help.
type echoRecipe struct {
	runs *[]string
}

func (echoRecipe) Name() string { return "echo" }
func (echoRecipe) Help() string { return "" }

func (r echoRecipe) CreateActions(_ *recipe.Manager, doc document.File) ([]action.Action, error) {
	section, ok := doc.Data().Get(document.Key("echo"))
	if !ok {
		return nil, nil
	}
	keys, _ := section.Keys()
	var out []action.Action
	for _, k := range keys {
		help, _ := document.StringAt(section, document.Key(k))
		out = append(out, &echoAction{Base: action.NewBase("echo."+k, k).WithHelp(help), runs: r.runs})
	}
	return out, nil
}

type echoAction struct {
	action.Base
	runs *[]string
}

func (a *echoAction) Run(_ *action.Context, siblings []action.Action, _ []string) error {
	*a.runs = append(*a.runs, a.Name())
	for _, s := range siblings {
		*a.runs = append(*a.runs, "sibling:"+s.Name())
	}
	return nil
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func manager(runs *[]string) *recipe.Manager {
	m := recipe.NewManager()
	m.MustRegister(Recipe{})
	m.MustRegister(echoRecipe{runs: runs})
	return m
}

func TestIncludeWrapsAndRenders(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "lib.yaml"), "echo:\n  deploy: 'deploys to {{.target}}'\n")
	writeFile(t, filepath.Join(dir, "gobi.yaml"), `
include:
  prod:
    path: lib.yaml
    env:
      target: production
echo:
  local: here
`)
	doc, err := document.Load(filepath.Join(dir, "gobi.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	runs := []string{}
	actions, err := manager(&runs).CreateActions(doc)
	if err != nil {
		t.Fatalf("create actions: %v", err)
	}
	var wrapped *Action
	for _, a := range actions {
		if w, ok := a.(*Action); ok {
			wrapped = w
		}
	}
	if wrapped == nil {
		t.Fatalf("expected an included action among %d", len(actions))
	}
	if wrapped.Name() != "prod.echo.deploy" || wrapped.Subname() != "deploy" {
		t.Fatalf("unexpected identity %s/%s", wrapped.Name(), wrapped.Subname())
	}
	if wrapped.Priority() {
		t.Fatalf("included actions never have priority")
	}
	if wrapped.Help() != "deploys to production" {
		t.Fatalf("unexpected help %q", wrapped.Help())
	}
	if err := wrapped.Run(action.NewContext(nil), actions, nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []string{"echo.deploy", "sibling:echo.deploy"}
	if !reflect.DeepEqual(runs, want) {
		t.Fatalf("expected %v, got %v", want, runs)
	}
}

func TestIncludeErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "gobi.yaml"), `
include:
  bad: 12
  missing:
    path: nope.yaml
`)
	doc, err := document.Load(filepath.Join(dir, "gobi.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	out, err := manager(&[]string{}).CreateActions(doc)
	if out != nil {
		t.Fatalf("expected no actions, got %d", len(out))
	}
	if !errors.Is(err, ErrInvalidConfig) || !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("expected both failures, got %v", err)
	}
	want := "Invalid include config for action 'bad'\nInvalid path for include: 'missing', '" + filepath.Join(dir, "nope.yaml") + "'"
	if err.Error() != want {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestIncludeDepthLimit(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "gobi.yaml"), "include:\n  self:\n    path: gobi.yaml\n")
	doc, err := document.Load(filepath.Join(dir, "gobi.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	m := manager(&[]string{})
	m.SetMaxDepth(4)
	if _, err := m.CreateActions(doc); !errors.Is(err, recipe.ErrDepthExceeded) {
		t.Fatalf("expected depth limit, got %v", err)
	}
}
