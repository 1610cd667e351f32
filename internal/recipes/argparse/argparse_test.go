package argparse

import (
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

type capture struct {
	action.Base
	vars map[string]string
	args []string
}

func (c *capture) Run(ctx *action.Context, _ []action.Action, args []string) error {
	c.vars = ctx.Env()
	c.args = args
	return nil
}

const config = `
argparse:
  deploy:
    action: push
    passthrough: true
    flags:
      verbose:
        short: v
        help: talk more
      cache:
        set_false: true
        var_name: USE_CACHE
    args:
      env:
        short: e
        required: true
        choices: [dev, prod]
        var_name: TARGET
      region:
        default: eu
  strict:
    action: push
    args:
      tag: {}
`

func create(t *testing.T, body string) map[string]*Action {
	t.Helper()
	doc, err := document.Parse(filepath.Join(t.TempDir(), "gobi.yaml"), []byte(body))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	created, err := Recipe{}.CreateActions(recipe.NewManager(), doc)
	if err != nil {
		t.Fatalf("create actions: %v", err)
	}
	out := map[string]*Action{}
	for _, a := range created {
		out[a.Subname()] = a.(*Action)
	}
	return out
}

func TestRunExportsParsedValues(t *testing.T) {
	a := create(t, config)["deploy"]
	target := &capture{Base: action.NewBase("shell.push", "push")}
	err := a.Run(action.NewContext(nil), []action.Action{target}, []string{"-v", "--unknown", "pos", "--env", "prod", "--cache"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := map[string]string{"verbose": "1", "USE_CACHE": "0", "TARGET": "prod", "region": "eu"}
	for k, v := range want {
		if target.vars[k] != v {
			t.Fatalf("%s: expected %q, got %q", k, v, target.vars[k])
		}
	}
	if target.vars[action.EnvActionFull] != "shell.push" {
		t.Fatalf("target should run as itself, got %q", target.vars[action.EnvActionFull])
	}
	if !reflect.DeepEqual(target.args, []string{"--unknown", "pos"}) {
		t.Fatalf("unexpected passthrough args %v", target.args)
	}
}

func TestParseDefaults(t *testing.T) {
	vars, rest, err := create(t, config)["deploy"].Parse([]string{"-e", "dev"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := map[string]string{"verbose": "0", "USE_CACHE": "1", "TARGET": "dev", "region": "eu"}
	if !reflect.DeepEqual(vars, want) {
		t.Fatalf("expected %v, got %v", want, vars)
	}
	if len(rest) != 0 {
		t.Fatalf("unexpected rest %v", rest)
	}
}

func TestParseErrors(t *testing.T) {
	actions := create(t, config)
	cases := []struct {
		name string
		a    *Action
		args []string
	}{
		{"missing required", actions["deploy"], nil},
		{"bad choice", actions["deploy"], []string{"--env", "qa"}},
		{"unknown without passthrough", actions["strict"], []string{"--nope"}},
		{"positional without passthrough", actions["strict"], []string{"extra"}},
	}
	for _, tc := range cases {
		_, _, err := tc.a.Parse(tc.args)
		if !errors.Is(err, ErrParse) {
			t.Fatalf("%s: expected parse error, got %v", tc.name, err)
		}
		if !strings.HasPrefix(err.Error(), "Error parsing arguments for action push:") {
			t.Fatalf("%s: unexpected message %q", tc.name, err.Error())
		}
		if errs.Code(err) != ParseErrorCode {
			t.Fatalf("%s: expected code %d, got %d", tc.name, ParseErrorCode, errs.Code(err))
		}
	}
	vars, _, err := actions["strict"].Parse(nil)
	if err != nil {
		t.Fatalf("optional arg: %v", err)
	}
	if _, ok := vars["tag"]; ok {
		t.Fatalf("unset args without default must not be exported")
	}
}

func TestRunMissingTarget(t *testing.T) {
	err := create(t, config)["strict"].Run(action.NewContext(nil), nil, nil)
	if !errors.Is(err, ErrNoSubaction) || err.Error() != "Argparse could not find subaction: push" {
		t.Fatalf("unexpected error %v", err)
	}
	if errors.Is(err, resolve.ErrNotFound) {
		t.Fatalf("lookup error should be replaced, got %v", err)
	}
}

func TestHelpListsOptions(t *testing.T) {
	help := create(t, config)["deploy"].Help()
	if !strings.HasPrefix(help, "Parses arguments for action push\n") {
		t.Fatalf("unexpected help %q", help)
	}
	for _, want := range []string{"--verbose", "talk more", "--env", "[dev, prod]"} {
		if !strings.Contains(help, want) {
			t.Fatalf("help is missing %q:\n%s", want, help)
		}
	}
}

func TestCreateActionsInvalid(t *testing.T) {
	cases := []struct {
		name string
		body string
		want []string
	}{
		{
			name: "missing action and long shorthand",
			body: `
argparse:
  nothing: {}
  long-short:
    action: x
    flags:
      f:
        short: ff
`,
			want: []string{"Invalid argparse config for action 'long-short'", "Invalid argparse config for action 'nothing'", "short name 'ff'"},
		},
		{
			name: "shared shorthand",
			body: `
argparse:
  deploy:
    action: x
    flags:
      verbose:
        short: v
      version:
        short: v
`,
			want: []string{"Invalid argparse config for action 'deploy'", "flag 'version': short name 'v' is already used by flag 'verbose'"},
		},
		{
			name: "flag and arg share a long name",
			body: `
argparse:
  deploy:
    action: x
    flags:
      env: {}
    args:
      target:
        long: env
        short: e
`,
			want: []string{"arg 'target': long name 'env' is already used by flag 'env'"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := document.Parse(filepath.Join(t.TempDir(), "gobi.yaml"), []byte(tc.body))
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			actions, err := Recipe{}.CreateActions(recipe.NewManager(), doc)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected invalid config, got %v", err)
			}
			if actions != nil {
				t.Fatalf("no actions should be created, got %d", len(actions))
			}
			for _, want := range tc.want {
				if !strings.Contains(err.Error(), want) {
					t.Fatalf("missing %q in %q", want, err.Error())
				}
			}
		})
	}
}
