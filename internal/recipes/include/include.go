// Package include pulls the actions of another gobi file into the current
// one, after rendering the file as a template.
package include

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kingrea/gobi/internal/action"
	"github.com/kingrea/gobi/internal/document"
	"github.com/kingrea/gobi/internal/errs"
	"github.com/kingrea/gobi/internal/recipe"
	"github.com/kingrea/gobi/internal/render"
)

// RecipeName is the recipe name and the document section it reads.
const RecipeName = "include"

var (
	ErrInvalidConfig = errs.New(1, "Invalid include config")
	ErrInvalidPath   = errs.New(1, "Invalid path for include")
)

const recipeHelp = `Includes other gobi files, optionally overriding parts of them.

[include.<name>.path] (required) : str
    file to include; relative paths are resolved against this file

[include.<name>.env] (optional) : dict[str, any]
    values substituted into the included file, which is rendered as a
    template: {{.key}}

Every included action is renamed to '<name>.<action name>' and loses
priority, so an included subname that also appears in this file needs its
full name.`

// Config describes one include.
type Config struct {
	Path string         `yaml:"path"`
	Env  map[string]any `yaml:"env"`
}

// Action wraps an action created from an included file.
type Action struct {
	action.Base
	inner    action.Action
	siblings []action.Action
}

func wrap(prefix string, inner action.Action, siblings []action.Action) *Action {
	return &Action{
		Base:     action.NewBase(prefix+"."+inner.Name(), inner.Subname()).WithPriority(false),
		inner:    inner,
		siblings: siblings,
	}
}

func (a *Action) Help() string { return a.inner.Help() }

// Run delegates to the wrapped action, resolving its siblings among the
// actions of the included file.
func (a *Action) Run(ctx *action.Context, _ []action.Action, args []string) error {
	return a.inner.Run(ctx, a.siblings, args)
}

func (a *Action) Completion(ctx *action.Context, _ []action.Action, args []string) ([]string, error) {
	return a.inner.Completion(ctx, a.siblings, args)
}

// Recipe reads the "include" section.
type Recipe struct{}

func (Recipe) Name() string { return RecipeName }
func (Recipe) Help() string { return recipeHelp }

// CreateActions loads every include one level deeper than doc and wraps the
// actions it yields. Failing includes are reported together.
func (Recipe) CreateActions(m *recipe.Manager, doc document.File) ([]action.Action, error) {
	section, ok := doc.Data().Get(document.Key(RecipeName))
	if !ok {
		return nil, nil
	}
	table, ok := section.Table()
	if !ok {
		return nil, nil
	}
	keys, _ := section.Keys()
	return errs.Gather(keys, func(name string) ([]action.Action, error) {
		var cfg Config
		if err := table[name].Decode(&cfg); err != nil || cfg.Path == "" {
			return nil, errs.Wrapf(ErrInvalidConfig, "Invalid include config for action '%s'", name)
		}
		path := cfg.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(document.Dir(doc), path)
		}
		if info, err := os.Stat(path); err != nil || info.IsDir() {
			return nil, errs.Wrapf(ErrInvalidPath, "Invalid path for include: '%s', '%s'", name, path)
		}
		included, err := load(path, cfg.Env, doc.Depth()+1)
		if err != nil {
			return nil, err
		}
		inner, err := m.CreateActions(included)
		if err != nil {
			return nil, err
		}
		out := make([]action.Action, len(inner))
		for i, a := range inner {
			out[i] = wrap(name, a, inner)
		}
		return out, nil
	})
}

func load(path string, env map[string]any, depth int) (document.File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Newf(1, "Error reading include '%s': %v", path, err)
	}
	vars := make(map[string]string, len(env))
	for k, v := range env {
		vars[k] = fmt.Sprint(v)
	}
	rendered, err := render.String(string(raw), vars)
	if err != nil {
		return nil, err
	}
	return document.Parse(path, []byte(rendered), document.WithDepth(depth))
}

// Register installs the include recipe.
func Register(m *recipe.Manager) error {
	return m.Register(Recipe{})
}
