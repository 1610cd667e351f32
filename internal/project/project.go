// Package project implements the orchestrating action bound to a gobi
// document, and the "gobi" recipe that exposes registered projects as
// actions.
package project

import (
	"sync"

	"github.com/kingrea/gobi/internal/action"
	"github.com/kingrea/gobi/internal/document"
	"github.com/kingrea/gobi/internal/errs"
	"github.com/kingrea/gobi/internal/recipe"
	"github.com/kingrea/gobi/internal/resolve"
)

// RootName identifies the top-level project action.
const RootName = "gobi"

var (
	ErrLoad         = errs.New(1, "Error loading gobi file")
	ErrNoAction     = errs.New(1, "No action specified")
	ErrNestingLimit = errs.New(1, "Project nesting limit exceeded")
)

// Action loads a document, expands it into actions with the recipe manager,
// resolves the first argument among them and dispatches the rest.
type Action struct {
	action.Base
	path    string
	manager *recipe.Manager

	helpOnce sync.Once
	help     string
}

// New binds a project action to the document at path. An empty name becomes
// RootName.
func New(name, path string, m *recipe.Manager) *Action {
	if name == "" {
		name = RootName
	}
	return &Action{
		Base:    action.NewBase(name, name).WithPriority(false),
		path:    path,
		manager: m,
	}
}

// Path returns the bound document path.
func (a *Action) Path() string { return a.path }

// IsRoot reports whether a is the top-level project.
func (a *Action) IsRoot() bool { return a.Name() == RootName }

// Help reads gobi.help from the bound document on first use.
func (a *Action) Help() string {
	a.helpOnce.Do(func() {
		doc, err := document.Load(a.path)
		if err != nil {
			a.help = "Error loading gobi file: " + err.Error()
			return
		}
		if help, ok := document.StringAt(doc.Data(), document.Keys("gobi", "help")...); ok {
			a.help = help
			return
		}
		a.help = "Project '" + a.Subname() + "' has no help"
	})
	return a.help
}

// Actions loads the bound document and expands it.
func (a *Action) Actions() ([]action.Action, error) {
	doc, err := document.Load(a.path)
	if err != nil {
		return nil, errs.Wrapf(ErrLoad, "Error loading gobi file: %s", err.Error())
	}
	return a.manager.CreateActions(doc)
}

func (a *Action) enter(ctx *action.Context) (*action.Context, []action.Action, error) {
	if !a.IsRoot() && len(ctx.Chain) >= a.manager.MaxDepth() {
		return nil, nil, errs.Wrapf(ErrNestingLimit, "Project nesting limit of %d exceeded at '%s'", a.manager.MaxDepth(), a.Name())
	}
	actions, err := a.Actions()
	if err != nil {
		return nil, nil, err
	}
	return ctx.WithProject(a.Subname(), a.path, a.IsRoot()), actions, nil
}

// Run implements action.Action.
func (a *Action) Run(ctx *action.Context, _ []action.Action, args []string) error {
	child, actions, err := a.enter(ctx)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return ErrNoAction
	}
	target, err := resolve.FindOrSuggest(args[0], actions)
	if err != nil {
		return err
	}
	child = child.WithAction(target)
	child.Log.Info("run %s in project %s (%s) args=%q", target.Name(), child.Project, a.path, args[1:])
	return target.Run(child, actions, args[1:])
}

// Completion implements action.Action. Without arguments it lists the
// minimal names of the project's actions; otherwise it delegates to the
// action named by the first argument.
func (a *Action) Completion(ctx *action.Context, _ []action.Action, args []string) ([]string, error) {
	child, actions, err := a.enter(ctx)
	if err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return resolve.Names(resolve.MinimalNames(actions)), nil
	}
	target, err := resolve.Find(args[0], actions)
	if err != nil {
		return nil, err
	}
	return target.Completion(child.WithAction(target), actions, args[1:])
}
