// Package projectmanager provides actions that edit the project registry
// (gobi.projects) of the gobi file they were created from.
package projectmanager

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kingrea/gobi/internal/action"
	"github.com/kingrea/gobi/internal/document"
	"github.com/kingrea/gobi/internal/errs"
	"github.com/kingrea/gobi/internal/project"
	"github.com/kingrea/gobi/internal/recipe"
	"github.com/kingrea/gobi/internal/resolve"
)

// RecipeName is the recipe name and the prefix of the actions it creates.
const RecipeName = "project-manager"

// ConfirmFlag skips the prune confirmation prompt.
const ConfirmFlag = "-y"

var (
	ErrUsage         = errs.New(1, "Invalid arguments")
	ErrShape         = errs.New(1, "Unexpected gobi file layout")
	ErrNotRegistered = errs.New(1, "Project is not registered")
	ErrRegistered    = errs.New(1, "Project is already registered")
	ErrAborted       = errs.New(1, "Aborting...")
)

type kind int

const (
	kindWhere kind = iota
	kindRegister
	kindDeregister
	kindPrune
)

var actionHelp = map[kind]string{
	kindWhere: `Get the path of a project's gobi file
Usage: gobi <project list...>? where <project name>+`,
	kindRegister: `Register a project to a gobi file
Usage: gobi <project list...>? register <project name> <gobi file path>
project name: name of the action that will load the project
gobi file path: path to the gobi file for the project`,
	kindDeregister: `Deregister a project from a gobi file
Usage: gobi <project list...>? deregister <project name>
project name: name of the action that will load the project`,
	kindPrune: `Prune projects from the current gobi file that no longer exist
Usage: gobi <project list...>? prune [-y]
-y: skip confirmation prompt`,
}

var subnames = map[kind]string{
	kindWhere:      "where",
	kindRegister:   "register",
	kindDeregister: "deregister",
	kindPrune:      "prune",
}

// Action is one of the registry editing actions, bound to a gobi file.
type Action struct {
	action.Base
	kind kind
	path string
}

// tomlNote is appended to the help of editing actions bound to a TOML file.
const tomlNote = "Note: TOML gobi files are rewritten on save; comments and layout are not kept"

func newAction(k kind, path string) *Action {
	sub := subnames[k]
	help := actionHelp[k]
	if k != kindWhere && document.DetectFormat(path) == document.FormatTOML {
		help += "\n" + tomlNote
	}
	return &Action{
		Base: action.NewBase(RecipeName+"."+sub, sub).WithHelp(help),
		kind: k,
		path: path,
	}
}

// Path is the gobi file the action edits.
func (a *Action) Path() string { return a.path }

// Run implements action.Action.
func (a *Action) Run(ctx *action.Context, _ []action.Action, args []string) error {
	switch a.kind {
	case kindWhere:
		return a.where(ctx, args)
	case kindRegister:
		return a.register(ctx, args)
	case kindDeregister:
		return a.deregister(ctx, args)
	default:
		return a.prune(ctx, args)
	}
}

// Completion offers registered project names to where and deregister,
// filtered by the last argument as a prefix.
func (a *Action) Completion(_ *action.Context, _ []action.Action, args []string) ([]string, error) {
	if a.kind != kindWhere && a.kind != kindDeregister {
		return nil, nil
	}
	if a.kind == kindDeregister && len(args) > 1 {
		return nil, nil
	}
	doc, err := document.Load(a.path)
	if err != nil {
		return nil, err
	}
	projects, ok := doc.Data().GetNested(document.Keys(project.RecipeName, "projects")...)
	if !ok {
		return nil, nil
	}
	names, _ := projects.Keys()
	prefix := ""
	if len(args) > 0 {
		prefix = args[len(args)-1]
	}
	return resolve.NewCompleter(names).WithPrefix(prefix), nil
}

func (a *Action) where(ctx *action.Context, args []string) error {
	if len(args) == 0 {
		return errs.Wrapf(ErrUsage, "No project name provided")
	}
	doc, err := document.Load(a.path)
	if err != nil {
		return err
	}
	projects, ok := doc.Data().GetNested(document.Keys(project.RecipeName, "projects")...)
	if !ok || projects.Type() != document.TypeTable {
		return errs.Wrapf(ErrShape, "Expected 'projects' to be a table")
	}
	paths, err := errs.Gather(args, func(name string) ([]string, error) {
		path, ok := document.StringAt(projects, document.Key(name))
		if !ok {
			return nil, errs.Wrapf(ErrNotRegistered, "Project %s not found", name)
		}
		return []string{project.ResolvePath(document.Dir(doc), path)}, nil
	})
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintln(ctx.Stdout, p)
	}
	return nil
}

// registry loads the bound file for editing and returns the projects table.
// Missing tables are reported as absent rather than created.
func (a *Action) registry() (document.File, document.Entry, error) {
	doc, err := document.LoadEditable(a.path)
	if err != nil {
		return nil, nil, err
	}
	gobi, ok := doc.Data().Get(document.Key(project.RecipeName))
	if !ok {
		return doc, nil, nil
	}
	if gobi.Type() != document.TypeTable {
		return nil, nil, errs.Wrapf(ErrShape, "Expected [gobi] to be a table")
	}
	projects, ok := gobi.Get(document.Key("projects"))
	if !ok {
		return doc, nil, nil
	}
	if projects.Type() != document.TypeTable {
		return nil, nil, errs.Wrapf(ErrShape, "Expected [gobi.projects] to be a table")
	}
	return doc, projects, nil
}

func (a *Action) register(ctx *action.Context, args []string) error {
	if len(args) != 2 {
		return errs.Wrapf(ErrUsage, "Expected 2 arguments: <gobi_name> <gobi_file_path>")
	}
	name, target := args[0], args[1]
	if info, err := os.Stat(target); err != nil || info.IsDir() {
		return errs.Wrapf(ErrUsage, "File '%s' does not exist", target)
	}
	if abs, err := filepath.Abs(target); err == nil {
		target = abs
	}
	doc, projects, err := a.registry()
	if err != nil {
		return err
	}
	if projects != nil {
		if found, _ := projects.Contains(name); found {
			return errs.Wrapf(ErrRegistered, "Project %s is already registered", name)
		}
	}
	if projects == nil {
		if projects, err = ensureTable(doc, doc.Data(), project.RecipeName, "projects"); err != nil {
			return err
		}
	}
	if err := doc.Set(projects, document.Key(name), document.String(target)); err != nil {
		return err
	}
	ctx.Log.Info("registered project %s -> %s in %s", name, target, a.path)
	return doc.Save()
}

// ensureTable walks keys from e, creating empty tables where missing.
func ensureTable(doc document.File, e document.Entry, keys ...string) (document.Entry, error) {
	for _, key := range keys {
		child, ok := e.Get(document.Key(key))
		if !ok {
			if err := doc.Set(e, document.Key(key), document.Table(nil)); err != nil {
				return nil, err
			}
			if child, ok = doc.Data().GetNested(e.Path().Append(document.Key(key))...); !ok {
				return nil, errs.Wrapf(document.ErrPathNotFound, "Could not create [%s]", key)
			}
		}
		e = child
	}
	return e, nil
}

func (a *Action) deregister(ctx *action.Context, args []string) error {
	if len(args) != 1 {
		return errs.Wrapf(ErrUsage, "Expected 1 argument: <gobi_name>")
	}
	name := args[0]
	doc, projects, err := a.registry()
	if err != nil {
		return err
	}
	if projects == nil {
		return errs.Wrapf(ErrNotRegistered, "Project %s is not registered", name)
	}
	if found, _ := projects.Contains(name); !found {
		return errs.Wrapf(ErrNotRegistered, "Project %s is not registered", name)
	}
	if err := doc.Drop(projects, document.Key(name)); err != nil {
		return err
	}
	ctx.Log.Info("deregistered project %s from %s", name, a.path)
	return doc.Save()
}

// Stale lists registered projects whose gobi file no longer exists.
func Stale(doc document.File, projects document.Entry) []string {
	if projects == nil {
		return nil
	}
	names, _ := projects.Keys()
	var out []string
	for _, name := range names {
		path, ok := document.StringAt(projects, document.Key(name))
		if !ok {
			continue
		}
		info, err := os.Stat(project.ResolvePath(document.Dir(doc), path))
		if err != nil || info.IsDir() {
			out = append(out, name)
		}
	}
	return out
}

func (a *Action) prune(ctx *action.Context, args []string) error {
	doc, projects, err := a.registry()
	if err != nil {
		return err
	}
	stale := Stale(doc, projects)
	if len(stale) == 0 {
		return nil
	}
	confirmed := len(args) > 0 && args[0] == ConfirmFlag
	if confirmed {
		fmt.Fprintln(ctx.Stdout, "Removed:")
	} else {
		fmt.Fprintln(ctx.Stdout, "About to remove:")
	}
	for _, name := range stale {
		fmt.Fprintln(ctx.Stdout, name)
	}
	if !confirmed {
		fmt.Fprintln(ctx.Stdout, "Continue [y/n]?")
		answer, _ := bufio.NewReader(ctx.Stdin).ReadString('\n')
		if strings.TrimSpace(answer) != "y" {
			return ErrAborted
		}
	}
	for _, name := range stale {
		if err := doc.Drop(projects, document.Key(name)); err != nil {
			return err
		}
	}
	ctx.Log.Info("pruned %d projects from %s", len(stale), a.path)
	if !confirmed {
		fmt.Fprintln(ctx.Stdout, "Done!")
	}
	return doc.Save()
}

// Recipe creates the registry actions for every document.
type Recipe struct{}

func (Recipe) Name() string { return RecipeName }
func (Recipe) Help() string {
	return "Creates the (de)register, where, and prune actions to manage projects"
}

func (Recipe) CreateActions(_ *recipe.Manager, doc document.File) ([]action.Action, error) {
	return []action.Action{
		newAction(kindWhere, doc.Path()),
		newAction(kindRegister, doc.Path()),
		newAction(kindDeregister, doc.Path()),
		newAction(kindPrune, doc.Path()),
	}, nil
}

// Register installs the project manager recipe.
func Register(m *recipe.Manager) error {
	return m.Register(Recipe{})
}
