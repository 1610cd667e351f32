// Package help provides the "help" action, which prints the help text of
// actions or recipes.
package help

import (
	"fmt"
	"strings"

	"github.com/kingrea/gobi/internal/action"
	"github.com/kingrea/gobi/internal/document"
	"github.com/kingrea/gobi/internal/errs"
	"github.com/kingrea/gobi/internal/recipe"
	"github.com/kingrea/gobi/internal/resolve"
	"github.com/kingrea/gobi/internal/tui"
)

// RecipeName is the recipe name and the name of the action it creates.
const RecipeName = "help"

const (
	ModeAction = "action"
	ModeRecipe = "recipe"
)

var ErrRecipeNotFound = errs.New(1, "Recipe not found")

const actionHelp = `Usage: gobi <project list...>? help [mode]? [<name>+]?
mode can be 'recipe' or 'action' and defaults to 'action'.
With no names, prints the help of every action or recipe; otherwise only of
the ones named.`

// Action prints help blocks.
type Action struct {
	action.Base
	manager *recipe.Manager
}

// NewAction returns the help action reading recipes from m.
func NewAction(m *recipe.Manager) *Action {
	return &Action{
		Base:    action.NewBase(RecipeName, RecipeName).WithHelp(actionHelp),
		manager: m,
	}
}

// Run prints one block per name. Every name is looked up and failures are
// reported together; nothing is printed when any lookup fails. Without names
// every sibling (or recipe) is described as is.
func (a *Action) Run(ctx *action.Context, siblings []action.Action, args []string) error {
	mode := ModeAction
	if len(args) > 0 && (args[0] == ModeAction || args[0] == ModeRecipe) {
		mode, args = args[0], args[1:]
	}
	render := func(title, text string) string {
		return tui.Banner(ctx.Stdout, title) + "\n" + strings.TrimSpace(text)
	}
	var blocks []string
	switch {
	case len(args) == 0 && mode == ModeAction:
		for _, s := range siblings {
			blocks = append(blocks, render(s.Name(), s.Help()))
		}
	case len(args) == 0:
		for _, r := range a.manager.Recipes() {
			blocks = append(blocks, render(r.Name(), r.Help()))
		}
	default:
		var err error
		blocks, err = errs.Gather(args, func(name string) ([]string, error) {
			title, text, err := a.lookup(mode, name, siblings)
			if err != nil {
				return nil, err
			}
			return []string{render(title, text)}, nil
		})
		if err != nil {
			return err
		}
	}
	fmt.Fprintln(ctx.Stdout, strings.TrimSpace(strings.Join(blocks, "\n\n")))
	return nil
}

func (a *Action) lookup(mode, name string, siblings []action.Action) (string, string, error) {
	if mode == ModeRecipe {
		r, ok := a.manager.Recipe(name)
		if !ok {
			return "", "", errs.Wrapf(ErrRecipeNotFound, "Recipe '%s' not found", name)
		}
		return r.Name(), r.Help(), nil
	}
	target, err := resolve.Find(name, siblings)
	if err != nil {
		return "", "", err
	}
	return target.Name(), target.Help(), nil
}

// Completion offers the modes followed by action or recipe names.
func (a *Action) Completion(_ *action.Context, siblings []action.Action, args []string) ([]string, error) {
	if len(args) > 0 && args[0] == ModeRecipe {
		return a.manager.Names(), nil
	}
	out := resolve.Names(resolve.MinimalNames(siblings))
	if len(args) == 0 {
		out = append([]string{ModeAction, ModeRecipe}, out...)
	}
	return out, nil
}

// Recipe creates the help action for every document.
type Recipe struct{}

func (Recipe) Name() string { return RecipeName }
func (Recipe) Help() string { return "Generates the help action for gobi." }

func (Recipe) CreateActions(m *recipe.Manager, _ document.File) ([]action.Action, error) {
	return []action.Action{NewAction(m)}, nil
}

// Register installs the help recipe.
func Register(m *recipe.Manager) error {
	return m.Register(Recipe{})
}
