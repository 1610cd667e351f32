// Package list provides the "list" action, which prints the actions
// available in a project.
package list

import (
	"fmt"
	"sort"

	"github.com/kingrea/gobi/internal/action"
	"github.com/kingrea/gobi/internal/document"
	"github.com/kingrea/gobi/internal/errs"
	"github.com/kingrea/gobi/internal/recipe"
	"github.com/kingrea/gobi/internal/resolve"
	"github.com/kingrea/gobi/internal/tui"
)

// RecipeName is the recipe name and the name of the action it creates.
const RecipeName = "list"

const (
	ModePorcelain = "porcelain"
	ModeFull      = "full"
)

var ErrUsage = errs.New(1, "Invalid arguments for list")

const actionHelp = `Get a list of all available actions for a project
Usage: gobi <project list...>? list [porcelain|full]
By default prints the shortest name that selects each action.
Porcelain omits the heading.
Full prints the qualified name of every action.`

// Action prints the actions of the project it was created for.
type Action struct {
	action.Base
}

// NewAction returns the list action.
func NewAction() *Action {
	return &Action{Base: action.NewBase(RecipeName, RecipeName).WithHelp(actionHelp)}
}

// Run implements action.Action.
func (a *Action) Run(ctx *action.Context, siblings []action.Action, args []string) error {
	if len(args) > 1 {
		return errs.Wrapf(ErrUsage, "Too many arguments passed to list action")
	}
	mode := ""
	if len(args) == 1 {
		mode = args[0]
	}
	switch mode {
	case "":
		fmt.Fprintln(ctx.Stdout, tui.Title(ctx.Stdout, "Available actions:"))
		printLines(ctx, resolve.Names(resolve.MinimalNames(siblings)))
	case ModePorcelain:
		printLines(ctx, resolve.Names(resolve.MinimalNames(siblings)))
	case ModeFull:
		printLines(ctx, FullNames(siblings))
	default:
		return errs.Wrapf(ErrUsage, "Unknown argument: %s", mode)
	}
	return nil
}

// Completion offers the modes.
func (a *Action) Completion(_ *action.Context, _ []action.Action, args []string) ([]string, error) {
	if len(args) > 0 {
		return nil, nil
	}
	return []string{ModeFull, ModePorcelain}, nil
}

// FullNames returns the sorted qualified names of actions.
func FullNames(actions []action.Action) []string {
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = a.Name()
	}
	sort.Strings(out)
	return out
}

func printLines(ctx *action.Context, lines []string) {
	for _, line := range lines {
		fmt.Fprintln(ctx.Stdout, line)
	}
}

// Recipe creates the list action for every document.
type Recipe struct{}

func (Recipe) Name() string { return RecipeName }
func (Recipe) Help() string { return "Generates a list of all available actions" }

func (Recipe) CreateActions(*recipe.Manager, document.File) ([]action.Action, error) {
	return []action.Action{NewAction()}, nil
}

// Register installs the list recipe.
func Register(m *recipe.Manager) error {
	return m.Register(Recipe{})
}
