// Package pick provides the "pick" action, an interactive chooser over the
// actions of a project.
package pick

import (
	"github.com/kingrea/gobi/internal/action"
	"github.com/kingrea/gobi/internal/document"
	"github.com/kingrea/gobi/internal/errs"
	"github.com/kingrea/gobi/internal/recipe"
	"github.com/kingrea/gobi/internal/resolve"
	"github.com/kingrea/gobi/internal/tui"
)

// RecipeName is the recipe name and the name of the action it creates.
const RecipeName = "pick"

var ErrPicker = errs.New(1, "Action picker failed")

const actionHelp = `Choose an action interactively and run it
Usage: gobi <project list...>? pick [args...]
args are passed to the chosen action.`

// Chooser presents choices and returns the selected name. ok is false when
// nothing was chosen.
type Chooser func(ctx *action.Context, title string, choices []tui.Choice) (name string, ok bool, err error)

// Terminal runs the bubbletea picker on the context streams.
func Terminal(ctx *action.Context, title string, choices []tui.Choice) (string, bool, error) {
	return tui.Pick(ctx.Stdin, ctx.Stdout, title, choices, ctx.Log)
}

// Action lets the user pick one of its siblings.
type Action struct {
	action.Base
	choose Chooser
}

// NewAction returns the pick action. A nil chooser uses Terminal.
func NewAction(choose Chooser) *Action {
	if choose == nil {
		choose = Terminal
	}
	return &Action{
		Base:   action.NewBase(RecipeName, RecipeName).WithHelp(actionHelp),
		choose: choose,
	}
}

// Choices lists the siblings under their minimal names, leaving out pick
// itself.
func Choices(siblings []action.Action) []tui.Choice {
	var out []tui.Choice
	for _, n := range resolve.MinimalNames(siblings) {
		if _, self := n.Action.(*Action); self {
			continue
		}
		out = append(out, tui.Choice{Name: n.Name, Help: n.Action.Help()})
	}
	return out
}

// Run implements action.Action. Quitting the picker is not an error.
func (a *Action) Run(ctx *action.Context, siblings []action.Action, args []string) error {
	title := "gobi"
	if ctx.Project != "" {
		title = ctx.Project
	}
	name, ok, err := a.choose(ctx, title, Choices(siblings))
	if err != nil {
		return errs.Wrapf(ErrPicker, "Action picker failed: %v", err)
	}
	if !ok {
		ctx.Log.Info("pick: nothing chosen")
		return nil
	}
	target, err := resolve.Find(name, siblings)
	if err != nil {
		return err
	}
	ctx.Log.Info("pick: running %s", target.Name())
	return target.Run(ctx.WithAction(target), siblings, args)
}

// Recipe creates the pick action for every document.
type Recipe struct{}

func (Recipe) Name() string { return RecipeName }
func (Recipe) Help() string { return "Generates the interactive action picker" }

func (Recipe) CreateActions(*recipe.Manager, document.File) ([]action.Action, error) {
	return []action.Action{NewAction(nil)}, nil
}

// Register installs the pick recipe.
func Register(m *recipe.Manager) error {
	return m.Register(Recipe{})
}
