// Package action defines the runnable units gobi resolves and dispatches.
package action

// DefaultHelp is reported by actions that do not describe themselves.
const DefaultHelp = "No help available"

// Action is a runnable unit produced by a recipe. Actions are immutable
// after construction and may be shared by several composing actions.
//
// Name is the qualified, globally unique identifier (for example
// "shell.build"). Subname is the short display name users usually type; it is
// not unique, and Priority breaks ties between actions sharing one.
type Action interface {
	Name() string
	Subname() string
	Priority() bool
	Help() string
	// Run executes the action. siblings holds every action produced from the
	// same document so composing actions can resolve their targets.
	Run(ctx *Context, siblings []Action, args []string) error
	// Completion returns shell completion candidates for args.
	Completion(ctx *Context, siblings []Action, args []string) ([]string, error)
}

// Base provides identity plumbing and the default behaviour of optional
// methods. Embed it and implement Run.
type Base struct {
	name     string
	subname  string
	help     string
	priority bool
}

// NewBase seeds the helper with identity. Priority defaults to true.
func NewBase(name, subname string) Base {
	return Base{name: name, subname: subname, priority: true}
}

// WithHelp returns a copy with help text set.
func (b Base) WithHelp(help string) Base {
	b.help = help
	return b
}

// WithPriority returns a copy with the priority flag set.
func (b Base) WithPriority(priority bool) Base {
	b.priority = priority
	return b
}

// Name implements Action.Name.
func (b Base) Name() string { return b.name }

// Subname implements Action.Subname.
func (b Base) Subname() string { return b.subname }

// Priority implements Action.Priority.
func (b Base) Priority() bool { return b.priority }

// Help implements Action.Help.
func (b Base) Help() string {
	if b.help == "" {
		return DefaultHelp
	}
	return b.help
}

// Completion implements Action.Completion with no candidates.
func (b Base) Completion(*Context, []Action, []string) ([]string, error) {
	return nil, nil
}
