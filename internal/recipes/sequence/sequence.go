// Package sequence generates actions that run other actions in order.
package sequence

import (
	"fmt"
	"strings"
	"sync"

	"github.com/kingrea/gobi/internal/action"
	"github.com/kingrea/gobi/internal/document"
	"github.com/kingrea/gobi/internal/errs"
	"github.com/kingrea/gobi/internal/recipe"
	"github.com/kingrea/gobi/internal/resolve"
	"github.com/kingrea/gobi/internal/tui"
)

// RecipeName is the recipe name and the document section it reads.
const RecipeName = "sequence"

var ErrInvalidConfig = errs.New(1, "Invalid sequence config")

const recipeHelp = `Generates sequence actions.

[sequence.<action name>.subactions] (required) : list[str]
    actions to run in order; every subaction receives the same arguments

[sequence.<action name>.allow-fail] (optional) : bool (default: false)
    keep running after a subaction fails and report every failure at the end

[sequence.<action name>.decorate] (optional) : bool (default: false)
    print a banner with the name of each subaction before running it`

// Config describes one sequence.
type Config struct {
	Subactions []string `yaml:"subactions"`
	AllowFail  bool     `yaml:"allow-fail"`
	Decorate   bool     `yaml:"decorate"`
}

// Action runs its subactions one after another.
type Action struct {
	action.Base
	config Config

	helpOnce sync.Once
	help     string
}

func newAction(subname string, cfg Config) *Action {
	return &Action{
		Base:   action.NewBase(RecipeName+"."+subname, subname),
		config: cfg,
	}
}

// Help describes the subactions and the failure mode.
func (a *Action) Help() string {
	a.helpOnce.Do(func() {
		mode := "exiting on failures"
		if a.config.AllowFail {
			mode = "allowing failures"
		}
		a.help = fmt.Sprintf("Runs [%s] in a sequence %s", strings.Join(a.config.Subactions, " "), mode)
	})
	return a.help
}

// Run resolves every subaction before running any of them. Resolution
// failures are reported together.
func (a *Action) Run(ctx *action.Context, siblings []action.Action, args []string) error {
	targets, err := errs.Gather(a.config.Subactions, func(name string) ([]action.Action, error) {
		target, err := resolve.Find(name, siblings)
		if err != nil {
			return nil, err
		}
		return []action.Action{target}, nil
	})
	if err != nil {
		return err
	}

	var failures errs.Collector
	for _, target := range targets {
		if a.config.Decorate {
			fmt.Fprintln(ctx.Stdout, tui.Banner(ctx.Stdout, target.Name()))
		}
		err := target.Run(ctx.WithAction(target), siblings, args)
		if err == nil {
			continue
		}
		if !a.config.AllowFail {
			failed := errs.From(err)
			return errs.Merge(&errs.Error{Code: failed.Code, Msg: "Sequence failed: "}, failed)
		}
		ctx.Log.Warn("sequence %s: %s failed: %v", a.Name(), target.Name(), err)
		failures.Add(err)
	}
	if err := failures.Err(); err != nil {
		failed := errs.From(err)
		return errs.Merge(&errs.Error{Code: failed.Code, Msg: "Sequence finished with errors: "}, failed)
	}
	return nil
}

// Recipe reads the "sequence" section.
type Recipe struct{}

func (Recipe) Name() string { return RecipeName }
func (Recipe) Help() string { return recipeHelp }

// CreateActions emits one action per entry. Invalid entries are reported
// together.
func (Recipe) CreateActions(_ *recipe.Manager, doc document.File) ([]action.Action, error) {
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
		if err := table[name].Decode(&cfg); err != nil || cfg.Subactions == nil {
			return nil, errs.Wrapf(ErrInvalidConfig, "Invalid sequence config for action '%s'", name)
		}
		return []action.Action{newAction(name, cfg)}, nil
	})
}

// Register installs the sequence recipe.
func Register(m *recipe.Manager) error {
	return m.Register(Recipe{})
}
