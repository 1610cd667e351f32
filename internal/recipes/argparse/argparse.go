// Package argparse wraps another action with command line parsing. Parsed
// flags and arguments become variables in the dispatch context, so shell
// actions see them in their environment.
package argparse

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/pflag"

	"github.com/kingrea/gobi/internal/action"
	"github.com/kingrea/gobi/internal/document"
	"github.com/kingrea/gobi/internal/errs"
	"github.com/kingrea/gobi/internal/recipe"
	"github.com/kingrea/gobi/internal/resolve"
)

// RecipeName is the recipe name and the document section it reads.
const RecipeName = "argparse"

// ParseErrorCode is the exit code of a command line that fails to parse.
const ParseErrorCode = 2

var (
	ErrInvalidConfig = errs.New(1, "Invalid argparse config")
	ErrParse         = errs.New(ParseErrorCode, "Error parsing arguments")
	ErrNoSubaction   = errs.New(1, "Argparse could not find subaction")
)

const recipeHelp = `Generates an argparse wrapper around a given subaction.

[argparse.<action name>.action] (required) : str
    name of the action to call

[argparse.<action name>.passthrough] (optional) : bool
    if true, unknown arguments are passed on to the action

Flags and arguments are declared under 'flags' and 'args':

[argparse.<action name>.[args,flags].<name>.long] (optional) : str
    long name, defaults to <name>

[argparse.<action name>.[args,flags].<name>.short] (optional) : str
    single letter short name

[argparse.<action name>.[args,flags].<name>.help] (optional) : str
    help text

[argparse.<action name>.[args,flags].<name>.var_name] (optional) : str
    variable receiving the value, defaults to <name>

[argparse.<action name>.flags.<name>.set_false] (optional) : bool
    the flag defaults to set and passing it clears it

[argparse.<action name>.args.<name>.default] (optional) : str
    default value

[argparse.<action name>.args.<name>.required] (optional) : bool
    fail when the argument is missing

[argparse.<action name>.args.<name>.choices] (optional) : list[str]
    accepted values

Flags export "1" or "0"; arguments export their value when one is given.`

// Flag is a boolean switch.
type Flag struct {
	Short    string `yaml:"short"`
	Long     string `yaml:"long"`
	Help     string `yaml:"help"`
	SetFalse bool   `yaml:"set_false"`
	VarName  string `yaml:"var_name"`
}

// Arg is an option taking a value.
type Arg struct {
	Short    string   `yaml:"short"`
	Long     string   `yaml:"long"`
	Help     string   `yaml:"help"`
	Default  *string  `yaml:"default"`
	Required bool     `yaml:"required"`
	VarName  string   `yaml:"var_name"`
	Choices  []string `yaml:"choices"`
}

// Config describes one wrapper.
type Config struct {
	Action      string          `yaml:"action"`
	Flags       map[string]Flag `yaml:"flags"`
	Args        map[string]Arg  `yaml:"args"`
	Passthrough bool            `yaml:"passthrough"`
}

// validate rejects options pflag would refuse to define: long shorthands
// and long or short names used twice across flags and args.
func (c Config) validate() error {
	var problems []string
	longs := map[string]string{}
	shorts := map[string]string{}
	check := func(kind, name, long, short string) {
		label := fmt.Sprintf("%s '%s'", kind, name)
		long = orDefault(long, name)
		if prev, ok := longs[long]; ok {
			problems = append(problems, fmt.Sprintf("%s: long name '%s' is already used by %s", label, long, prev))
		} else {
			longs[long] = label
		}
		switch {
		case short == "":
		case len(short) > 1:
			problems = append(problems, fmt.Sprintf("%s: short name '%s' must be a single character", label, short))
		default:
			if prev, ok := shorts[short]; ok {
				problems = append(problems, fmt.Sprintf("%s: short name '%s' is already used by %s", label, short, prev))
			} else {
				shorts[short] = label
			}
		}
	}
	for _, name := range sortedKeys(c.Flags) {
		check("flag", name, c.Flags[name].Long, c.Flags[name].Short)
	}
	for _, name := range sortedKeys(c.Args) {
		check("arg", name, c.Args[name].Long, c.Args[name].Short)
	}
	if len(problems) > 0 {
		return fmt.Errorf("%s", strings.Join(problems, "\n"))
	}
	return nil
}

// Action parses arguments and runs its target.
type Action struct {
	action.Base
	config Config

	usageOnce sync.Once
	usage     string
}

func newAction(subname string, cfg Config) *Action {
	return &Action{
		Base:   action.NewBase(RecipeName+"."+subname, subname),
		config: cfg,
	}
}

func orDefault(val, def string) string {
	if val == "" {
		return def
	}
	return val
}

// flagSet builds a fresh parser; pflag sets carry parse state.
func (a *Action) flagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet(a.Name(), pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = true
	for _, name := range sortedKeys(a.config.Flags) {
		f := a.config.Flags[name]
		fs.BoolP(orDefault(f.Long, name), f.Short, f.SetFalse, f.Help)
		if f.SetFalse {
			fs.Lookup(orDefault(f.Long, name)).NoOptDefVal = "false"
		}
	}
	for _, name := range sortedKeys(a.config.Args) {
		arg := a.config.Args[name]
		help := arg.Help
		if len(arg.Choices) > 0 {
			help = strings.TrimSpace(fmt.Sprintf("%s [%s]", help, strings.Join(arg.Choices, ", ")))
		}
		def := ""
		if arg.Default != nil {
			def = *arg.Default
		}
		fs.StringP(orDefault(arg.Long, name), arg.Short, def, help)
	}
	return fs
}

// Help describes the target and the accepted options.
func (a *Action) Help() string {
	a.usageOnce.Do(func() {
		a.usage = strings.TrimRight(a.flagSet().FlagUsages(), "\n")
	})
	return fmt.Sprintf("Parses arguments for action %s\n%s", a.config.Action, a.usage)
}

// Parse reads args into variables. The second result holds the arguments
// left for the target: with passthrough, unknown options and positional
// arguments in their original order.
func (a *Action) Parse(args []string) (map[string]string, []string, error) {
	fs := a.flagSet()
	known, rest := args, []string(nil)
	if a.config.Passthrough {
		known, rest = split(fs, args)
	}
	if err := fs.Parse(known); err != nil {
		return nil, nil, a.parseError(err.Error())
	}
	if extra := fs.Args(); len(extra) > 0 {
		return nil, nil, a.parseError(fmt.Sprintf("unexpected argument '%s'", extra[0]))
	}

	vars := map[string]string{}
	for _, name := range sortedKeys(a.config.Flags) {
		f := a.config.Flags[name]
		val := "0"
		if set, _ := fs.GetBool(orDefault(f.Long, name)); set {
			val = "1"
		}
		vars[orDefault(f.VarName, name)] = val
	}
	for _, name := range sortedKeys(a.config.Args) {
		arg := a.config.Args[name]
		long := orDefault(arg.Long, name)
		if !fs.Changed(long) && arg.Default == nil {
			if arg.Required {
				return nil, nil, a.parseError(fmt.Sprintf("the required argument '--%s' was not provided", long))
			}
			continue
		}
		val, _ := fs.GetString(long)
		if len(arg.Choices) > 0 && !contains(arg.Choices, val) {
			return nil, nil, a.parseError(fmt.Sprintf("invalid value '%s' for '--%s' [possible values: %s]", val, long, strings.Join(arg.Choices, ", ")))
		}
		vars[orDefault(arg.VarName, name)] = val
	}
	return vars, rest, nil
}

func (a *Action) parseError(msg string) error {
	return errs.Wrapf(ErrParse, "Error parsing arguments for action %s:%s", a.config.Action, msg)
}

// Run parses args and runs the target with the parsed variables.
func (a *Action) Run(ctx *action.Context, siblings []action.Action, args []string) error {
	vars, rest, err := a.Parse(args)
	if err != nil {
		return err
	}
	target, err := resolve.Find(a.config.Action, siblings)
	if err != nil {
		e := errs.Wrapf(ErrNoSubaction, "Argparse could not find subaction: %s", a.config.Action)
		e.Code = errs.Code(err)
		return e
	}
	ctx.Log.Info("argparse %s: %s vars=%v", a.Name(), target.Name(), vars)
	return target.Run(ctx.WithVars(vars).WithAction(target), siblings, rest)
}

// Completion offers the long options.
func (a *Action) Completion(*action.Context, []action.Action, []string) ([]string, error) {
	var out []string
	a.flagSet().VisitAll(func(f *pflag.Flag) {
		out = append(out, "--"+f.Name)
	})
	return out, nil
}

// split separates the options fs knows from everything else, keeping the
// relative order of both.
func split(fs *pflag.FlagSet, args []string) (known, rest []string) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		var f *pflag.Flag
		switch {
		case arg == "--":
			return known, append(rest, args[i:]...)
		case strings.HasPrefix(arg, "--"):
			name, _, _ := strings.Cut(arg[2:], "=")
			f = fs.Lookup(name)
		case strings.HasPrefix(arg, "-") && len(arg) > 1:
			f = fs.ShorthandLookup(arg[1:2])
		}
		if f == nil {
			rest = append(rest, arg)
			continue
		}
		known = append(known, arg)
		takesValue := f.NoOptDefVal == "" && f.Value.Type() != "bool"
		inline := strings.Contains(arg, "=") || (!strings.HasPrefix(arg, "--") && len(arg) > 2)
		if takesValue && !inline && i+1 < len(args) {
			i++
			known = append(known, args[i])
		}
	}
	return known, rest
}

func contains(list []string, val string) bool {
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Recipe reads the "argparse" section.
type Recipe struct{}

func (Recipe) Name() string { return RecipeName }
func (Recipe) Help() string { return recipeHelp }

// CreateActions emits one wrapper per entry. Invalid entries are reported
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
		err := table[name].Decode(&cfg)
		if err == nil && cfg.Action == "" {
			err = fmt.Errorf("missing field 'action'")
		}
		if err == nil {
			err = cfg.validate()
		}
		if err != nil {
			return nil, errs.Wrapf(ErrInvalidConfig, "Invalid argparse config for action '%s'\n%v", name, err)
		}
		return []action.Action{newAction(name, cfg)}, nil
	})
}

// Register installs the argparse recipe.
func Register(m *recipe.Manager) error {
	return m.Register(Recipe{})
}
