package plugins

import (
	"fmt"
	"strings"

	"github.com/kingrea/gobi/internal/action"
	"github.com/kingrea/gobi/internal/document"
	"github.com/kingrea/gobi/internal/errs"
	"github.com/kingrea/gobi/internal/recipe"
	"github.com/kingrea/gobi/internal/recipes/shell"
)

var ErrInvalidConfig = errs.New(1, "Invalid scripted recipe config")

// Entry keys read by the recipe itself; every other key is exported to the
// command environment.
const (
	keyHelp     = "help"
	keyPriority = "priority"
	keyCwd      = "cwd"
)

// Recipe turns the entries of the section named after its definition into
// shell actions.
type Recipe struct {
	def    RecipeDefinition
	source string
}

// NewRecipe wraps a loaded definition.
func NewRecipe(file DefinitionFile) *Recipe {
	return &Recipe{def: file.Definition.Normalized(), source: file.Path}
}

func (r *Recipe) Name() string { return r.def.Name }

func (r *Recipe) Help() string {
	help := r.def.Help
	if help == "" {
		help = fmt.Sprintf("Scripted recipe loaded from %s", r.source)
	}
	return fmt.Sprintf("%s\n\n[%s.<action name>] runs:\n    %s\nwith the entry's fields in the environment.",
		help, r.def.Name, strings.ReplaceAll(r.def.Command, "\n", "\n    "))
}

// CreateActions emits one action per entry. Invalid entries are reported
// together.
func (r *Recipe) CreateActions(_ *recipe.Manager, doc document.File) ([]action.Action, error) {
	section, ok := doc.Data().Get(document.Key(r.def.Name))
	if !ok {
		return nil, nil
	}
	table, ok := section.Table()
	if !ok {
		return nil, errs.Wrapf(ErrInvalidConfig, "Expected [%s] to be a table", r.def.Name)
	}
	keys, _ := section.Keys()
	var (
		out []action.Action
		c   errs.Collector
	)
	for _, name := range keys {
		cfg, err := r.config(table[name])
		if err != nil {
			c.Add(errs.Wrapf(ErrInvalidConfig, "Invalid %s config for action '%s': %v", r.def.Name, name, err))
			continue
		}
		out = append(out, shell.NewAction(r.def.Name, name, nil, cfg, doc.Path()))
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Recipe) config(entry document.Entry) (*shell.Config, error) {
	fields, ok := entry.Table()
	if !ok {
		return nil, fmt.Errorf("expected a table, got %s", entry.Type())
	}
	command := r.def.Command
	cfg := &shell.Config{
		Command:  &command,
		Params:   r.def.Params,
		Priority: r.def.Priority,
		Env:      map[string]string{},
	}
	if r.def.Shell != "" {
		cfg.Shell = &r.def.Shell
	}
	if r.def.Extension != "" {
		cfg.Extension = &r.def.Extension
	}
	if r.def.Completion != "" {
		cfg.Completion = &r.def.Completion
	}
	if r.def.Help != "" {
		cfg.Help = &r.def.Help
	}
	for key, field := range fields {
		switch key {
		case keyPriority:
			p, ok := field.AsBool()
			if !ok {
				return nil, fmt.Errorf("%s must be a boolean", key)
			}
			cfg.Priority = &p
			continue
		}
		value, ok := fieldString(field)
		if !ok {
			return nil, fmt.Errorf("field %s must be a scalar or a list of scalars", key)
		}
		switch key {
		case keyHelp:
			cfg.Help = &value
		case keyCwd:
			cfg.Cwd = &value
		default:
			cfg.Env[key] = value
		}
	}
	return cfg, nil
}

// fieldString flattens a scalar, or a list of scalars joined by spaces.
func fieldString(e document.Entry) (string, bool) {
	switch e.Type() {
	case document.TypeString:
		return e.AsString()
	case document.TypeInteger:
		i, _ := e.AsInt()
		return fmt.Sprint(i), true
	case document.TypeFloat:
		f, _ := e.AsFloat()
		return fmt.Sprint(f), true
	case document.TypeBoolean:
		b, _ := e.AsBool()
		return fmt.Sprint(b), true
	case document.TypeArray:
		items, _ := e.Array()
		parts := make([]string, 0, len(items))
		for _, item := range items {
			if item.Type() == document.TypeArray || item.Type() == document.TypeTable {
				return "", false
			}
			s, ok := fieldString(item)
			if !ok {
				return "", false
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, " "), true
	}
	return "", false
}
