package project

import (
	"path/filepath"

	"github.com/kingrea/gobi/internal/action"
	"github.com/kingrea/gobi/internal/document"
	"github.com/kingrea/gobi/internal/recipe"
)

// RecipeName is the section read by the project recipe.
const RecipeName = "gobi"

const recipeHelp = `
This recipe is always loaded by gobi. It loads gobi files and exposes every
registered project as an action that dispatches into that project's file.

Configuration:

[gobi.help] : str
    help text shown for the action created for this file

[gobi.projects] : dict[str, str]
    project names mapped to their gobi file; relative paths are resolved
    against the directory of the declaring file
`

// Recipe turns gobi.projects into project actions.
type Recipe struct{}

// NewRecipe returns the project recipe.
func NewRecipe() *Recipe { return &Recipe{} }

func (*Recipe) Name() string { return RecipeName }
func (*Recipe) Help() string { return recipeHelp }

// CreateActions emits one project action per string entry in gobi.projects.
// Non-string entries are skipped.
func (*Recipe) CreateActions(m *recipe.Manager, doc document.File) ([]action.Action, error) {
	projects, ok := doc.Data().GetNested(document.Keys(RecipeName, "projects")...)
	if !ok {
		return nil, nil
	}
	table, ok := projects.Table()
	if !ok {
		return nil, nil
	}
	keys, _ := projects.Keys()
	var out []action.Action
	for _, name := range keys {
		path, ok := table[name].AsString()
		if !ok {
			continue
		}
		out = append(out, New(name, ResolvePath(document.Dir(doc), path), m))
	}
	return out, nil
}

// ResolvePath anchors a relative project path at base.
func ResolvePath(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

// Register installs the project recipe.
func Register(m *recipe.Manager) error {
	return m.Register(NewRecipe())
}
