// Package recipes bundles the built-in recipes shipped with gobi.
package recipes

import (
	"github.com/kingrea/gobi/internal/errs"
	"github.com/kingrea/gobi/internal/recipe"
	"github.com/kingrea/gobi/internal/recipes/argparse"
	"github.com/kingrea/gobi/internal/recipes/help"
	"github.com/kingrea/gobi/internal/recipes/include"
	"github.com/kingrea/gobi/internal/recipes/list"
	"github.com/kingrea/gobi/internal/recipes/pick"
	"github.com/kingrea/gobi/internal/recipes/projectmanager"
	"github.com/kingrea/gobi/internal/recipes/sequence"
	"github.com/kingrea/gobi/internal/recipes/shell"
)

// RegisterBuiltins installs all of the built-in recipes into the provided
// manager.
func RegisterBuiltins(m *recipe.Manager) error {
	if m == nil {
		return nil
	}
	var c errs.Collector
	for _, register := range []func(*recipe.Manager) error{
		argparse.Register,
		help.Register,
		include.Register,
		list.Register,
		pick.Register,
		projectmanager.Register,
		sequence.Register,
		shell.Register,
	} {
		c.Add(register(m))
	}
	return c.Err()
}
