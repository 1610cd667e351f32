// cmd/gobi-recipes/main.go
//
// The native recipe module loaded by gobi at startup. Build with:
//
//	go build -buildmode=plugin -o gobi_recipes.so ./cmd/gobi-recipes

package main

import (
	"github.com/kingrea/gobi/internal/recipe"
	"github.com/kingrea/gobi/internal/recipes"
)

// GobiRegisterRecipes installs the built-in recipes.
func GobiRegisterRecipes(m *recipe.Manager) error {
	return recipes.RegisterBuiltins(m)
}

func main() {}
