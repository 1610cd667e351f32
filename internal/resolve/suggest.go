package resolve

import (
	"errors"
	"strings"

	"github.com/armon/go-radix"
	"github.com/kingrea/gobi/internal/action"
	"github.com/kingrea/gobi/internal/errs"
	"github.com/sahilm/fuzzy"
)

// MaxSuggestions caps how many alternatives Suggest returns.
const MaxSuggestions = 3

// Suggest ranks the names reachable in actions by fuzzy similarity to query.
func Suggest(query string, actions []action.Action) []string {
	if strings.TrimSpace(query) == "" || len(actions) == 0 {
		return nil
	}
	seen := map[string]bool{}
	var candidates []string
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		candidates = append(candidates, name)
	}
	for _, n := range MinimalNames(actions) {
		add(n.Name)
	}
	for _, a := range actions {
		add(a.Name())
	}
	matches := fuzzy.Find(query, candidates)
	out := make([]string, 0, MaxSuggestions)
	for _, m := range matches {
		if len(out) == MaxSuggestions {
			break
		}
		out = append(out, m.Str)
	}
	return out
}

// FindOrSuggest is Find with "did you mean" hints appended to not-found
// failures. The result still matches ErrNotFound.
func FindOrSuggest(query string, actions []action.Action) (action.Action, error) {
	a, err := Find(query, actions)
	if err == nil || !errors.Is(err, ErrNotFound) {
		return a, err
	}
	hints := Suggest(query, actions)
	if len(hints) == 0 {
		return nil, err
	}
	return nil, errs.Wrapf(err, "%s (did you mean: %s?)", err.Error(), strings.Join(hints, ", "))
}

// Completer answers prefix queries over a fixed set of names.
type Completer struct {
	tree *radix.Tree
}

// NewCompleter indexes names for prefix lookups.
func NewCompleter(names []string) *Completer {
	tree := radix.New()
	for _, name := range names {
		tree.Insert(name, struct{}{})
	}
	return &Completer{tree: tree}
}

// WithPrefix returns the indexed names starting with prefix, sorted.
func (c *Completer) WithPrefix(prefix string) []string {
	var out []string
	c.tree.WalkPrefix(prefix, func(key string, _ interface{}) bool {
		out = append(out, key)
		return false
	})
	return out
}

// Len reports the number of indexed names.
func (c *Completer) Len() int {
	return c.tree.Len()
}
