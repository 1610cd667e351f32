// Package resolve turns user-typed names into actions.
package resolve

import (
	"sort"

	"github.com/kingrea/gobi/internal/action"
	"github.com/kingrea/gobi/internal/errs"
)

var (
	ErrAmbiguous = errs.New(1, "Action is ambiguous")
	ErrNotFound  = errs.New(1, "Action not found")
)

type match struct {
	found     action.Action
	ambiguous bool
}

func (m *match) offer(a action.Action) {
	if m.found != nil {
		m.ambiguous = true
		return
	}
	m.found = a
}

func (m match) unique() (action.Action, bool) {
	return m.found, m.found != nil && !m.ambiguous
}

// Find resolves query against actions. Three match sets are computed: by
// subname, by subname among priority actions, and by qualified name. The
// first set holding exactly one action wins, in that order. Otherwise the
// first ambiguous set is reported, and a query matching nothing fails with
// ErrNotFound.
func Find(query string, actions []action.Action) (action.Action, error) {
	var bySubname, byPriority, byName match
	for _, a := range actions {
		if a.Subname() == query {
			bySubname.offer(a)
			if a.Priority() {
				byPriority.offer(a)
			}
		}
		if a.Name() == query {
			byName.offer(a)
		}
	}
	for _, m := range []match{bySubname, byPriority, byName} {
		if a, ok := m.unique(); ok {
			return a, nil
		}
	}
	for _, m := range []match{bySubname, byPriority, byName} {
		if m.ambiguous {
			return nil, errs.Wrapf(ErrAmbiguous, "Action %s is ambiguous", query)
		}
	}
	return nil, errs.Wrapf(ErrNotFound, "Action %s not found", query)
}

// Named pairs an action with the shortest name that resolves to it.
type Named struct {
	Action action.Action
	Name   string
}

// MinimalNames lists every reachable action under the shortest name Find
// accepts for it. Actions are grouped by subname in sorted order. A group of
// one, or a group with a single priority member, is listed under the
// subname; any other group falls back to qualified names, restricted to the
// priority members when there are several.
func MinimalNames(actions []action.Action) []Named {
	groups := map[string][]action.Action{}
	for _, a := range actions {
		groups[a.Subname()] = append(groups[a.Subname()], a)
	}
	subnames := make([]string, 0, len(groups))
	for sub := range groups {
		subnames = append(subnames, sub)
	}
	sort.Strings(subnames)

	var out []Named
	for _, sub := range subnames {
		group := groups[sub]
		var prioritized []action.Action
		for _, a := range group {
			if a.Priority() {
				prioritized = append(prioritized, a)
			}
		}
		switch {
		case len(prioritized) == 1:
			out = append(out, Named{Action: prioritized[0], Name: sub})
		case len(prioritized) > 1:
			out = append(out, qualified(prioritized)...)
		case len(group) == 1:
			out = append(out, Named{Action: group[0], Name: sub})
		default:
			out = append(out, qualified(group)...)
		}
	}
	return out
}

func qualified(group []action.Action) []Named {
	out := make([]Named, len(group))
	for i, a := range group {
		out[i] = Named{Action: a, Name: a.Name()}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns the Name of every entry.
func Names(named []Named) []string {
	out := make([]string, len(named))
	for i, n := range named {
		out[i] = n.Name
	}
	return out
}
