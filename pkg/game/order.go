package game

import (
	"strconv"
	"strings"

	"github.com/arthur-debert/modlink/pkg/errors"
	"github.com/arthur-debert/modlink/pkg/filter"
	"github.com/arthur-debert/modlink/pkg/loadorder"
)

// All selects every visible entry where an index is expected
const All = "all"

// Find applies a filter to the mods, plugins and downloads of the game
func (g *Instance) Find(q filter.Query) (filter.Result, error) {
	downloads, err := g.Downloads()
	if err != nil {
		return filter.Result{}, err
	}
	return filter.Apply(q, g.order, downloads), nil
}

// Indices parses an index argument for a component: a number, or "all"
// for every entry q shows.
func (g *Instance) Indices(c loadorder.Component, arg string, q filter.Query) ([]int, error) {
	if strings.EqualFold(arg, All) {
		res := filter.Apply(q, g.order, nil)
		if c == loadorder.Mods {
			return res.Mods, nil
		}
		return res.Plugins, nil
	}
	i, err := strconv.Atoi(arg)
	if err != nil {
		return nil, errors.Newf(errors.ErrInvalidInput, "expected an index or %q, got %q", All, arg).
			WithDetail("arg", arg)
	}
	return []int{i}, nil
}

// Activate activates the entries at indices. With several indices,
// failing entries are reported together and the others still change.
func (g *Instance) Activate(c loadorder.Component, indices []int) error {
	return g.setActive(c, indices, true)
}

// Deactivate deactivates the entries at indices
func (g *Instance) Deactivate(c loadorder.Component, indices []int) error {
	return g.setActive(c, indices, false)
}

func (g *Instance) setActive(c loadorder.Component, indices []int, active bool) error {
	if len(indices) == 1 {
		if err := g.order.SetActive(c, indices[0], active); err != nil {
			return err
		}
		return g.changed()
	}

	err := g.order.SetActiveAll(c, indices, active)
	if saveErr := g.changed(); saveErr != nil {
		return saveErr
	}
	return err
}

// Move reorders an entry of a component
func (g *Instance) Move(c loadorder.Component, from, to int) error {
	if err := g.order.Move(c, from, to); err != nil {
		return err
	}
	return g.changed()
}

// Tag adds tags to a mod. Tags are kept in the manifest and do not need
// a commit.
func (g *Instance) Tag(mod string, tags ...string) error {
	m, err := g.mod(mod)
	if err != nil {
		return err
	}
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" && !m.HasTag(t) {
			m.Tags = append(m.Tags, t)
		}
	}
	return g.save()
}

// Untag removes tags from a mod, ignoring case
func (g *Instance) Untag(mod string, tags ...string) error {
	m, err := g.mod(mod)
	if err != nil {
		return err
	}
	kept := m.Tags[:0]
	for _, t := range m.Tags {
		drop := false
		for _, rm := range tags {
			if strings.EqualFold(t, rm) {
				drop = true
			}
		}
		if !drop {
			kept = append(kept, t)
		}
	}
	m.Tags = kept
	return g.save()
}

// mod looks a mod up by name, or by index when name is a number
func (g *Instance) mod(name string) (*loadorder.Mod, error) {
	if m, ok := g.order.Mod(name); ok {
		return m, nil
	}
	if i, err := strconv.Atoi(name); err == nil {
		mods := g.order.Mods()
		if i < 0 || i >= len(mods) {
			return nil, errors.Newf(errors.ErrInvalidIndex, "no mod at index %d", i).
				WithDetail("index", i).
				WithDetail("len", len(mods))
		}
		return mods[i], nil
	}
	return nil, errors.Newf(errors.ErrNotFound, "mod %q not found", name).WithDetail("mod", name)
}

// Mod looks a mod up by name or index
func (g *Instance) Mod(name string) (*loadorder.Mod, error) {
	return g.mod(name)
}
