package loadorder

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/modlink/pkg/errors"
	"github.com/arthur-debert/modlink/pkg/logging"
)

// Order is the load order of one game
type Order struct {
	mods    []*Mod
	plugins []*Plugin
}

// New builds an Order from sequences already in order. Plugins provided
// by a mod but missing from plugins are appended, inactive; plugins no mod
// provides are dropped.
func New(mods []*Mod, plugins []*Plugin) *Order {
	o := &Order{
		mods:    append([]*Mod(nil), mods...),
		plugins: append([]*Plugin(nil), plugins...),
	}
	o.sync()
	o.check()
	return o
}

// Mods returns the mod sequence. Callers must not reorder it.
func (o *Order) Mods() []*Mod {
	return o.mods
}

// Plugins returns the full plugin sequence, hidden plugins included.
func (o *Order) Plugins() []*Plugin {
	return o.plugins
}

// Len returns the length of a sequence
func (o *Order) Len(c Component) int {
	if c == Plugins {
		return len(o.plugins)
	}
	return len(o.mods)
}

// Mod looks up a mod by exact name
func (o *Order) Mod(name string) (*Mod, bool) {
	for _, m := range o.mods {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// Plugin looks up a plugin by name, ignoring case
func (o *Order) Plugin(name string) (*Plugin, bool) {
	for _, p := range o.plugins {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return nil, false
}

// Visible reports whether a plugin is shown: some active mod provides it.
func (o *Order) Visible(p *Plugin) bool {
	for _, m := range o.mods {
		if m.Active && m.Provides(p.Name) {
			return true
		}
	}
	return false
}

// EffectiveActive is the plugin's own flag AND the activation of a mod
// providing it.
func (o *Order) EffectiveActive(p *Plugin) bool {
	return p.Active && o.Visible(p)
}

// EnabledPlugins returns the effectively active plugins in order
func (o *Order) EnabledPlugins() []*Plugin {
	var out []*Plugin
	for _, p := range o.plugins {
		if o.EffectiveActive(p) {
			out = append(out, p)
		}
	}
	return out
}

// ActiveMods returns active mods in ascending order
func (o *Order) ActiveMods() []*Mod {
	var out []*Mod
	for _, m := range o.mods {
		if m.Active {
			out = append(out, m)
		}
	}
	return out
}

// VisibleIndices returns every index a user can see for a component:
// all mods, and plugins of active mods.
func (o *Order) VisibleIndices(c Component) []int {
	var out []int
	if c == Mods {
		for i := range o.mods {
			out = append(out, i)
		}
		return out
	}
	for i, p := range o.plugins {
		if o.Visible(p) {
			out = append(out, i)
		}
	}
	return out
}

// SetActive sets the activation of the entry at index
func (o *Order) SetActive(c Component, index int, active bool) error {
	defer o.check()

	if index < 0 || index >= o.Len(c) {
		return errors.Newf(errors.ErrInvalidIndex, "no %s at index %d", c, index).
			WithDetail("index", index).
			WithDetail("len", o.Len(c))
	}

	if c == Mods {
		return o.setModActive(o.mods[index], active)
	}
	return o.setPluginActive(o.plugins[index], active)
}

// SetActiveAll applies SetActive to each index of an explicit subset,
// usually the visible one. Failures do not stop the rest; they are
// returned together afterwards.
func (o *Order) SetActiveAll(c Component, indices []int, active bool) error {
	var errs errors.Multi
	for _, i := range indices {
		if err := o.SetActive(c, i, active); err != nil {
			errs = append(errs, err)
		}
	}
	return errs.Err()
}

func (o *Order) setModActive(m *Mod, active bool) error {
	if active && m.HasInstaller && !m.Configured {
		return errors.Newf(errors.ErrNotConfigured, "mod %q must be configured before it can be activated", m.Name).
			WithDetail("mod", m.Name)
	}
	m.Active = active
	o.sync()
	logger := logging.GetLogger("loadorder")
	logger.Debug().
		Str("mod", m.Name).
		Bool("active", active).
		Msg("mod activation changed")
	return nil
}

func (o *Order) setPluginActive(p *Plugin, active bool) error {
	if active && !o.Visible(p) {
		return errors.Newf(errors.ErrOwnerInactive, "plugin %q belongs to inactive mod %q", p.Name, p.Owner).
			WithDetail("plugin", p.Name).
			WithDetail("mod", p.Owner)
	}
	p.Active = active
	logger := logging.GetLogger("loadorder")
	logger.Debug().
		Str("plugin", p.Name).
		Bool("active", active).
		Msg("plugin activation changed")
	return nil
}

// Move removes the entry at from and reinserts it at to. A to past the
// end clamps to the last position.
func (o *Order) Move(c Component, from, to int) error {
	defer o.check()

	n := o.Len(c)
	if from < 0 || from >= n {
		return errors.Newf(errors.ErrInvalidIndex, "no %s at index %d", c, from).
			WithDetail("index", from).
			WithDetail("len", n)
	}
	if to < 0 {
		return errors.Newf(errors.ErrInvalidIndex, "invalid target index %d", to).
			WithDetail("index", to)
	}

	if c == Mods {
		o.mods = move(o.mods, from, to)
		reindex(o.mods, func(m *Mod, i int) { m.Index = i })
		o.sync()
	} else {
		o.plugins = move(o.plugins, from, to)
		reindex(o.plugins, func(p *Plugin, i int) { p.Index = i })
	}
	return nil
}

// AddMod appends a new inactive mod and its plugins
func (o *Order) AddMod(m *Mod) error {
	defer o.check()

	if _, exists := o.Mod(m.Name); exists {
		return errors.Newf(errors.ErrNameConflict, "mod %q already exists", m.Name).
			WithDetail("mod", m.Name)
	}
	m.Active = false
	o.mods = append(o.mods, m)
	o.sync()
	return nil
}

// ReplaceMod swaps in fresh data for an existing mod (after configure),
// keeping its position. Activation is taken from the replacement.
func (o *Order) ReplaceMod(m *Mod) error {
	defer o.check()

	for i, existing := range o.mods {
		if existing.Name == m.Name {
			o.mods[i] = m
			o.sync()
			return nil
		}
	}
	return errors.Newf(errors.ErrNotFound, "mod %q not found", m.Name).WithDetail("mod", m.Name)
}

// RemoveMod drops a mod and every plugin nothing else provides
func (o *Order) RemoveMod(name string) error {
	defer o.check()

	for i, m := range o.mods {
		if m.Name == name {
			o.mods = append(o.mods[:i], o.mods[i+1:]...)
			o.sync()
			return nil
		}
	}
	return errors.Newf(errors.ErrNotFound, "mod %q not found", name).WithDetail("mod", name)
}

// RenameMod changes a mod's identity in place
func (o *Order) RenameMod(from, to string) error {
	defer o.check()

	m, ok := o.Mod(from)
	if !ok {
		return errors.Newf(errors.ErrNotFound, "mod %q not found", from).WithDetail("mod", from)
	}
	if _, exists := o.Mod(to); exists {
		return errors.Newf(errors.ErrNameConflict, "mod %q already exists", to).WithDetail("mod", to)
	}
	m.Name = to
	o.sync()
	return nil
}

// sync reindexes both sequences, appends plugins new to the order,
// drops plugins no mod provides and recomputes owners.
func (o *Order) sync() {
	reindex(o.mods, func(m *Mod, i int) { m.Index = i })

	kept := o.plugins[:0]
	for _, p := range o.plugins {
		if o.owner(p.Name) != "" {
			kept = append(kept, p)
		}
	}
	o.plugins = kept

	for _, m := range o.mods {
		for _, name := range m.Plugins {
			if _, ok := o.Plugin(name); !ok {
				o.plugins = append(o.plugins, &Plugin{Name: name})
			}
		}
	}

	for _, p := range o.plugins {
		p.Owner = o.owner(p.Name)
	}
	reindex(o.plugins, func(p *Plugin, i int) { p.Index = i })
}

func (o *Order) owner(plugin string) string {
	first := ""
	for _, m := range o.mods {
		if !m.Provides(plugin) {
			continue
		}
		if m.Active {
			return m.Name
		}
		if first == "" {
			first = m.Name
		}
	}
	return first
}

// check panics when an index drifted from its position or a name repeats.
// Either means a mutation above is broken.
func (o *Order) check() {
	seen := map[string]bool{}
	for i, m := range o.mods {
		if m.Index != i {
			panic(fmt.Sprintf("loadorder: mod %q has index %d at position %d", m.Name, m.Index, i))
		}
		if seen[m.Name] {
			panic(fmt.Sprintf("loadorder: duplicate mod %q", m.Name))
		}
		seen[m.Name] = true
	}

	seen = map[string]bool{}
	for i, p := range o.plugins {
		if p.Index != i {
			panic(fmt.Sprintf("loadorder: plugin %q has index %d at position %d", p.Name, p.Index, i))
		}
		key := strings.ToLower(p.Name)
		if seen[key] {
			panic(fmt.Sprintf("loadorder: duplicate plugin %q", p.Name))
		}
		seen[key] = true
	}
}

func move[T any](items []T, from, to int) []T {
	if to >= len(items) {
		to = len(items) - 1
	}
	item := items[from]
	items = append(items[:from], items[from+1:]...)
	items = append(items[:to], append([]T{item}, items[to:]...)...)
	return items
}

func reindex[T any](items []T, set func(T, int)) {
	for i, item := range items {
		set(item, i)
	}
}
