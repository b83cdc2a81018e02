// Package manifest persists a game's load order as TOML and rebuilds the
// load order from it, checked against the mods actually on disk.
package manifest

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/modlink/pkg/errors"
	"github.com/arthur-debert/modlink/pkg/library"
	"github.com/arthur-debert/modlink/pkg/loadorder"
	"github.com/arthur-debert/modlink/pkg/logging"
	toml "github.com/pelletier/go-toml/v2"
)

// Entry is one mod or plugin line of the manifest; position is order
type Entry struct {
	Name   string   `toml:"name"`
	Active bool     `toml:"active"`
	Tags   []string `toml:"tags,omitempty"`
}

// Manifest is the on-disk load order of one game
type Manifest struct {
	Mods    []Entry `toml:"mods"`
	Plugins []Entry `toml:"plugins"`
}

// Load reads a manifest. A missing file returns (nil, nil).
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot read manifest").WithDetail("path", path)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, errors.ErrManifestParse, "cannot parse manifest").WithDetail("path", path)
	}
	return &m, nil
}

// Save writes the manifest through a temporary file and rename
func Save(path string, m *Manifest) error {
	var buf bytes.Buffer
	buf.WriteString("# Managed by modlink. Order is array order.\n\n")
	enc := toml.NewEncoder(&buf)
	if err := enc.Encode(m); err != nil {
		return errors.Wrap(err, errors.ErrInternal, "cannot encode manifest")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, "cannot create manifest directory").WithDetail("path", path)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, "cannot write manifest").WithDetail("path", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, "cannot replace manifest").WithDetail("path", path)
	}
	return nil
}

// Remove deletes a manifest file if present
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, errors.ErrFileWrite, "cannot remove manifest").WithDetail("path", path)
	}
	return nil
}

// FromOrder snapshots a load order
func FromOrder(o *loadorder.Order) *Manifest {
	m := &Manifest{
		Mods:    make([]Entry, 0, len(o.Mods())),
		Plugins: make([]Entry, 0, len(o.Plugins())),
	}
	for _, mod := range o.Mods() {
		m.Mods = append(m.Mods, Entry{Name: mod.Name, Active: mod.Active, Tags: mod.Tags})
	}
	for _, p := range o.Plugins() {
		m.Plugins = append(m.Plugins, Entry{Name: p.Name, Active: p.Active})
	}
	return m
}

// Reconcile builds a load order from a manifest (nil for none) and the
// mods on disk. Entries without a backing mod or plugin are dropped and
// returned as StaleManifestEntry errors; mods on disk the manifest does
// not list are appended inactive, as are unlisted plugins.
func Reconcile(m *Manifest, lib *library.Library) (*loadorder.Order, []error) {
	logger := logging.GetLogger("manifest")
	if m == nil {
		m = &Manifest{}
	}

	var stale []error
	drop := func(kind, name, reason string) {
		err := errors.Newf(errors.ErrStaleManifestEntry, "dropped %s %q: %s", kind, name, reason).
			WithDetail(kind, name)
		logger.Warn().Str(kind, name).Str("reason", reason).Msg("Stale manifest entry dropped")
		stale = append(stale, err)
	}

	var mods []*loadorder.Mod
	seen := map[string]bool{}
	for _, e := range m.Mods {
		if seen[e.Name] {
			drop("mod", e.Name, "listed twice")
			continue
		}
		onDisk, ok := lib.Mod(e.Name)
		if !ok {
			drop("mod", e.Name, "no such mod directory")
			continue
		}
		seen[e.Name] = true

		entry := onDisk.OrderEntry()
		entry.Tags = e.Tags
		entry.Active = e.Active
		if entry.Active && entry.HasInstaller && !entry.Configured {
			logger.Warn().Str("mod", e.Name).Msg("Unconfigured installer mod marked active, deactivating")
			entry.Active = false
		}
		mods = append(mods, entry)
	}

	appended := 0
	for _, onDisk := range lib.Mods() {
		if !seen[onDisk.Name] {
			mods = append(mods, onDisk.OrderEntry())
			appended++
		}
	}

	provided := map[string]string{}
	for _, mod := range mods {
		for _, p := range mod.Plugins {
			key := strings.ToLower(p)
			if _, ok := provided[key]; !ok {
				provided[key] = p
			}
		}
	}

	var plugins []*loadorder.Plugin
	seenPlugins := map[string]bool{}
	for _, e := range m.Plugins {
		key := strings.ToLower(e.Name)
		if seenPlugins[key] {
			drop("plugin", e.Name, "listed twice")
			continue
		}
		name, ok := provided[key]
		if !ok {
			drop("plugin", e.Name, "no mod provides it")
			continue
		}
		seenPlugins[key] = true
		plugins = append(plugins, &loadorder.Plugin{Name: name, Active: e.Active})
	}

	order := loadorder.New(mods, plugins)
	logger.Debug().
		Int("mods", len(order.Mods())).
		Int("plugins", len(order.Plugins())).
		Int("appended", appended).
		Int("stale", len(stale)).
		Msg("Load order reconciled")
	return order, stale
}
