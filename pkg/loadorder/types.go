package loadorder

import (
	"strings"

	"github.com/arthur-debert/modlink/pkg/errors"
)

// Component names one of the two ordered sequences
type Component string

const (
	Mods    Component = "mod"
	Plugins Component = "plugin"
)

// ParseComponent accepts singular and plural spellings
func ParseComponent(s string) (Component, error) {
	switch strings.ToLower(s) {
	case "mod", "mods":
		return Mods, nil
	case "plugin", "plugins":
		return Plugins, nil
	}
	return "", errors.Newf(errors.ErrInvalidInput, "unknown component %q (expected mod or plugin)", s)
}

// Mod is one entry of the mod sequence
type Mod struct {
	Name   string
	Active bool
	Index  int
	Tags   []string

	// Plugins lists the plugin file names found in the mod
	Plugins []string

	// HasInstaller is set when the mod ships an installer description;
	// such a mod cannot be activated until Configured.
	HasInstaller bool
	Configured   bool
}

// Provides reports whether the mod contains the named plugin
func (m *Mod) Provides(plugin string) bool {
	for _, p := range m.Plugins {
		if strings.EqualFold(p, plugin) {
			return true
		}
	}
	return false
}

// HasTag reports whether the mod carries tag, ignoring case
func (m *Mod) HasTag(tag string) bool {
	for _, t := range m.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Plugin is one entry of the plugin sequence
type Plugin struct {
	Name   string
	Active bool
	Index  int

	// Owner is the name of the mod the plugin is attributed to: the first
	// active mod providing it, else the first mod providing it.
	Owner string
}
