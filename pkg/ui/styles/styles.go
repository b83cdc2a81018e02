// Package styles defines the visual styling of modlink's terminal output.
//
// Styles have semantic names (Header, Active, Winner...) and adaptive
// colors that follow the terminal's light or dark background. The built-in
// set comes from the embedded styles.yaml. A user file loaded with
// LoadStyles is laid over it: every style it names is replaced, the rest
// stay as built in.
package styles

import (
	_ "embed"
	"os"

	"github.com/arthur-debert/modlink/pkg/errors"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// ColorDef is a named color with a variant per terminal background
type ColorDef struct {
	Light string `yaml:"light"`
	Dark  string `yaml:"dark"`
}

// StyleDef describes one style. Foreground and Background name an entry
// of Colors, or are a color lipgloss understands directly ("#ff8800", "212").
type StyleDef struct {
	Bold         bool   `yaml:"bold,omitempty"`
	Italic       bool   `yaml:"italic,omitempty"`
	Underline    bool   `yaml:"underline,omitempty"`
	Faint        bool   `yaml:"faint,omitempty"`
	Foreground   string `yaml:"foreground,omitempty"`
	Background   string `yaml:"background,omitempty"`
	Align        string `yaml:"align,omitempty"`
	MarginTop    int    `yaml:"marginTop,omitempty"`
	PaddingLeft  int    `yaml:"paddingLeft,omitempty"`
	PaddingRight int    `yaml:"paddingRight,omitempty"`
}

// Config is the layout of a styles file
type Config struct {
	Colors map[string]ColorDef `yaml:"colors"`
	Styles map[string]StyleDef `yaml:"styles"`
}

// StyleRegistry holds the active styles by name
var StyleRegistry map[string]lipgloss.Style

//go:embed styles.yaml
var embeddedStyles []byte

func init() {
	if err := Reset(); err != nil {
		StyleRegistry = map[string]lipgloss.Style{}
	}
}

// Reset restores the built-in styles
func Reset() error {
	builtin, err := parse(embeddedStyles)
	if err != nil {
		return err
	}
	StyleRegistry = build(builtin)
	return nil
}

// LoadStyles lays the styles file at path over the built-in styles
func LoadStyles(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to read styles file %s", path).
			WithDetail("path", path)
	}
	return LoadStylesFromData(data)
}

// LoadStylesFromData is LoadStyles for an in-memory file
func LoadStylesFromData(data []byte) error {
	user, err := parse(data)
	if err != nil {
		return err
	}
	builtin, err := parse(embeddedStyles)
	if err != nil {
		return err
	}
	StyleRegistry = build(overlay(builtin, user))
	return nil
}

func parse(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, errors.ErrConfigLoad, "failed to parse styles")
	}
	return cfg, nil
}

// overlay merges top into base; entries of top win by name
func overlay(base, top Config) Config {
	out := Config{
		Colors: make(map[string]ColorDef, len(base.Colors)+len(top.Colors)),
		Styles: make(map[string]StyleDef, len(base.Styles)+len(top.Styles)),
	}
	for _, c := range []Config{base, top} {
		for name, def := range c.Colors {
			out.Colors[name] = def
		}
		for name, def := range c.Styles {
			out.Styles[name] = def
		}
	}
	return out
}

func build(cfg Config) map[string]lipgloss.Style {
	registry := make(map[string]lipgloss.Style, len(cfg.Styles))
	for name, def := range cfg.Styles {
		registry[name] = buildStyle(def, cfg.Colors)
	}
	return registry
}

func buildStyle(def StyleDef, colors map[string]ColorDef) lipgloss.Style {
	// only set what is on, so Inherit in MergeStyles can fill the rest
	style := lipgloss.NewStyle()
	if def.Bold {
		style = style.Bold(true)
	}
	if def.Italic {
		style = style.Italic(true)
	}
	if def.Underline {
		style = style.Underline(true)
	}
	if def.Faint {
		style = style.Faint(true)
	}

	if c, ok := color(def.Foreground, colors); ok {
		style = style.Foreground(c)
	}
	if c, ok := color(def.Background, colors); ok {
		style = style.Background(c)
	}

	switch def.Align {
	case "center":
		style = style.Align(lipgloss.Center)
	case "right":
		style = style.Align(lipgloss.Right)
	}

	if def.MarginTop > 0 {
		style = style.MarginTop(def.MarginTop)
	}
	if def.PaddingLeft > 0 || def.PaddingRight > 0 {
		style = style.Padding(0, def.PaddingRight, 0, def.PaddingLeft)
	}
	return style
}

func color(ref string, colors map[string]ColorDef) (lipgloss.TerminalColor, bool) {
	if ref == "" {
		return nil, false
	}
	if def, ok := colors[ref]; ok {
		return lipgloss.AdaptiveColor{Light: def.Light, Dark: def.Dark}, true
	}
	return lipgloss.Color(ref), true
}

// GetStyle returns the named style, or an empty one
func GetStyle(name string) lipgloss.Style {
	if style, ok := StyleRegistry[name]; ok {
		return style
	}
	return lipgloss.NewStyle()
}

// Render applies a named style to text
func Render(name, text string) string {
	return GetStyle(name).Render(text)
}

// MergeStyles stacks styles, earlier names taking precedence
func MergeStyles(names ...string) lipgloss.Style {
	result := lipgloss.NewStyle()
	for _, name := range names {
		result = result.Inherit(GetStyle(name))
	}
	return result
}
