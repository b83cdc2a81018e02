package config

import (
	"sort"
	"strings"

	"github.com/arthur-debert/modlink/pkg/errors"
)

// LinkMode selects how the link store materializes files in the game dir
type LinkMode string

const (
	LinkSymlink  LinkMode = "symlink"
	LinkHardlink LinkMode = "hardlink"
)

// UnmarshalText accepts the link_mode spellings users tend to write
func (m *LinkMode) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "", "symlink", "symbolic", "soft":
		*m = LinkSymlink
	case "hardlink", "hard", "link":
		*m = LinkHardlink
	default:
		return errors.Newf(errors.ErrConfigValid, "unknown link_mode %q", string(text)).
			WithDetail("allowed", []string{string(LinkSymlink), string(LinkHardlink)})
	}
	return nil
}

// Game describes one managed game installation
type Game struct {
	// Directory is the game's install root; links are created beneath it
	Directory string `koanf:"directory" json:"directory" yaml:"directory"`
	// DataDir is the subdirectory mods install into unless they ship it
	// at their own top level. Empty means mods install at the game root.
	DataDir string `koanf:"data_dir" json:"dataDir" yaml:"dataDir"`
	// PluginFile is where the enabled plugin order is written
	PluginFile string `koanf:"plugin_file" json:"pluginFile" yaml:"pluginFile"`
	// EnabledMarker prefixes each enabled plugin line
	EnabledMarker string `koanf:"enabled_marker" json:"enabledMarker" yaml:"enabledMarker"`
	// LinkMode overrides the global link mode for this game
	LinkMode LinkMode `koanf:"link_mode" json:"linkMode,omitempty" yaml:"linkMode,omitempty"`
}

// GameDefaults fill in fields a game section leaves empty
type GameDefaults struct {
	DataDir       string `koanf:"data_dir"`
	PluginFile    string `koanf:"plugin_file"`
	EnabledMarker string `koanf:"enabled_marker"`
}

// Config is the fully merged modlink configuration
type Config struct {
	Downloads    string          `koanf:"downloads" json:"downloads" yaml:"downloads"`
	LinkMode     LinkMode        `koanf:"link_mode" json:"linkMode" yaml:"linkMode"`
	DefaultGame  string          `koanf:"default_game" json:"defaultGame" yaml:"defaultGame"`
	GameDefaults GameDefaults    `koanf:"game_defaults" json:"-" yaml:"-"`
	Games        map[string]Game `koanf:"games" json:"games" yaml:"games"`
}

// GameNames returns configured game names, sorted
func (c *Config) GameNames() []string {
	names := make([]string, 0, len(c.Games))
	for name := range c.Games {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Game looks a game up by name. An empty name picks default_game, or the
// only configured game when there is exactly one.
func (c *Config) Game(name string) (string, Game, error) {
	if name == "" {
		name = c.DefaultGame
	}
	if name == "" {
		if len(c.Games) == 1 {
			for only, g := range c.Games {
				return only, g, nil
			}
		}
		return "", Game{}, errors.New(errors.ErrInvalidInput, "no game selected; pass --game or set default_game").
			WithDetail("games", c.GameNames())
	}

	for key, g := range c.Games {
		if strings.EqualFold(key, name) {
			return key, g, nil
		}
	}
	return "", Game{}, errors.Newf(errors.ErrNotFound, "game %q is not configured", name).
		WithDetail("games", c.GameNames())
}

// LinkModeFor returns the effective link mode of a game
func (c *Config) LinkModeFor(g Game) LinkMode {
	if g.LinkMode != "" {
		return g.LinkMode
	}
	return c.LinkMode
}
