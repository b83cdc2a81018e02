package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/modlink/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)

	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "Downloads"), cfg.Downloads)
	assert.Equal(t, LinkSymlink, cfg.LinkMode)
	assert.Empty(t, cfg.Games)
	assert.Equal(t, "Data", cfg.GameDefaults.DataDir)
	assert.Contains(t, DefaultsContent(), "link_mode")
}

func TestLoadUserFile(t *testing.T) {
	path := writeConfig(t, `
downloads = "/srv/downloads"
link_mode = "hard"
default_game = "skyrim"

[games.skyrim]
directory = "/games/skyrim"
plugin_file = "/games/prefix/Plugins.txt"

[games.morrowind]
directory = "/games/morrowind"
data_dir = "Data Files"
enabled_marker = "+"
link_mode = "symlink"

[games.generic]
directory = "/games/generic"
data_dir = "."
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/downloads", cfg.Downloads)
	assert.Equal(t, LinkHardlink, cfg.LinkMode)
	assert.Equal(t, []string{"generic", "morrowind", "skyrim"}, cfg.GameNames())

	sky := cfg.Games["skyrim"]
	assert.Equal(t, "/games/skyrim", sky.Directory)
	assert.Equal(t, "Data", sky.DataDir)
	assert.Equal(t, "*", sky.EnabledMarker)
	assert.Equal(t, "/games/prefix/Plugins.txt", sky.PluginFile)
	assert.Equal(t, LinkHardlink, cfg.LinkModeFor(sky))

	mw := cfg.Games["morrowind"]
	assert.Equal(t, "Data Files", mw.DataDir)
	assert.Equal(t, "+", mw.EnabledMarker)
	assert.Equal(t, LinkSymlink, cfg.LinkModeFor(mw))

	assert.Empty(t, cfg.Games["generic"].DataDir)
}

func TestLoadEnvironment(t *testing.T) {
	path := writeConfig(t, `
[games.skyrim]
directory = "/games/skyrim"
`)
	t.Setenv("MODLINK_GAMES__SKYRIM__DATA_DIR", "Stuff")
	t.Setenv("MODLINK_LINK_MODE", "hardlink")
	t.Setenv("MODLINK_STATE_DIR", "/ignored")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Stuff", cfg.Games["skyrim"].DataDir)
	assert.Equal(t, LinkHardlink, cfg.LinkMode)
}

func TestLoadWithOverrides(t *testing.T) {
	path := writeConfig(t, `
link_mode = "symlink"

[games.skyrim]
directory = "/games/skyrim"
`)
	t.Setenv("MODLINK_LINK_MODE", "symlink")

	overrides, err := ParseOverrides([]string{"link_mode=hard", "Games.Skyrim.Data_Dir = Data Files"})
	require.NoError(t, err)

	cfg, err := LoadWithOverrides(path, overrides)
	require.NoError(t, err)
	assert.Equal(t, LinkHardlink, cfg.LinkMode)
	assert.Equal(t, "Data Files", cfg.Games["skyrim"].DataDir)

	_, err = ParseOverrides([]string{"link_mode"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	_, err = ParseOverrides([]string{"=hard"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestLoadErrors(t *testing.T) {
	t.Run("malformed toml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "this is = = not toml"))
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrConfigLoad))
	})

	t.Run("game without directory", func(t *testing.T) {
		_, err := Load(writeConfig(t, "[games.skyrim]\ndata_dir = \"Data\"\n"))
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid))
	})

	t.Run("unknown link mode", func(t *testing.T) {
		_, err := Load(writeConfig(t, "link_mode = \"copy\"\n"))
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid))
	})

	t.Run("default game not configured", func(t *testing.T) {
		_, err := Load(writeConfig(t, "default_game = \"oblivion\"\n"))
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid))
	})
}

func TestGameLookup(t *testing.T) {
	cfg := &Config{Games: map[string]Game{
		"skyrim": {Directory: "/a"},
	}}

	name, g, err := cfg.Game("")
	require.NoError(t, err)
	assert.Equal(t, "skyrim", name)
	assert.Equal(t, "/a", g.Directory)

	name, _, err = cfg.Game("SkyRim")
	require.NoError(t, err)
	assert.Equal(t, "skyrim", name)

	_, _, err = cfg.Game("fallout")
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))

	cfg.Games["fallout"] = Game{Directory: "/b"}
	_, _, err = cfg.Game("")
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}
