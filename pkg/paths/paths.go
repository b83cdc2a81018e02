package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/modlink/pkg/errors"
)

// Environment variable names
const (
	// EnvStateDir overrides the XDG state directory for modlink
	EnvStateDir = "MODLINK_STATE_DIR"

	// EnvConfigDir overrides the XDG config directory for modlink
	EnvConfigDir = "MODLINK_CONFIG_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Default directories and files
// IMPORTANT: These constants define modlink's on-disk layout and are NOT
// user-configurable. User-configurable paths belong in pkg/config.
const (
	// AppDirName is the directory name for modlink-specific files
	AppDirName = "modlink"

	// ConfigFileName is the name of the user configuration file
	ConfigFileName = "config.toml"

	// GamesDir is the subdirectory holding one directory per game
	GamesDir = "games"

	// ModsDir is the per-game subdirectory holding mods
	ModsDir = "mods"

	// ManifestFileName is the committed load order
	ManifestFileName = "manifest.toml"

	// PendingFileName holds load order changes that were not committed yet
	PendingFileName = "pending.toml"

	// LogFileName is the name of the log file
	LogFileName = "modlink.log"
)

// Paths provides centralized path management for modlink
type Paths interface {
	StateDir() string
	ConfigDir() string
	ConfigFilePath() string
	LogFilePath() string
	GameStateDir(game string) string
	ModsDir(game string) string
	ModPath(game, mod string) string
	ManifestPath(game string) string
	PendingPath(game string) string
}

type paths struct {
	xdgState  string
	xdgConfig string
}

// New creates a new Paths instance, respecting environment overrides.
func New() (Paths, error) {
	p := &paths{}

	if dir := os.Getenv(EnvStateDir); dir != "" {
		p.xdgState = ExpandHome(dir)
	} else {
		p.xdgState = filepath.Join(xdg.StateHome, AppDirName)
	}

	if dir := os.Getenv(EnvConfigDir); dir != "" {
		p.xdgConfig = ExpandHome(dir)
	} else {
		p.xdgConfig = filepath.Join(xdg.ConfigHome, AppDirName)
	}

	for _, dir := range []*string{&p.xdgState, &p.xdgConfig} {
		abs, err := filepath.Abs(*dir)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path for %s", *dir)
		}
		*dir = abs
	}

	return p, nil
}

// NewWithRoots builds Paths from explicit directories, mostly for tests.
func NewWithRoots(stateDir, configDir string) Paths {
	return &paths{xdgState: stateDir, xdgConfig: configDir}
}

// StateDir returns the XDG state directory for modlink
func (p *paths) StateDir() string {
	return p.xdgState
}

// ConfigDir returns the XDG config directory for modlink
func (p *paths) ConfigDir() string {
	return p.xdgConfig
}

// ConfigFilePath returns the path of the user configuration file
func (p *paths) ConfigFilePath() string {
	return filepath.Join(p.xdgConfig, ConfigFileName)
}

// LogFilePath returns the path to the log file
func (p *paths) LogFilePath() string {
	return filepath.Join(p.xdgState, LogFileName)
}

// GameStateDir returns the directory holding everything modlink keeps for a game
func (p *paths) GameStateDir(game string) string {
	return filepath.Join(p.xdgState, GamesDir, game)
}

// ModsDir returns the managed mods directory of a game
func (p *paths) ModsDir(game string) string {
	return filepath.Join(p.GameStateDir(game), ModsDir)
}

// ModPath returns the directory of a single mod
func (p *paths) ModPath(game, mod string) string {
	return filepath.Join(p.ModsDir(game), mod)
}

// ManifestPath returns the committed manifest of a game
func (p *paths) ManifestPath(game string) string {
	return filepath.Join(p.GameStateDir(game), ManifestFileName)
}

// PendingPath returns the uncommitted manifest of a game
func (p *paths) PendingPath(game string) string {
	return filepath.Join(p.GameStateDir(game), PendingFileName)
}

// ExpandHome expands a leading ~ to the home directory
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv(EnvHome)
		if homeDir == "" {
			return path
		}
	}

	if len(path) == 1 {
		return homeDir
	}

	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}

	// ~something (not the user's home)
	return path
}

// IsWithin reports whether path lies inside root (or is root itself).
// Both are cleaned first; no symlinks are resolved.
func IsWithin(path, root string) bool {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
