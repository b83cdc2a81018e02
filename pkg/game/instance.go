package game

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/modlink/pkg/commit"
	"github.com/arthur-debert/modlink/pkg/config"
	"github.com/arthur-debert/modlink/pkg/errors"
	"github.com/arthur-debert/modlink/pkg/filesystem"
	"github.com/arthur-debert/modlink/pkg/library"
	"github.com/arthur-debert/modlink/pkg/linkstore"
	"github.com/arthur-debert/modlink/pkg/loadorder"
	"github.com/arthur-debert/modlink/pkg/logging"
	"github.com/arthur-debert/modlink/pkg/manifest"
	"github.com/arthur-debert/modlink/pkg/paths"
	"github.com/rs/zerolog"
)

// Instance is an opened game
type Instance struct {
	name      string
	game      config.Game
	downloads string
	paths     paths.Paths

	lib     *library.Library
	order   *loadorder.Order
	store   *linkstore.Store
	pending bool
	stale   []error

	logger zerolog.Logger
}

// Open scans the game's mods and rebuilds its load order from the pending
// file, if uncommitted edits exist, else from the manifest. An empty name
// selects the default game.
func Open(cfg *config.Config, p paths.Paths, name string) (*Instance, error) {
	key, g, err := cfg.Game(name)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(g.Directory)
	if err != nil || !info.IsDir() {
		return nil, errors.Newf(errors.ErrConfigValid, "game directory %s does not exist", g.Directory).
			WithDetail("game", key).
			WithDetail("path", g.Directory)
	}
	if g.PluginFile != "" && !filepath.IsAbs(g.PluginFile) {
		g.PluginFile = filepath.Join(g.Directory, g.PluginFile)
	}

	mode := linkstore.Symlink
	if cfg.LinkModeFor(g) == config.LinkHardlink {
		mode = linkstore.Hardlink
	}

	inst := &Instance{
		name:      key,
		game:      g,
		downloads: cfg.Downloads,
		paths:     p,
		store:     linkstore.New(filesystem.NewOS(), mode),
		logger:    logging.GetLogger("game").With().Str("game", key).Logger(),
	}
	if err := inst.load(); err != nil {
		return nil, err
	}
	return inst, nil
}

func (g *Instance) load() error {
	lib, err := library.Scan(g.paths.ModsDir(g.name), g.game.DataDir)
	if err != nil {
		return err
	}

	m, err := manifest.Load(g.paths.PendingPath(g.name))
	if err != nil {
		return err
	}
	g.pending = m != nil
	if m == nil {
		if m, err = manifest.Load(g.paths.ManifestPath(g.name)); err != nil {
			return err
		}
	}

	order, stale := manifest.Reconcile(m, lib)
	g.lib, g.order, g.stale = lib, order, stale
	g.logger.Debug().
		Int("mods", len(order.Mods())).
		Int("plugins", len(order.Plugins())).
		Bool("pending", g.pending).
		Msg("game opened")
	return nil
}

// Name is the configured game name
func (g *Instance) Name() string { return g.name }

// Game is the resolved game configuration
func (g *Instance) Game() config.Game { return g.game }

// Order is the current, possibly uncommitted, load order
func (g *Instance) Order() *loadorder.Order { return g.order }

// Library is the scanned mod library
func (g *Instance) Library() *library.Library { return g.lib }

// ModsDir is where this game's mods are stored
func (g *Instance) ModsDir() string { return g.paths.ModsDir(g.name) }

// DownloadsDir is where archives are looked up
func (g *Instance) DownloadsDir() string { return g.downloads }

// Pending reports whether the load order has uncommitted edits
func (g *Instance) Pending() bool { return g.pending }

// Stale returns the manifest entries dropped when the game was opened
func (g *Instance) Stale() []error { return g.stale }

// Refresh rescans the mods directory, keeping the current load order for
// mods that are still there.
func (g *Instance) Refresh() error {
	lib, err := library.Scan(g.paths.ModsDir(g.name), g.game.DataDir)
	if err != nil {
		return err
	}
	order, stale := manifest.Reconcile(manifest.FromOrder(g.order), lib)
	g.lib, g.order = lib, order
	g.stale = append(g.stale, stale...)
	return g.save()
}

// changed records an edit to the load order that the game dir does not
// reflect yet
func (g *Instance) changed() error {
	g.pending = true
	return g.save()
}

// save writes the load order to the pending file while edits are
// uncommitted, else to the manifest.
func (g *Instance) save() error {
	target := g.paths.ManifestPath(g.name)
	if g.pending {
		target = g.paths.PendingPath(g.name)
	}
	return manifest.Save(target, manifest.FromOrder(g.order))
}

func (g *Instance) requireSynced(op string) error {
	if g.pending {
		return errors.Newf(errors.ErrPendingChanges, "commit or discard pending changes before %s", op).
			WithDetail("operation", op)
	}
	return nil
}

// Discard drops uncommitted edits and reloads the committed state
func (g *Instance) Discard() error {
	if err := manifest.Remove(g.paths.PendingPath(g.name)); err != nil {
		return err
	}
	return g.load()
}

func (g *Instance) engine(progress func(done, total int)) *commit.Engine {
	return commit.New(g.store, commit.Options{
		GameDir:       g.game.Directory,
		ModsDir:       g.paths.ModsDir(g.name),
		PluginFile:    g.game.PluginFile,
		EnabledMarker: g.game.EnabledMarker,
		Progress:      progress,
	})
}
