package game

import (
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/arthur-debert/modlink/pkg/archive"
	"github.com/arthur-debert/modlink/pkg/errors"
	"github.com/arthur-debert/modlink/pkg/installer"
	"github.com/arthur-debert/modlink/pkg/library"
	"github.com/arthur-debert/modlink/pkg/loadorder"
)

// Downloads lists the archives in the downloads directory
func (g *Instance) Downloads() ([]archive.Download, error) {
	return archive.List(g.downloads)
}

// Download looks a download up by file name or index
func (g *Instance) Download(name string) (archive.Download, error) {
	downloads, err := g.Downloads()
	if err != nil {
		return archive.Download{}, err
	}
	for _, d := range downloads {
		if d.Name == name {
			return d, nil
		}
	}
	if i, err := strconv.Atoi(name); err == nil {
		if i < 0 || i >= len(downloads) {
			return archive.Download{}, errors.Newf(errors.ErrInvalidIndex, "no download at index %d", i).
				WithDetail("index", i).
				WithDetail("len", len(downloads))
		}
		return downloads[i], nil
	}
	return archive.Download{}, errors.Newf(errors.ErrNotFound, "download %q not found", name).
		WithDetail("download", name)
}

// Install extracts a download into a new, inactive mod named after it.
// Mods shipping an installer still need Configure before activation.
func (g *Instance) Install(download string, progress io.Writer) (*library.Mod, error) {
	if err := g.requireSynced("installing"); err != nil {
		return nil, err
	}
	d, err := g.Download(download)
	if err != nil {
		return nil, err
	}

	name := archive.ModName(d.Name)
	if name == "" {
		return nil, errors.Newf(errors.ErrInvalidInput, "cannot derive a mod name from %q", d.Name).
			WithDetail("download", d.Name)
	}
	if err := g.checkFreeName(name); err != nil {
		return nil, err
	}

	dest := filepath.Join(g.ModsDir(), name)
	if _, err := archive.Extract(d.Path, dest, archive.Options{Progress: progress, DataDir: g.game.DataDir}); err != nil {
		return nil, err
	}

	mod, err := g.lib.Rescan(name)
	if err != nil {
		return nil, err
	}
	if err := g.order.AddMod(mod.OrderEntry()); err != nil {
		return nil, err
	}
	g.logger.Info().
		Str("download", d.Name).
		Str("mod", name).
		Int("files", len(mod.Files)).
		Bool("installer", mod.HasInstaller()).
		Msg("download installed")
	return mod, g.save()
}

// Driver runs a wizard to completion, typically by prompting the user.
// Returning an error, or returning before the wizard is done, abandons it.
type Driver func(w *installer.Wizard) error

// Configure runs the installer of a mod and makes its output the mod's
// content. Nothing changes until the wizard completes. Then the mod is
// deactivated and committed away, the output replaced, and the mod
// rescanned; it stays inactive. The installed destinations are returned.
func (g *Instance) Configure(name string, drive Driver) ([]string, error) {
	if err := g.requireSynced("configuring"); err != nil {
		return nil, err
	}
	entry, err := g.mod(name)
	if err != nil {
		return nil, err
	}
	mod, ok := g.lib.Mod(entry.Name)
	if !ok || !mod.HasInstaller() {
		return nil, errors.Newf(errors.ErrInvalidInput, "mod %q has no installer", entry.Name).
			WithDetail("mod", entry.Name)
	}

	cfg, err := installer.LoadModuleConfig(mod.Installer)
	if err != nil {
		return nil, err
	}
	w, err := installer.NewWizard(cfg)
	if err != nil {
		return nil, err
	}
	if err := drive(w); err != nil {
		return nil, errors.Wrapf(err, errors.ErrWizardAbandoned, "installer for %q abandoned", entry.Name).
			WithDetail("mod", entry.Name)
	}
	if !w.Done() {
		return nil, errors.Newf(errors.ErrWizardAbandoned, "installer for %q abandoned", entry.Name).
			WithDetail("mod", entry.Name)
	}
	installs, err := w.Result()
	if err != nil {
		return nil, err
	}

	if entry.Active {
		if err := g.order.SetActive(loadorder.Mods, entry.Index, false); err != nil {
			return nil, err
		}
		res, err := g.Commit(nil)
		if err != nil {
			return nil, err
		}
		if err := res.Err(); err != nil {
			return nil, err
		}
	}

	dests, err := installer.Materialize(mod.InstallerRoot(), mod.OutputDir(), installs)
	if err != nil {
		return nil, err
	}

	fresh, err := g.lib.Rescan(entry.Name)
	if err != nil {
		return nil, err
	}
	replacement := fresh.OrderEntry()
	replacement.Tags = entry.Tags
	if err := g.order.ReplaceMod(replacement); err != nil {
		return nil, err
	}
	g.logger.Info().
		Str("mod", entry.Name).
		Int("files", len(dests)).
		Strs("choices", choiceNames(w.Choices())).
		Msg("installer completed")
	return dests, g.save()
}

func choiceNames(choices []installer.Choice) []string {
	out := make([]string, 0, len(choices))
	for _, c := range choices {
		out = append(out, c.Group+"="+c.Option)
	}
	return out
}

func (g *Instance) checkFreeName(name string) error {
	for _, m := range g.lib.Mods() {
		if strings.EqualFold(m.Name, name) {
			return errors.Newf(errors.ErrNameConflict, "mod %q already exists", m.Name).
				WithDetail("mod", m.Name)
		}
	}
	return nil
}
