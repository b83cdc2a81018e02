package game

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/modlink/pkg/archive"
	"github.com/arthur-debert/modlink/pkg/errors"
	"github.com/arthur-debert/modlink/pkg/loadorder"
)

// RenameMod renames a mod directory. An active mod's links are taken down
// first and recommitted under the new name.
func (g *Instance) RenameMod(name, newName string) error {
	if err := g.requireSynced("renaming"); err != nil {
		return err
	}
	if err := g.checkNewName(newName); err != nil {
		return err
	}
	entry, err := g.mod(name)
	if err != nil {
		return err
	}
	if err := g.checkFreeName(newName); err != nil && !strings.EqualFold(entry.Name, newName) {
		return err
	}

	oldName := entry.Name
	if entry.Active {
		if _, err := g.Clean(); err != nil {
			return err
		}
	}

	from := filepath.Join(g.ModsDir(), oldName)
	to := filepath.Join(g.ModsDir(), newName)
	if err := os.Rename(from, to); err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, "cannot rename mod").
			WithDetail("from", from).
			WithDetail("to", to)
	}

	g.lib.Forget(oldName)
	mod, err := g.lib.Rescan(newName)
	if err != nil {
		return err
	}
	if err := g.order.RenameMod(oldName, newName); err != nil {
		return err
	}
	renamed, _ := g.order.Mod(newName)
	replacement := mod.OrderEntry()
	replacement.Active = renamed.Active
	replacement.Tags = renamed.Tags
	if err := g.order.ReplaceMod(replacement); err != nil {
		return err
	}
	g.logger.Info().Str("from", oldName).Str("to", newName).Msg("mod renamed")

	if entry.Active {
		res, err := g.Commit(nil)
		if err != nil {
			return err
		}
		return res.Err()
	}
	return g.save()
}

// RenameDownload renames a download, keeping its archive suffix. A new
// name that carries an archive suffix of its own has it dropped first.
func (g *Instance) RenameDownload(name, newName string) error {
	newName = stem(newName)
	if err := g.checkNewName(newName); err != nil {
		return err
	}
	d, err := g.Download(name)
	if err != nil {
		return err
	}

	suffix := d.Name[len(stem(d.Name)):]
	to := filepath.Join(filepath.Dir(d.Path), newName+suffix)
	if _, err := os.Lstat(to); err == nil {
		return errors.Newf(errors.ErrNameConflict, "download %s already exists", filepath.Base(to)).
			WithDetail("download", filepath.Base(to))
	}
	if err := os.Rename(d.Path, to); err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, "cannot rename download").
			WithDetail("from", d.Path).
			WithDetail("to", to)
	}
	g.logger.Info().Str("from", d.Name).Str("to", filepath.Base(to)).Msg("download renamed")
	return nil
}

// DeleteMods removes mods from disk and from the load order. Active mods
// are deactivated and committed away first.
func (g *Instance) DeleteMods(indices []int) error {
	if err := g.requireSynced("deleting"); err != nil {
		return err
	}

	mods := g.order.Mods()
	var targets []*loadorder.Mod
	seen := map[string]bool{}
	anyActive := false
	for _, i := range indices {
		if i < 0 || i >= len(mods) {
			return errors.Newf(errors.ErrInvalidIndex, "no mod at index %d", i).
				WithDetail("index", i).
				WithDetail("len", len(mods))
		}
		if seen[mods[i].Name] {
			continue
		}
		seen[mods[i].Name] = true
		targets = append(targets, mods[i])
		anyActive = anyActive || mods[i].Active
	}

	// links go before their sources: a hard link whose source is gone can
	// no longer be told apart from a user file
	if anyActive {
		for _, m := range targets {
			if err := g.order.SetActive(loadorder.Mods, m.Index, false); err != nil {
				return err
			}
		}
		res, err := g.Commit(nil)
		if err != nil {
			return err
		}
		if err := res.Err(); err != nil {
			return err
		}
	}

	for _, m := range targets {
		path := filepath.Join(g.ModsDir(), m.Name)
		if err := g.order.RemoveMod(m.Name); err != nil {
			return err
		}
		if err := os.RemoveAll(path); err != nil {
			return errors.Wrap(err, errors.ErrFileWrite, "cannot delete mod").WithDetail("path", path)
		}
		g.lib.Forget(m.Name)
		g.logger.Info().Str("mod", m.Name).Msg("mod deleted")
	}
	return g.save()
}

// DeleteDownload removes a download from disk
func (g *Instance) DeleteDownload(name string) error {
	d, err := g.Download(name)
	if err != nil {
		return err
	}
	if err := os.Remove(d.Path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, errors.ErrFileWrite, "cannot delete download").WithDetail("path", d.Path)
	}
	g.logger.Info().Str("download", d.Name).Msg("download deleted")
	return nil
}

// checkNewName applies the naming rules for mods and downloads. Names of
// the game directory's own path components are refused, so a mod cannot
// shadow them.
func (g *Instance) checkNewName(name string) error {
	if !archive.ValidName(name) {
		return errors.Newf(errors.ErrInvalidInput, "%q: names may only contain letters, digits, periods and underscores", name).
			WithDetail("name", name)
	}
	for _, part := range strings.Split(filepath.ToSlash(g.game.Directory), "/") {
		if part != "" && strings.EqualFold(part, name) {
			return errors.Newf(errors.ErrInvalidInput, "%q names part of the game directory", name).
				WithDetail("name", name)
		}
	}
	return nil
}

func stem(name string) string {
	_, s, _ := archive.Detect(name)
	return s
}
