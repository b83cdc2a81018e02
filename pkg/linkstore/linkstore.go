package linkstore

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/arthur-debert/modlink/pkg/errors"
	"github.com/arthur-debert/modlink/pkg/logging"
	"github.com/arthur-debert/modlink/pkg/paths"
	"github.com/arthur-debert/modlink/pkg/types"
	"github.com/rs/zerolog"
)

// Mode selects the kind of link Create makes
type Mode int

const (
	Symlink Mode = iota
	Hardlink
)

func (m Mode) String() string {
	if m == Hardlink {
		return "hardlink"
	}
	return "symlink"
}

// MsgUnmanaged is the failure reported when a destination is occupied by
// something modlink did not create.
const MsgUnmanaged = "skipped overwriting an unmanaged file"

// Store performs link operations on one filesystem
type Store struct {
	fs     types.FS
	mode   Mode
	logger zerolog.Logger
}

// New returns a Store creating links of the given mode
func New(fsys types.FS, mode Mode) *Store {
	return &Store{
		fs:     fsys,
		mode:   mode,
		logger: logging.GetLogger("linkstore"),
	}
}

// Mode reports the link kind this store creates
func (s *Store) Mode() Mode {
	return s.mode
}

// Create links dest to source, creating parent directories as needed.
// An existing entry at dest is left alone and reported as a LinkFailure,
// unless it is already a symlink to source.
func (s *Store) Create(dest, source string) error {
	if info, err := s.fs.Lstat(dest); err == nil {
		if info.Mode()&os.ModeSymlink != 0 {
			if target, rerr := s.fs.Readlink(dest); rerr == nil && target == source {
				return nil
			}
		}
		return errors.New(errors.ErrLinkFailure, MsgUnmanaged).
			WithDetail("dest", dest).
			WithDetail("source", source)
	}

	if err := s.fs.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrLinkFailure, "failed to create parent of %s", dest).
			WithDetail("dest", dest)
	}

	var err error
	if s.mode == Hardlink {
		err = s.fs.Link(source, dest)
	} else {
		err = s.fs.Symlink(source, dest)
	}
	if err != nil {
		return errors.Wrapf(err, errors.ErrLinkFailure, "failed to %s %s", s.mode, dest).
			WithDetail("dest", dest).
			WithDetail("source", source)
	}

	s.logger.Trace().Str("dest", dest).Str("source", source).Msg("link created")
	return nil
}

// Remove deletes the link at dest. A missing dest is not an error.
func (s *Store) Remove(dest string) error {
	info, err := s.fs.Lstat(dest)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to stat %s", dest)
	}
	if info.IsDir() {
		return errors.Newf(errors.ErrLinkFailure, "refusing to remove directory %s", dest).
			WithDetail("dest", dest)
	}
	if err := s.fs.Remove(dest); err != nil {
		return errors.Wrapf(err, errors.ErrLinkFailure, "failed to remove %s", dest).
			WithDetail("dest", dest)
	}
	s.logger.Trace().Str("dest", dest).Msg("link removed")
	return nil
}

// Managed walks root without following links and returns every link that
// belongs to modsRoot, sorted. A missing root yields no links.
func (s *Store) Managed(root, modsRoot string) ([]string, error) {
	root = filepath.Clean(root)
	modsRoot = filepath.Clean(modsRoot)

	if _, err := s.fs.Lstat(root); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to stat %s", root)
	}

	w := &walker{store: s, modsRoot: modsRoot}
	if err := w.walk(root); err != nil {
		return nil, err
	}
	sort.Strings(w.found)

	s.logger.Debug().
		Str("root", root).
		Int("links", len(w.found)).
		Msg("managed links found")
	return w.found, nil
}

type walker struct {
	store    *Store
	modsRoot string
	found    []string

	// regular files under modsRoot keyed by size, built on first use
	inodes map[int64][]fs.FileInfo
}

func (w *walker) walk(dir string) error {
	// the mods dir may live inside the game dir; its files are sources
	if dir == w.modsRoot {
		return nil
	}

	entries, err := w.store.fs.ReadDir(dir)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", dir)
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		info, err := w.store.fs.Lstat(path)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to stat %s", path)
		}

		switch {
		case info.Mode()&os.ModeSymlink != 0:
			if w.ownsSymlink(path) {
				w.found = append(w.found, path)
			}
		case info.IsDir():
			if err := w.walk(path); err != nil {
				return err
			}
		case info.Mode().IsRegular():
			owned, err := w.ownsHardlink(info)
			if err != nil {
				return err
			}
			if owned {
				w.found = append(w.found, path)
			}
		}
	}
	return nil
}

func (w *walker) ownsSymlink(path string) bool {
	target, err := w.store.fs.Readlink(path)
	if err != nil {
		w.store.logger.Debug().Err(err).Str("path", path).Msg("unreadable symlink treated as unmanaged")
		return false
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(path), target)
	}
	return paths.IsWithin(target, w.modsRoot)
}

func (w *walker) ownsHardlink(info fs.FileInfo) (bool, error) {
	if w.inodes == nil {
		if err := w.indexMods(); err != nil {
			return false, err
		}
	}
	for _, candidate := range w.inodes[info.Size()] {
		if os.SameFile(info, candidate) {
			return true, nil
		}
	}
	return false, nil
}

func (w *walker) indexMods() error {
	w.inodes = map[int64][]fs.FileInfo{}

	var index func(dir string) error
	index = func(dir string) error {
		entries, err := w.store.fs.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", dir)
		}
		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())
			info, err := w.store.fs.Lstat(path)
			if err != nil {
				return errors.Wrapf(err, errors.ErrFileAccess, "failed to stat %s", path)
			}
			if info.IsDir() {
				if err := index(path); err != nil {
					return err
				}
				continue
			}
			if info.Mode().IsRegular() {
				w.inodes[info.Size()] = append(w.inodes[info.Size()], info)
			}
		}
		return nil
	}
	return index(w.modsRoot)
}

// PruneParents removes directories left empty after the given paths were
// removed, walking up from each path's parent and stopping at root.
// Directories that were empty before are only touched if they sit on such
// a path. It returns how many directories were removed.
func (s *Store) PruneParents(root string, removed []string) int {
	root = filepath.Clean(root)

	candidates := map[string]bool{}
	for _, p := range removed {
		for dir := filepath.Dir(p); dir != root && paths.IsWithin(dir, root); dir = filepath.Dir(dir) {
			candidates[dir] = true
		}
	}

	// deepest first so children go before their parents
	dirs := make([]string, 0, len(candidates))
	for dir := range candidates {
		dirs = append(dirs, dir)
	}
	sort.Slice(dirs, func(i, j int) bool {
		if len(dirs[i]) != len(dirs[j]) {
			return len(dirs[i]) > len(dirs[j])
		}
		return dirs[i] < dirs[j]
	})

	count := 0
	for _, dir := range dirs {
		if s.removeIfEmpty(dir) {
			count++
		}
	}
	return count
}

// PruneEmptyDirs removes every empty directory below root, bottom-up.
// root itself is kept.
func (s *Store) PruneEmptyDirs(root string) (int, error) {
	count := 0
	var prune func(dir string) error
	prune = func(dir string) error {
		entries, err := s.fs.ReadDir(dir)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", dir)
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			if err := prune(path); err != nil {
				return err
			}
			if s.removeIfEmpty(path) {
				count++
			}
		}
		return nil
	}

	if err := prune(filepath.Clean(root)); err != nil {
		return count, err
	}
	return count, nil
}

func (s *Store) removeIfEmpty(dir string) bool {
	entries, err := s.fs.ReadDir(dir)
	if err != nil || len(entries) > 0 {
		return false
	}
	if err := s.fs.Remove(dir); err != nil {
		s.logger.Warn().Err(err).Str("dir", dir).Msg("failed to remove empty directory")
		return false
	}
	s.logger.Trace().Str("dir", dir).Msg("empty directory removed")
	return true
}
