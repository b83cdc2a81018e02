package library

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/modlink/pkg/errors"
	"github.com/arthur-debert/modlink/pkg/loadorder"
	"github.com/arthur-debert/modlink/pkg/logging"
)

const (
	// InstallerDirName holds the installer description inside a mod
	InstallerDirName = "fomod"

	// InstallerFileName is the installer description file
	InstallerFileName = "ModuleConfig.xml"

	// OutputDirName receives the files chosen in the installer wizard
	OutputDirName = "modlink_installer"
)

// PluginExtensions are the file extensions the game loads as plugins
var PluginExtensions = []string{".esp", ".esm", ".esl"}

// File is one file of a mod
type File struct {
	// Source is the absolute path inside the mods dir
	Source string `json:"source" yaml:"source"`
	// Dest is relative to the game directory
	Dest string `json:"dest" yaml:"dest"`
}

// Mod is a mod directory as found on disk
type Mod struct {
	Name    string
	Path    string
	Files   []File
	Plugins []string

	// Installer is the path of the installer description, if any
	Installer string
	// Configured is set once the wizard produced output
	Configured bool
}

// HasInstaller reports whether the mod ships an installer description
func (m *Mod) HasInstaller() bool {
	return m.Installer != ""
}

// InstallerRoot is the directory installer source paths are relative to:
// the parent of the fomod directory.
func (m *Mod) InstallerRoot() string {
	if m.Installer == "" {
		return ""
	}
	return filepath.Dir(filepath.Dir(m.Installer))
}

// OutputDir is where wizard output for this mod lives
func (m *Mod) OutputDir() string {
	return filepath.Join(m.Path, OutputDirName)
}

// OrderEntry converts the mod to an inactive load order entry
func (m *Mod) OrderEntry() *loadorder.Mod {
	return &loadorder.Mod{
		Name:         m.Name,
		Plugins:      append([]string(nil), m.Plugins...),
		HasInstaller: m.HasInstaller(),
		Configured:   m.Configured,
	}
}

// Library is every mod of one game
type Library struct {
	root    string
	dataDir string
	mods    map[string]*Mod
}

// Scan reads every mod below root. dataDir is the game subdirectory mods
// install into unless they carry it at their top level; empty means the
// game root. A missing root is an empty library.
func Scan(root, dataDir string) (*Library, error) {
	logger := logging.GetLogger("library")
	logger.Trace().Str("root", root).Msg("Scanning mods")

	lib := &Library{root: root, dataDir: dataDir, mods: map[string]*Mod{}}

	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return lib, nil
		}
		return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot read mods directory").
			WithDetail("path", root)
	}

	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		mod, err := lib.scanMod(entry.Name())
		if err != nil {
			return nil, err
		}
		lib.mods[mod.Name] = mod
	}

	logger.Debug().Int("count", len(lib.mods)).Msg("Mods scanned")
	return lib, nil
}

// Root returns the mods directory
func (l *Library) Root() string {
	return l.root
}

// Mods returns every mod sorted by name
func (l *Library) Mods() []*Mod {
	out := make([]*Mod, 0, len(l.mods))
	for _, m := range l.mods {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Mod looks a mod up by name
func (l *Library) Mod(name string) (*Mod, bool) {
	m, ok := l.mods[name]
	return m, ok
}

// Files returns the files of a mod
func (l *Library) Files(name string) ([]File, error) {
	m, ok := l.mods[name]
	if !ok {
		return nil, errors.Newf(errors.ErrNotFound, "mod %q not found", name).WithDetail("mod", name)
	}
	return m.Files, nil
}

// Rescan re-reads a single mod, for example after the wizard ran. A mod
// whose directory is gone is removed.
func (l *Library) Rescan(name string) (*Mod, error) {
	if _, err := os.Stat(filepath.Join(l.root, name)); os.IsNotExist(err) {
		delete(l.mods, name)
		return nil, errors.Newf(errors.ErrNotFound, "mod %q not found", name).WithDetail("mod", name)
	}
	mod, err := l.scanMod(name)
	if err != nil {
		return nil, err
	}
	l.mods[name] = mod
	return mod, nil
}

// Forget drops a mod from the library without touching disk
func (l *Library) Forget(name string) {
	delete(l.mods, name)
}

func (l *Library) scanMod(name string) (*Mod, error) {
	logger := logging.GetLogger("library")

	mod := &Mod{Name: name, Path: filepath.Join(l.root, name)}

	installer, err := findInstaller(mod.Path)
	if err != nil {
		return nil, err
	}
	mod.Installer = installer

	contentRoot := mod.Path
	if mod.HasInstaller() {
		info, err := os.Stat(mod.OutputDir())
		if err != nil || !info.IsDir() {
			logger.Debug().Str("mod", name).Msg("installer mod not configured yet")
			return mod, nil
		}
		mod.Configured = true
		contentRoot = mod.OutputDir()
	}

	files, err := listFiles(contentRoot, l.dataDir)
	if err != nil {
		return nil, err
	}
	mod.Files = files
	mod.Plugins = pluginsOf(files, l.dataDir)

	logger.Trace().
		Str("mod", name).
		Int("files", len(files)).
		Strs("plugins", mod.Plugins).
		Msg("Mod scanned")
	return mod, nil
}

// findInstaller locates fomod/ModuleConfig.xml anywhere in the mod,
// matching names without regard to case. Wizard output is not searched.
func findInstaller(modPath string) (string, error) {
	found := ""
	err := filepath.WalkDir(modPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != modPath && d.Name() == OutputDirName && filepath.Dir(path) == modPath {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(d.Name(), InstallerFileName) &&
			strings.EqualFold(filepath.Base(filepath.Dir(path)), InstallerDirName) {
			found = path
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", errors.Wrap(err, errors.ErrFileAccess, "cannot read mod").WithDetail("path", modPath)
	}
	return found, nil
}

// listFiles lists the regular files below root with their destinations.
// When dataDir is set and root has no top-level directory of that name,
// everything goes below dataDir; otherwise destinations mirror root, with
// the top-level data directory spelled as configured.
func listFiles(root, dataDir string) ([]File, error) {
	prefix := ""
	if dataDir != "" && !hasTopLevelDir(root, dataDir) {
		prefix = dataDir
	}

	var files []File
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && d.Name() == OutputDirName && filepath.Dir(path) == root {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		dest := rel
		if prefix != "" {
			dest = filepath.Join(prefix, rel)
		} else if dataDir != "" {
			dest = respellTop(rel, dataDir)
		}
		files = append(files, File{Source: path, Dest: dest})
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot list mod files").WithDetail("path", root)
	}
	return files, nil
}

func hasTopLevelDir(root, name string) bool {
	entries, err := os.ReadDir(root)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if e.IsDir() && strings.EqualFold(e.Name(), name) {
			return true
		}
	}
	return false
}

func respellTop(rel, dataDir string) string {
	parts := strings.SplitN(rel, string(filepath.Separator), 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], dataDir) {
		return filepath.Join(dataDir, parts[1])
	}
	return rel
}

// pluginsOf picks plugin files sitting directly in the data directory
// (or the game root when there is none).
func pluginsOf(files []File, dataDir string) []string {
	var plugins []string
	for _, f := range files {
		dir := filepath.Dir(f.Dest)
		if dataDir == "" {
			if dir != "." {
				continue
			}
		} else if !strings.EqualFold(dir, dataDir) {
			continue
		}
		if IsPlugin(f.Dest) {
			plugins = append(plugins, filepath.Base(f.Dest))
		}
	}
	return plugins
}

// IsPlugin reports whether a file name has a plugin extension
func IsPlugin(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, p := range PluginExtensions {
		if ext == p {
			return true
		}
	}
	return false
}
