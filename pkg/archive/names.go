package archive

import (
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/arthur-debert/modlink/pkg/errors"
	"github.com/arthur-debert/modlink/pkg/library"
)

// KeepDirs are top-level directory names that belong to the data tree, so
// a lone one is content rather than a wrapper.
var KeepDirs = []string{
	"skse",
	"netscriptframework",
	"bashtags",
	"docs",
	"meshes",
	"textures",
	"grass",
	"animations",
	"interface",
	"strings",
	"misc",
	"shaders",
	"sounds",
	"voices",
	"edit scripts",
	"scripts",
	"seq",
}

// ModName derives a mod directory name from a download: the archive
// suffix is dropped, spaces become underscores and anything other than
// letters, digits and underscores is removed.
func ModName(download string) string {
	_, stem, _ := Detect(filepath.Base(download))
	var b strings.Builder
	for _, r := range strings.ReplaceAll(stem, " ", "_") {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "_")
}

// ValidName reports whether name is usable as a mod or download name:
// letters, digits, underscores and periods, not starting with a period.
func ValidName(name string) bool {
	if name == "" || strings.HasPrefix(name, ".") {
		return false
	}
	for _, r := range name {
		if r != '_' && r != '.' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// Elevate replaces a lone wrapper directory under root with its contents,
// as found in archives that put a versioned folder around the data tree.
// Directories named like the data dir or one of KeepDirs, and anything
// that looks like a plugin, are left alone.
func Elevate(root, dataDir string) (bool, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return false, errors.Wrap(err, errors.ErrFileAccess, "cannot read extracted mod").WithDetail("path", root)
	}
	if len(entries) != 1 || !entries[0].IsDir() {
		return false, nil
	}
	name := entries[0].Name()
	if (dataDir != "" && strings.EqualFold(name, dataDir)) || library.IsPlugin(name) || isKeepDir(name) {
		return false, nil
	}

	wrapper, err := os.MkdirTemp(root, ".elevate-")
	if err != nil {
		return false, errors.Wrap(err, errors.ErrFileWrite, "cannot elevate wrapper directory").WithDetail("path", root)
	}
	if err := os.Remove(wrapper); err != nil {
		return false, errors.Wrap(err, errors.ErrFileWrite, "cannot elevate wrapper directory").WithDetail("path", root)
	}
	if err := os.Rename(filepath.Join(root, name), wrapper); err != nil {
		return false, errors.Wrap(err, errors.ErrFileWrite, "cannot elevate wrapper directory").WithDetail("path", root)
	}

	children, err := os.ReadDir(wrapper)
	if err != nil {
		return false, errors.Wrap(err, errors.ErrFileAccess, "cannot read wrapper directory").WithDetail("path", wrapper)
	}
	for _, c := range children {
		if err := os.Rename(filepath.Join(wrapper, c.Name()), filepath.Join(root, c.Name())); err != nil {
			return false, errors.Wrap(err, errors.ErrFileWrite, "cannot elevate file").WithDetail("path", c.Name())
		}
	}
	if err := os.Remove(wrapper); err != nil {
		return false, errors.Wrap(err, errors.ErrFileWrite, "cannot remove wrapper directory").WithDetail("path", wrapper)
	}
	return true, nil
}

func isKeepDir(name string) bool {
	for _, k := range KeepDirs {
		if strings.EqualFold(k, name) {
			return true
		}
	}
	return false
}
