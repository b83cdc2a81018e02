package filesystem

import (
	"io/fs"
	"os"

	"github.com/arthur-debert/modlink/pkg/types"
)

// osFS is types.FS on the real disk. Links must land where the game reads
// them, so there is no in-memory variant.
type osFS struct{}

var _ types.FS = osFS{}

// NewOS returns the OS filesystem
func NewOS() types.FS {
	return osFS{}
}

func (osFS) Lstat(name string) (fs.FileInfo, error) { return os.Lstat(name) }
func (osFS) ReadDir(name string) ([]fs.DirEntry, error) { return os.ReadDir(name) }
func (osFS) Readlink(name string) (string, error) { return os.Readlink(name) }
func (osFS) MkdirAll(path string, perm fs.FileMode) error { return os.MkdirAll(path, perm) }
func (osFS) Symlink(oldname, newname string) error { return os.Symlink(oldname, newname) }
func (osFS) Link(oldname, newname string) error { return os.Link(oldname, newname) }
func (osFS) Remove(name string) error { return os.Remove(name) }
