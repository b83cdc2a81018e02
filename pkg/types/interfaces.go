package types

import (
	"io/fs"
)

// FS is what the link store needs from a filesystem: creating and
// reading links, and walking without following them.
type FS interface {
	// Lstat does not follow symlinks; managed links are told apart from
	// the files they point at with it.
	Lstat(name string) (fs.FileInfo, error)
	ReadDir(name string) ([]fs.DirEntry, error)
	Readlink(name string) (string, error)

	MkdirAll(path string, perm fs.FileMode) error
	Symlink(oldname, newname string) error
	Link(oldname, newname string) error
	Remove(name string) error
}
