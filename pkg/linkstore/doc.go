// Package linkstore creates and removes the links modlink places in a
// game directory, and finds which links in a tree belong to modlink.
//
// A link is "managed" when it points into the mods directory: a symlink
// whose target lies below the mods root (dangling or not), or a hard link
// sharing its inode with a file below the mods root. Anything else in the
// game directory is unmanaged and is never overwritten or removed.
package linkstore
