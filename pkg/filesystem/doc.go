// Package filesystem provides the OS-backed types.FS the link store uses.
package filesystem
