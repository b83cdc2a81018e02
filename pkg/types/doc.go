// Package types defines the interfaces shared across modlink packages.
// The link store works against FS so its ownership rules can be tested
// on the real disk and swapped for another implementation if needed.
package types
