// Package library reads the mods directory of a game. Each subdirectory is
// a mod; its files are listed with the destination they take below the
// game directory, and plugin files and installer descriptions are noted.
package library
