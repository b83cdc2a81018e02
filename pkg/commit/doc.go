// Package commit projects the active mods of a load order into the game
// directory.
//
// A commit removes every managed link, stages the destination of every file
// of every active mod in ascending order so later mods overwrite earlier
// ones, links each staged destination to its winning source, and writes the
// enabled plugins to the game's plugin file. Nothing is rolled back: link
// failures are collected into the Result and the rest still applies.
package commit
