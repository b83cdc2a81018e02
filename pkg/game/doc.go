// Package game is the controller for one managed game. An Instance ties
// the configuration, the mod library, the persisted manifest, the load
// order and the commit engine together and exposes the operations the
// command line offers.
//
// Load order edits are not applied to the game directory until Commit.
// Between CLI runs they live in a pending file next to the manifest;
// operations that move or rewrite mod directories (configure, rename and
// delete) refuse to run while such edits exist.
package game
