// Package paths provides centralized path handling for modlink.
// It implements XDG Base Directory specification compliance and
// lays out the per-game state tree:
//
//	$XDG_STATE_HOME/modlink/
//	  modlink.log
//	  games/<game>/
//	    manifest.toml   committed load order
//	    pending.toml    uncommitted changes, if any
//	    mods/<mod>/     one directory per managed mod
package paths
