// Package testutil provides small helpers shared by modlink tests.
//
// Trees are described inline as maps of slash-separated relative paths to
// file contents, written to a t.TempDir() and inspected after a commit:
//
//	root := t.TempDir()
//	testutil.WriteTree(t, root, map[string]string{
//	    "mods/A/Data/a.esp": "A",
//	})
//	testutil.AssertLinkedTo(t, filepath.Join(game, "Data/a.esp"), source)
package testutil
