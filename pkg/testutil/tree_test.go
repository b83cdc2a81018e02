package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreeHelpers(t *testing.T) {
	root := t.TempDir()
	WriteTree(t, root, map[string]string{
		"a/b.txt": "b",
		"c.txt":   "c",
	})
	require.NoError(t, os.Symlink(filepath.Join(root, "c.txt"), filepath.Join(root, "a", "link")))

	assert.Equal(t, []string{"a/b.txt", "a/link", "c.txt"}, Files(t, root))
	assert.Equal(t, map[string]string{"a/link": filepath.Join(root, "c.txt")}, Links(t, root))
	assert.Equal(t, "b", ReadFile(t, filepath.Join(root, "a", "b.txt")))
	AssertLinkedTo(t, filepath.Join(root, "a", "link"), filepath.Join(root, "c.txt"))
	AssertNotExists(t, filepath.Join(root, "missing"))
}
