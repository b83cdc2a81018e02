package filesystem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectories(t *testing.T) {
	fsys := NewOS()
	root := t.TempDir()

	require.NoError(t, fsys.MkdirAll(filepath.Join(root, "Data", "textures"), 0755))
	entries, err := fsys.ReadDir(filepath.Join(root, "Data"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "textures", entries[0].Name())

	require.NoError(t, fsys.Remove(filepath.Join(root, "Data", "textures")))
	_, err = fsys.Lstat(filepath.Join(root, "Data", "textures"))
	assert.True(t, os.IsNotExist(err))
}

func TestLinks(t *testing.T) {
	fsys := NewOS()
	root := t.TempDir()
	source := filepath.Join(root, "source.esp")
	require.NoError(t, os.WriteFile(source, []byte("plugin"), 0644))

	t.Run("symlink", func(t *testing.T) {
		link := filepath.Join(root, "sym.esp")
		require.NoError(t, fsys.Symlink(source, link))

		target, err := fsys.Readlink(link)
		require.NoError(t, err)
		assert.Equal(t, source, target)

		info, err := fsys.Lstat(link)
		require.NoError(t, err)
		assert.NotZero(t, info.Mode()&os.ModeSymlink, "Lstat must not follow the link")
	})

	t.Run("hard link", func(t *testing.T) {
		link := filepath.Join(root, "hard.esp")
		require.NoError(t, fsys.Link(source, link))

		a, err := fsys.Lstat(source)
		require.NoError(t, err)
		b, err := fsys.Lstat(link)
		require.NoError(t, err)
		assert.True(t, os.SameFile(a, b))
	})
}
