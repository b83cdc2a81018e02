package linkstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/modlink/pkg/errors"
	"github.com/arthur-debert/modlink/pkg/filesystem"
	"github.com/arthur-debert/modlink/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	mods  string
	game  string
	store *Store
}

func newFixture(t *testing.T, mode Mode) fixture {
	t.Helper()
	root := t.TempDir()
	f := fixture{
		mods:  filepath.Join(root, "mods"),
		game:  filepath.Join(root, "game"),
		store: New(filesystem.NewOS(), mode),
	}
	testutil.WriteTree(t, root, map[string]string{
		"mods/A/Data/a.esp":           "A",
		"mods/A/Data/textures/t.dds":  "tex",
		"mods/B/Data/b.esp":           "B",
		"game/Data/Skyrim.esm":        "vanilla",
		"game/Data/textures/keep.dds": "vanilla",
	})
	return f
}

func TestCreate(t *testing.T) {
	t.Run("symlink with parents", func(t *testing.T) {
		f := newFixture(t, Symlink)
		src := filepath.Join(f.mods, "A", "Data", "textures", "t.dds")
		dest := filepath.Join(f.game, "Data", "textures", "new", "t.dds")

		require.NoError(t, f.store.Create(dest, src))
		testutil.AssertLinkedTo(t, dest, src)

		// same link again is fine
		require.NoError(t, f.store.Create(dest, src))
	})

	t.Run("hardlink", func(t *testing.T) {
		f := newFixture(t, Hardlink)
		src := filepath.Join(f.mods, "A", "Data", "a.esp")
		dest := filepath.Join(f.game, "Data", "a.esp")

		require.NoError(t, f.store.Create(dest, src))
		srcInfo, err := os.Stat(src)
		require.NoError(t, err)
		destInfo, err := os.Lstat(dest)
		require.NoError(t, err)
		assert.True(t, os.SameFile(srcInfo, destInfo))
	})

	t.Run("unmanaged file is never overwritten", func(t *testing.T) {
		f := newFixture(t, Symlink)
		dest := filepath.Join(f.game, "Data", "Skyrim.esm")

		err := f.store.Create(dest, filepath.Join(f.mods, "A", "Data", "a.esp"))
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrLinkFailure))
		assert.Contains(t, err.Error(), MsgUnmanaged)
		assert.Equal(t, "vanilla", testutil.ReadFile(t, dest))
	})

	t.Run("foreign symlink is never overwritten", func(t *testing.T) {
		f := newFixture(t, Symlink)
		dest := filepath.Join(f.game, "Data", "x.esp")
		require.NoError(t, os.Symlink("/elsewhere", dest))

		err := f.store.Create(dest, filepath.Join(f.mods, "B", "Data", "b.esp"))
		assert.True(t, errors.IsErrorCode(err, errors.ErrLinkFailure))
		testutil.AssertLinkedTo(t, dest, "/elsewhere")
	})
}

func TestRemove(t *testing.T) {
	f := newFixture(t, Symlink)
	dest := filepath.Join(f.game, "Data", "a.esp")
	require.NoError(t, f.store.Create(dest, filepath.Join(f.mods, "A", "Data", "a.esp")))

	require.NoError(t, f.store.Remove(dest))
	testutil.AssertNotExists(t, dest)
	assert.FileExists(t, filepath.Join(f.mods, "A", "Data", "a.esp"))

	require.NoError(t, f.store.Remove(dest), "missing dest")

	err := f.store.Remove(filepath.Join(f.game, "Data"))
	assert.True(t, errors.IsErrorCode(err, errors.ErrLinkFailure))
}

func TestManaged(t *testing.T) {
	t.Run("symlinks into mods root only", func(t *testing.T) {
		f := newFixture(t, Symlink)
		ours := filepath.Join(f.game, "Data", "a.esp")
		deep := filepath.Join(f.game, "Data", "textures", "t.dds")
		dangling := filepath.Join(f.game, "Data", "gone.esp")
		foreign := filepath.Join(f.game, "Data", "foreign.esp")

		require.NoError(t, f.store.Create(ours, filepath.Join(f.mods, "A", "Data", "a.esp")))
		require.NoError(t, f.store.Create(deep, filepath.Join(f.mods, "A", "Data", "textures", "t.dds")))
		require.NoError(t, os.Symlink(filepath.Join(f.mods, "Deleted", "gone.esp"), dangling))
		require.NoError(t, os.Symlink(filepath.Join(f.game, "Data", "Skyrim.esm"), foreign))

		got, err := f.store.Managed(f.game, f.mods)
		require.NoError(t, err)
		assert.Equal(t, []string{ours, dangling, deep}, got)
	})

	t.Run("relative symlink", func(t *testing.T) {
		f := newFixture(t, Symlink)
		link := filepath.Join(f.game, "rel.esp")
		require.NoError(t, os.Symlink(filepath.Join("..", "mods", "B", "Data", "b.esp"), link))

		got, err := f.store.Managed(f.game, f.mods)
		require.NoError(t, err)
		assert.Equal(t, []string{link}, got)
	})

	t.Run("hard links by inode", func(t *testing.T) {
		f := newFixture(t, Hardlink)
		ours := filepath.Join(f.game, "Data", "b.esp")
		require.NoError(t, f.store.Create(ours, filepath.Join(f.mods, "B", "Data", "b.esp")))
		// same size and content as a mod file, different inode
		testutil.WriteTree(t, f.game, map[string]string{"Data/copy.esp": "B"})

		got, err := f.store.Managed(f.game, f.mods)
		require.NoError(t, err)
		assert.Equal(t, []string{ours}, got)
	})

	t.Run("missing root", func(t *testing.T) {
		f := newFixture(t, Symlink)
		got, err := f.store.Managed(filepath.Join(f.game, "nope"), f.mods)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestPrune(t *testing.T) {
	t.Run("parents of removed links", func(t *testing.T) {
		f := newFixture(t, Symlink)
		dest := filepath.Join(f.game, "Data", "meshes", "armor", "x.nif")
		require.NoError(t, f.store.Create(dest, filepath.Join(f.mods, "A", "Data", "a.esp")))
		require.NoError(t, os.MkdirAll(filepath.Join(f.game, "Saves"), 0755))

		require.NoError(t, f.store.Remove(dest))
		assert.Equal(t, 2, f.store.PruneParents(f.game, []string{dest}))

		assert.NoDirExists(t, filepath.Join(f.game, "Data", "meshes"))
		assert.DirExists(t, filepath.Join(f.game, "Data"))
		assert.DirExists(t, filepath.Join(f.game, "Saves"), "unrelated empty dir kept")
	})

	t.Run("all empty dirs", func(t *testing.T) {
		f := newFixture(t, Symlink)
		require.NoError(t, os.MkdirAll(filepath.Join(f.game, "a", "b", "c"), 0755))
		require.NoError(t, os.MkdirAll(filepath.Join(f.game, "d"), 0755))

		n, err := f.store.PruneEmptyDirs(f.game)
		require.NoError(t, err)
		assert.Equal(t, 4, n)
		assert.DirExists(t, f.game)
		assert.FileExists(t, filepath.Join(f.game, "Data", "Skyrim.esm"))
	})
}
