package commit

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/arthur-debert/modlink/pkg/errors"
	"github.com/arthur-debert/modlink/pkg/filesystem"
	"github.com/arthur-debert/modlink/pkg/library"
	"github.com/arthur-debert/modlink/pkg/linkstore"
	"github.com/arthur-debert/modlink/pkg/loadorder"
	"github.com/arthur-debert/modlink/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env struct {
	mods    string
	game    string
	plugins string
	lib     *library.Library
	order   *loadorder.Order
	engine  *Engine
}

// newEnv writes mods/<name>/... and game/... trees; mods are ordered by name
// and all active.
func newEnv(t *testing.T, dataDir string, files map[string]string) *env {
	t.Helper()
	root := t.TempDir()
	testutil.WriteTree(t, root, files)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "game"), 0755))

	e := &env{
		mods:    filepath.Join(root, "mods"),
		game:    filepath.Join(root, "game"),
		plugins: filepath.Join(root, "prefix", "Plugins.txt"),
	}
	lib, err := library.Scan(e.mods, dataDir)
	require.NoError(t, err)
	e.lib = lib

	var mods []*loadorder.Mod
	for _, m := range lib.Mods() {
		entry := m.OrderEntry()
		entry.Active = true
		mods = append(mods, entry)
	}
	e.order = loadorder.New(mods, nil)
	e.engine = New(linkstore.New(filesystem.NewOS(), linkstore.Symlink), Options{
		GameDir:       e.game,
		ModsDir:       e.mods,
		PluginFile:    e.plugins,
		EnabledMarker: "*",
	})
	return e
}

var linkModes = []linkstore.Mode{linkstore.Symlink, linkstore.Hardlink}

// withMode relinks the env through a store of the given mode
func (e *env) withMode(mode linkstore.Mode) *env {
	e.engine = New(linkstore.New(filesystem.NewOS(), mode), e.engine.opts)
	return e
}

// managed lists the links the store would tear down, relative to the game dir
func (e *env) managed(t *testing.T) []string {
	t.Helper()
	links, err := e.engine.store.Managed(e.game, e.mods)
	require.NoError(t, err)
	var out []string
	for _, l := range links {
		rel, err := filepath.Rel(e.game, l)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(rel))
	}
	sort.Strings(out)
	return out
}

// assertLinked checks that dest is a link to source in either mode
func assertLinked(t *testing.T, mode linkstore.Mode, dest, source string) {
	t.Helper()
	if mode == linkstore.Symlink {
		testutil.AssertLinkedTo(t, dest, source)
		return
	}
	destInfo, err := os.Lstat(dest)
	require.NoError(t, err)
	sourceInfo, err := os.Stat(source)
	require.NoError(t, err)
	assert.True(t, os.SameFile(destInfo, sourceInfo), "%s is not a hardlink of %s", dest, source)
}

func (e *env) commit(t *testing.T) *Result {
	t.Helper()
	res, err := e.engine.Commit(e.order, e.lib)
	require.NoError(t, err)
	return res
}

func (e *env) src(mod, rel string) string {
	return filepath.Join(e.mods, mod, filepath.FromSlash(rel))
}

func TestLastWriterWins(t *testing.T) {
	e := newEnv(t, "", map[string]string{
		"mods/A/x":     "A",
		"mods/B/x":     "B",
		"mods/B/y":     "B",
		"mods/C/x":     "C",
		"mods/C/sub/z": "C",
	})

	res := e.commit(t)
	assert.Empty(t, res.Failures)
	assert.Equal(t, []string{"sub/z", "x", "y"}, res.Applied)
	testutil.AssertLinkedTo(t, filepath.Join(e.game, "x"), e.src("C", "x"))
	testutil.AssertLinkedTo(t, filepath.Join(e.game, "y"), e.src("B", "y"))

	require.Contains(t, res.Conflicts, "x")
	assert.Equal(t, []Candidate{
		{Mod: "A", Source: e.src("A", "x")},
		{Mod: "B", Source: e.src("B", "x")},
		{Mod: "C", Source: e.src("C", "x")},
	}, res.Conflicts["x"])

	// reorder: A now last
	require.NoError(t, e.order.Move(loadorder.Mods, 0, 9))
	e.commit(t)
	testutil.AssertLinkedTo(t, filepath.Join(e.game, "x"), e.src("A", "x"))
}

func TestDeactivateScenario(t *testing.T) {
	for _, mode := range linkModes {
		t.Run(mode.String(), func(t *testing.T) {
			e := newEnv(t, "", map[string]string{
				"mods/A/x": "A",
				"mods/B/x": "B",
			}).withMode(mode)

			e.commit(t)
			assertLinked(t, mode, filepath.Join(e.game, "x"), e.src("B", "x"))
			assert.Equal(t, "B", testutil.ReadFile(t, filepath.Join(e.game, "x")))

			require.NoError(t, e.order.SetActive(loadorder.Mods, 1, false))
			res := e.commit(t)
			assertLinked(t, mode, filepath.Join(e.game, "x"), e.src("A", "x"))
			assert.Equal(t, "A", testutil.ReadFile(t, filepath.Join(e.game, "x")))
			assert.Equal(t, 1, res.Removed)
			assert.Empty(t, res.Conflicts)
			assert.Equal(t, []string{"x"}, e.managed(t))
		})
	}
}

func TestIdempotence(t *testing.T) {
	for _, mode := range linkModes {
		t.Run(mode.String(), func(t *testing.T) {
			e := newEnv(t, "Data", map[string]string{
				"mods/A/a.esp":               "A",
				"mods/A/textures/t.dds":      "A",
				"mods/B/Data/b.esp":          "B",
				"mods/B/Data/textures/t.dds": "B",
				"game/Data/Skyrim.esm":       "vanilla",
			}).withMode(mode)
			require.NoError(t, e.order.SetActiveAll(loadorder.Plugins, e.order.VisibleIndices(loadorder.Plugins), true))

			first := e.commit(t)
			managedAfterFirst := e.managed(t)
			filesAfterFirst := testutil.Files(t, e.game)
			pluginsAfterFirst := testutil.ReadFile(t, e.plugins)

			second := e.commit(t)
			assert.Equal(t, managedAfterFirst, e.managed(t))
			assert.Equal(t, filesAfterFirst, testutil.Files(t, e.game))
			assert.Equal(t, pluginsAfterFirst, testutil.ReadFile(t, e.plugins))
			assert.Equal(t, first.Conflicts, second.Conflicts)
			assert.Equal(t, first.Applied, second.Applied)
			assert.Empty(t, second.Failures)
			assertLinked(t, mode, filepath.Join(e.game, "Data", "textures", "t.dds"), e.src("B", "Data/textures/t.dds"))
		})
	}
}

func TestTeardownCompleteness(t *testing.T) {
	for _, mode := range linkModes {
		t.Run(mode.String(), func(t *testing.T) {
			e := newEnv(t, "Data", map[string]string{
				"mods/A/meshes/deep/a.nif": "A",
				"mods/A/a.esp":             "A",
				"game/Data/Skyrim.esm":     "vanilla",
				"game/game.exe":            "exe",
			}).withMode(mode)
			require.NoError(t, os.MkdirAll(filepath.Join(e.game, "Saves"), 0755))
			before := testutil.Files(t, e.game)

			e.commit(t)
			assert.DirExists(t, filepath.Join(e.game, "Data", "meshes", "deep"))
			assert.Len(t, e.managed(t), 2)

			require.NoError(t, e.order.SetActive(loadorder.Mods, 0, false))
			res := e.commit(t)
			assert.Equal(t, 2, res.Removed)
			assert.Empty(t, e.managed(t))
			assert.Equal(t, before, testutil.Files(t, e.game))
			assert.NoDirExists(t, filepath.Join(e.game, "Data", "meshes"))
			assert.DirExists(t, filepath.Join(e.game, "Saves"), "pre-existing empty dir untouched")
			assert.Equal(t, "vanilla", testutil.ReadFile(t, filepath.Join(e.game, "Data", "Skyrim.esm")))
		})
	}
}

func TestFailedLinkLeavesNoEmptyDirs(t *testing.T) {
	e := newEnv(t, "Data", map[string]string{
		"mods/A/meshes/deep/a.nif": "A",
		"mods/A/a.esp":             "A",
		"game/Data/Skyrim.esm":     "vanilla",
	}).withMode(linkstore.Hardlink)
	// gone after the scan, so the hardlink fails once its parents exist
	require.NoError(t, os.Remove(e.src("A", "meshes/deep/a.nif")))

	res := e.commit(t)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, filepath.Join("Data", "meshes", "deep", "a.nif"), res.Failures[0].Dest)
	assert.True(t, errors.IsErrorCode(res.Failures[0].Err, errors.ErrLinkFailure))
	assert.Equal(t, []string{filepath.Join("Data", "a.esp")}, res.Applied)
	assert.NoDirExists(t, filepath.Join(e.game, "Data", "meshes"))
	assert.DirExists(t, filepath.Join(e.game, "Data"), "non-empty parents stay")
}

func TestUnmanagedFilesProtected(t *testing.T) {
	e := newEnv(t, "Data", map[string]string{
		"mods/A/Skyrim.esm":    "modded",
		"mods/A/other.esp":     "A",
		"game/Data/Skyrim.esm": "vanilla",
	})

	res := e.commit(t)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, filepath.Join("Data", "Skyrim.esm"), res.Failures[0].Dest)
	assert.True(t, errors.IsErrorCode(res.Failures[0].Err, errors.ErrLinkFailure))
	assert.Contains(t, res.Failures[0].Reason, linkstore.MsgUnmanaged)
	assert.Error(t, res.Err())
	assert.Equal(t, []string{filepath.Join("Data", "other.esp")}, res.Applied, "the rest still applies")
	assert.Equal(t, "vanilla", testutil.ReadFile(t, filepath.Join(e.game, "Data", "Skyrim.esm")))
}

func TestCaseInsensitiveDestinations(t *testing.T) {
	e := newEnv(t, "", map[string]string{
		"mods/A/data/Textures/a.dds": "A",
		"mods/B/Data/textures/A.DDS": "B",
		"mods/B/DATA/meshes/m.nif":   "B",
		"game/Data/keep.txt":         "vanilla",
	})

	res := e.commit(t)
	assert.Empty(t, res.Failures)
	assert.Len(t, res.Conflicts, 1)

	// game's own spelling wins for existing dirs, first staged for the rest
	testutil.AssertLinkedTo(t, filepath.Join(e.game, "Data", "Textures", "A.DDS"), e.src("B", "Data/textures/A.DDS"))
	testutil.AssertLinkedTo(t, filepath.Join(e.game, "Data", "meshes", "m.nif"), e.src("B", "DATA/meshes/m.nif"))
}

func TestIgnoredFiles(t *testing.T) {
	e := newEnv(t, "", map[string]string{
		"mods/A/README.md":      "r",
		"mods/A/license":        "l",
		"mods/A/.git/HEAD":      "h",
		"mods/A/fomod/info.xml": "i",
		"mods/A/docs/README.md": "r",
		"mods/A/keep.txt":       "k",
	})

	res := e.commit(t)
	assert.Equal(t, []string{"keep.txt"}, res.Applied)
}

func TestPluginFile(t *testing.T) {
	e := newEnv(t, "Data", map[string]string{
		"mods/A/a.esp":  "A",
		"mods/A/a2.esm": "A",
		"mods/B/b.esp":  "B",
	})
	// a.esp, a2.esm, b.esp
	require.NoError(t, e.order.SetActive(loadorder.Plugins, 0, true))
	require.NoError(t, e.order.SetActive(loadorder.Plugins, 2, true))
	require.NoError(t, e.order.Move(loadorder.Plugins, 2, 0))

	res := e.commit(t)
	assert.Equal(t, []string{"b.esp", "a.esp"}, res.PluginOrder)
	assert.Equal(t, "*b.esp\n*a.esp\n", testutil.ReadFile(t, e.plugins))

	// auto-hide: B off hides b.esp regardless of its flag
	require.NoError(t, e.order.SetActive(loadorder.Mods, 1, false))
	res = e.commit(t)
	assert.Equal(t, []string{"a.esp"}, res.PluginOrder)
	assert.Equal(t, "*a.esp\n", testutil.ReadFile(t, e.plugins))
	b, _ := e.order.Plugin("b.esp")
	assert.True(t, b.Active)
}

func TestProgress(t *testing.T) {
	e := newEnv(t, "", map[string]string{
		"mods/A/x": "A",
		"mods/A/y": "A",
	})
	var calls [][2]int
	e.engine.opts.Progress = func(done, total int) { calls = append(calls, [2]int{done, total}) }

	e.commit(t)
	assert.Equal(t, [][2]int{{1, 2}, {2, 2}}, calls)
}

func TestCollisionsAndObsolete(t *testing.T) {
	e := newEnv(t, "", map[string]string{
		"mods/A/x": "A",
		"mods/A/y": "A",
		"mods/B/x": "B",
		"mods/C/x": "C",
		"mods/C/y": "C",
		"mods/D/z": "D",
	})

	got, err := Collisions(e.order, e.lib, "B")
	require.NoError(t, err)
	assert.Equal(t, []Collision{{Dest: "x", Contenders: []string{"A", "B", "C"}, Winner: "C"}}, got)

	got, err = Collisions(e.order, e.lib, "D")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = Collisions(e.order, e.lib, "nope")
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))

	obsolete, err := ObsoleteMods(e.order, e.lib)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, obsolete)

	isObsolete, err := Obsolete(e.order, e.lib, "C")
	require.NoError(t, err)
	assert.False(t, isObsolete)

	require.NoError(t, e.order.SetActive(loadorder.Mods, 2, false))
	isObsolete, err = Obsolete(e.order, e.lib, "A")
	require.NoError(t, err)
	assert.False(t, isObsolete)

	_, err = Collisions(e.order, e.lib, "C")
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}
