package game

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/modlink/pkg/config"
	"github.com/arthur-debert/modlink/pkg/errors"
	"github.com/arthur-debert/modlink/pkg/filter"
	"github.com/arthur-debert/modlink/pkg/installer"
	"github.com/arthur-debert/modlink/pkg/loadorder"
	"github.com/arthur-debert/modlink/pkg/paths"
	"github.com/arthur-debert/modlink/pkg/testutil"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env struct {
	cfg       *config.Config
	paths     paths.Paths
	gameDir   string
	downloads string
}

func setup(t *testing.T) *env {
	t.Helper()
	root := t.TempDir()
	e := &env{
		gameDir:   filepath.Join(root, "Skyrim"),
		downloads: filepath.Join(root, "Downloads"),
		paths:     paths.NewWithRoots(filepath.Join(root, "state"), filepath.Join(root, "config")),
	}
	require.NoError(t, os.MkdirAll(e.gameDir, 0755))
	e.cfg = &config.Config{
		Downloads: e.downloads,
		LinkMode:  config.LinkSymlink,
		Games: map[string]config.Game{
			"skyrim": {
				Directory:     e.gameDir,
				DataDir:       "Data",
				PluginFile:    "Plugins.txt",
				EnabledMarker: "*",
			},
		},
	}
	return e
}

func (e *env) mod(t *testing.T, name string, files map[string]string) {
	t.Helper()
	testutil.WriteTree(t, e.paths.ModPath("skyrim", name), files)
}

func (e *env) open(t *testing.T) *Instance {
	t.Helper()
	g, err := Open(e.cfg, e.paths, "")
	require.NoError(t, err)
	return g
}

func (e *env) modFile(name, rel string) string {
	return filepath.Join(e.paths.ModPath("skyrim", name), filepath.FromSlash(rel))
}

func TestOpenRequiresGameDir(t *testing.T) {
	e := setup(t)
	require.NoError(t, os.RemoveAll(e.gameDir))
	_, err := Open(e.cfg, e.paths, "skyrim")
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid))

	_, err = Open(e.cfg, e.paths, "oblivion")
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}

func TestActivateCommit(t *testing.T) {
	e := setup(t)
	e.mod(t, "A", map[string]string{"a.esp": "a", "textures/sky.dds": "a"})
	e.mod(t, "B", map[string]string{"Data/textures/sky.dds": "b"})

	g := e.open(t)
	require.Equal(t, 2, g.Order().Len(loadorder.Mods))
	require.NoError(t, g.Activate(loadorder.Mods, []int{0, 1}))
	require.NoError(t, g.Activate(loadorder.Plugins, []int{0}))
	assert.True(t, g.Pending())

	res, err := g.Commit(nil)
	require.NoError(t, err)
	require.NoError(t, res.Err())
	assert.False(t, g.Pending())
	assert.Equal(t, []string{"a.esp"}, res.PluginOrder)

	testutil.AssertLinkedTo(t, filepath.Join(e.gameDir, "Data", "a.esp"), e.modFile("A", "a.esp"))
	testutil.AssertLinkedTo(t, filepath.Join(e.gameDir, "Data", "textures", "sky.dds"), e.modFile("B", "Data/textures/sky.dds"))
	assert.Equal(t, "*a.esp\n", testutil.ReadFile(t, filepath.Join(e.gameDir, "Plugins.txt")))

	testutil.AssertNotExists(t, e.paths.PendingPath("skyrim"))
	reopened := e.open(t)
	assert.False(t, reopened.Pending())
	assert.True(t, reopened.Order().Mods()[1].Active)
}

func TestPendingSurvivesReopen(t *testing.T) {
	e := setup(t)
	e.mod(t, "A", map[string]string{"a.esp": "a"})
	e.mod(t, "B", map[string]string{"b.esp": "b"})

	g := e.open(t)
	require.NoError(t, g.Activate(loadorder.Mods, []int{1}))
	require.NoError(t, g.Move(loadorder.Mods, 1, 0))

	reopened := e.open(t)
	assert.True(t, reopened.Pending())
	assert.Equal(t, "B", reopened.Order().Mods()[0].Name)
	assert.True(t, reopened.Order().Mods()[0].Active)

	err := reopened.RenameMod("A", "C")
	assert.True(t, errors.IsErrorCode(err, errors.ErrPendingChanges))
	err = reopened.DeleteMods([]int{0})
	assert.True(t, errors.IsErrorCode(err, errors.ErrPendingChanges))

	require.NoError(t, reopened.Discard())
	assert.False(t, reopened.Pending())
	assert.Equal(t, "A", reopened.Order().Mods()[0].Name)
}

func TestActivateErrors(t *testing.T) {
	e := setup(t)
	e.mod(t, "A", map[string]string{"a.esp": "a"})
	e.mod(t, "Fancy", map[string]string{"fomod/ModuleConfig.xml": "<config/>"})

	g := e.open(t)
	err := g.Activate(loadorder.Plugins, []int{0})
	assert.True(t, errors.IsErrorCode(err, errors.ErrOwnerInactive))

	err = g.Activate(loadorder.Mods, []int{1})
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotConfigured))
	assert.False(t, g.Pending(), "failed single activation changes nothing")

	err = g.Activate(loadorder.Mods, []int{0, 1})
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotConfigured))
	assert.True(t, g.Order().Mods()[0].Active, "the rest of the batch still applies")

	err = g.Activate(loadorder.Mods, []int{7})
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidIndex))
}

func TestIndices(t *testing.T) {
	e := setup(t)
	e.mod(t, "SkyUI", map[string]string{"SkyUI_SE.esp": ""})
	e.mod(t, "Armors", map[string]string{"armors.esp": ""})

	g := e.open(t)
	got, err := g.Indices(loadorder.Mods, "all", filter.New())
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, got)

	got, err = g.Indices(loadorder.Mods, "ALL", filter.New("sky"))
	require.NoError(t, err)
	assert.Equal(t, []int{1}, got, "mods are in name order: Armors, SkyUI")

	got, err = g.Indices(loadorder.Plugins, "all", filter.New())
	require.NoError(t, err)
	assert.Empty(t, got, "plugins of inactive mods are hidden")

	got, err = g.Indices(loadorder.Mods, "3", filter.New())
	require.NoError(t, err)
	assert.Equal(t, []int{3}, got)

	_, err = g.Indices(loadorder.Mods, "three", filter.New())
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestTags(t *testing.T) {
	e := setup(t)
	e.mod(t, "A", map[string]string{"a.esp": ""})

	g := e.open(t)
	require.NoError(t, g.Tag("A", "ui", "UI", "gear"))
	assert.Equal(t, []string{"ui", "gear"}, g.Order().Mods()[0].Tags)
	require.NoError(t, g.Untag("0", "GEAR"))

	reopened := e.open(t)
	assert.Equal(t, []string{"ui"}, reopened.Order().Mods()[0].Tags)
	assert.False(t, reopened.Pending(), "tags do not need a commit")
}

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

func TestInstall(t *testing.T) {
	e := setup(t)
	writeZip(t, filepath.Join(e.downloads, "Cool Mod 1.0.zip"), map[string]string{
		"CoolMod/Data/cool.esp": "cool",
	})

	g := e.open(t)
	mod, err := g.Install("Cool Mod 1.0.zip", nil)
	require.NoError(t, err)
	assert.Equal(t, "Cool_Mod_10", mod.Name)
	assert.Equal(t, []string{"cool.esp"}, mod.Plugins)

	m, ok := g.Order().Mod("Cool_Mod_10")
	require.True(t, ok)
	assert.False(t, m.Active)
	testutil.ReadFile(t, e.modFile("Cool_Mod_10", "Data/cool.esp"))

	_, err = g.Install("0", nil)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNameConflict))

	_, err = g.Install("missing.zip", nil)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))

	require.NoError(t, g.Activate(loadorder.Mods, []int{0}))
	_, err = g.Install("0", nil)
	assert.True(t, errors.IsErrorCode(err, errors.ErrPendingChanges))
}

const texturesXML = `<config>
	<moduleName>Textures</moduleName>
	<installSteps>
		<installStep name="Resolution">
			<optionalFileGroups>
				<group name="Size" type="SelectExactlyOne">
					<plugins>
						<plugin name="1K">
							<description>Small.</description>
							<files><file source="1k\sky.dds" destination="textures\sky.dds"/></files>
							<typeDescriptor><type name="Optional"/></typeDescriptor>
						</plugin>
						<plugin name="2K">
							<description>Large.</description>
							<files><file source="2k\sky.dds" destination="textures\sky.dds"/></files>
							<typeDescriptor><type name="Optional"/></typeDescriptor>
						</plugin>
					</plugins>
				</group>
			</optionalFileGroups>
		</installStep>
	</installSteps>
</config>`

func texturesMod(t *testing.T, e *env) {
	t.Helper()
	e.mod(t, "Textures", map[string]string{
		"fomod/ModuleConfig.xml": texturesXML,
		"1k/sky.dds":             "one",
		"2k/sky.dds":             "two",
	})
}

func TestConfigure(t *testing.T) {
	e := setup(t)
	texturesMod(t, e)

	g := e.open(t)
	dests, err := g.Configure("Textures", func(w *installer.Wizard) error {
		if err := w.SelectByName("Size", "2K"); err != nil {
			return err
		}
		return w.Next()
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"textures/sky.dds"}, dests)

	m, _ := g.Order().Mod("Textures")
	assert.True(t, m.Configured)
	assert.False(t, m.Active)

	require.NoError(t, g.Activate(loadorder.Mods, []int{m.Index}))
	_, err = g.Commit(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Data/textures/sky.dds", "Plugins.txt"}, testutil.Files(t, e.gameDir))
	assert.Equal(t, "two", testutil.ReadFile(t, filepath.Join(e.gameDir, "Data", "textures", "sky.dds")))

	// reconfiguring an active mod commits it away first
	_, err = g.Configure("Textures", func(w *installer.Wizard) error {
		return w.Next()
	})
	require.NoError(t, err)
	m, _ = g.Order().Mod("Textures")
	assert.False(t, m.Active)
	testutil.AssertNotExists(t, filepath.Join(e.gameDir, "Data", "textures", "sky.dds"))
	assert.Equal(t, "one", testutil.ReadFile(t, e.modFile("Textures", "modlink_installer/textures/sky.dds")),
		"a fresh wizard starts from its defaults")
}

func TestConfigureReportsLinkFailures(t *testing.T) {
	e := setup(t)
	texturesMod(t, e)
	e.mod(t, "Other", map[string]string{"other.esp": "other"})

	g := e.open(t)
	_, err := g.Configure("Textures", func(w *installer.Wizard) error { return w.Next() })
	require.NoError(t, err)
	m, _ := g.Order().Mod("Textures")
	o, _ := g.Order().Mod("Other")
	require.NoError(t, g.Activate(loadorder.Mods, []int{m.Index, o.Index}))
	res, err := g.Commit(nil)
	require.NoError(t, err)
	require.NoError(t, res.Err())

	// an unmanaged file now sits where Other links
	otherLink := filepath.Join(e.gameDir, "Data", "other.esp")
	require.NoError(t, os.Remove(otherLink))
	require.NoError(t, os.WriteFile(otherLink, []byte("vanilla"), 0644))

	_, err = g.Configure("Textures", func(w *installer.Wizard) error { return w.Next() })
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrLinkFailure))
	assert.Equal(t, "vanilla", testutil.ReadFile(t, otherLink))
}

func TestConfigureAbandoned(t *testing.T) {
	e := setup(t)
	texturesMod(t, e)
	e.mod(t, "Plain", map[string]string{"a.esp": ""})

	g := e.open(t)
	_, err := g.Configure("Textures", func(w *installer.Wizard) error {
		return nil
	})
	assert.True(t, errors.IsErrorCode(err, errors.ErrWizardAbandoned))
	testutil.AssertNotExists(t, e.modFile("Textures", "modlink_installer"))

	_, err = g.Configure("Plain", func(w *installer.Wizard) error { return w.Next() })
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestRenameMod(t *testing.T) {
	e := setup(t)
	e.mod(t, "A", map[string]string{"a.esp": "a"})

	g := e.open(t)
	require.NoError(t, g.Activate(loadorder.Mods, []int{0}))
	_, err := g.Commit(nil)
	require.NoError(t, err)

	err = g.RenameMod("A", "bad name")
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	err = g.RenameMod("A", "Skyrim")
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput), "game directory component")

	require.NoError(t, g.RenameMod("A", "Renamed"))
	m, ok := g.Order().Mod("Renamed")
	require.True(t, ok)
	assert.True(t, m.Active)
	testutil.AssertLinkedTo(t, filepath.Join(e.gameDir, "Data", "a.esp"), e.modFile("Renamed", "a.esp"))
	testutil.AssertNotExists(t, e.paths.ModPath("skyrim", "A"))
}

func TestDeleteMods(t *testing.T) {
	e := setup(t)
	e.mod(t, "A", map[string]string{"a.esp": "a"})
	e.mod(t, "B", map[string]string{"b.esp": "b"})

	g := e.open(t)
	require.NoError(t, g.Activate(loadorder.Mods, []int{0, 1}))
	_, err := g.Commit(nil)
	require.NoError(t, err)

	require.NoError(t, g.DeleteMods([]int{0}))
	testutil.AssertNotExists(t, e.paths.ModPath("skyrim", "A"))
	testutil.AssertNotExists(t, filepath.Join(e.gameDir, "Data", "a.esp"))
	testutil.AssertLinkedTo(t, filepath.Join(e.gameDir, "Data", "b.esp"), e.modFile("B", "b.esp"))
	assert.Equal(t, 1, g.Order().Len(loadorder.Mods))

	reopened := e.open(t)
	assert.Empty(t, reopened.Stale())
}

func TestDownloads(t *testing.T) {
	e := setup(t)
	writeZip(t, filepath.Join(e.downloads, "one.zip"), map[string]string{"a.esp": "a"})

	g := e.open(t)
	require.NoError(t, g.RenameDownload("one.zip", "two"))
	d, err := g.Download("two.zip")
	require.NoError(t, err)
	assert.Equal(t, "two.zip", d.Name)

	require.NoError(t, g.RenameDownload("two.zip", "three.ZIP"))
	_, err = g.Download("three.zip")
	require.NoError(t, err, "the given suffix is not doubled")
	_, err = os.Lstat(filepath.Join(e.downloads, "three.ZIP.zip"))
	assert.True(t, os.IsNotExist(err))
	require.NoError(t, g.RenameDownload("three.zip", "two"))

	err = g.RenameDownload("two.zip", "no way")
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))

	require.NoError(t, g.DeleteDownload("0"))
	downloads, err := g.Downloads()
	require.NoError(t, err)
	assert.Empty(t, downloads)
}
