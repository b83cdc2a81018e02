package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/modlink/pkg/errors"
	"github.com/arthur-debert/modlink/pkg/library"
	"github.com/arthur-debert/modlink/pkg/loadorder"
	"github.com/arthur-debert/modlink/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scan(t *testing.T, files map[string]string) *library.Library {
	t.Helper()
	root := t.TempDir()
	testutil.WriteTree(t, root, files)
	lib, err := library.Scan(root, "Data")
	require.NoError(t, err)
	return lib
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "games", "skyrim", "manifest.toml")

	m, err := Load(path)
	require.NoError(t, err)
	assert.Nil(t, m)

	want := &Manifest{
		Mods:    []Entry{{Name: "B", Active: true, Tags: []string{"ui"}}, {Name: "A"}},
		Plugins: []Entry{{Name: "b.esp", Active: true}},
	}
	require.NoError(t, Save(path, want))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	content := testutil.ReadFile(t, path)
	assert.Contains(t, content, "[[mods]]")
	assert.Contains(t, content, "[[plugins]]")

	require.NoError(t, Remove(path))
	require.NoError(t, Remove(path))
	testutil.AssertNotExists(t, path)
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.toml")
	require.NoError(t, os.WriteFile(path, []byte("[[mods]\nname = "), 0644))

	_, err := Load(path)
	assert.True(t, errors.IsErrorCode(err, errors.ErrManifestParse))
}

func TestReconcile(t *testing.T) {
	lib := scan(t, map[string]string{
		"A/a.esp":                  "a",
		"B/b.esp":                  "b",
		"C/Data/c.esp":             "c",
		"New/new.esp":              "n",
		"F/fomod/ModuleConfig.xml": "<config/>",
	})

	m := &Manifest{
		Mods: []Entry{
			{Name: "C", Active: true, Tags: []string{"patch"}},
			{Name: "Gone", Active: true},
			{Name: "A", Active: false},
			{Name: "B", Active: true},
			{Name: "F", Active: true},
			{Name: "A", Active: true},
		},
		Plugins: []Entry{
			{Name: "B.ESP", Active: true},
			{Name: "gone.esp", Active: true},
			{Name: "c.esp", Active: true},
		},
	}

	order, stale := Reconcile(m, lib)

	var mods []string
	for _, mod := range order.Mods() {
		mods = append(mods, mod.Name)
	}
	assert.Equal(t, []string{"C", "A", "B", "F", "New"}, mods, "listed first, on-disk extras appended by name")

	c, _ := order.Mod("C")
	assert.True(t, c.Active)
	assert.Equal(t, []string{"patch"}, c.Tags)
	a, _ := order.Mod("A")
	assert.False(t, a.Active, "first entry wins over the duplicate")
	f, _ := order.Mod("F")
	assert.False(t, f.Active, "unconfigured installer mods never load active")
	n, _ := order.Mod("New")
	assert.False(t, n.Active)

	var plugins []string
	for _, p := range order.Plugins() {
		plugins = append(plugins, p.Name)
	}
	assert.Equal(t, []string{"b.esp", "c.esp", "a.esp", "new.esp"}, plugins, "disk spelling kept")

	require.Len(t, stale, 3)
	for _, err := range stale {
		assert.True(t, errors.IsErrorCode(err, errors.ErrStaleManifestEntry))
	}
}

func TestReconcileWithoutManifest(t *testing.T) {
	lib := scan(t, map[string]string{
		"Z/z.esp": "z",
		"A/a.esp": "a",
	})

	order, stale := Reconcile(nil, lib)
	assert.Empty(t, stale)
	require.Len(t, order.Mods(), 2)
	assert.Equal(t, "A", order.Mods()[0].Name)
	assert.Empty(t, order.ActiveMods())
	assert.Len(t, order.Plugins(), 2)
}

func TestFromOrder(t *testing.T) {
	order := loadorder.New([]*loadorder.Mod{
		{Name: "A", Active: true, Plugins: []string{"a.esp"}, Tags: []string{"x"}},
		{Name: "B"},
	}, []*loadorder.Plugin{{Name: "a.esp", Active: true}})

	m := FromOrder(order)
	assert.Equal(t, []Entry{{Name: "A", Active: true, Tags: []string{"x"}}, {Name: "B"}}, m.Mods)
	assert.Equal(t, []Entry{{Name: "a.esp", Active: true}}, m.Plugins)
}
