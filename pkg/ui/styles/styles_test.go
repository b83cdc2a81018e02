package styles_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/modlink/pkg/errors"
	"github.com/arthur-debert/modlink/pkg/ui/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedStyles(t *testing.T) {
	for _, name := range []string{
		"Header", "SubHeader", "Success", "Error", "Warning", "Info", "Muted",
		"Active", "Inactive", "Pending", "Index", "ModName", "Owner", "Tag",
		"Installer", "FilePath", "Winner", "TableHeader", "TableCell",
	} {
		_, ok := styles.StyleRegistry[name]
		assert.True(t, ok, "style %s should be registered", name)
	}
}

func TestStyleAttributes(t *testing.T) {
	assert.True(t, styles.GetStyle("Header").GetBold())
	assert.True(t, styles.GetStyle("Owner").GetItalic())
	assert.Equal(t, 1, styles.GetStyle("TableCell").GetPaddingRight())
}

func TestGetStyleUnknown(t *testing.T) {
	assert.Equal(t, "plain", styles.Render("NoSuchStyle", "plain"))
}

func TestMergeStyles(t *testing.T) {
	merged := styles.MergeStyles("Bold", "Italic")
	assert.True(t, merged.GetBold())
	assert.True(t, merged.GetItalic())
}

func TestLoadStyles(t *testing.T) {
	t.Cleanup(func() { require.NoError(t, styles.Reset()) })

	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
colors:
  brand:
    light: "#000000"
    dark: "#ffffff"
styles:
  Header:
    underline: true
    foreground: brand
  Tag:
    foreground: "#ff8800"
`), 0o644))
	require.NoError(t, styles.LoadStyles(path))
	assert.True(t, styles.GetStyle("Header").GetUnderline())
	assert.False(t, styles.GetStyle("Header").GetBold(), "a named style is replaced whole")
	assert.True(t, styles.GetStyle("Owner").GetItalic(), "unnamed styles stay built in")
	assert.Equal(t, lipgloss.Color("#ff8800"), styles.GetStyle("Tag").GetForeground())

	require.NoError(t, styles.Reset())
	assert.True(t, styles.GetStyle("Header").GetBold())

	err := styles.LoadStyles(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileAccess))

	err = styles.LoadStylesFromData([]byte("styles: ["))
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigLoad))
}
