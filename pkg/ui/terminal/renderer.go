// Package terminal provides rich terminal output with colors and styling
package terminal

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/arthur-debert/modlink/pkg/errors"
	"github.com/arthur-debert/modlink/pkg/ui/display"
	"github.com/arthur-debert/modlink/pkg/ui/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var title = cases.Title(language.English)

// Renderer lays documents out as styled tables
type Renderer struct {
	output io.Writer
	text   *display.TextRenderer
}

// New creates a new terminal renderer
func New(w io.Writer) (*Renderer, error) {
	return &Renderer{
		output: w,
		text:   display.NewTextRenderer(w),
	}, nil
}

// RenderResult renders any result type with rich terminal formatting
func (r *Renderer) RenderResult(result interface{}) error {
	switch v := result.(type) {
	case *display.CommandResult:
		if v.Message != "" {
			if err := r.RenderMessage(v.Message); err != nil {
				return err
			}
		}
		if v.Result == nil {
			return nil
		}
		return r.RenderResult(v.Result)
	case *display.ListResult:
		return r.list(v)
	case *display.CommitResult:
		return r.commit(v)
	case *display.CollisionsResult:
		return r.collisions(v)
	case *display.DownloadsResult:
		return r.downloadsResult(v)
	case *display.GamesResult:
		return r.games(v)
	default:
		return r.text.Render(result)
	}
}

// RenderError renders an error with its code
func (r *Renderer) RenderError(err error) error {
	label := "Error"
	if code := errors.GetErrorCode(err); code != errors.ErrUnknown {
		label += " " + string(code)
	}
	_, werr := fmt.Fprintf(r.output, "%s %s\n", styles.Render("Error", label+":"), err.Error())
	return werr
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, styles.Render("Info", msg))
	return err
}

func (r *Renderer) println(s string) error {
	_, err := fmt.Fprintln(r.output, s)
	return err
}

func (r *Renderer) list(v *display.ListResult) error {
	header := styles.Render("Header", v.Game)
	if v.Pending {
		header += "  " + styles.Render("Pending", "uncommitted changes: run commit to apply")
	}
	if err := r.println(header); err != nil {
		return err
	}
	for _, section := range v.Sections {
		if err := r.println(styles.Render("SubHeader", title.String(section))); err != nil {
			return err
		}
		var body string
		switch section {
		case "mods":
			body = modTable(v.Mods)
		case "plugins":
			body = pluginTable(v.Plugins)
		case "downloads":
			body = downloadTable(v.Downloads)
		}
		if err := r.println(body); err != nil {
			return err
		}
	}
	return nil
}

func modTable(rows []display.ModRow) string {
	if len(rows) == 0 {
		return styles.Render("Muted", "  none")
	}
	var data [][]string
	for _, m := range rows {
		var notes []string
		if m.Installer != display.InstallerNone {
			notes = append(notes, styles.Render("Installer", m.Installer))
		}
		for _, tag := range m.Tags {
			notes = append(notes, styles.Render("Tag", "#"+tag))
		}
		data = append(data, []string{
			strconv.Itoa(m.Index),
			activeMark(m.Active),
			styles.Render("ModName", m.Name),
			strings.Join(notes, " "),
		})
	}
	return newTable([]string{"#", "", "Mod", ""}, data)
}

func pluginTable(rows []display.PluginRow) string {
	if len(rows) == 0 {
		return styles.Render("Muted", "  none")
	}
	var data [][]string
	for _, p := range rows {
		data = append(data, []string{
			strconv.Itoa(p.Index),
			activeMark(p.Enabled),
			styles.Render("PluginName", p.Name),
			styles.Render("Owner", p.Owner),
		})
	}
	return newTable([]string{"#", "", "Plugin", "Mod"}, data)
}

func downloadTable(rows []display.DownloadRow) string {
	if len(rows) == 0 {
		return styles.Render("Muted", "  none")
	}
	var data [][]string
	for _, d := range rows {
		var notes []string
		if !d.Supported {
			notes = append(notes, styles.Render("Warning", "unsupported"))
		}
		if d.Duplicate {
			notes = append(notes, styles.Render("Warning", "duplicate"))
		}
		data = append(data, []string{
			strconv.Itoa(d.Index),
			d.Name,
			display.Size(d.Size),
			strings.Join(notes, " "),
		})
	}
	return newTable([]string{"#", "Download", "Size", ""}, data)
}

func (r *Renderer) downloadsResult(v *display.DownloadsResult) error {
	if err := r.println(styles.Render("Header", v.Dir)); err != nil {
		return err
	}
	if err := r.println(downloadTable(v.Downloads)); err != nil {
		return err
	}
	for _, set := range v.Duplicates {
		if err := r.println(styles.Render("Warning", "same content: ") + strings.Join(set, ", ")); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) commit(v *display.CommitResult) error {
	summary := fmt.Sprintf("%s %d linked, %d removed, %d overwritten, %d plugins enabled",
		styles.Render("Header", v.Game+":"), v.Applied, v.Removed, v.Overwritten, len(v.PluginOrder))
	if len(v.Failures) == 0 {
		return r.println(styles.Render("Success", "✓ ") + summary)
	}
	if err := r.println(styles.Render("Warning", "! ") + summary); err != nil {
		return err
	}
	var data [][]string
	for _, f := range v.Failures {
		data = append(data, []string{styles.Render("FilePath", f.Dest), styles.Render("Error", f.Reason)})
	}
	return r.println(newTable([]string{"Failed", "Reason"}, data))
}

func (r *Renderer) collisions(v *display.CollisionsResult) error {
	if len(v.Collisions) == 0 {
		return r.println(styles.Render("Success", v.Mod+" shares no files with other active mods"))
	}
	var data [][]string
	for _, c := range v.Collisions {
		data = append(data, []string{
			styles.Render("FilePath", c.Dest),
			strings.Join(c.Contenders, " < "),
			styles.Render("Winner", c.Winner),
		})
	}
	if err := r.println(newTable([]string{"File", "Mods (load order)", "Wins"}, data)); err != nil {
		return err
	}
	if v.Obsolete {
		return r.println(styles.Render("Warning", "every file of "+v.Mod+" is overwritten"))
	}
	return nil
}

func (r *Renderer) games(v *display.GamesResult) error {
	if len(v.Games) == 0 {
		return r.println(styles.Render("Muted", "No games configured"))
	}
	var data [][]string
	for _, g := range v.Games {
		name := g.Name
		if g.Default {
			name = styles.Render("Bold", name) + " " + styles.Render("Muted", "(default)")
		}
		data = append(data, []string{name, styles.Render("FilePath", g.Directory), g.DataDir, g.LinkMode})
	}
	return r.println(newTable([]string{"Game", "Directory", "Data", "Links"}, data))
}

func activeMark(active bool) string {
	if active {
		return styles.Render("Active", "●")
	}
	return styles.Render("Inactive", "○")
}

func newTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderHeader(false).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.GetStyle("TableHeader")
			}
			if col == 0 {
				return styles.MergeStyles("TableCell", "Index")
			}
			return styles.GetStyle("TableCell")
		})
	return t.String()
}
