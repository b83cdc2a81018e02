package display

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// TextRenderer lays documents out as plain, tab-aligned text
type TextRenderer struct {
	writer io.Writer
}

// NewTextRenderer creates a new text renderer
func NewTextRenderer(w io.Writer) *TextRenderer {
	return &TextRenderer{
		writer: w,
	}
}

// Render writes a document. Types it does not know are printed as Go
// values.
func (r *TextRenderer) Render(result interface{}) error {
	switch v := result.(type) {
	case *CommandResult:
		if v.Message != "" {
			if _, err := fmt.Fprintln(r.writer, v.Message); err != nil {
				return err
			}
		}
		if v.Result == nil {
			return nil
		}
		if v.Message != "" {
			if _, err := fmt.Fprintln(r.writer); err != nil {
				return err
			}
		}
		return r.Render(v.Result)
	case *ListResult:
		return r.list(v)
	case *CommitResult:
		return r.commit(v)
	case *CollisionsResult:
		return r.collisions(v)
	case *DownloadsResult:
		return r.downloads(v.Downloads, v.Duplicates)
	case *GamesResult:
		return r.games(v)
	case *InstallResult:
		return r.install(v)
	default:
		_, err := fmt.Fprintf(r.writer, "%+v\n", result)
		return err
	}
}

func (r *TextRenderer) list(v *ListResult) error {
	header := v.Game
	if v.Pending {
		header += " (uncommitted changes)"
	}
	if _, err := fmt.Fprintln(r.writer, header); err != nil {
		return err
	}
	for _, section := range v.Sections {
		if _, err := fmt.Fprintf(r.writer, "\n%s:\n", section); err != nil {
			return err
		}
		var err error
		switch section {
		case "mods":
			err = r.mods(v.Mods)
		case "plugins":
			err = r.plugins(v.Plugins)
		case "downloads":
			err = r.downloads(v.Downloads, nil)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *TextRenderer) mods(rows []ModRow) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(r.writer, "    none")
		return err
	}
	tw := tabwriter.NewWriter(r.writer, 0, 4, 2, ' ', 0)
	for _, m := range rows {
		var notes []string
		if m.Installer != InstallerNone {
			notes = append(notes, m.Installer)
		}
		if len(m.Tags) > 0 {
			notes = append(notes, "tags="+strings.Join(m.Tags, ","))
		}
		fmt.Fprintf(tw, "    %d\t%s\t%s\t%s\n", m.Index, Check(m.Active), m.Name, strings.Join(notes, " "))
	}
	return tw.Flush()
}

func (r *TextRenderer) plugins(rows []PluginRow) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(r.writer, "    none")
		return err
	}
	tw := tabwriter.NewWriter(r.writer, 0, 4, 2, ' ', 0)
	for _, p := range rows {
		fmt.Fprintf(tw, "    %d\t%s\t%s\t(%s)\n", p.Index, Check(p.Active), p.Name, p.Owner)
	}
	return tw.Flush()
}

func (r *TextRenderer) downloads(rows []DownloadRow, duplicates [][]string) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(r.writer, "    none")
		return err
	}
	tw := tabwriter.NewWriter(r.writer, 0, 4, 2, ' ', 0)
	for _, d := range rows {
		var notes []string
		if !d.Supported {
			notes = append(notes, "unsupported")
		}
		if d.Duplicate {
			notes = append(notes, "duplicate")
		}
		fmt.Fprintf(tw, "    %d\t%s\t%s\t%s\n", d.Index, d.Name, Size(d.Size), strings.Join(notes, " "))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, set := range duplicates {
		if _, err := fmt.Fprintf(r.writer, "same content: %s\n", strings.Join(set, ", ")); err != nil {
			return err
		}
	}
	return nil
}

func (r *TextRenderer) commit(v *CommitResult) error {
	if _, err := fmt.Fprintf(r.writer, "%s: %d linked, %d removed, %d overwritten, %d plugins enabled\n",
		v.Game, v.Applied, v.Removed, v.Overwritten, len(v.PluginOrder)); err != nil {
		return err
	}
	for _, f := range v.Failures {
		if _, err := fmt.Fprintf(r.writer, "failed: %s: %s\n", f.Dest, f.Reason); err != nil {
			return err
		}
	}
	return nil
}

func (r *TextRenderer) collisions(v *CollisionsResult) error {
	if len(v.Collisions) == 0 {
		_, err := fmt.Fprintf(r.writer, "%s shares no files with other active mods\n", v.Mod)
		return err
	}
	tw := tabwriter.NewWriter(r.writer, 0, 4, 2, ' ', 0)
	for _, c := range v.Collisions {
		fmt.Fprintf(tw, "%s\t%s\twins: %s\n", c.Dest, strings.Join(c.Contenders, " < "), c.Winner)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if v.Obsolete {
		_, err := fmt.Fprintf(r.writer, "every file of %s is overwritten\n", v.Mod)
		return err
	}
	return nil
}

func (r *TextRenderer) games(v *GamesResult) error {
	if len(v.Games) == 0 {
		_, err := fmt.Fprintln(r.writer, "No games configured")
		return err
	}
	tw := tabwriter.NewWriter(r.writer, 0, 4, 2, ' ', 0)
	for _, g := range v.Games {
		name := g.Name
		if g.Default {
			name += " (default)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", name, g.Directory, g.LinkMode)
	}
	return tw.Flush()
}

func (r *TextRenderer) install(v *InstallResult) error {
	if _, err := fmt.Fprintf(r.writer, "%s: %d files\n", v.Mod, v.Files); err != nil {
		return err
	}
	if len(v.Choices) > 0 {
		if _, err := fmt.Fprintf(r.writer, "choices: %s\n", strings.Join(v.Choices, ", ")); err != nil {
			return err
		}
	}
	if v.Installer && !v.Configured {
		_, err := fmt.Fprintf(r.writer, "%s ships an installer; run configure before activating it\n", v.Mod)
		return err
	}
	return nil
}

// Check is the activation column of plain listings
func Check(active bool) string {
	if active {
		return "[x]"
	}
	return "[ ]"
}

// Size formats a byte count for listings
func Size(bytes int64) string {
	const (
		KB = 1024
		MB = 1024 * KB
		GB = 1024 * MB
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
