// Package display holds the view documents commands produce. Every
// renderer consumes the same documents: terminal and text lay them out,
// json and yaml encode them as they are.
package display

import (
	"sort"
	"strings"

	"github.com/arthur-debert/modlink/pkg/archive"
	"github.com/arthur-debert/modlink/pkg/commit"
	"github.com/arthur-debert/modlink/pkg/config"
	"github.com/arthur-debert/modlink/pkg/filter"
	"github.com/arthur-debert/modlink/pkg/loadorder"
)

// Installer states of a mod row
const (
	InstallerNone         = ""
	InstallerUnconfigured = "unconfigured"
	InstallerConfigured   = "configured"
)

// CommandResult pairs an optional message with the document it precedes:
//
//	<Optional Message>
//	<document>
type CommandResult struct {
	Message string      `json:"message,omitempty" yaml:"message,omitempty"`
	Result  interface{} `json:"result,omitempty" yaml:"result,omitempty"`
}

// ModRow is one line of the mod table
type ModRow struct {
	Index     int      `json:"index" yaml:"index"`
	Name      string   `json:"name" yaml:"name"`
	Active    bool     `json:"active" yaml:"active"`
	Tags      []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Plugins   int      `json:"plugins" yaml:"plugins"`
	Installer string   `json:"installer,omitempty" yaml:"installer,omitempty"`
}

// PluginRow is one line of the plugin table
type PluginRow struct {
	Index   int    `json:"index" yaml:"index"`
	Name    string `json:"name" yaml:"name"`
	Active  bool   `json:"active" yaml:"active"`
	// Enabled is Active and owned by an active mod: what the game loads
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Owner   string `json:"owner" yaml:"owner"`
}

// DownloadRow is one line of the downloads table
type DownloadRow struct {
	Index     int    `json:"index" yaml:"index"`
	Name      string `json:"name" yaml:"name"`
	Size      int64  `json:"size" yaml:"size"`
	Format    string `json:"format" yaml:"format"`
	Supported bool   `json:"supported" yaml:"supported"`
	Digest    string `json:"digest,omitempty" yaml:"digest,omitempty"`
	Duplicate bool   `json:"duplicate,omitempty" yaml:"duplicate,omitempty"`
}

// ListResult is the document of `list`
type ListResult struct {
	Game      string        `json:"game" yaml:"game"`
	Pending   bool          `json:"pending" yaml:"pending"`
	// Sections names what the rows were filtered to; empty sections are
	// still listed so renderers can say so.
	Sections  []string      `json:"sections" yaml:"sections"`
	Mods      []ModRow      `json:"mods" yaml:"mods"`
	Plugins   []PluginRow   `json:"plugins" yaml:"plugins"`
	Downloads []DownloadRow `json:"downloads" yaml:"downloads"`
}

// CommitResult is the document of `commit`
type CommitResult struct {
	Game        string           `json:"game" yaml:"game"`
	Applied     int              `json:"applied" yaml:"applied"`
	Removed     int              `json:"removed" yaml:"removed"`
	Overwritten int              `json:"overwritten" yaml:"overwritten"`
	PluginOrder []string         `json:"pluginOrder" yaml:"pluginOrder"`
	Failures    []commit.Failure `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// CollisionsResult is the document of `collisions`
type CollisionsResult struct {
	Mod        string             `json:"mod" yaml:"mod"`
	Collisions []commit.Collision `json:"collisions" yaml:"collisions"`
	// Obsolete is set when every file of the mod is overwritten
	Obsolete   bool               `json:"obsolete" yaml:"obsolete"`
}

// DownloadsResult is the document of `downloads`
type DownloadsResult struct {
	Dir        string        `json:"dir" yaml:"dir"`
	Downloads  []DownloadRow `json:"downloads" yaml:"downloads"`
	Duplicates [][]string    `json:"duplicates,omitempty" yaml:"duplicates,omitempty"`
}

// GameRow is one configured game
type GameRow struct {
	Name       string `json:"name" yaml:"name"`
	Directory  string `json:"directory" yaml:"directory"`
	DataDir    string `json:"dataDir" yaml:"dataDir"`
	PluginFile string `json:"pluginFile" yaml:"pluginFile"`
	LinkMode   string `json:"linkMode" yaml:"linkMode"`
	Default    bool   `json:"default" yaml:"default"`
}

// GamesResult is the document of `games`
type GamesResult struct {
	Games []GameRow `json:"games" yaml:"games"`
}

// InstallResult is the document of `install` and `configure`
type InstallResult struct {
	Mod        string   `json:"mod" yaml:"mod"`
	Files      int      `json:"files" yaml:"files"`
	Installer  bool     `json:"installer" yaml:"installer"`
	// Configured is set once the installer ran; Files then counts its output
	Configured bool     `json:"configured" yaml:"configured"`
	Choices    []string `json:"choices,omitempty" yaml:"choices,omitempty"`
}

// NewModRow builds the row of a load order entry
func NewModRow(m *loadorder.Mod) ModRow {
	row := ModRow{
		Index:   m.Index,
		Name:    m.Name,
		Active:  m.Active,
		Tags:    m.Tags,
		Plugins: len(m.Plugins),
	}
	switch {
	case m.HasInstaller && m.Configured:
		row.Installer = InstallerConfigured
	case m.HasInstaller:
		row.Installer = InstallerUnconfigured
	}
	return row
}

// NewDownloadRow builds the row of a download
func NewDownloadRow(index int, d archive.Download) DownloadRow {
	return DownloadRow{
		Index:     index,
		Name:      d.Name,
		Size:      d.Size,
		Format:    string(d.Format),
		Supported: d.Supported(),
		Digest:    d.Digest,
	}
}

// NewListResult lays out the entries a filter result selected
func NewListResult(game string, pending bool, o *loadorder.Order, downloads []archive.Download, q filter.Query, res filter.Result) *ListResult {
	out := &ListResult{
		Game:      game,
		Pending:   pending,
		Sections:  sections(q),
		Mods:      []ModRow{},
		Plugins:   []PluginRow{},
		Downloads: []DownloadRow{},
	}

	mods := o.Mods()
	for _, i := range res.Mods {
		out.Mods = append(out.Mods, NewModRow(mods[i]))
	}
	plugins := o.Plugins()
	for _, i := range res.Plugins {
		p := plugins[i]
		out.Plugins = append(out.Plugins, PluginRow{
			Index:   p.Index,
			Name:    p.Name,
			Active:  p.Active,
			Enabled: o.EffectiveActive(p),
			Owner:   p.Owner,
		})
	}
	for _, i := range res.Downloads {
		out.Downloads = append(out.Downloads, NewDownloadRow(i, downloads[i]))
	}
	return out
}

// sections are the components a query restricts the listing to
func sections(q filter.Query) []string {
	if len(q.Keywords) == 1 {
		switch kw := strings.ToLower(q.Keywords[0]); kw {
		case filter.KeywordMods, filter.KeywordPlugins, filter.KeywordDownloads:
			return []string{kw}
		}
	}
	return []string{filter.KeywordMods, filter.KeywordPlugins, filter.KeywordDownloads}
}

// NewCommitResult summarizes a commit
func NewCommitResult(game string, r *commit.Result) *CommitResult {
	out := &CommitResult{
		Game:        game,
		Applied:     len(r.Applied),
		Removed:     r.Removed,
		PluginOrder: r.PluginOrder,
		Failures:    r.Failures,
	}
	for _, cands := range r.Conflicts {
		if len(cands) > 1 {
			out.Overwritten++
		}
	}
	if out.PluginOrder == nil {
		out.PluginOrder = []string{}
	}
	return out
}

// NewDownloadsResult lists downloads and flags those sharing a digest
func NewDownloadsResult(dir string, downloads []archive.Download, duplicates [][]string) *DownloadsResult {
	dup := map[string]bool{}
	for _, set := range duplicates {
		for _, name := range set {
			dup[name] = true
		}
	}
	out := &DownloadsResult{Dir: dir, Downloads: []DownloadRow{}, Duplicates: duplicates}
	for i, d := range downloads {
		row := NewDownloadRow(i, d)
		row.Duplicate = dup[d.Name]
		out.Downloads = append(out.Downloads, row)
	}
	return out
}

// NewGamesResult lists the configured games
func NewGamesResult(cfg *config.Config) *GamesResult {
	out := &GamesResult{Games: []GameRow{}}
	for _, name := range cfg.GameNames() {
		g := cfg.Games[name]
		out.Games = append(out.Games, GameRow{
			Name:       name,
			Directory:  g.Directory,
			DataDir:    g.DataDir,
			PluginFile: g.PluginFile,
			LinkMode:   string(cfg.LinkModeFor(g)),
			Default:    name == cfg.DefaultGame,
		})
	}
	sort.SliceStable(out.Games, func(i, j int) bool { return out.Games[i].Name < out.Games[j].Name })
	return out
}
