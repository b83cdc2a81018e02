// Package filter narrows the listed mods, plugins and downloads to those
// matching a set of keywords. A name matches a keyword fuzzily: the
// keyword's characters appear in order, ignoring case and accents.
package filter

import (
	"strings"

	"github.com/arthur-debert/modlink/pkg/archive"
	"github.com/arthur-debert/modlink/pkg/loadorder"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Keywords with special meaning
const (
	KeywordInstallers = "installers"
	KeywordMods       = "mods"
	KeywordPlugins    = "plugins"
	KeywordDownloads  = "downloads"
)

// Query is a list of keywords; an entry is shown when any keyword matches
type Query struct {
	Keywords []string
}

// New builds a query, dropping blank keywords
func New(keywords ...string) Query {
	var q Query
	for _, kw := range keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			q.Keywords = append(q.Keywords, kw)
		}
	}
	return q
}

// Empty reports whether the query shows everything
func (q Query) Empty() bool {
	return len(q.Keywords) == 0
}

// Result holds the shown indices of each list, ascending
type Result struct {
	Mods      []int
	Plugins   []int
	Downloads []int
}

// Apply runs the query. Plugins are only ever shown when some active mod
// provides them. A plugin also matches through the name of its owner, and
// the mods providing a shown plugin are shown with it. A lone "mods",
// "plugins" or "downloads" keyword shows just that list; "installers"
// matches mods that ship an installer.
func Apply(q Query, o *loadorder.Order, downloads []archive.Download) Result {
	if q.Empty() {
		return all(o, downloads)
	}
	if len(q.Keywords) == 1 {
		full := all(o, downloads)
		switch strings.ToLower(q.Keywords[0]) {
		case KeywordMods:
			return Result{Mods: full.Mods}
		case KeywordPlugins:
			return Result{Plugins: full.Plugins}
		case KeywordDownloads:
			return Result{Downloads: full.Downloads}
		}
	}

	var res Result
	shownMod := map[int]bool{}
	for i, m := range o.Mods() {
		if q.matchMod(m) {
			shownMod[i] = true
		}
	}

	for _, i := range o.VisibleIndices(loadorder.Plugins) {
		p := o.Plugins()[i]
		if !q.matches(p.Name) && !q.matches(p.Owner) {
			continue
		}
		res.Plugins = append(res.Plugins, i)
		for mi, m := range o.Mods() {
			if m.Provides(p.Name) {
				shownMod[mi] = true
			}
		}
	}

	for i := range o.Mods() {
		if shownMod[i] {
			res.Mods = append(res.Mods, i)
		}
	}

	for i, d := range downloads {
		if q.matches(d.Name) {
			res.Downloads = append(res.Downloads, i)
		}
	}
	return res
}

func all(o *loadorder.Order, downloads []archive.Download) Result {
	res := Result{
		Mods:    o.VisibleIndices(loadorder.Mods),
		Plugins: o.VisibleIndices(loadorder.Plugins),
	}
	for i := range downloads {
		res.Downloads = append(res.Downloads, i)
	}
	return res
}

func (q Query) matchMod(m *loadorder.Mod) bool {
	for _, kw := range q.Keywords {
		if strings.EqualFold(kw, KeywordInstallers) && m.HasInstaller {
			return true
		}
		if m.HasTag(kw) {
			return true
		}
	}
	return q.matches(m.Name)
}

func (q Query) matches(name string) bool {
	if name == "" {
		return false
	}
	for _, kw := range q.Keywords {
		if fuzzy.MatchNormalizedFold(kw, name) {
			return true
		}
	}
	return false
}
