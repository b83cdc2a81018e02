package commit

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/modlink/pkg/library"
	"github.com/arthur-debert/modlink/pkg/loadorder"
	"github.com/arthur-debert/modlink/pkg/logging"
)

// Ignored names never take part in staging, wherever they appear in a path
var Ignored = []string{".git", "fomod", "LICENSE", "README.md"}

// FileSource lists the files of a mod by name
type FileSource interface {
	Files(mod string) ([]library.File, error)
}

// Candidate is one mod offering a file for a destination
type Candidate struct {
	Mod    string `json:"mod" yaml:"mod"`
	Source string `json:"source" yaml:"source"`
}

// Entry is the winning candidate of one destination
type Entry struct {
	Dest   string `json:"dest" yaml:"dest"`
	Source string `json:"source" yaml:"source"`
	Mod    string `json:"mod" yaml:"mod"`
}

// Staging maps destinations to winners. Destinations compare without
// regard to case; each directory keeps the spelling it was first seen with.
type Staging struct {
	entries    map[string]*Entry
	candidates map[string][]Candidate
	spelling   map[string]string
}

// Stage resolves the active mods of order, lowest index first, so the last
// writer of a destination wins.
func Stage(order *loadorder.Order, src FileSource) (*Staging, error) {
	logger := logging.GetLogger("commit.stage")

	s := &Staging{
		entries:    map[string]*Entry{},
		candidates: map[string][]Candidate{},
		spelling:   map[string]string{},
	}

	for _, mod := range order.ActiveMods() {
		files, err := src.Files(mod.Name)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if isIgnored(f.Dest) {
				logger.Trace().Str("mod", mod.Name).Str("dest", f.Dest).Msg("ignored file skipped")
				continue
			}
			dest := s.canonical(f.Dest)
			key := strings.ToLower(dest)
			s.candidates[key] = append(s.candidates[key], Candidate{Mod: mod.Name, Source: f.Source})
			s.entries[key] = &Entry{Dest: dest, Source: f.Source, Mod: mod.Name}
		}
	}

	logger.Debug().
		Int("entries", len(s.entries)).
		Int("conflicts", len(s.Conflicts())).
		Msg("staging complete")
	return s, nil
}

// canonical respells every directory of dest the way it was first staged
func (s *Staging) canonical(dest string) string {
	parts := strings.Split(filepath.Clean(dest), string(filepath.Separator))
	prefix := ""
	for i := 0; i < len(parts)-1; i++ {
		key := strings.ToLower(filepath.Join(prefix, parts[i]))
		if spelled, ok := s.spelling[key]; ok {
			parts[i] = filepath.Base(spelled)
		} else {
			s.spelling[key] = filepath.Join(prefix, parts[i])
		}
		prefix = filepath.Join(prefix, parts[i])
	}
	return filepath.Join(parts...)
}

// Len returns the number of staged destinations
func (s *Staging) Len() int {
	return len(s.entries)
}

// Entries returns winners sorted by destination
func (s *Staging) Entries() []Entry {
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Dest < out[j].Dest })
	return out
}

// Winner returns the entry for dest, matched without regard to case
func (s *Staging) Winner(dest string) (Entry, bool) {
	e, ok := s.entries[strings.ToLower(filepath.Clean(dest))]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Conflicts lists every destination offered by more than one mod, with
// all candidates in staging order. The last candidate is the winner.
func (s *Staging) Conflicts() map[string][]Candidate {
	out := map[string][]Candidate{}
	for key, cands := range s.candidates {
		if len(cands) > 1 {
			out[s.entries[key].Dest] = append([]Candidate(nil), cands...)
		}
	}
	return out
}

// Candidates returns every mod offering dest, in staging order
func (s *Staging) Candidates(dest string) []Candidate {
	return s.candidates[strings.ToLower(filepath.Clean(dest))]
}

func isIgnored(dest string) bool {
	for _, part := range strings.Split(filepath.Clean(dest), string(filepath.Separator)) {
		for _, ign := range Ignored {
			if strings.EqualFold(part, ign) {
				return true
			}
		}
	}
	return false
}
