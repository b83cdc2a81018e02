package commit

import (
	"sort"

	"github.com/arthur-debert/modlink/pkg/errors"
	"github.com/arthur-debert/modlink/pkg/loadorder"
)

// Collision is one destination a mod shares with other active mods
type Collision struct {
	Dest       string   `json:"dest" yaml:"dest"`
	Contenders []string `json:"contenders" yaml:"contenders"`
	Winner     string   `json:"winner" yaml:"winner"`
}

// Collisions lists the destinations an active mod shares with other active
// mods, sorted by destination.
func Collisions(order *loadorder.Order, src FileSource, mod string) ([]Collision, error) {
	m, ok := order.Mod(mod)
	if !ok {
		return nil, errors.Newf(errors.ErrNotFound, "mod %q not found", mod).WithDetail("mod", mod)
	}
	if !m.Active {
		return nil, errors.Newf(errors.ErrInvalidInput, "mod %q is not active", mod).WithDetail("mod", mod)
	}

	staging, err := Stage(order, src)
	if err != nil {
		return nil, err
	}

	var out []Collision
	for dest, cands := range staging.Conflicts() {
		if !offers(cands, mod) {
			continue
		}
		c := Collision{Dest: dest, Winner: cands[len(cands)-1].Mod}
		for _, cand := range cands {
			c.Contenders = append(c.Contenders, cand.Mod)
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Dest < out[j].Dest })
	return out, nil
}

// ObsoleteMods returns active mods that offer files but win none of them
func ObsoleteMods(order *loadorder.Order, src FileSource) ([]string, error) {
	staging, err := Stage(order, src)
	if err != nil {
		return nil, err
	}

	offered := map[string]bool{}
	winning := map[string]bool{}
	for _, e := range staging.Entries() {
		winning[e.Mod] = true
		for _, c := range staging.Candidates(e.Dest) {
			offered[c.Mod] = true
		}
	}

	var out []string
	for _, m := range order.ActiveMods() {
		if offered[m.Name] && !winning[m.Name] {
			out = append(out, m.Name)
		}
	}
	return out, nil
}

// Obsolete reports whether an active mod has every file overridden
func Obsolete(order *loadorder.Order, src FileSource, mod string) (bool, error) {
	if _, ok := order.Mod(mod); !ok {
		return false, errors.Newf(errors.ErrNotFound, "mod %q not found", mod).WithDetail("mod", mod)
	}
	obsolete, err := ObsoleteMods(order, src)
	if err != nil {
		return false, err
	}
	for _, name := range obsolete {
		if name == mod {
			return true, nil
		}
	}
	return false, nil
}

func offers(cands []Candidate, mod string) bool {
	for _, c := range cands {
		if c.Mod == mod {
			return true
		}
	}
	return false
}
