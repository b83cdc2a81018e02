package installer

import (
	"sort"
	"strings"
)

// Flags holds the current flag values by name
type Flags map[string]string

// Predicate is a condition over flags
type Predicate interface {
	Eval(flags Flags) bool
	// Refs lists the flag names the predicate reads
	Refs() []string
	String() string
}

// FlagIs holds when a flag has the given value. An unset flag reads as "".
type FlagIs struct {
	Name  string
	Value string
}

func (p FlagIs) Eval(flags Flags) bool {
	return strings.EqualFold(flags[p.Name], p.Value)
}

func (p FlagIs) Refs() []string { return []string{p.Name} }

func (p FlagIs) String() string { return p.Name + "=" + p.Value }

// And holds when every child holds; an empty And holds
type And []Predicate

func (p And) Eval(flags Flags) bool {
	for _, c := range p {
		if !c.Eval(flags) {
			return false
		}
	}
	return true
}

func (p And) Refs() []string { return refs(p) }

func (p And) String() string { return join(p, " AND ") }

// Or holds when any child holds; an empty Or holds
type Or []Predicate

func (p Or) Eval(flags Flags) bool {
	if len(p) == 0 {
		return true
	}
	for _, c := range p {
		if c.Eval(flags) {
			return true
		}
	}
	return false
}

func (p Or) Refs() []string { return refs(p) }

func (p Or) String() string { return join(p, " OR ") }

// Not negates its child
type Not struct {
	Predicate Predicate
}

func (p Not) Eval(flags Flags) bool { return !p.Predicate.Eval(flags) }

func (p Not) Refs() []string { return p.Predicate.Refs() }

func (p Not) String() string { return "NOT " + p.Predicate.String() }

// Always holds. Conditions modlink cannot check, such as the presence of
// other files or the game version, are read as Always with a note.
type Always struct {
	Note string
}

func (Always) Eval(Flags) bool { return true }

func (Always) Refs() []string { return nil }

func (p Always) String() string {
	if p.Note != "" {
		return "(" + p.Note + ")"
	}
	return "true"
}

// Holds evaluates a possibly nil predicate; nil always holds
func Holds(p Predicate, flags Flags) bool {
	return p == nil || p.Eval(flags)
}

func refs[T ~[]Predicate](children T) []string {
	var out []string
	for _, c := range children {
		out = append(out, c.Refs()...)
	}
	return out
}

func join[T ~[]Predicate](children T, sep string) string {
	parts := make([]string, 0, len(children))
	for _, c := range children {
		parts = append(parts, c.String())
	}
	return "(" + strings.Join(parts, sep) + ")"
}

// Names returns the flags in sorted order, for stable output
func (f Flags) Names() []string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
