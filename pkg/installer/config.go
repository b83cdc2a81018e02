package installer

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/modlink/pkg/errors"
)

// GroupKind is the selection rule of a group
type GroupKind int

const (
	SelectExactlyOne GroupKind = iota
	SelectAtMostOne
	SelectAtLeastOne
	SelectAny
	// SelectAll forces every option selected
	SelectAll
)

var groupKindNames = map[GroupKind]string{
	SelectExactlyOne: "SelectExactlyOne",
	SelectAtMostOne:  "SelectAtMostOne",
	SelectAtLeastOne: "SelectAtLeastOne",
	SelectAny:        "SelectAny",
	SelectAll:        "SelectAll",
}

func (k GroupKind) String() string {
	if name, ok := groupKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("GroupKind(%d)", int(k))
}

// ParseGroupKind reads a FOMOD group type
func ParseGroupKind(s string) (GroupKind, error) {
	for kind, name := range groupKindNames {
		if strings.EqualFold(name, s) {
			return kind, nil
		}
	}
	return 0, errors.Newf(errors.ErrInvalidInstallerConfig, "unknown group type %q", s)
}

// OptionType is how an option presents itself under the current flags
type OptionType string

const (
	TypeRequired      OptionType = "Required"
	TypeRecommended   OptionType = "Recommended"
	TypeOptional      OptionType = "Optional"
	TypeCouldBeUsable OptionType = "CouldBeUsable"
	TypeNotUsable     OptionType = "NotUsable"
)

// ParseOptionType reads a FOMOD plugin type name
func ParseOptionType(s string) (OptionType, error) {
	for _, t := range []OptionType{TypeRequired, TypeRecommended, TypeOptional, TypeCouldBeUsable, TypeNotUsable} {
		if strings.EqualFold(string(t), s) {
			return t, nil
		}
	}
	return "", errors.Newf(errors.ErrInvalidInstallerConfig, "unknown plugin type %q", s)
}

// Install copies Source (relative to the installer root) to Destination
// (relative to the mod's output). Folder installs copy everything below.
type Install struct {
	Source      string
	Destination string
	Folder      bool
	Priority    int
}

// Flag is one flag assignment
type Flag struct {
	Name  string
	Value string
}

// TypeRule switches an option's type while When holds
type TypeRule struct {
	When Predicate
	Type OptionType
}

// Option is one choice of a group
type Option struct {
	Name        string
	Description string
	Image       string
	// Type applies when no rule matches
	Type  OptionType
	Rules []TypeRule
	// Visible hides the option while false; nil is always visible
	Visible  Predicate
	Flags    []Flag
	Installs []Install
}

// TypeFor returns the option type under flags: the first matching rule,
// else the default type.
func (o *Option) TypeFor(flags Flags) OptionType {
	for _, r := range o.Rules {
		if Holds(r.When, flags) {
			return r.Type
		}
	}
	if o.Type == "" {
		return TypeOptional
	}
	return o.Type
}

// IsVisible reports whether the option can be seen and picked
func (o *Option) IsVisible(flags Flags) bool {
	return Holds(o.Visible, flags) && o.TypeFor(flags) != TypeNotUsable
}

// Group is a set of options sharing a selection rule
type Group struct {
	Name    string
	Kind    GroupKind
	Options []Option
}

// Page is one wizard step
type Page struct {
	Name    string
	Visible Predicate
	Groups  []Group
}

// ConditionalInstall applies its installs when When holds after the
// wizard completes.
type ConditionalInstall struct {
	When     Predicate
	Installs []Install
}

// Config is a complete installer description
type Config struct {
	Name        string
	Image       string
	Required    []Install
	Pages       []Page
	Conditional []ConditionalInstall
}

// OptionsVisible returns the visible options of a page, group by group
func (c *Config) OptionsVisible(page int, flags Flags) []*Option {
	if page < 0 || page >= len(c.Pages) {
		return nil
	}
	var out []*Option
	for gi := range c.Pages[page].Groups {
		g := &c.Pages[page].Groups[gi]
		for oi := range g.Options {
			if g.Options[oi].IsVisible(flags) {
				out = append(out, &g.Options[oi])
			}
		}
	}
	return out
}

// PageVisible reports whether a page would be shown under flags: its own
// predicate holds and at least one option is visible.
func (c *Config) PageVisible(page int, flags Flags) bool {
	if page < 0 || page >= len(c.Pages) {
		return false
	}
	return Holds(c.Pages[page].Visible, flags) && len(c.OptionsVisible(page, flags)) > 0
}

// Validate reports every structural problem as one InvalidInstallerConfig
func (c *Config) Validate() error {
	var problems []string
	add := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if strings.TrimSpace(c.Name) == "" {
		add("installer has no name")
	}

	set := map[string]bool{}
	for _, p := range c.Pages {
		for _, g := range p.Groups {
			for _, o := range g.Options {
				for _, f := range o.Flags {
					set[f.Name] = true
				}
			}
		}
	}

	checkRefs := func(where string, pred Predicate) {
		if pred == nil {
			return
		}
		for _, name := range pred.Refs() {
			if !set[name] {
				add("%s references flag %q that no option sets", where, name)
			}
		}
	}

	for pi, p := range c.Pages {
		where := fmt.Sprintf("page %d (%s)", pi+1, p.Name)
		checkRefs(where, p.Visible)
		if len(p.Groups) == 0 {
			add("%s has no groups", where)
		}
		for _, g := range p.Groups {
			gwhere := fmt.Sprintf("%s group %q", where, g.Name)
			if _, ok := groupKindNames[g.Kind]; !ok {
				add("%s has unknown kind %d", gwhere, int(g.Kind))
			}
			if len(g.Options) == 0 {
				add("%s has no options", gwhere)
			}
			seen := map[string]bool{}
			for _, o := range g.Options {
				owhere := fmt.Sprintf("%s option %q", gwhere, o.Name)
				if seen[o.Name] {
					add("%s is listed twice", owhere)
				}
				seen[o.Name] = true
				checkRefs(owhere, o.Visible)
				for _, r := range o.Rules {
					checkRefs(owhere, r.When)
				}
				for _, in := range o.Installs {
					if in.Source == "" {
						add("%s has an install without source", owhere)
					}
				}
			}
		}
	}

	for i, ci := range c.Conditional {
		checkRefs(fmt.Sprintf("conditional install %d", i+1), ci.When)
	}

	if len(problems) > 0 {
		return errors.Newf(errors.ErrInvalidInstallerConfig, "invalid installer %q: %s", c.Name, strings.Join(problems, "; ")).
			WithDetail("problems", problems)
	}
	return nil
}
