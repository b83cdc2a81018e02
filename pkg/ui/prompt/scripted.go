package prompt

import (
	"strings"

	"github.com/arthur-debert/modlink/pkg/errors"
	"github.com/arthur-debert/modlink/pkg/installer"
)

// Selection is one scripted installer answer, written
// [page/][group=][!]option. A leading ! deselects the option.
type Selection struct {
	Page     string
	Group    string
	Option   string
	Deselect bool
}

// ParseSelection reads one --select value
func ParseSelection(s string) (Selection, error) {
	var sel Selection
	rest := strings.TrimSpace(s)
	if i := strings.Index(rest, "="); i >= 0 {
		scope := rest[:i]
		rest = rest[i+1:]
		if j := strings.LastIndex(scope, "/"); j >= 0 {
			sel.Page = strings.TrimSpace(scope[:j])
			scope = scope[j+1:]
		}
		sel.Group = strings.TrimSpace(scope)
	}
	if strings.HasPrefix(rest, "!") {
		sel.Deselect = true
		rest = rest[1:]
	}
	sel.Option = strings.TrimSpace(rest)
	if sel.Option == "" {
		return Selection{}, errors.Newf(errors.ErrInvalidInput, "selection %q names no option", s).
			WithDetail("selection", s)
	}
	return sel, nil
}

// ParseSelections reads every --select value
func ParseSelections(values []string) ([]Selection, error) {
	out := make([]Selection, 0, len(values))
	for _, v := range values {
		sel, err := ParseSelection(v)
		if err != nil {
			return nil, err
		}
		out = append(out, sel)
	}
	return out, nil
}

// Scripted returns a driver that applies selections on top of each
// page's defaults and moves on without asking. A selection without a
// page applies wherever its option appears. Selections that never
// matched fail the run once the wizard completes.
func Scripted(selections []Selection) func(*installer.Wizard) error {
	return func(w *installer.Wizard) error {
		used := make([]bool, len(selections))
		for !w.Done() {
			_, page := w.Page()
			for i, sel := range selections {
				if sel.Page != "" && !strings.EqualFold(sel.Page, page.Name) {
					continue
				}
				gi, oi, ok := find(page, sel)
				if !ok {
					continue
				}
				used[i] = true
				if w.Selected(gi, oi) != sel.Deselect {
					continue
				}
				if err := w.Select(gi, oi); err != nil {
					return err
				}
			}
			if err := w.Next(); err != nil {
				return err
			}
		}

		for i, sel := range selections {
			if !used[i] {
				return errors.Newf(errors.ErrNotFound, "selection %q matched no installer page", sel.String()).
					WithDetail("selection", sel.String())
			}
		}
		return nil
	}
}

func find(page *installer.Page, sel Selection) (int, int, bool) {
	for gi, g := range page.Groups {
		if sel.Group != "" && !strings.EqualFold(g.Name, sel.Group) {
			continue
		}
		for oi, o := range g.Options {
			if strings.EqualFold(o.Name, sel.Option) {
				return gi, oi, true
			}
		}
	}
	return 0, 0, false
}

func (s Selection) String() string {
	var b strings.Builder
	if s.Page != "" {
		b.WriteString(s.Page + "/")
	}
	if s.Group != "" {
		b.WriteString(s.Group + "=")
	}
	if s.Deselect {
		b.WriteString("!")
	}
	b.WriteString(s.Option)
	return b.String()
}
