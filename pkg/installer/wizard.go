package installer

import (
	"strings"

	"github.com/arthur-debert/modlink/pkg/errors"
	"github.com/arthur-debert/modlink/pkg/logging"
	"github.com/rs/zerolog"
)

// Choice names one selected option, for summaries and replays
type Choice struct {
	Page   string `json:"page" yaml:"page"`
	Group  string `json:"group" yaml:"group"`
	Option string `json:"option" yaml:"option"`
}

// Wizard walks an installer Config. It is either at a page or completed;
// Back from completion returns to the last page.
type Wizard struct {
	cfg      *Config
	page     int
	history  []int
	selected [][][]bool
	seeded   []bool
	done     bool
	logger   zerolog.Logger
}

// NewWizard validates cfg and positions the wizard on the first visible
// page, seeding its defaults. A config with no visible page starts out
// completed.
func NewWizard(cfg *Config) (*Wizard, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	w := &Wizard{
		cfg:      cfg,
		selected: make([][][]bool, len(cfg.Pages)),
		seeded:   make([]bool, len(cfg.Pages)),
		logger:   logging.GetLogger("installer.wizard"),
	}
	for pi, p := range cfg.Pages {
		w.selected[pi] = make([][]bool, len(p.Groups))
		for gi, g := range p.Groups {
			w.selected[pi][gi] = make([]bool, len(g.Options))
		}
	}

	w.page = -1
	w.advance()
	return w, nil
}

// Config returns the installer being walked
func (w *Wizard) Config() *Config {
	return w.cfg
}

// Done reports whether the wizard completed
func (w *Wizard) Done() bool {
	return w.done
}

// Page returns the current page index and page. It is only meaningful
// while not Done.
func (w *Wizard) Page() (int, *Page) {
	if w.done || w.page < 0 {
		return -1, nil
	}
	return w.page, &w.cfg.Pages[w.page]
}

// History returns the pages visited before the current one
func (w *Wizard) History() []int {
	return append([]int(nil), w.history...)
}

// Flags computes the flags set by selected, visible options of the visited
// pages, in page, group and option order. A page only counts when it is
// visible under the flags of the pages before it, and its options are
// judged by those same earlier flags.
func (w *Wizard) Flags() Flags {
	return w.walk(len(w.cfg.Pages), nil)
}

// pageFlags are the flags options of the current page are judged by
func (w *Wizard) pageFlags() Flags {
	return w.walk(w.page, nil)
}

// Selected reports whether an option of the current page is selected
func (w *Wizard) Selected(group, option int) bool {
	if w.done || !w.inRange(group, option) {
		return false
	}
	return w.selected[w.page][group][option]
}

// Visible reports whether an option of the current page is visible
func (w *Wizard) Visible(group, option int) bool {
	if w.done || !w.inRange(group, option) {
		return false
	}
	return w.cfg.Pages[w.page].Groups[group].Options[option].IsVisible(w.pageFlags())
}

// OptionType returns how an option of the current page presents itself
func (w *Wizard) OptionType(group, option int) OptionType {
	if w.done || !w.inRange(group, option) {
		return TypeNotUsable
	}
	return w.cfg.Pages[w.page].Groups[group].Options[option].TypeFor(w.pageFlags())
}

// Select applies the group's selection rule to an option of the current
// page: exactly-one selects only it, at-most-one toggles it and clears the
// rest, other kinds toggle it alone. Select-all groups and required
// options do not change.
func (w *Wizard) Select(group, option int) error {
	if w.done {
		return errors.New(errors.ErrInvalidInput, "installer already completed")
	}
	if !w.inRange(group, option) {
		return errors.Newf(errors.ErrInvalidIndex, "no option %d in group %d", option, group).
			WithDetail("group", group).
			WithDetail("option", option)
	}

	flags := w.pageFlags()
	g := &w.cfg.Pages[w.page].Groups[group]
	opt := &g.Options[option]
	if !opt.IsVisible(flags) {
		return errors.Newf(errors.ErrNotFound, "option %q is not available", opt.Name).
			WithDetail("option", opt.Name)
	}

	sel := w.selected[w.page][group]
	switch g.Kind {
	case SelectAll:
		return nil
	case SelectExactlyOne:
		for i := range sel {
			sel[i] = i == option
		}
	case SelectAtMostOne:
		was := sel[option]
		for i := range sel {
			sel[i] = false
		}
		sel[option] = !was
	default:
		if sel[option] && opt.TypeFor(flags) == TypeRequired {
			return nil
		}
		sel[option] = !sel[option]
	}

	w.logger.Debug().
		Str("group", g.Name).
		Str("option", opt.Name).
		Bool("selected", sel[option]).
		Msg("selection changed")
	return nil
}

// SelectByName selects an option of the current page by group and option
// name, ignoring case. An empty group name searches every group.
func (w *Wizard) SelectByName(group, option string) error {
	if w.done {
		return errors.New(errors.ErrInvalidInput, "installer already completed")
	}
	for gi, g := range w.cfg.Pages[w.page].Groups {
		if group != "" && !strings.EqualFold(g.Name, group) {
			continue
		}
		for oi, o := range g.Options {
			if strings.EqualFold(o.Name, option) {
				return w.Select(gi, oi)
			}
		}
	}
	return errors.Newf(errors.ErrNotFound, "no option %q on page %q", option, w.cfg.Pages[w.page].Name).
		WithDetail("group", group).
		WithDetail("option", option)
}

// Next validates the current page and moves to the next visible page, or
// completes. On IncompleteSelection nothing changes.
func (w *Wizard) Next() error {
	if w.done {
		return nil
	}
	if err := w.validate(); err != nil {
		return err
	}
	w.history = append(w.history, w.page)
	w.advance()
	return nil
}

// Back returns to the previous page, keeping selections. At the first
// page it does nothing.
func (w *Wizard) Back() {
	if len(w.history) == 0 {
		return
	}
	w.page = w.history[len(w.history)-1]
	w.history = w.history[:len(w.history)-1]
	w.done = false
	w.logger.Debug().Int("page", w.page).Msg("went back")
}

// Choices lists the selected visible options of the visited pages
func (w *Wizard) Choices() []Choice {
	var out []Choice
	w.walk(len(w.cfg.Pages), func(pi, gi, oi int) {
		p := &w.cfg.Pages[pi]
		out = append(out, Choice{Page: p.Name, Group: p.Groups[gi].Name, Option: p.Groups[gi].Options[oi].Name})
	})
	return out
}

// Result resolves the completed wizard into its ordered install list
func (w *Wizard) Result() ([]Install, error) {
	if !w.done {
		return nil, errors.New(errors.ErrIncompleteSelection, "installer has not been completed")
	}
	var chosen []*Option
	flags := w.walk(len(w.cfg.Pages), func(pi, gi, oi int) {
		chosen = append(chosen, &w.cfg.Pages[pi].Groups[gi].Options[oi])
	})
	return Resolve(w.cfg, flags, chosen), nil
}

// walk visits the selected visible options of visited pages below limit
// and returns the flags they set.
func (w *Wizard) walk(limit int, fn func(pi, gi, oi int)) Flags {
	flags := Flags{}
	for _, pi := range w.visited() {
		if pi >= limit {
			break
		}
		if !Holds(w.cfg.Pages[pi].Visible, flags) {
			continue
		}
		before := copyFlags(flags)
		for gi, g := range w.cfg.Pages[pi].Groups {
			for oi := range g.Options {
				opt := &g.Options[oi]
				if !w.selected[pi][gi][oi] || !opt.IsVisible(before) {
					continue
				}
				if fn != nil {
					fn(pi, gi, oi)
				}
				for _, f := range opt.Flags {
					flags[f.Name] = f.Value
				}
			}
		}
	}
	return flags
}

func (w *Wizard) validate() error {
	flags := w.pageFlags()
	page := &w.cfg.Pages[w.page]
	for gi, g := range page.Groups {
		count := 0
		anyVisible := false
		for oi := range g.Options {
			if !g.Options[oi].IsVisible(flags) {
				continue
			}
			anyVisible = true
			if w.selected[w.page][gi][oi] {
				count++
			}
		}
		if !anyVisible {
			continue
		}
		switch {
		case g.Kind == SelectExactlyOne && count != 1:
			return errors.Newf(errors.ErrIncompleteSelection, "group %q needs exactly one selection, has %d", g.Name, count).
				WithDetail("page", page.Name).
				WithDetail("group", g.Name)
		case g.Kind == SelectAtLeastOne && count < 1:
			return errors.Newf(errors.ErrIncompleteSelection, "group %q needs at least one selection", g.Name).
				WithDetail("page", page.Name).
				WithDetail("group", g.Name)
		}
	}
	return nil
}

// advance moves to the first page after the current one that is visible
// under the current flags, seeding it on first entry, or completes.
func (w *Wizard) advance() {
	for next := w.page + 1; next < len(w.cfg.Pages); next++ {
		if !w.cfg.PageVisible(next, w.Flags()) {
			w.logger.Trace().Int("page", next).Msg("page skipped")
			continue
		}
		w.page = next
		w.seed(next)
		w.logger.Debug().Int("page", next).Str("name", w.cfg.Pages[next].Name).Msg("entered page")
		return
	}
	w.done = true
	w.logger.Debug().Int("visited", len(w.history)).Msg("installer completed")
}

// seed applies defaults the first time a page is entered: select-all
// groups select everything, required and recommended options are
// selected, and exactly-one or at-least-one groups left empty get their
// first visible option.
func (w *Wizard) seed(pi int) {
	if w.seeded[pi] {
		return
	}
	w.seeded[pi] = true

	flags := w.walk(pi, nil)
	for gi, g := range w.cfg.Pages[pi].Groups {
		sel := w.selected[pi][gi]
		first := -1
		for oi := range g.Options {
			opt := &g.Options[oi]
			if !opt.IsVisible(flags) {
				continue
			}
			if first < 0 {
				first = oi
			}
			switch opt.TypeFor(flags) {
			case TypeRequired, TypeRecommended:
				sel[oi] = true
			}
			if g.Kind == SelectAll {
				sel[oi] = true
			}
		}

		count := 0
		for _, s := range sel {
			if s {
				count++
			}
		}
		switch g.Kind {
		case SelectExactlyOne, SelectAtMostOne:
			// keep the first default only
			if count > 1 {
				seen := false
				for oi := range sel {
					if sel[oi] && seen {
						sel[oi] = false
					}
					seen = seen || sel[oi]
				}
			}
			if count == 0 && g.Kind == SelectExactlyOne && first >= 0 {
				sel[first] = true
			}
		case SelectAtLeastOne:
			if count == 0 && first >= 0 {
				sel[first] = true
			}
		}
	}
}

// visited returns history plus the current page, ascending
func (w *Wizard) visited() []int {
	pages := append([]int(nil), w.history...)
	if w.done || w.page < 0 {
		return pages
	}
	if len(pages) == 0 || pages[len(pages)-1] != w.page {
		pages = append(pages, w.page)
	}
	return pages
}

func (w *Wizard) inRange(group, option int) bool {
	if w.page < 0 || group < 0 || group >= len(w.cfg.Pages[w.page].Groups) {
		return false
	}
	return option >= 0 && option < len(w.cfg.Pages[w.page].Groups[group].Options)
}

func copyFlags(f Flags) Flags {
	out := make(Flags, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}
