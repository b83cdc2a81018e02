package prompt

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/modlink/pkg/errors"
	"github.com/arthur-debert/modlink/pkg/installer"
	"github.com/arthur-debert/modlink/pkg/logging"
)

// Navigation choices offered after each page
const (
	navNext    = "Next"
	navBack    = "Back"
	navAbandon = "Abandon"
	noneOption = "(none)"
)

// Wizard returns a driver that walks an installer with p. The user
// confirms the resulting choices before the wizard counts as completed;
// declining goes back to the last page.
func Wizard(p Prompter) func(*installer.Wizard) error {
	return func(w *installer.Wizard) error {
		logger := logging.GetLogger("ui.prompt")
		if name := w.Config().Name; name != "" {
			p.Show("# " + name)
		}
		for {
			if w.Done() {
				if len(w.Choices()) == 0 {
					return nil
				}
				p.Show(summary(w.Choices()))
				ok, err := p.Confirm("Install with these choices?", true)
				if err != nil {
					return err
				}
				if ok {
					return nil
				}
				w.Back()
				continue
			}

			_, page := w.Page()
			p.Show("## " + page.Name)
			for gi := range page.Groups {
				if err := askGroup(p, w, gi); err != nil {
					return err
				}
			}

			nav := []string{navNext}
			if len(w.History()) > 0 {
				nav = append(nav, navBack)
			}
			nav = append(nav, navAbandon)
			choice, err := p.Select(page.Name, nav, navNext)
			if err != nil {
				return err
			}
			switch choice {
			case navBack:
				w.Back()
			case navAbandon:
				return errors.New(errors.ErrWizardAbandoned, "installer abandoned")
			default:
				if err := w.Next(); err != nil {
					if !errors.IsErrorCode(err, errors.ErrIncompleteSelection) {
						return err
					}
					logger.Debug().Err(err).Msg("page incomplete")
					group, _ := errors.GetErrorDetails(err)["group"].(string)
					p.Show("**" + group + "** needs a different selection.")
				}
			}
		}
	}
}

// askGroup asks for the selection of one group of the current page and
// applies it through the wizard, so group rules hold.
func askGroup(p Prompter, w *installer.Wizard, gi int) error {
	_, page := w.Page()
	group := page.Groups[gi]

	labels, index := optionLabels(w, gi)
	if len(labels) == 0 {
		return nil
	}
	p.Show(describe(w, gi))

	if group.Kind == installer.SelectAll {
		return nil
	}

	var current []string
	for _, label := range labels {
		if w.Selected(gi, index[label]) {
			current = append(current, label)
		}
	}

	switch group.Kind {
	case installer.SelectExactlyOne, installer.SelectAtMostOne:
		options := labels
		def := ""
		if len(current) > 0 {
			def = current[0]
		}
		if group.Kind == installer.SelectAtMostOne {
			options = append([]string{noneOption}, labels...)
			if def == "" {
				def = noneOption
			}
		}
		choice, err := p.Select(group.Name, options, def)
		if err != nil {
			return err
		}
		if choice == noneOption {
			for _, label := range current {
				if err := w.Select(gi, index[label]); err != nil {
					return err
				}
			}
			return nil
		}
		if !w.Selected(gi, index[choice]) {
			return w.Select(gi, index[choice])
		}
		return nil
	default:
		chosen, err := p.MultiSelect(group.Name, labels, current)
		if err != nil {
			return err
		}
		want := map[string]bool{}
		for _, label := range chosen {
			want[label] = true
		}
		for _, label := range labels {
			oi := index[label]
			if want[label] != w.Selected(gi, oi) {
				if err := w.Select(gi, oi); err != nil {
					return err
				}
			}
		}
		return nil
	}
}

// optionLabels names the visible options of a group, unique within it
func optionLabels(w *installer.Wizard, gi int) ([]string, map[string]int) {
	_, page := w.Page()
	var labels []string
	index := map[string]int{}
	for oi, o := range page.Groups[gi].Options {
		if !w.Visible(gi, oi) {
			continue
		}
		label := o.Name
		for n := 2; ; n++ {
			if _, taken := index[label]; !taken {
				break
			}
			label = fmt.Sprintf("%s (%d)", o.Name, n)
		}
		labels = append(labels, label)
		index[label] = oi
	}
	return labels, index
}

// describe lists a group's visible options with their descriptions
func describe(w *installer.Wizard, gi int) string {
	_, page := w.Page()
	group := page.Groups[gi]

	var b strings.Builder
	fmt.Fprintf(&b, "### %s\n\n", group.Name)
	for oi := range group.Options {
		if !w.Visible(gi, oi) {
			continue
		}
		o := &group.Options[oi]
		fmt.Fprintf(&b, "- **%s**", o.Name)
		if t := w.OptionType(gi, oi); t == installer.TypeRequired || t == installer.TypeRecommended {
			fmt.Fprintf(&b, " _(%s)_", strings.ToLower(string(t)))
		}
		if desc := strings.TrimSpace(o.Description); desc != "" {
			fmt.Fprintf(&b, ": %s", strings.ReplaceAll(desc, "\n", " "))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func summary(choices []installer.Choice) string {
	var b strings.Builder
	b.WriteString("### Your choices\n\n")
	for _, c := range choices {
		fmt.Fprintf(&b, "- %s / %s: **%s**\n", c.Page, c.Group, c.Option)
	}
	return b.String()
}
