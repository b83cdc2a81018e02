// Package prompt asks the user things: installer wizard choices and
// confirmations. The Console prompter draws pterm widgets; anything
// implementing Prompter can stand in for it.
package prompt

import (
	"io"
	"os"

	"github.com/arthur-debert/modlink/pkg/errors"
	"github.com/charmbracelet/glamour"
	"github.com/pterm/pterm"
)

// Prompter collects one answer per call
type Prompter interface {
	// Select picks one of options; def preselects one when not empty
	Select(title string, options []string, def string) (string, error)
	// MultiSelect picks any number of options, starting from defs
	MultiSelect(title string, options []string, defs []string) ([]string, error)
	// Confirm asks a yes or no question
	Confirm(title string, def bool) (bool, error)
	// Show displays markdown text between questions
	Show(markdown string)
}

// Console prompts on the terminal
type Console struct {
	out   io.Writer
	width int
}

// NewConsole creates a prompter that writes text to out, usually stderr
func NewConsole(out io.Writer) *Console {
	if out == nil {
		out = os.Stderr
	}
	return &Console{out: out, width: 80}
}

// Select shows an interactive single choice list
func (c *Console) Select(title string, options []string, def string) (string, error) {
	p := pterm.DefaultInteractiveSelect.WithOptions(options)
	if def != "" {
		p = p.WithDefaultOption(def)
	}
	choice, err := p.Show(title)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrWizardAbandoned, "prompt closed")
	}
	return choice, nil
}

// MultiSelect shows an interactive checklist
func (c *Console) MultiSelect(title string, options []string, defs []string) ([]string, error) {
	choices, err := pterm.DefaultInteractiveMultiselect.
		WithOptions(options).
		WithDefaultOptions(defs).
		Show(title)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrWizardAbandoned, "prompt closed")
	}
	return choices, nil
}

// Confirm asks a yes or no question
func (c *Console) Confirm(title string, def bool) (bool, error) {
	ok, err := pterm.DefaultInteractiveConfirm.WithDefaultValue(def).Show(title)
	if err != nil {
		return false, errors.Wrap(err, errors.ErrWizardAbandoned, "prompt closed")
	}
	return ok, nil
}

// Show renders markdown with glamour, falling back to the raw text
func (c *Console) Show(markdown string) {
	_, _ = io.WriteString(c.out, Markdown(markdown, c.width))
}

// Markdown renders markdown for the terminal. Rendering failures return
// the text unchanged.
func Markdown(content string, width int) string {
	options := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if width > 0 {
		options = append(options, glamour.WithWordWrap(width))
	}
	renderer, err := glamour.NewTermRenderer(options...)
	if err != nil {
		return content
	}
	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}
