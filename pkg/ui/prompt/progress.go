package prompt

import (
	"io"

	"github.com/pterm/pterm"
)

// Progress draws a pterm progress bar for a commit. The bar starts on
// the first report, once the total is known; Stop removes it.
type Progress struct {
	out   io.Writer
	title string
	bar   *pterm.ProgressbarPrinter
}

// NewProgress creates a progress bar writing to out
func NewProgress(out io.Writer, title string) *Progress {
	return &Progress{out: out, title: title}
}

// Report is the commit engine's progress callback
func (p *Progress) Report(done, total int) {
	if total <= 0 {
		return
	}
	if p.bar == nil {
		bar, err := pterm.DefaultProgressbar.
			WithTotal(total).
			WithTitle(p.title).
			WithWriter(p.out).
			WithRemoveWhenDone(true).
			Start()
		if err != nil {
			return
		}
		p.bar = bar
	}
	if step := done - p.bar.Current; step > 0 {
		p.bar.Add(step)
	}
}

// Stop ends the bar if one was started
func (p *Progress) Stop() {
	if p.bar != nil {
		_, _ = p.bar.Stop()
		p.bar = nil
	}
}
