package overlay

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// TerminalPresenter renders the overlay as a spinner line on a terminal.
type TerminalPresenter struct {
	out io.Writer
	bar *progressbar.ProgressBar
}

// NewTerminalPresenter writes to out, or stderr when out is nil.
func NewTerminalPresenter(out io.Writer) *TerminalPresenter {
	if out == nil {
		out = os.Stderr
	}
	return &TerminalPresenter{out: out}
}

func (p *TerminalPresenter) Show(text string) {
	p.Hide()
	p.bar = progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionSetDescription(text),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	_ = p.bar.RenderBlank()
}

func (p *TerminalPresenter) SetText(text string) {
	if p.bar == nil {
		p.Show(text)
		return
	}
	p.bar.Describe(text)
	_ = p.bar.Add(1)
}

func (p *TerminalPresenter) ShowError(description string) {
	if p.bar != nil {
		_ = p.bar.Clear()
	}
	fmt.Fprintf(p.out, "\r❌ %s\n", description)
}

func (p *TerminalPresenter) Hide() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
	p.bar = nil
}
