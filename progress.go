package main

import (
	"os"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// ingestProgress draws a bar on stderr, or nothing when stderr is not a
// terminal.
type ingestProgress struct {
	bar *progressbar.ProgressBar
}

func newIngestProgress(total int) *ingestProgress {
	p := &ingestProgress{}
	if total <= 0 || !term.IsTerminal(int(os.Stderr.Fd())) {
		return p
	}
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("ingesting"),
		progressbar.OptionSetWidth(32),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return p
}

func (p *ingestProgress) Describe(desc string) {
	if p.bar != nil {
		p.bar.Describe(desc)
	}
}

func (p *ingestProgress) Increment() {
	if p.bar != nil {
		_ = p.bar.Add(1)
	}
}

func (p *ingestProgress) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}
