package main

import (
	"io"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
)

// barProgress draws one progress bar per archive on an interactive terminal.
type barProgress struct {
	writer io.Writer
	bar    *progressbar.ProgressBar
}

func newBarProgress(w io.Writer) *barProgress {
	return &barProgress{writer: w}
}

func (p *barProgress) Start(archive string, entries int) {
	p.bar = progressbar.NewOptions(entries,
		progressbar.OptionSetWriter(p.writer),
		progressbar.OptionSetDescription(filepath.Base(archive)),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

func (p *barProgress) Advance(string) {
	if p.bar != nil {
		_ = p.bar.Add(1)
	}
}

func (p *barProgress) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
		p.bar = nil
	}
}
