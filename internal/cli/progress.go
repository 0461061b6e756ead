package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"

	"github.com/Veraticus/facet-flow/internal/engine"
)

var _ engine.Observer = (*ProgressObserver)(nil)

// ProgressObserver draws a progress bar for a batch run. The bar is created on
// the first report, once the total is known.
type ProgressObserver struct {
	writer      io.Writer
	bar         *progressbar.ProgressBar
	description string
	mu          sync.Mutex
}

// NewProgressObserver creates an observer writing to w, stderr when nil.
func NewProgressObserver(w io.Writer, description string) *ProgressObserver {
	if w == nil {
		w = os.Stderr
	}
	return &ProgressObserver{writer: w, description: description}
}

// Progress moves the bar to done of total.
func (p *ProgressObserver) Progress(done, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar == nil {
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(p.writer),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionShowCount(),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetDescription("[cyan][bold]"+p.description+"[reset]"),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
			progressbar.OptionOnCompletion(func() {
				if _, err := fmt.Fprintln(p.writer); err != nil {
					slog.Warn("Failed to write newline after progress bar", "error", err)
				}
			}),
		)
	}

	if err := p.bar.Set(done); err != nil {
		slog.Debug("failed to update progress bar", "error", err)
	}
}

// Done reports whether the bar reached its total.
func (p *ProgressObserver) Done() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bar != nil && p.bar.IsFinished()
}
