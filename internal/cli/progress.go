package cli

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/schollz/progressbar/v3"
)

// ProgressReporter draws a progress bar for a classification run. Update
// matches service.ProgressFunc.
type ProgressReporter struct {
	writer      io.Writer
	bar         *progressbar.ProgressBar
	description string
	total       int
	mu          sync.Mutex
}

// NewProgressReporter creates a reporter writing to w. The bar is created on
// the first update, once the total is known.
func NewProgressReporter(w io.Writer, description string) *ProgressReporter {
	return &ProgressReporter{writer: w, description: description}
}

// Update moves the bar to done of total.
func (r *ProgressReporter) Update(done, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bar == nil || r.total != total {
		r.total = total
		r.bar = r.newBar(total)
	}
	if err := r.bar.Set(done); err != nil {
		slog.Warn("Failed to update progress bar", "error", err)
	}
}

// Finish completes the line so later output starts on a fresh one.
func (r *ProgressReporter) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bar == nil {
		return
	}
	if _, err := fmt.Fprintln(r.writer); err != nil {
		slog.Warn("Failed to write newline after progress bar", "error", err)
	}
	r.bar = nil
}

func (r *ProgressReporter) newBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(r.writer),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]"+r.description+"[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}
