// Package service defines the contracts shared between application services.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/Veraticus/constructo/internal/model"
)

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	// Logger receives retry warnings; nil means slog.Default().
	Logger *slog.Logger
}

// ProgressFunc is invoked after each recorded quote with the number of recorded
// rows and the total number of quotes in the run.
type ProgressFunc func(done, total int)

// InterruptFunc reports whether the user asked the current run to stop.
type InterruptFunc func() bool

// TableWriter mirrors a result table to an external spreadsheet service.
type TableWriter interface {
	WriteTable(ctx context.Context, title string, table *model.Table) (string, error)
}
