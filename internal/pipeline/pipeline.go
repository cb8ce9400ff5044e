// Package pipeline drives one classifier over the quote column of a table and
// writes the labels back into it.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Veraticus/constructo/internal/classifier"
	"github.com/Veraticus/constructo/internal/common"
	"github.com/Veraticus/constructo/internal/dataset"
	"github.com/Veraticus/constructo/internal/model"
	"github.com/Veraticus/constructo/internal/service"
)

// State is the lifecycle stage of a pipeline.
type State int32

// Pipeline states.
const (
	StateIdle State = iota
	StateRunning
	StateCompleted
	StateInterrupted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateInterrupted:
		return "interrupted"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// JustificationSuffix is appended to the class column name to form the
// justification column.
const JustificationSuffix = "_justificativa"

// JustificationColumn returns the justification column paired with classCol.
func JustificationColumn(classCol string) string {
	return classCol + JustificationSuffix
}

// RunOptions are the optional hooks of a run.
type RunOptions struct {
	Progress        service.ProgressFunc
	ShouldInterrupt service.InterruptFunc
}

// Pipeline owns a working copy of a table and one classifier.
type Pipeline struct {
	table      *model.Table
	classifier classifier.Classifier
	logger     *slog.Logger
	quoteCol   string
	classCol   string
	durations  []time.Duration
	recorded   int
	state      atomic.Int32
}

// New prepares a pipeline over a copy of table. The class and justification
// columns are created on the first recorded row, or overwritten if present.
func New(table *model.Table, quoteCol, classCol string, c classifier.Classifier, logger *slog.Logger) (*Pipeline, error) {
	if table == nil {
		return nil, common.ErrDataNotLoaded
	}
	if !table.HasColumn(quoteCol) {
		return nil, common.ColumnNotFound(quoteCol)
	}
	if classCol == "" {
		return nil, fmt.Errorf("%w: empty classification column name", common.ErrInvalidConfig)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		table:      table.Clone(),
		classifier: c,
		logger:     logger,
		quoteCol:   quoteCol,
		classCol:   classCol,
	}, nil
}

// State returns the current lifecycle stage. Safe to call from any goroutine.
func (p *Pipeline) State() State {
	return State(p.state.Load())
}

// Table returns the working table.
func (p *Pipeline) Table() *model.Table {
	return p.table
}

// Recorded is the number of rows written by the last run.
func (p *Pipeline) Recorded() int {
	return p.recorded
}

// Durations returns the elapsed time of each recorded quote, in row order.
func (p *Pipeline) Durations() []time.Duration {
	out := make([]time.Duration, len(p.durations))
	copy(out, p.durations)
	return out
}

// Run classifies every quote, stopping before the next model call once
// ShouldInterrupt reports true or ctx is canceled. An interrupted run is not
// an error: rows recorded so far keep their labels and the rest keep their
// previous values. Classifier failures are returned with the failing row.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (*model.Table, error) {
	if !p.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return nil, fmt.Errorf("pipeline already %s", p.State())
	}

	quotes, _ := p.table.Column(p.quoteCol)
	total := len(quotes)
	justCol := JustificationColumn(p.classCol)
	p.durations = make([]time.Duration, 0, total)
	p.recorded = 0

	interrupted := func() bool {
		return ctx.Err() != nil || (opts.ShouldInterrupt != nil && opts.ShouldInterrupt())
	}

	p.logger.Info("Starting classification",
		"classifier", p.classifier.Name(),
		"quotes", total,
		"column", p.classCol)
	start := time.Now()

	err := p.classifier.Classify(ctx, quotes, func(i int, r model.Result) error {
		if interrupted() {
			return common.ErrInterrupted
		}

		p.table.SetCell(i, p.classCol, r.Label)
		p.table.SetCell(i, justCol, r.Justification)
		p.durations = append(p.durations, r.Elapsed)
		p.recorded++

		p.logger.Debug("Classified quote",
			"row", i,
			"label", r.Label,
			"elapsed", r.Elapsed)

		if opts.Progress != nil {
			opts.Progress(p.recorded, total)
		}

		if interrupted() {
			return common.ErrInterrupted
		}
		return nil
	})

	switch {
	case err == nil:
		p.state.Store(int32(StateCompleted))
		p.logger.Info("Classification complete",
			"recorded", p.recorded,
			"duration", time.Since(start))
		return p.table, nil

	case errors.Is(err, common.ErrInterrupted) || ctx.Err() != nil:
		p.state.Store(int32(StateInterrupted))
		p.logger.Warn("Classification interrupted",
			"recorded", p.recorded,
			"total", total)
		return p.table, nil

	default:
		p.state.Store(int32(StateFailed))
		return p.table, fmt.Errorf("failed to classify row %d: %w", p.recorded, err)
	}
}

// Export writes the working table to path as a spreadsheet and returns path.
func (p *Pipeline) Export(path string) (string, error) {
	if err := dataset.WriteSpreadsheet(p.table, path); err != nil {
		return "", err
	}
	p.logger.Info("Exported classification results", "path", path)
	return path, nil
}
