package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/Veraticus/constructo/internal/engine"
	"github.com/Veraticus/constructo/internal/service"
	tea "github.com/charmbracelet/bubbletea"
)

// ClassifyFunc performs one classification run, reporting progress as it goes.
type ClassifyFunc func(ctx context.Context, progress service.ProgressFunc) (*engine.ClassifyResult, error)

// RunClassification drives classify in the background while the progress
// view runs in the foreground. It returns once the run has finished and the
// view has closed.
func RunClassification(ctx context.Context, classify ClassifyFunc, opts ...Option) (*engine.ClassifyResult, error) {
	if classify == nil {
		return nil, errors.New("classify function is required")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	programOpts := []tea.ProgramOption{}
	if cfg.Input != nil {
		programOpts = append(programOpts, tea.WithInput(cfg.Input))
	}
	if cfg.Output != nil {
		programOpts = append(programOpts, tea.WithOutput(cfg.Output))
	}
	if cfg.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}

	program := tea.NewProgram(NewModel(cfg, cancel), programOpts...)

	go func() {
		result, err := classify(ctx, func(done, total int) {
			program.Send(ProgressMsg{Done: done, Total: total})
		})
		program.Send(FinishedMsg{Result: result, Err: err})
	}()

	final, err := program.Run()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("TUI error: %w", err)
	}

	m, ok := final.(Model)
	if !ok {
		return nil, fmt.Errorf("unexpected TUI model %T", final)
	}
	return m.Result()
}
