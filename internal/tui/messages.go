package tui

import "github.com/Veraticus/constructo/internal/engine"

// ProgressMsg reports how many quotes have been recorded so far.
type ProgressMsg struct {
	Done  int
	Total int
}

// FinishedMsg carries the outcome of the classification goroutine.
type FinishedMsg struct {
	Result *engine.ClassifyResult
	Err    error
}
