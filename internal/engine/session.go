package engine

import (
	"sync/atomic"
	"time"

	"github.com/Veraticus/constructo/internal/construct"
	"github.com/Veraticus/constructo/internal/dataset"
	"github.com/Veraticus/constructo/internal/model"
	"github.com/google/uuid"
)

// Session is the state of one user's working session: the loaded constructs
// and quotes, the research scope, the few-shot examples and the interruption
// flag. The flag may be set from any goroutine; everything else belongs to
// the goroutine driving the controller.
type Session struct {
	StartedAt  time.Time
	Constructs *construct.Store
	Dataset    *dataset.Store
	ID         string
	Scope      string
	Examples   []model.Example
	interrupt  atomic.Bool
}

// NewSession starts an empty session.
func NewSession() *Session {
	return &Session{
		ID:         uuid.NewString(),
		StartedAt:  time.Now(),
		Constructs: construct.NewStore(),
		Dataset:    dataset.NewStore(),
	}
}

// RequestInterrupt asks the running classification to stop before its next quote.
func (s *Session) RequestInterrupt() {
	s.interrupt.Store(true)
}

// ResetInterrupt clears a previous interruption request.
func (s *Session) ResetInterrupt() {
	s.interrupt.Store(false)
}

// ShouldInterrupt reports whether an interruption was requested.
func (s *Session) ShouldInterrupt() bool {
	return s.interrupt.Load()
}

// Reset clears all session state and assigns a new ID.
func (s *Session) Reset() {
	s.Constructs.Reset()
	s.Dataset.Reset()
	s.Scope = ""
	s.Examples = nil
	s.interrupt.Store(false)
	s.ID = uuid.NewString()
	s.StartedAt = time.Now()
}
