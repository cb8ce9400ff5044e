package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// InterruptHandler turns Ctrl+C into a cooperative stop request. The first
// signal calls the stop hook so the run ends after the current quote; a
// second signal cancels the context outright.
type InterruptHandler struct {
	writer     io.Writer
	onStop     func()
	cancelFunc context.CancelFunc
	signals    int
	mu         sync.Mutex
}

// NewInterruptHandler creates a handler that reports to writer (stdout when
// nil) and calls onStop on the first interrupt.
func NewInterruptHandler(writer io.Writer, onStop func()) *InterruptHandler {
	if writer == nil {
		writer = os.Stdout
	}
	return &InterruptHandler{writer: writer, onStop: onStop}
}

// HandleInterrupts starts listening for SIGINT and SIGTERM and returns a
// context that the second signal cancels. Call the returned stop function
// when the run is over.
func (h *InterruptHandler) HandleInterrupts(ctx context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	h.mu.Lock()
	h.cancelFunc = cancel
	h.mu.Unlock()

	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-sigChan:
				h.Trigger()
			case <-ctx.Done():
				return
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return ctx, func() {
		once.Do(func() {
			signal.Stop(sigChan)
			close(done)
			cancel()
		})
	}
}

// Trigger acts as if an interrupt signal arrived.
func (h *InterruptHandler) Trigger() {
	h.mu.Lock()
	h.signals++
	n := h.signals
	cancel := h.cancelFunc
	h.mu.Unlock()

	switch n {
	case 1:
		h.write("\n" + FormatWarning("Interrupção solicitada. A classificação para após o quote atual.") + "\n" +
			FormatInfo("Pressione Ctrl+C novamente para cancelar imediatamente.") + "\n")
		if h.onStop != nil {
			h.onStop()
		}
	case 2:
		h.write("\n" + FormatWarning("Cancelando a chamada em andamento.") + "\n")
		if cancel != nil {
			cancel()
		}
	}
}

// WasInterrupted reports whether at least one interrupt arrived.
func (h *InterruptHandler) WasInterrupted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.signals > 0
}

func (h *InterruptHandler) write(msg string) {
	if _, err := fmt.Fprint(h.writer, msg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write interrupt message: %v\n", err)
	}
}
