package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// ErrInputCancelled is returned when input is canceled by context.
var ErrInputCancelled = errors.New("input canceled")

// LineReader reads lines from an interactive input without blocking past
// context cancellation.
type LineReader struct {
	reader *bufio.Reader
	lock   sync.Mutex
}

// NewLineReader wraps r.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{reader: bufio.NewReader(r)}
}

// ReadLine returns the next line without surrounding whitespace. A canceled
// ctx returns ErrInputCancelled at once; the pending read is abandoned.
func (r *LineReader) ReadLine(ctx context.Context) (string, error) {
	if ctx.Err() != nil {
		return "", ErrInputCancelled
	}

	type result struct {
		err   error
		value string
	}
	resultCh := make(chan result, 1)

	go func() {
		r.lock.Lock()
		defer r.lock.Unlock()
		value, err := r.reader.ReadString('\n')
		if errors.Is(err, io.EOF) && value != "" {
			err = nil
		}
		resultCh <- result{value: value, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ErrInputCancelled
	case res := <-resultCh:
		return strings.TrimSpace(res.value), res.err
	}
}

// Ask writes prompt to w and reads the answer.
func (r *LineReader) Ask(ctx context.Context, w io.Writer, prompt string) (string, error) {
	if _, err := fmt.Fprint(w, FormatPrompt(prompt)); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}
	return r.ReadLine(ctx)
}
