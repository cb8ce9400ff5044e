package common

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/constructo/internal/service"
)

var (
	// ErrRateLimit indicates that a provider throttled the request.
	ErrRateLimit = errors.New("rate limit exceeded")
	// ErrMaxRetries indicates that all retry attempts have been exhausted.
	ErrMaxRetries = errors.New("max retries exceeded")
)

// RetryableError marks a provider failure as transient. A positive After
// replaces the next backoff delay.
type RetryableError struct {
	Err       error
	Retryable bool
	After     time.Duration
}

func (e *RetryableError) Error() string {
	return e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// Transient wraps err so that Retry tries the call again.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err, Retryable: true}
}

// RateLimited wraps a throttling response. after is the server's hint, zero
// when it sent none.
func RateLimited(err error, after time.Duration) error {
	return &RetryableError{Err: fmt.Errorf("%w: %w", ErrRateLimit, err), Retryable: true, After: after}
}

// ParseRetryAfter reads a Retry-After header given in seconds. Dates and
// malformed values yield zero.
func ParseRetryAfter(header string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func retryDefaults(opts service.RetryOptions) service.RetryOptions {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = 100 * time.Millisecond
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = 30 * time.Second
	}
	if opts.Multiplier <= 0 {
		opts.Multiplier = 2.0
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return opts
}

// Retry runs call until it succeeds, fails permanently or exhausts
// opts.MaxAttempts. Waits grow by opts.Multiplier up to opts.MaxDelay;
// throttled calls wait for the server's hint or the ceiling.
func Retry(ctx context.Context, name string, opts service.RetryOptions, call func() error) error {
	opts = retryDefaults(opts)
	delay := opts.InitialDelay

	for attempt := 1; ; attempt++ {
		err := call()
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return err
		}
		if attempt >= opts.MaxAttempts {
			return fmt.Errorf("%s: %w after %d attempts: %w", name, ErrMaxRetries, attempt, err)
		}

		wait := nextWait(err, delay, opts.MaxDelay)
		opts.Logger.Warn("Call failed, retrying",
			"call", name,
			"attempt", attempt,
			"max_attempts", opts.MaxAttempts,
			"delay", wait,
			"error", err)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay = min(time.Duration(float64(delay)*opts.Multiplier), opts.MaxDelay)
	}
}

func nextWait(err error, delay, ceiling time.Duration) time.Duration {
	var retryable *RetryableError
	if errors.As(err, &retryable) && retryable.After > 0 {
		return min(retryable.After, ceiling)
	}
	if errors.Is(err, ErrRateLimit) {
		return ceiling
	}
	return delay
}
