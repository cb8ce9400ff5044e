package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/Veraticus/constructo/internal/common"
	"github.com/Veraticus/constructo/internal/service"
)

func retryOptions(maxRetries int, delay time.Duration, logger *slog.Logger) service.RetryOptions {
	opts := service.RetryOptions{
		MaxAttempts:  maxRetries,
		InitialDelay: delay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		Logger:       logger,
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = time.Second
	}
	return opts
}

// resilientClient rate-limits and retries calls to a provider.
type resilientClient struct {
	next      Client
	limiter   *rateLimiter
	logger    *slog.Logger
	retryOpts service.RetryOptions
	provider  string
}

// Complete waits for a rate-limit token and retries transient failures.
func (c *resilientClient) Complete(ctx context.Context, messages []Message) (string, error) {
	if err := c.limiter.wait(ctx); err != nil {
		return "", err
	}

	var response string
	start := time.Now()
	err := common.Retry(ctx, c.provider+" completion", c.retryOpts, func() error {
		var callErr error
		response, callErr = c.next.Complete(ctx, messages)
		return callErr
	})
	if err != nil {
		return "", err
	}

	c.logger.Debug("completion received",
		"provider", c.provider,
		"messages", len(messages),
		"chars", len(response),
		"elapsed", time.Since(start))
	return response, nil
}

// Close stops the limiter.
func (c *resilientClient) Close() error {
	c.limiter.Close()
	return nil
}

// resilientEmbedder rate-limits and retries calls to an embedding provider.
type resilientEmbedder struct {
	next      Embedder
	limiter   *rateLimiter
	retryOpts service.RetryOptions
}

// Embed waits for a rate-limit token and retries transient failures.
func (e *resilientEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if err := e.limiter.wait(ctx); err != nil {
		return nil, err
	}

	var vec []float64
	err := common.Retry(ctx, "embedding", e.retryOpts, func() error {
		var callErr error
		vec, callErr = e.next.Embed(ctx, text)
		return callErr
	})
	return vec, err
}

// Close stops the limiter.
func (e *resilientEmbedder) Close() error {
	e.limiter.Close()
	return nil
}
