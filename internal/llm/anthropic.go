package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Veraticus/constructo/internal/common"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	defaultAnthropicModel     = "claude-sonnet-4-5-20250929"
	defaultAnthropicMaxTokens = 1024
)

// anthropicClient implements Client over the Anthropic Messages API.
type anthropicClient struct {
	client      anthropic.Client
	model       string
	temperature float64
	maxTokens   int64
}

func newAnthropicClient(cfg Config) (*anthropicClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: anthropic API key is required", common.ErrMissingConfig)
	}

	model := cfg.Model
	if model == "" || strings.HasPrefix(model, "gpt-") {
		model = defaultAnthropicModel
	}
	maxTokens := int64(cfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		// retries are handled by the resilient wrapper
		option.WithMaxRetries(0),
		option.WithHTTPClient(newHTTPClient(cfg.Timeout)),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &anthropicClient{
		client:      anthropic.NewClient(opts...),
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   maxTokens,
	}, nil
}

// Complete sends the conversation to Claude and returns the first text block.
func (c *anthropicClient) Complete(ctx context.Context, messages []Message) (string, error) {
	system, turns := splitSystem(messages)

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   c.maxTokens,
		Temperature: anthropic.Float(c.temperature),
		Messages:    make([]anthropic.MessageParam, 0, len(turns)),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	for _, m := range turns {
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == RoleAssistant {
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(block))
		} else {
			params.Messages = append(params.Messages, anthropic.NewUserMessage(block))
		}
	}

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", common.ExternalServiceError("anthropic", classifyAnthropicError(err))
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", common.ExternalServiceError("anthropic", errors.New("no text content in response"))
}

func classifyAnthropicError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests:
			var after time.Duration
			if apiErr.Response != nil {
				after = common.ParseRetryAfter(apiErr.Response.Header.Get("Retry-After"))
			}
			return common.RateLimited(err, after)
		case apiErr.StatusCode >= http.StatusInternalServerError:
			return common.Transient(err)
		}
		return err
	}
	// transport failures
	return common.Transient(err)
}
