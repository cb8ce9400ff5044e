package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Veraticus/constructo/internal/common"
)

const (
	defaultOpenAIBaseURL        = "https://api.openai.com/v1"
	defaultOpenAIChatModel      = "gpt-4"
	defaultOpenAIEmbeddingModel = "text-embedding-ada-002"
)

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// openAIClient talks to the chat completions endpoint.
type openAIClient struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
}

func newOpenAIClient(cfg Config) (*openAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: OpenAI API key is required", common.ErrMissingConfig)
	}

	model := cfg.Model
	if model == "" {
		model = defaultOpenAIChatModel
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}

	return &openAIClient{
		apiKey:      cfg.APIKey,
		baseURL:     strings.TrimRight(baseURL, "/"),
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		httpClient:  newHTTPClient(cfg.Timeout),
	}, nil
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Complete sends the conversation to OpenAI and returns the first choice.
func (c *openAIClient) Complete(ctx context.Context, messages []Message) (string, error) {
	req := openAIChatRequest{
		Model:       c.model,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Messages:    make([]openAIMessage, 0, len(messages)),
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openAIMessage{Role: string(m.Role), Content: m.Content})
	}

	var resp openAIChatResponse
	if err := postJSON(ctx, c.httpClient, c.baseURL+"/chat/completions", c.apiKey, req, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", common.ExternalServiceError("openai", fmt.Errorf("no completion choices returned"))
	}

	return resp.Choices[0].Message.Content, nil
}

// openAIEmbedder calls the embeddings endpoint.
type openAIEmbedder struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

func newOpenAIEmbedder(cfg EmbeddingConfig) (*openAIEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: OpenAI API key is required", common.ErrMissingConfig)
	}
	model := cfg.Model
	if model == "" {
		model = defaultOpenAIEmbeddingModel
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	return &openAIEmbedder{
		httpClient: newHTTPClient(cfg.Timeout),
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      model,
	}, nil
}

type openAIEmbeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

// Embed returns the embedding of text.
func (e *openAIEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	req := map[string]any{
		"model": e.model,
		"input": text,
	}

	var resp openAIEmbeddingResponse
	if err := postJSON(ctx, e.httpClient, e.baseURL+"/embeddings", e.apiKey, req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, common.ExternalServiceError("openai", fmt.Errorf("no embedding returned"))
	}
	return resp.Data[0].Embedding, nil
}

// postJSON performs an authenticated JSON POST and decodes a 200 response into out.
func postJSON(ctx context.Context, client *http.Client, url, apiKey string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return common.ExternalServiceError("openai", common.Transient(err))
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return common.ExternalServiceError("openai", fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := fmt.Errorf("OpenAI API error (status %d): %s", resp.StatusCode, truncate(string(data), 300))
		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			apiErr = common.RateLimited(apiErr, common.ParseRetryAfter(resp.Header.Get("Retry-After")))
		case resp.StatusCode >= http.StatusInternalServerError:
			apiErr = common.Transient(apiErr)
		}
		return common.ExternalServiceError("openai", apiErr)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return common.ExternalServiceError("openai", fmt.Errorf("failed to parse response: %w", err))
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
