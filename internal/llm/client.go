package llm

import (
	"context"
	"time"
)

// Role identifies the author of a chat message.
type Role string

// Chat roles understood by every provider.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single chat turn.
type Message struct {
	Role    Role
	Content string
}

// System builds a system message.
func System(content string) Message { return Message{Role: RoleSystem, Content: content} }

// User builds a user message.
func User(content string) Message { return Message{Role: RoleUser, Content: content} }

// Assistant builds an assistant message.
func Assistant(content string) Message { return Message{Role: RoleAssistant, Content: content} }

// Client completes a chat conversation and returns the assistant's text.
type Client interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// Embedder turns text into a dense vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Config holds provider settings for chat clients.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	MaxRetries  int
	RetryDelay  time.Duration
	RateLimit   int
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// EmbeddingConfig holds provider settings for embedders.
type EmbeddingConfig struct {
	Provider   string
	APIKey     string
	Model      string
	BaseURL    string
	Dimensions int
	CacheTTL   time.Duration
	MaxRetries int
	RetryDelay time.Duration
	RateLimit  int
	Timeout    time.Duration
}

// splitSystem separates system messages from the conversation turns for
// providers that take the system prompt out of band.
func splitSystem(messages []Message) (string, []Message) {
	var system string
	turns := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == RoleSystem {
			if system != "" {
				system += "\n\n"
			}
			system += m.Content
			continue
		}
		turns = append(turns, m)
	}
	return system, turns
}
