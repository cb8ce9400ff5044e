package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/constructo/internal/common"
	claudecode "github.com/severity1/claude-agent-sdk-go"
)

const defaultClaudeCodeModel = "sonnet"

// claudeCodeClient drives the local Claude Code CLI through the agent SDK.
// The CLI has no separate system channel, so the conversation is flattened
// into a single prompt.
type claudeCodeClient struct {
	model    string
	maxTurns int
}

func newClaudeCodeClient(cfg Config) (*claudeCodeClient, error) {
	model := cfg.Model
	if model == "" || strings.HasPrefix(model, "gpt-") {
		model = defaultClaudeCodeModel
	}
	return &claudeCodeClient{model: model, maxTurns: 1}, nil
}

// Complete runs a single-turn query and concatenates the assistant text.
func (c *claudeCodeClient) Complete(ctx context.Context, messages []Message) (string, error) {
	iterator, err := claudecode.Query(ctx, flattenConversation(messages),
		claudecode.WithModel(c.model),
		claudecode.WithMaxTurns(c.maxTurns),
	)
	if err != nil {
		if claudecode.IsCLINotFoundError(err) {
			return "", common.ExternalServiceError("claude code", fmt.Errorf("claude CLI not found: %w", err))
		}
		return "", common.ExternalServiceError("claude code", common.Transient(err))
	}
	defer iterator.Close()

	var response strings.Builder
	for {
		message, err := iterator.Next(ctx)
		if err != nil {
			if errors.Is(err, claudecode.ErrNoMoreMessages) {
				break
			}
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			return "", common.ExternalServiceError("claude code", fmt.Errorf("error reading response: %w", err))
		}

		if assistantMsg, ok := message.(*claudecode.AssistantMessage); ok {
			for _, block := range assistantMsg.Content {
				if textBlock, ok := block.(*claudecode.TextBlock); ok {
					response.WriteString(textBlock.Text)
				}
			}
		}
	}

	if response.Len() == 0 {
		return "", common.ExternalServiceError("claude code", errors.New("empty response"))
	}
	return response.String(), nil
}

// flattenConversation renders chat turns as one prompt: system text first,
// then labelled turns in order.
func flattenConversation(messages []Message) string {
	system, turns := splitSystem(messages)

	var b strings.Builder
	if system != "" {
		b.WriteString(system)
		b.WriteString("\n\n")
	}
	if len(turns) == 1 && turns[0].Role == RoleUser {
		b.WriteString(turns[0].Content)
		return b.String()
	}
	for _, m := range turns {
		switch m.Role {
		case RoleAssistant:
			b.WriteString("Assistente: ")
		default:
			b.WriteString("Usuário: ")
		}
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
