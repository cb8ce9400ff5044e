package llm

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Veraticus/constructo/internal/common"
)

// Provider names accepted by NewClient and NewEmbedder.
const (
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
	ProviderClaudeCode = "claudecode"
	ProviderLocal      = "local"
)

// NewClient builds a rate-limited, retrying chat client for cfg.Provider.
// The returned client also implements io.Closer.
func NewClient(cfg Config, logger *slog.Logger) (Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var (
		next Client
		err  error
	)
	provider := strings.ToLower(cfg.Provider)
	switch provider {
	case ProviderOpenAI, "":
		provider = ProviderOpenAI
		next, err = newOpenAIClient(cfg)
	case ProviderAnthropic:
		next, err = newAnthropicClient(cfg)
	case ProviderClaudeCode:
		next, err = newClaudeCodeClient(cfg)
	default:
		return nil, fmt.Errorf("%w: unsupported LLM provider %q", common.ErrInvalidConfig, cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	return &resilientClient{
		next:      next,
		limiter:   newRateLimiter(cfg.RateLimit),
		logger:    logger,
		retryOpts: retryOptions(cfg.MaxRetries, cfg.RetryDelay, logger),
		provider:  provider,
	}, nil
}

// NewEmbedder builds a cached embedder for cfg.Provider. Remote providers
// are also rate-limited and retried. The result implements io.Closer.
func NewEmbedder(cfg EmbeddingConfig, logger *slog.Logger) (Embedder, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var next Embedder
	switch strings.ToLower(cfg.Provider) {
	case ProviderOpenAI, "":
		remote, err := newOpenAIEmbedder(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create embedder: %w", err)
		}
		next = &resilientEmbedder{
			next:      remote,
			limiter:   newRateLimiter(cfg.RateLimit),
			retryOpts: retryOptions(cfg.MaxRetries, cfg.RetryDelay, logger),
		}
	case ProviderLocal:
		next = newHashEmbedder(cfg.Dimensions)
	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider %q", common.ErrInvalidConfig, cfg.Provider)
	}

	return &cachedEmbedder{next: next, cache: newEmbeddingCache(cfg.CacheTTL), logger: logger}, nil
}

// Close releases background resources held by a client or embedder built here.
func Close(v any) {
	if c, ok := v.(io.Closer); ok {
		_ = c.Close()
	}
}
