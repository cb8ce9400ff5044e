package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Veraticus/constructo/internal/config"
	"github.com/Veraticus/constructo/internal/engine"
	"github.com/Veraticus/constructo/internal/llm"
	"github.com/Veraticus/constructo/internal/sheets"
	"github.com/spf13/viper"
)

// llmConfig reads the chat model settings. The API key is looked up even
// when the provider does not need it; client construction reports a missing
// key only for runs that use a language model.
func llmConfig() llm.Config {
	provider := viper.GetString("llm.provider")
	if provider == "" {
		provider = llm.ProviderOpenAI
	}

	cfg := llm.Config{
		Provider:    provider,
		Model:       viper.GetString("llm.model"),
		BaseURL:     viper.GetString("llm.base_url"),
		Temperature: viper.GetFloat64("llm.temperature"),
		MaxTokens:   viper.GetInt("llm.max_tokens"),
		MaxRetries:  viper.GetInt("llm.max_retries"),
		RetryDelay:  viper.GetDuration("llm.retry_delay"),
		RateLimit:   viper.GetInt("llm.rate_limit"),
		Timeout:     viper.GetDuration("llm.timeout"),
	}

	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = 500 // requests per minute
	}

	switch provider {
	case llm.ProviderOpenAI:
		cfg.APIKey = firstNonEmpty(viper.GetString("llm.openai_api_key"), os.Getenv("OPENAI_API_KEY"))
	case llm.ProviderAnthropic:
		cfg.APIKey = firstNonEmpty(viper.GetString("llm.anthropic_api_key"), os.Getenv("ANTHROPIC_API_KEY"))
	}

	return cfg
}

// embeddingConfig reads the embedding settings. OpenAI embeddings reuse the
// chat API key.
func embeddingConfig() llm.EmbeddingConfig {
	provider := viper.GetString("embedding.provider")
	if provider == "" {
		provider = llm.ProviderOpenAI
	}

	cfg := llm.EmbeddingConfig{
		Provider:   provider,
		Model:      viper.GetString("embedding.model"),
		BaseURL:    viper.GetString("embedding.base_url"),
		Dimensions: viper.GetInt("embedding.dimensions"),
		CacheTTL:   viper.GetDuration("embedding.cache_ttl"),
		MaxRetries: viper.GetInt("llm.max_retries"),
		RetryDelay: viper.GetDuration("llm.retry_delay"),
		RateLimit:  viper.GetInt("llm.rate_limit"),
		Timeout:    viper.GetDuration("llm.timeout"),
	}

	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 24 * time.Hour
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}
	if provider == llm.ProviderOpenAI {
		cfg.APIKey = firstNonEmpty(
			viper.GetString("embedding.openai_api_key"),
			viper.GetString("llm.openai_api_key"),
			os.Getenv("OPENAI_API_KEY"),
		)
	}

	return cfg
}

func controllerConfig() engine.Config {
	return engine.Config{
		LLM:                 llmConfig(),
		Embedding:           embeddingConfig(),
		OutputDir:           viper.GetString("output.dir"),
		TopN:                viper.GetInt("classification.top_n"),
		EmbeddingWeight:     optionalFloat("classification.embedding_weight"),
		LLMWeight:           optionalFloat("classification.llm_weight"),
		OverrideTemperature: viper.IsSet("llm.temperature"),
	}
}

// optionalFloat returns nil for keys that were never set so the
// classifier default applies to that key alone.
func optionalFloat(key string) *float64 {
	if !viper.IsSet(key) {
		return nil
	}
	v := viper.GetFloat64(key)
	return &v
}

// newController builds the controller. With mirror set, results are also
// uploaded to Google Sheets using the sheets.* settings.
func newController(ctx context.Context, mirror bool) (*engine.Controller, error) {
	opts := []engine.Option{engine.WithLogger(slog.Default())}

	if mirror {
		writer, err := newSheetsWriter(ctx)
		if err != nil {
			return nil, err
		}
		opts = append(opts, engine.WithMirror(writer))
	}

	return engine.NewController(controllerConfig(), opts...), nil
}

func newSheetsWriter(ctx context.Context) (*sheets.Writer, error) {
	sheetsConfig, err := config.LoadSheetsConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load Google Sheets config: %w", err)
	}
	writer, err := sheets.NewWriter(ctx, *sheetsConfig, slog.Default())
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Sheets writer: %w", err)
	}
	return writer, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
