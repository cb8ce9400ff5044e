// Package llm provides chat-completion and embedding clients used by the
// classifiers. It supports OpenAI, Anthropic and Claude Code providers plus a
// local hashing embedder, with rate limiting, retries and an embedding cache.
package llm
