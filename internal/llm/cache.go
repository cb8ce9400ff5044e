package llm

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultEmbeddingCacheTTL is how long embeddings stay cached when no TTL is configured.
const DefaultEmbeddingCacheTTL = time.Hour

type cacheEntry struct {
	expiry time.Time
	vector []float64
}

// embeddingCache is a thread-safe TTL cache of embeddings keyed by text.
type embeddingCache struct {
	entries map[string]cacheEntry
	stopCh  chan struct{}
	ttl     time.Duration
	mu      sync.RWMutex
	once    sync.Once
}

func newEmbeddingCache(ttl time.Duration) *embeddingCache {
	if ttl <= 0 {
		ttl = DefaultEmbeddingCacheTTL
	}

	cache := &embeddingCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		stopCh:  make(chan struct{}),
	}
	go cache.cleanup()

	return cache
}

func (c *embeddingCache) get(key string) ([]float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists || time.Now().After(entry.expiry) {
		return nil, false
	}
	return entry.vector, true
}

func (c *embeddingCache) set(key string, vector []float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{vector: vector, expiry: time.Now().Add(c.ttl)}
}

// cleanup periodically removes expired entries.
func (c *embeddingCache) cleanup() {
	interval := min(c.ttl, 5*time.Minute)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.mu.Lock()
			now := time.Now()
			for key, entry := range c.entries {
				if now.After(entry.expiry) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		}
	}
}

func (c *embeddingCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (c *embeddingCache) Close() {
	c.once.Do(func() { close(c.stopCh) })
}

// cachedEmbedder memoizes another embedder.
type cachedEmbedder struct {
	next   Embedder
	cache  *embeddingCache
	logger *slog.Logger
}

// Embed returns the cached vector for text or computes and stores it.
func (c *cachedEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if vec, ok := c.cache.get(text); ok {
		c.logger.Debug("embedding cache hit", "chars", len(text))
		return vec, nil
	}

	vec, err := c.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.set(text, vec)
	return vec, nil
}

// Close releases the cache and the wrapped embedder.
func (c *cachedEmbedder) Close() error {
	c.cache.Close()
	Close(c.next)
	return nil
}
