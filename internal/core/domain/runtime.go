package domain

import "sync"

// RuntimeConfig tracks which AI services are available at runtime.
// Embedding/LLM availability can change dynamically as providers are
// reconfigured; thread-safe for concurrent access.
type RuntimeConfig struct {
	mu sync.RWMutex

	embeddingAvailable bool
	llmAvailable       bool
}

// NewRuntimeConfig creates a new RuntimeConfig.
func NewRuntimeConfig() *RuntimeConfig {
	return &RuntimeConfig{}
}

// EmbeddingAvailable returns whether the embedding service is available.
func (c *RuntimeConfig) EmbeddingAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.embeddingAvailable
}

// LLMAvailable returns whether the generator/judge service is available.
func (c *RuntimeConfig) LLMAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.llmAvailable
}

// SetEmbeddingAvailable updates the embedding availability flag.
func (c *RuntimeConfig) SetEmbeddingAvailable(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.embeddingAvailable = available
}

// SetLLMAvailable updates the LLM availability flag.
func (c *RuntimeConfig) SetLLMAvailable(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.llmAvailable = available
}

// CanDoSemanticSearch returns true if the Semantic Searcher can be used.
func (c *RuntimeConfig) CanDoSemanticSearch() bool {
	return c.EmbeddingAvailable()
}

// CanDoLLMAssisted returns true if generator/judge features are available.
func (c *RuntimeConfig) CanDoLLMAssisted() bool {
	return c.LLMAvailable()
}

// CanDoHybridSearch returns true if both backends can contribute to fusion.
// The Hybrid Fuser itself degrades gracefully when only one is available;
// this flag is informational only.
func (c *RuntimeConfig) CanDoHybridSearch() bool {
	return c.EmbeddingAvailable()
}
