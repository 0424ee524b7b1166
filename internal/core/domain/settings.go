package domain

import "time"

// AIProvider identifies the embedding/generator provider.
type AIProvider string

const (
	AIProviderOpenAI    AIProvider = "openai"
	AIProviderAnthropic AIProvider = "anthropic"
	AIProviderOllama    AIProvider = "ollama"
	AIProviderCohere    AIProvider = "cohere"
	AIProviderVoyage    AIProvider = "voyage"
)

// RequiresAPIKey returns true if this provider requires an API key.
func (p AIProvider) RequiresAPIKey() bool {
	switch p {
	case AIProviderOllama:
		return false // Self-hosted, no API key needed
	default:
		return true
	}
}

// IsValid returns true if this is a known provider.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOpenAI, AIProviderAnthropic, AIProviderOllama, AIProviderCohere, AIProviderVoyage:
		return true
	default:
		return false
	}
}

// Settings holds retrieval-core-wide configuration, read-only after startup
// except for the AI provider fields, which can be hot-swapped through
// runtime.Services.
type Settings struct {
	// Hybrid Fuser tuning (spec §6 config keys).
	HybridAlpha              float64 `json:"hybrid_alpha"`
	HybridRetrievalMultiplier int    `json:"hybrid_retrieval_multiplier"`

	// Chunker tuning.
	ChunkJavaMaxTokens     int `json:"chunk_java_max_tokens"`
	ChunkMarkdownMaxTokens int `json:"chunk_markdown_max_tokens"`

	// Vector configuration; must match the embedding model's output size.
	VectorDimensions int `json:"vector_dimensions"`

	Embedding EmbeddingSettings `json:"embedding"`
	LLM       LLMSettings       `json:"llm"`

	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultSettings returns the documented defaults from spec §6.
func DefaultSettings() *Settings {
	return &Settings{
		HybridAlpha:               0.7,
		HybridRetrievalMultiplier: 2,
		ChunkJavaMaxTokens:        1500,
		ChunkMarkdownMaxTokens:    1000,
		VectorDimensions:          768,
		Embedding:                 EmbeddingSettings{Provider: AIProviderOpenAI, Model: "text-embedding-3-small"},
		LLM:                       LLMSettings{Provider: AIProviderOpenAI, Model: "gpt-4o-mini"},
		UpdatedAt:                 time.Now(),
	}
}

// EmbeddingSettings configures the embedding service.
type EmbeddingSettings struct {
	Provider AIProvider `json:"provider"`
	Model    string     `json:"model"`
	APIKey   string     `json:"-"`
	BaseURL  string     `json:"base_url,omitempty"`
}

// IsConfigured returns true if embedding settings are properly configured.
func (e *EmbeddingSettings) IsConfigured() bool {
	if e.Provider == "" {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings configures the generator/judge service.
type LLMSettings struct {
	Provider AIProvider `json:"provider"`
	Model    string     `json:"model"`
	APIKey   string     `json:"-"`
	BaseURL  string     `json:"base_url,omitempty"`
}

// IsConfigured returns true if LLM settings are properly configured.
func (l *LLMSettings) IsConfigured() bool {
	if l.Provider == "" {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// Validate checks that any configured providers are known.
func (s *Settings) Validate() error {
	if s.Embedding.Provider != "" && !s.Embedding.Provider.IsValid() {
		return ErrInvalidProvider
	}
	if s.LLM.Provider != "" && !s.LLM.Provider.IsValid() {
		return ErrInvalidProvider
	}
	if s.HybridAlpha < 0 || s.HybridAlpha > 1 {
		return ErrInvalidInput
	}
	if s.HybridRetrievalMultiplier < 1 {
		return ErrInvalidInput
	}
	return nil
}
