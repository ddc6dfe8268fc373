package domain

const unknownDescription = "Unknown"

// EmbeddingProvider identifies an embedding service provider.
type EmbeddingProvider string

// Available embedding providers.
const (
	// EmbeddingProviderOllama is a local Ollama instance.
	EmbeddingProviderOllama EmbeddingProvider = "ollama"

	// EmbeddingProviderOpenAI is the OpenAI cloud API.
	EmbeddingProviderOpenAI EmbeddingProvider = "openai"
)

// IsValid returns true if the provider is recognised.
func (p EmbeddingProvider) IsValid() bool {
	switch p {
	case EmbeddingProviderOllama, EmbeddingProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p EmbeddingProvider) RequiresAPIKey() bool {
	return p == EmbeddingProviderOpenAI
}

// IsLocal returns true if this provider runs locally.
func (p EmbeddingProvider) IsLocal() bool {
	return p == EmbeddingProviderOllama
}

// String returns the string representation.
func (p EmbeddingProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p EmbeddingProvider) Description() string {
	switch p {
	case EmbeddingProviderOllama:
		return "Ollama (local)"
	case EmbeddingProviderOpenAI:
		return "OpenAI (cloud)"
	default:
		return unknownDescription
	}
}

// AllEmbeddingProviders returns the selectable embedding providers.
func AllEmbeddingProviders() []EmbeddingProvider {
	return []EmbeddingProvider{
		EmbeddingProviderOllama,
		EmbeddingProviderOpenAI,
	}
}

// DefaultEmbeddingModels returns the default model per provider.
func DefaultEmbeddingModels() map[EmbeddingProvider]string {
	return map[EmbeddingProvider]string{
		EmbeddingProviderOllama: "nomic-embed-text",
		EmbeddingProviderOpenAI: "text-embedding-3-small",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
	}
}

// PortalSettings configures the records portal being scraped.
type PortalSettings struct {
	// BaseURL is the portal host.
	BaseURL string

	// ViewID selects the archive listing to scrape.
	ViewID int

	// RequestsPerSecond throttles successive fetches. This is a
	// courtesy limit for the portal, not a correctness mechanism.
	RequestsPerSecond float64
}

// DataSettings configures where pipeline artifacts live.
type DataSettings struct {
	// Dir is the artifact root (meetings.json, documents/, chunks/).
	Dir string
}

// IndexSettings configures the vector index.
type IndexSettings struct {
	// URL is the Chroma server address.
	URL string

	// Collection is the fixed collection name.
	Collection string
}

// EmbeddingSettings configures the embedding provider.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider EmbeddingProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// GenerationSettings configures the hosted generation service.
type GenerationSettings struct {
	// Model is the model identifier sent with every request.
	Model string

	// APIKey authenticates against the service. The environment
	// variable ANTHROPIC_API_KEY overrides a stored value.
	APIKey string

	// Temperature is the sampling temperature.
	Temperature float64

	// MaxTokens bounds the generated output length.
	MaxTokens int

	// TopK is how many chunks retrieval feeds into the context.
	TopK int
}

// IsConfigured returns true if the generation service is set up.
func (g GenerationSettings) IsConfigured() bool {
	return g.APIKey != ""
}

// ChunkingSettings configures the chunker's size thresholds, all in
// the estimator's unit (characters / 4).
type ChunkingSettings struct {
	// MinSize is the smallest chunk worth emitting.
	MinSize int

	// TargetSize is the preferred chunk size.
	TargetSize int

	// MaxSize is the hard upper bound.
	MaxSize int
}

// Settings holds all application settings.
type Settings struct {
	// Portal holds records-portal settings.
	Portal PortalSettings

	// Data holds artifact directory settings.
	Data DataSettings

	// Index holds vector index settings.
	Index IndexSettings

	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// Generation holds generation service settings.
	Generation GenerationSettings

	// Chunking holds chunker size thresholds.
	Chunking ChunkingSettings
}

// DefaultSettings returns settings with the source system's defaults.
// The generation API key is left empty; it comes from the environment
// or the settings wizard.
func DefaultSettings() Settings {
	return Settings{
		Portal: PortalSettings{
			BaseURL:           "https://ccsf.granicus.com",
			ViewID:            3,
			RequestsPerSecond: 1.0,
		},
		Data: DataSettings{
			Dir: "data",
		},
		Index: IndexSettings{
			URL:        "http://localhost:8000",
			Collection: "board_documents",
		},
		Embedding: EmbeddingSettings{
			Provider: EmbeddingProviderOllama,
			Model:    "nomic-embed-text",
			BaseURL:  "http://localhost:11434",
		},
		Generation: GenerationSettings{
			Model:       "claude-sonnet-4-20250514",
			Temperature: 0.3,
			MaxTokens:   1024,
			TopK:        5,
		},
		Chunking: ChunkingSettings{
			MinSize:    100,
			TargetSize: 500,
			MaxSize:    800,
		},
	}
}
