package driven

import "context"

// EmbeddingService generates vector embeddings for the index.
// Implementations wrap an external provider (Ollama, OpenAI).
type EmbeddingService interface {
	// Embed generates an embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts in one call.
	// Results align with the input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size for the
	// configured model.
	Dimensions() int

	// ModelName returns the model identifier in use.
	ModelName() string

	// Ping verifies the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
