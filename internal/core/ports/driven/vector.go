package driven

import (
	"context"

	"github.com/gavel-labs/gavel/internal/core/domain"
)

// VectorIndex persists chunks with their embeddings and answers
// nearest-neighbour queries by text. One process owns the client
// handle for a session; concurrent writers are unsupported.
type VectorIndex interface {
	// AddChunks embeds and stores chunks under their chunk IDs.
	// Whitespace-only chunks are skipped. Returns how many records
	// were written.
	AddChunks(ctx context.Context, chunks []domain.Chunk) (int, error)

	// Query returns up to k chunks ranked by ascending distance.
	Query(ctx context.Context, text string, k int) ([]domain.ScoredChunk, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	// Stats returns the record count with a sampled breakdown by
	// document type.
	Stats(ctx context.Context) (*domain.IndexStats, error)

	// Clear drops and recreates the collection.
	Clear(ctx context.Context) error

	// Close releases the client handle.
	Close() error
}
