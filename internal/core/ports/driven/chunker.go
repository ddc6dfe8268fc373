package driven

import (
	"context"

	"github.com/gavel-labs/gavel/internal/core/domain"
)

// Chunker splits one document into an ordered chunk sequence.
type Chunker interface {
	// Chunk applies the strategy matching the document's shape
	// (section-aware for agendas with a parsed tree, paragraph-based
	// otherwise). Empty content yields an empty slice, not an error.
	Chunk(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error)
}
