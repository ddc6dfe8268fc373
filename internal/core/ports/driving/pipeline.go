package driving

import (
	"context"

	"github.com/gavel-labs/gavel/internal/core/domain"
)

// DiscoveryService scrapes the records portal into meeting records.
type DiscoveryService interface {
	// Discover scrapes the archive listing, dedupes by document set,
	// sorts newest-first, and writes the discovery artifact.
	Discover(ctx context.Context) (*domain.DiscoveryResult, error)
}

// ExtractionService extracts document text for discovered meetings.
type ExtractionService interface {
	// Run iterates discovered meetings and extracts each linked
	// document. Per-document failures are accumulated in the report,
	// never fatal to the batch.
	Run(ctx context.Context, opts domain.ExtractOptions) (*domain.ExtractionReport, error)
}

// IndexService chunks extracted documents into the vector index.
type IndexService interface {
	// Build chunks every extracted document and adds the chunks to
	// the index.
	Build(ctx context.Context, opts domain.BuildOptions) (*domain.BuildReport, error)

	// Stats reports the index's current state.
	Stats(ctx context.Context) (*domain.IndexStats, error)

	// TestQuery runs a retrieval-only query for inspection.
	TestQuery(ctx context.Context, text string, n int) ([]domain.ScoredChunk, error)

	// Watch rebuilds the index whenever document artifacts change,
	// until the context is cancelled.
	Watch(ctx context.Context) error
}
