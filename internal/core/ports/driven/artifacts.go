package driven

import (
	"context"

	"github.com/gavel-labs/gavel/internal/core/domain"
)

// ArtifactStore reads and writes the pipeline's JSON artifacts:
// pretty-printed UTF-8, one file per entity, laid out under the
// configured data directory.
type ArtifactStore interface {
	// WriteDiscovery writes the discovery result (meetings.json).
	WriteDiscovery(ctx context.Context, result *domain.DiscoveryResult) error

	// ReadDiscovery loads the last discovery result. Returns
	// domain.ErrNoDocuments when discovery has not run.
	ReadDiscovery(ctx context.Context) (*domain.DiscoveryResult, error)

	// WriteDocument writes one extracted document
	// (documents/{id}.json).
	WriteDocument(ctx context.Context, doc *domain.Document) error

	// DocumentExists reports whether a document artifact is already
	// on disk. Extraction's skip-existing check.
	DocumentExists(ctx context.Context, id string) bool

	// ReadDocuments loads every extracted document artifact.
	ReadDocuments(ctx context.Context) ([]domain.Document, error)

	// WriteChunks writes a document's chunk sequence
	// (chunks/{id}_chunks.json).
	WriteChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error

	// WriteExtractionReport writes the error report
	// (extraction_errors.json) alongside normal output.
	WriteExtractionReport(ctx context.Context, report *domain.ExtractionReport) error
}
