package driven

import (
	"context"

	"github.com/gavel-labs/gavel/internal/core/domain"
)

// Extractor turns fetched portal bytes into a structured Document.
// One implementation exists per document type.
type Extractor interface {
	// Type is the document type this extractor handles.
	Type() domain.DocumentType

	// Extract parses the raw bytes. A malformed document yields an
	// error; the caller records it and carries on with the batch.
	Extract(ctx context.Context, raw *domain.RawDocument) (*domain.Document, error)
}
