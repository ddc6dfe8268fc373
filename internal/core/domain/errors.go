package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotConfigured indicates a required service has no configuration.
	ErrNotConfigured = errors.New("not configured")

	// ErrMissingAPIKey indicates a required API credential is absent.
	// Raised at construction time, never deferred to first use.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// The vector index cannot add or query chunks without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrIndexUnavailable indicates the vector index is not configured.
	// Retrieval and index builds are disabled.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrGenerationUnavailable indicates the generation service is not configured.
	// Question answering is disabled; retrieval still works.
	ErrGenerationUnavailable = errors.New("generation service unavailable")

	// ErrNoDocuments indicates the pipeline stage has no input documents.
	// Discovery or extraction must run first.
	ErrNoDocuments = errors.New("no documents available")

	// ErrNotPDF indicates downloaded minutes content is not a PDF.
	ErrNotPDF = errors.New("content is not a PDF")

	// ErrRateLimited indicates the portal rejected a request for load reasons.
	ErrRateLimited = errors.New("rate limited")
)
