package domain

import "time"

// ExtractOptions controls one extraction run.
type ExtractOptions struct {
	// Limit caps how many meetings are processed. 0 means all.
	Limit int

	// Force re-extracts documents that already have artifacts.
	// When false, existing documents are skipped.
	Force bool
}

// ExtractionError records one failed document during a batch run.
type ExtractionError struct {
	// MeetingID is the meeting the document belongs to.
	MeetingID string

	// URL is the offending source URL.
	URL string

	// Type is the document type that failed.
	Type DocumentType

	// Message is the error text.
	Message string
}

// ExtractionReport summarises one extraction run. Errors never abort
// the batch; they are accumulated here and written alongside output.
type ExtractionReport struct {
	// RunID is a generated identifier for this run.
	RunID string

	// Timestamp is when the run finished.
	Timestamp time.Time

	// Extracted counts successfully extracted documents.
	Extracted int

	// Skipped counts documents skipped because artifacts existed.
	Skipped int

	// AgendaErrors lists failed agenda extractions.
	AgendaErrors []ExtractionError

	// MinutesErrors lists failed minutes extractions.
	MinutesErrors []ExtractionError
}

// HasErrors reports whether any document failed.
func (r *ExtractionReport) HasErrors() bool {
	return len(r.AgendaErrors) > 0 || len(r.MinutesErrors) > 0
}

// BuildOptions controls one index build.
type BuildOptions struct {
	// Clear drops and recreates the collection before adding chunks.
	Clear bool
}

// BuildReport summarises one index build. Per-document chunking
// errors are collected, never fatal.
type BuildReport struct {
	// Documents counts documents processed.
	Documents int

	// TotalChunks counts chunks added to the index.
	TotalChunks int

	// AgendaChunks counts chunks from agenda documents.
	AgendaChunks int

	// MinutesChunks counts chunks from minutes documents.
	MinutesChunks int

	// Errors lists per-document failures, as "id: message" strings.
	Errors []string
}

// IndexStats describes the current state of the vector index.
type IndexStats struct {
	// Collection is the collection name.
	Collection string

	// TotalChunks is the record count.
	TotalChunks int

	// DocumentTypes breaks a sample down by document type.
	DocumentTypes map[string]int

	// SampleSize is how many records the breakdown inspected.
	SampleSize int
}
