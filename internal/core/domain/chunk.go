package domain

import "fmt"

// Chunk represents one retrieval-sized span of a document's text.
// Chunks belong to exactly one document; ordering by Index matches
// the original document order.
type Chunk struct {
	// ID is the stable identifier, {type}_{clipID}_chunk_NNN.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Index is the 0-based position within the document's sequence.
	Index int

	// Content is the text span.
	Content string

	// TokenEstimate is the approximate size in the chunker's unit
	// (character count / 4).
	TokenEstimate int

	// Section labels where the span came from: "header", a section
	// heading, or "body" for unstructured text.
	Section string

	// Type is the parent document's type.
	Type DocumentType

	// ClipID is the parent document's clip identifier.
	ClipID string

	// SourceURL is the parent document's source URL.
	SourceURL string

	// TotalChunks is the final sequence length, recorded on every
	// chunk for completeness checking.
	TotalChunks int
}

// ChunkID builds the canonical chunk identifier with a zero-padded
// positional index.
func ChunkID(docType DocumentType, clipID string, index int) string {
	return fmt.Sprintf("%s_%s_chunk_%03d", docType, clipID, index)
}

// ScoredChunk pairs a retrieved chunk with its query distance.
// Lower distance means more similar.
type ScoredChunk struct {
	Chunk Chunk

	// Distance is the index's similarity distance for the query.
	Distance float64
}
