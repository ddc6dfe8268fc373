// Package domain defines the core business entities for Gavel.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Meeting: A board meeting discovered in the records portal
//   - Document: Extracted text of one agenda or minutes document
//   - Chunk: A retrieval-sized span of a document's text
//   - Answer: A generated answer with its source citations
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
