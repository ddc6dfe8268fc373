package domain

import "time"

// RawDocument represents opaque bytes fetched from the portal.
// It is the fetcher's output before extraction.
type RawDocument struct {
	// SourceURL is the viewer page the content came from.
	SourceURL string

	// ResolvedURL is the final URL after redirects (the actual PDF
	// location for minutes). Empty when no redirect happened.
	ResolvedURL string

	// Type is the expected document type for this fetch.
	Type DocumentType

	// ClipID is the portal's identifier for the meeting's document set.
	ClipID string

	// ContentType is the reported MIME type, when the server sent one.
	ContentType string

	// Body is the raw bytes (HTML page or PDF file).
	Body []byte

	// FetchedAt is when the fetch completed.
	FetchedAt time.Time
}
