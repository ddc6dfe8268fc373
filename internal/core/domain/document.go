package domain

import (
	"fmt"
	"net/url"
	"time"
)

// DocumentType identifies which kind of board document a record holds.
type DocumentType string

const (
	// DocumentTypeAgenda is an HTML agenda page.
	DocumentTypeAgenda DocumentType = "agenda"

	// DocumentTypeMinutes is a PDF minutes document.
	DocumentTypeMinutes DocumentType = "minutes"
)

// IsValid returns true if the document type is recognised.
func (t DocumentType) IsValid() bool {
	return t == DocumentTypeAgenda || t == DocumentTypeMinutes
}

// String returns the string representation.
func (t DocumentType) String() string {
	return string(t)
}

// Document represents the extracted text of one agenda or minutes
// document. Content is the authoritative text for chunking; Sections
// (agendas) and Pages (minutes) preserve the source structure.
type Document struct {
	// ID is the unique identifier, {type}_{clipID}.
	ID string

	// Type distinguishes agendas from minutes.
	Type DocumentType

	// ClipID is the portal's identifier for this meeting's document set.
	ClipID string

	// SourceURL is the viewer page the document was fetched from.
	SourceURL string

	// Title is the document header, when one was found.
	Title string

	// Content is the full normalised text.
	Content string

	// Sections is the ordered agenda section tree. Nil for minutes
	// and for agendas whose structure could not be parsed.
	Sections []Section

	// Pages holds per-page text for minutes. Nil for agendas.
	Pages []Page

	// ExtractedAt is when extraction ran.
	ExtractedAt time.Time

	// CharacterCount is len(Content), recorded for reporting.
	CharacterCount int

	// WordCount is recorded for minutes documents.
	WordCount int
}

// Section is one numbered agenda section.
type Section struct {
	// Number is the section ordinal as printed ("1", "2", ...).
	Number string

	// Title is the section heading text.
	Title string

	// Items is the ordered list of lettered items.
	Items []Item
}

// Item is one lettered item within an agenda section.
type Item struct {
	// Letter is the item ordinal as printed ("A", "B", ...).
	Letter string

	// Text is the item text.
	Text string
}

// Page is one page of a minutes PDF.
type Page struct {
	// Number is the 1-based page number.
	Number int

	// Text is the extracted page text.
	Text string
}

// HasSections reports whether the document carries a usable section
// tree. Chunking strategy dispatch keys off this.
func (d *Document) HasSections() bool {
	return d != nil && len(d.Sections) > 0
}

// DocumentID builds the canonical document identifier.
func DocumentID(docType DocumentType, clipID string) string {
	return fmt.Sprintf("%s_%s", docType, clipID)
}

// ClipIDFromURL pulls the clip_id query parameter from a viewer URL.
// Document identity hangs off this value, so every caller derives it
// the same way. Returns "unknown" when the URL carries no clip_id.
func ClipIDFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "unknown"
	}
	if id := u.Query().Get("clip_id"); id != "" {
		return id
	}
	return "unknown"
}
