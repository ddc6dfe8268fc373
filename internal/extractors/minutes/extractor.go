// Package minutes extracts text from board meeting minutes PDFs.
package minutes

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/gavel-labs/gavel/internal/core/domain"
	"github.com/gavel-labs/gavel/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor parses minutes PDFs into per-page plain text.
type Extractor struct{}

// New creates a new minutes extractor.
func New() *Extractor {
	return &Extractor{}
}

// Type returns the document type this extractor handles.
func (e *Extractor) Type() domain.DocumentType {
	return domain.DocumentTypeMinutes
}

// Extract pulls the text of every page and joins them into the document
// content. The underlying parser panics on malformed files, so panics
// are converted into errors here.
func (e *Extractor) Extract(_ context.Context, raw *domain.RawDocument) (doc *domain.Document, err error) {
	if raw == nil || len(raw.Body) == 0 {
		return nil, domain.ErrInvalidInput
	}

	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("parsing minutes PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(raw.Body), int64(len(raw.Body)))
	if err != nil {
		return nil, fmt.Errorf("parsing minutes PDF: %w", err)
	}

	clipID := raw.ClipID
	if clipID == "" {
		clipID = domain.ClipIDFromURL(raw.SourceURL)
	}

	pageCount := reader.NumPage()
	pages := make([]domain.Page, 0, pageCount)
	texts := make([]string, 0, pageCount)

	for i := 1; i <= pageCount; i++ {
		page := reader.Page(i)

		text := ""
		if !page.V.IsNull() {
			// A page that cannot be decoded is recorded as empty
			// rather than failing the whole document.
			if t, perr := page.GetPlainText(nil); perr == nil {
				text = t
			}
		}

		pages = append(pages, domain.Page{Number: i, Text: text})
		texts = append(texts, text)
	}

	content := strings.Join(texts, "\n\n")

	return &domain.Document{
		ID:             domain.DocumentID(domain.DocumentTypeMinutes, clipID),
		Type:           domain.DocumentTypeMinutes,
		ClipID:         clipID,
		SourceURL:      raw.SourceURL,
		Content:        content,
		Pages:          pages,
		ExtractedAt:    time.Now(),
		CharacterCount: len(content),
		WordCount:      len(strings.Fields(content)),
	}, nil
}
