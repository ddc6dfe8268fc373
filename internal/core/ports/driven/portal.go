package driven

import (
	"context"

	"github.com/gavel-labs/gavel/internal/core/domain"
)

// Portal fetches from the municipal records portal. Implementations
// throttle successive requests with a courtesy rate limit.
type Portal interface {
	// ListMeetings scrapes the archive listing into meeting records.
	// The result is not deduplicated or sorted; discovery owns that.
	ListMeetings(ctx context.Context) ([]domain.Meeting, error)

	// FetchAgenda downloads an agenda viewer page.
	FetchAgenda(ctx context.Context, url string) (*domain.RawDocument, error)

	// FetchMinutes resolves a minutes viewer URL to the underlying
	// PDF and downloads it. Returns domain.ErrNotPDF when the target
	// is not a PDF.
	FetchMinutes(ctx context.Context, url string) (*domain.RawDocument, error)

	// ArchiveURL returns the listing URL being scraped, for reports.
	ArchiveURL() string
}
