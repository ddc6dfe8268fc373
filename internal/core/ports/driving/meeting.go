package driving

import (
	"context"
	"time"

	"github.com/gavel-labs/gavel/internal/core/domain"
)

// MeetingService exposes the local catalog to browser surfaces.
type MeetingService interface {
	// List returns catalogued meetings, newest first.
	List(ctx context.Context) ([]domain.Meeting, error)

	// Get returns one meeting.
	Get(ctx context.Context, id string) (*domain.Meeting, error)

	// Overview returns per-meeting extraction state for display.
	Overview(ctx context.Context) ([]MeetingOverview, error)

	// Document returns one catalogued document with content.
	Document(ctx context.Context, id string) (*domain.Document, error)
}

// MeetingOverview is a display row: a meeting plus what has been
// extracted for it.
type MeetingOverview struct {
	// Meeting is the catalogued meeting.
	Meeting domain.Meeting

	// HasAgenda reports whether an agenda document was extracted.
	HasAgenda bool

	// HasMinutes reports whether a minutes document was extracted.
	HasMinutes bool

	// ExtractedAt is the newest extraction time among its documents.
	ExtractedAt time.Time
}
