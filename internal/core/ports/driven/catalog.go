package driven

import (
	"context"

	"github.com/gavel-labs/gavel/internal/core/domain"
)

// CatalogStore is the local catalog of discovered meetings and
// extracted documents, used by the browser views and reporting.
// The JSON artifacts remain the pipeline's interchange format; the
// catalog mirrors them for querying.
type CatalogStore interface {
	// SaveMeetings upserts discovered meetings by ID.
	SaveMeetings(ctx context.Context, meetings []domain.Meeting) error

	// ListMeetings returns all meetings, newest first.
	ListMeetings(ctx context.Context) ([]domain.Meeting, error)

	// GetMeeting returns one meeting or domain.ErrNotFound.
	GetMeeting(ctx context.Context, id string) (*domain.Meeting, error)

	// SaveDocument upserts one extracted document by ID.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// ListDocuments returns all catalogued documents without content.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// GetDocument returns one document with content, or
	// domain.ErrNotFound.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// Close releases the underlying handle.
	Close() error
}

// ChatStore persists chat sessions and their turns.
type ChatStore interface {
	// CreateSession records a new session.
	CreateSession(ctx context.Context, session *domain.ChatSession) error

	// AppendMessage appends one turn to a session.
	AppendMessage(ctx context.Context, msg *domain.StoredMessage) error

	// Messages returns a session's turns in order.
	Messages(ctx context.Context, sessionID string) ([]domain.StoredMessage, error)

	// Sessions returns recent sessions, newest first.
	Sessions(ctx context.Context, limit int) ([]domain.ChatSession, error)

	// Close releases the underlying handle.
	Close() error
}
