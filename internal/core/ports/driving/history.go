package driving

import (
	"context"

	"github.com/gavel-labs/gavel/internal/core/domain"
)

// HistoryService records chat conversations for later inspection.
type HistoryService interface {
	// StartSession opens a new persisted session. Title is a short
	// label, usually the first question asked.
	StartSession(ctx context.Context, title string) (*domain.ChatSession, error)

	// Record appends one turn to a session.
	Record(ctx context.Context, sessionID string, msg domain.ChatMessage, sources []domain.Citation) error

	// RecentSessions returns recent sessions, newest first.
	RecentSessions(ctx context.Context, limit int) ([]domain.ChatSession, error)

	// SessionMessages returns a session's turns in order.
	SessionMessages(ctx context.Context, sessionID string) ([]domain.StoredMessage, error)
}
