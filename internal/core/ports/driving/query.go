package driving

import (
	"context"

	"github.com/gavel-labs/gavel/internal/core/domain"
)

// QueryService answers questions over the indexed board records.
type QueryService interface {
	// Retrieve returns the k nearest chunks for a question, ranked
	// by ascending distance.
	Retrieve(ctx context.Context, question string, k int) ([]domain.ScoredChunk, error)

	// Query answers a single question. k <= 0 uses the configured
	// top-K. Zero retrieved chunks is a defined terminal state with
	// a fixed fallback answer, not an error.
	Query(ctx context.Context, question string, k int, withSources bool) (*domain.Answer, error)

	// Chat answers the latest user turn of a conversation. The full
	// history shapes the answer; retrieval uses the last user turn
	// only.
	Chat(ctx context.Context, messages []domain.ChatMessage, k int) (*domain.Answer, error)
}
