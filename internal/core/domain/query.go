package domain

// Role identifies who authored a chat message.
type Role string

const (
	// RoleUser is a human turn.
	RoleUser Role = "user"

	// RoleAssistant is a generated turn.
	RoleAssistant Role = "assistant"
)

// ChatMessage is one turn in a conversation.
type ChatMessage struct {
	// Role is the message author.
	Role Role

	// Content is the message text.
	Content string
}

// LastUserMessage returns the most recent user turn, or "" when the
// history holds none. Retrieval is driven by this turn only.
func LastUserMessage(messages []ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			return messages[i].Content
		}
	}
	return ""
}

// TokenUsage holds the generation service's token counters for one call.
type TokenUsage struct {
	// InputTokens is the prompt-side count.
	InputTokens int64

	// OutputTokens is the completion-side count.
	OutputTokens int64
}

// Add accumulates another call's usage, for session totals.
func (u *TokenUsage) Add(other TokenUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
}

// Citation points an answer back at one retrieved chunk so any claim
// can be verified against its source span.
type Citation struct {
	// ChunkID identifies the cited chunk.
	ChunkID string

	// DocumentType is the cited document's type.
	DocumentType DocumentType

	// Section is the chunk's section label.
	Section string

	// Distance is the retrieval distance (lower = more similar).
	Distance float64

	// Preview is a truncated view of the chunk content.
	Preview string
}

// Relevance converts distance into a 0..1-ish similarity for display.
func (c Citation) Relevance() float64 {
	return 1 - c.Distance
}

// Answer is the result of one query or chat call. Transient, never
// persisted by the query engine itself.
type Answer struct {
	// Text is the generated answer, or a fixed fallback when
	// retrieval found nothing.
	Text string

	// Sources lists citations in retrieval-rank order. Empty when
	// sources were not requested or nothing was retrieved.
	Sources []Citation

	// Usage holds token counters. Nil when the generation service
	// was never called.
	Usage *TokenUsage
}
