package domain

import "time"

// ChatSession is one persisted conversation with the chat front-end.
type ChatSession struct {
	// ID is a generated unique identifier.
	ID string

	// StartedAt is when the session began.
	StartedAt time.Time

	// Title is a short label, usually the first question asked.
	Title string
}

// StoredMessage is a chat message as persisted in history, with the
// citations that accompanied an assistant turn.
type StoredMessage struct {
	// SessionID links to the parent session.
	SessionID string

	// Seq is the 0-based position within the session.
	Seq int

	// Message is the turn itself.
	Message ChatMessage

	// Sources holds the citations shown with an assistant turn.
	Sources []Citation

	// CreatedAt is when the turn was recorded.
	CreatedAt time.Time
}
