// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/gavel-labs/gavel/internal/core/domain"
	"github.com/gavel-labs/gavel/internal/core/ports/driving"
)

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewChat is the question/answer chat view.
	ViewChat ViewType = iota
	// ViewMeetings is the meetings browser.
	ViewMeetings
	// ViewDocument shows one extracted document's text.
	ViewDocument
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewChat:
		return "chat"
	case ViewMeetings:
		return "meetings"
	case ViewDocument:
		return "document"
	default:
		return "unknown"
	}
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// AnswerReceived carries the result of one chat turn back to the model.
// Session is non-nil when history persistence started or continued a
// session inside the command; the model adopts it on receipt.
type AnswerReceived struct {
	Answer  *domain.Answer
	Session *domain.ChatSession
	Err     error
}

// MeetingsLoaded carries the meetings overview from the catalog.
type MeetingsLoaded struct {
	Rows []driving.MeetingOverview
	Err  error
}

// DocumentRequested is sent when the meetings browser asks to open an
// extracted document.
type DocumentRequested struct {
	DocumentID string
}

// DocumentLoaded carries one extracted document with content.
type DocumentLoaded struct {
	Document *domain.Document
	Err      error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
