// Package tui provides the interactive terminal chat for gavel.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/gavel-labs/gavel/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Query answers questions over the indexed records.
	Query driving.QueryService

	// Meetings exposes the catalog for the meetings browser.
	Meetings driving.MeetingService

	// History persists chat sessions. Optional: a nil history keeps
	// the chat usable without persistence.
	History driving.HistoryService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(
	query driving.QueryService,
	meetings driving.MeetingService,
	history driving.HistoryService,
) *Ports {
	return &Ports{
		Query:    query,
		Meetings: meetings,
		History:  history,
	}
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Query == nil {
		return ErrMissingQueryService
	}
	if p.Meetings == nil {
		return ErrMissingMeetingService
	}
	return nil
}
