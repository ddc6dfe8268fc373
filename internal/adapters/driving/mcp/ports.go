package mcp

import (
	"github.com/gavel-labs/gavel/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the MCP
// server. This provides a single injection point for dependency
// injection.
type Ports struct {
	// Query answers questions and runs retrieval over the index.
	Query driving.QueryService

	// Meetings exposes the catalog for the resource endpoints.
	// Optional: without it the meeting resources report empty.
	Meetings driving.MeetingService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Query == nil {
		return ErrMissingQueryService
	}
	return nil
}
