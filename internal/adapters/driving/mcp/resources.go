package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gavel-labs/gavel/internal/core/domain"
)

// uriScheme is the custom URI scheme for gavel resources.
const uriScheme = "gavel://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for the meeting catalog.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "meetings",
		Name:        "meetings",
		Description: "Catalogued board meetings and their extraction state",
		MIMEType:    "application/json",
	}, s.handleMeetingsResource)

	// Template for extracted document text.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "documents/{documentId}",
		Name:        "document-content",
		Description: "Extracted text of one agenda or minutes document",
		MIMEType:    "text/plain",
	}, s.handleDocumentResource)
}

// handleMeetingsResource returns the meeting catalog overview.
func (s *Server) handleMeetingsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Meetings == nil {
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     "[]",
			}},
		}, nil
	}

	rows, err := s.ports.Meetings.Overview(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing meetings: %w", err)
	}

	// Build simplified meeting list.
	type meetingInfo struct {
		ID         string `json:"id"`
		Date       string `json:"date,omitempty"`
		Title      string `json:"title,omitempty"`
		HasAgenda  bool   `json:"has_agenda"`
		HasMinutes bool   `json:"has_minutes"`
	}

	infos := make([]meetingInfo, len(rows))
	for i, r := range rows {
		info := meetingInfo{
			ID:         r.Meeting.ID,
			Title:      r.Meeting.Title,
			HasAgenda:  r.HasAgenda,
			HasMinutes: r.HasMinutes,
		}
		if !r.Meeting.Date.IsZero() {
			info.Date = r.Meeting.Date.Format("2006-01-02")
		}
		infos[i] = info
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling meetings: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleDocumentResource returns the extracted text of one document.
func (s *Server) handleDocumentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Meetings == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// Extract documentId from URI: gavel://documents/{documentId}
	docID := extractDocumentID(req.Params.URI)
	if docID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	doc, err := s.ports.Meetings.Document(ctx, docID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		return nil, fmt.Errorf("reading document: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     doc.Content,
		}},
	}, nil
}

// extractDocumentID extracts the document ID from a URI like gavel://documents/{documentId}.
func extractDocumentID(uri string) string {
	const prefix = uriScheme + "documents/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return strings.TrimPrefix(uri, prefix)
}
