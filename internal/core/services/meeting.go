package services

import (
	"context"
	"fmt"

	"github.com/gavel-labs/gavel/internal/core/domain"
	"github.com/gavel-labs/gavel/internal/core/ports/driven"
	"github.com/gavel-labs/gavel/internal/core/ports/driving"
)

// Ensure MeetingService implements the interface.
var _ driving.MeetingService = (*MeetingService)(nil)

// MeetingService exposes the local catalog to the browser surfaces.
type MeetingService struct {
	catalog driven.CatalogStore
}

// NewMeetingService creates a new meeting service.
func NewMeetingService(catalog driven.CatalogStore) *MeetingService {
	return &MeetingService{catalog: catalog}
}

// List returns catalogued meetings, newest first.
func (s *MeetingService) List(ctx context.Context) ([]domain.Meeting, error) {
	meetings, err := s.catalog.ListMeetings(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing meetings: %w", err)
	}
	return meetings, nil
}

// Get returns one meeting.
func (s *MeetingService) Get(ctx context.Context, id string) (*domain.Meeting, error) {
	meeting, err := s.catalog.GetMeeting(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting meeting %s: %w", id, err)
	}
	return meeting, nil
}

// Document returns one catalogued document with content.
func (s *MeetingService) Document(ctx context.Context, id string) (*domain.Document, error) {
	doc, err := s.catalog.GetDocument(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting document %s: %w", id, err)
	}
	return doc, nil
}

// Overview joins meetings with their extracted documents. Meetings
// and documents share no foreign key; the join runs over the clip id
// both sides derive from the viewer URLs.
func (s *MeetingService) Overview(ctx context.Context) ([]driving.MeetingOverview, error) {
	meetings, err := s.catalog.ListMeetings(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing meetings: %w", err)
	}

	docs, err := s.catalog.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	byID := make(map[string]domain.Document, len(docs))
	for _, d := range docs {
		byID[d.ID] = d
	}

	overviews := make([]driving.MeetingOverview, 0, len(meetings))
	for _, m := range meetings {
		row := driving.MeetingOverview{Meeting: m}

		if clip := meetingClipID(m); clip != "" {
			if d, ok := byID[domain.DocumentID(domain.DocumentTypeAgenda, clip)]; ok {
				row.HasAgenda = true
				if d.ExtractedAt.After(row.ExtractedAt) {
					row.ExtractedAt = d.ExtractedAt
				}
			}
			if d, ok := byID[domain.DocumentID(domain.DocumentTypeMinutes, clip)]; ok {
				row.HasMinutes = true
				if d.ExtractedAt.After(row.ExtractedAt) {
					row.ExtractedAt = d.ExtractedAt
				}
			}
		}

		overviews = append(overviews, row)
	}

	return overviews, nil
}
