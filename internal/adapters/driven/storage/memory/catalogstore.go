// Package memory provides in-memory implementations of the storage
// ports. They back a run when the SQLite catalog cannot be opened;
// nothing written here survives the process.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/gavel-labs/gavel/internal/core/domain"
	"github.com/gavel-labs/gavel/internal/core/ports/driven"
)

// Ensure CatalogStore implements the interface.
var _ driven.CatalogStore = (*CatalogStore)(nil)

// CatalogStore is an in-memory implementation of driven.CatalogStore.
type CatalogStore struct {
	mu        sync.RWMutex
	meetings  map[string]domain.Meeting
	documents map[string]domain.Document
}

// NewCatalogStore creates a new in-memory catalog store.
func NewCatalogStore() *CatalogStore {
	return &CatalogStore{
		meetings:  make(map[string]domain.Meeting),
		documents: make(map[string]domain.Document),
	}
}

// SaveMeetings upserts discovered meetings by ID.
func (s *CatalogStore) SaveMeetings(_ context.Context, meetings []domain.Meeting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, meeting := range meetings {
		if meeting.ID == "" {
			return domain.ErrInvalidInput
		}
		s.meetings[meeting.ID] = meeting
	}
	return nil
}

// ListMeetings returns all meetings, newest first. Meetings without a
// parseable date sort last.
func (s *CatalogStore) ListMeetings(_ context.Context) ([]domain.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var meetings []domain.Meeting //nolint:prealloc // symmetric with the SQLite store
	for id := range s.meetings {
		meetings = append(meetings, s.meetings[id])
	}

	sort.Slice(meetings, func(i, j int) bool {
		a, b := meetings[i], meetings[j]
		if a.Date.IsZero() != b.Date.IsZero() {
			return !a.Date.IsZero()
		}
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		return a.ID < b.ID
	})

	return meetings, nil
}

// GetMeeting retrieves a meeting by ID.
func (s *CatalogStore) GetMeeting(_ context.Context, id string) (*domain.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	meeting, ok := s.meetings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &meeting, nil
}

// SaveDocument stores or updates an extracted document.
func (s *CatalogStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	if doc.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = *doc
	return nil
}

// ListDocuments returns all catalogued documents without content,
// ordered by clip ID then type.
func (s *CatalogStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var docs []domain.Document //nolint:prealloc // symmetric with the SQLite store
	for id := range s.documents {
		doc := s.documents[id]
		doc.Content = ""
		doc.Sections = nil
		doc.Pages = nil
		docs = append(docs, doc)
	}

	sort.Slice(docs, func(i, j int) bool {
		if docs[i].ClipID != docs[j].ClipID {
			return docs[i].ClipID < docs[j].ClipID
		}
		return docs[i].Type < docs[j].Type
	})

	return docs, nil
}

// GetDocument retrieves a document with content by ID.
func (s *CatalogStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// Close is a no-op for the in-memory store.
func (s *CatalogStore) Close() error {
	return nil
}
