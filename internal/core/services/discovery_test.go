package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gavel-labs/gavel/internal/core/domain"
)

// --- Mock implementations ---

// mockPortal implements driven.Portal for testing.
type mockPortal struct {
	meetings   []domain.Meeting
	listErr    error
	agendaErr  error
	minutesErr error
	fetched    []string
}

func (m *mockPortal) ListMeetings(_ context.Context) ([]domain.Meeting, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.meetings, nil
}

func (m *mockPortal) FetchAgenda(_ context.Context, url string) (*domain.RawDocument, error) {
	m.fetched = append(m.fetched, url)
	if m.agendaErr != nil {
		return nil, m.agendaErr
	}
	return &domain.RawDocument{
		SourceURL: url,
		Type:      domain.DocumentTypeAgenda,
		ClipID:    domain.ClipIDFromURL(url),
		Body:      []byte("<html></html>"),
		FetchedAt: time.Now(),
	}, nil
}

func (m *mockPortal) FetchMinutes(_ context.Context, url string) (*domain.RawDocument, error) {
	m.fetched = append(m.fetched, url)
	if m.minutesErr != nil {
		return nil, m.minutesErr
	}
	return &domain.RawDocument{
		SourceURL: url,
		Type:      domain.DocumentTypeMinutes,
		ClipID:    domain.ClipIDFromURL(url),
		Body:      []byte("%PDF-1.4"),
		FetchedAt: time.Now(),
	}, nil
}

func (m *mockPortal) ArchiveURL() string {
	return "https://ccsf.granicus.com/ViewPublisher.php?view_id=3"
}

// mockArtifactStore implements driven.ArtifactStore for testing.
type mockArtifactStore struct {
	discovery         *domain.DiscoveryResult
	discoveryErr      error
	writeDiscoveryErr error

	docs        map[string]*domain.Document
	existing    map[string]bool
	writeDocErr error

	readDocs    []domain.Document
	readDocsErr error

	chunks         map[string][]domain.Chunk
	writeChunksErr error

	report    *domain.ExtractionReport
	reportErr error
}

func newMockArtifactStore() *mockArtifactStore {
	return &mockArtifactStore{
		docs:     make(map[string]*domain.Document),
		existing: make(map[string]bool),
		chunks:   make(map[string][]domain.Chunk),
	}
}

func (m *mockArtifactStore) WriteDiscovery(_ context.Context, result *domain.DiscoveryResult) error {
	if m.writeDiscoveryErr != nil {
		return m.writeDiscoveryErr
	}
	m.discovery = result
	return nil
}

func (m *mockArtifactStore) ReadDiscovery(_ context.Context) (*domain.DiscoveryResult, error) {
	if m.discoveryErr != nil {
		return nil, m.discoveryErr
	}
	if m.discovery == nil {
		return nil, domain.ErrNoDocuments
	}
	return m.discovery, nil
}

func (m *mockArtifactStore) WriteDocument(_ context.Context, doc *domain.Document) error {
	if m.writeDocErr != nil {
		return m.writeDocErr
	}
	m.docs[doc.ID] = doc
	return nil
}

func (m *mockArtifactStore) DocumentExists(_ context.Context, id string) bool {
	return m.existing[id]
}

func (m *mockArtifactStore) ReadDocuments(_ context.Context) ([]domain.Document, error) {
	if m.readDocsErr != nil {
		return nil, m.readDocsErr
	}
	return m.readDocs, nil
}

func (m *mockArtifactStore) WriteChunks(_ context.Context, documentID string, chunks []domain.Chunk) error {
	if m.writeChunksErr != nil {
		return m.writeChunksErr
	}
	m.chunks[documentID] = chunks
	return nil
}

func (m *mockArtifactStore) WriteExtractionReport(_ context.Context, report *domain.ExtractionReport) error {
	if m.reportErr != nil {
		return m.reportErr
	}
	m.report = report
	return nil
}

// mockCatalogStore implements driven.CatalogStore for testing.
type mockCatalogStore struct {
	meetings  []domain.Meeting
	documents []domain.Document

	saveMeetingsErr  error
	saveDocumentErr  error
	listMeetingsErr  error
	listDocumentsErr error
}

func (m *mockCatalogStore) SaveMeetings(_ context.Context, meetings []domain.Meeting) error {
	if m.saveMeetingsErr != nil {
		return m.saveMeetingsErr
	}
	m.meetings = meetings
	return nil
}

func (m *mockCatalogStore) ListMeetings(_ context.Context) ([]domain.Meeting, error) {
	if m.listMeetingsErr != nil {
		return nil, m.listMeetingsErr
	}
	return m.meetings, nil
}

func (m *mockCatalogStore) GetMeeting(_ context.Context, id string) (*domain.Meeting, error) {
	for i := range m.meetings {
		if m.meetings[i].ID == id {
			return &m.meetings[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockCatalogStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	if m.saveDocumentErr != nil {
		return m.saveDocumentErr
	}
	m.documents = append(m.documents, *doc)
	return nil
}

func (m *mockCatalogStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	if m.listDocumentsErr != nil {
		return nil, m.listDocumentsErr
	}
	return m.documents, nil
}

func (m *mockCatalogStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	for i := range m.documents {
		if m.documents[i].ID == id {
			return &m.documents[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockCatalogStore) Close() error {
	return nil
}

// --- Test helpers ---

func viewerURL(page, clip string) string {
	return "https://ccsf.granicus.com/" + page + ".php?view_id=3&clip_id=" + clip
}

// --- Tests ---

func TestNewDiscoveryService(t *testing.T) {
	service := NewDiscoveryService(&mockPortal{}, newMockArtifactStore(), &mockCatalogStore{})
	require.NotNil(t, service)
}

func TestDiscoveryService_Discover(t *testing.T) {
	portal := &mockPortal{
		meetings: []domain.Meeting{
			{
				ID:        "meeting_2024_01_25",
				Date:      time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC),
				Title:     "Regular Board Meeting",
				AgendaURL: viewerURL("AgendaViewer", "2291"),
			},
			{
				ID:         "meeting_2024_02_22",
				Date:       time.Date(2024, 2, 22, 0, 0, 0, 0, time.UTC),
				Title:      "Regular Board Meeting",
				AgendaURL:  viewerURL("AgendaViewer", "2301"),
				MinutesURL: viewerURL("MinutesViewer", "2301"),
			},
		},
	}
	artifacts := newMockArtifactStore()
	catalog := &mockCatalogStore{}
	service := NewDiscoveryService(portal, artifacts, catalog)

	result, err := service.Discover(context.Background())

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Len(t, result.Meetings, 2)
	assert.Equal(t, portal.ArchiveURL(), result.SourceURL)
	assert.False(t, result.ScrapedAt.IsZero())
	assert.Equal(t, time.UTC, result.ScrapedAt.Location())

	// Newest first.
	assert.Equal(t, "meeting_2024_02_22", result.Meetings[0].ID)
	assert.Equal(t, "meeting_2024_01_25", result.Meetings[1].ID)

	// Persisted to both stores.
	assert.Equal(t, result, artifacts.discovery)
	assert.Len(t, catalog.meetings, 2)
}

func TestDiscoveryService_Discover_DedupesByClip(t *testing.T) {
	// The archive lists the same meeting in two tables: one row with
	// the agenda link, one with the minutes link.
	portal := &mockPortal{
		meetings: []domain.Meeting{
			{
				ID:        "meeting_2024_01_25",
				Date:      time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC),
				AgendaURL: viewerURL("AgendaViewer", "2291"),
			},
			{
				ID:         "meeting_2024_01_25",
				Date:       time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC),
				MinutesURL: viewerURL("MinutesViewer", "2291"),
			},
		},
	}
	service := NewDiscoveryService(portal, newMockArtifactStore(), nil)

	result, err := service.Discover(context.Background())

	require.NoError(t, err)
	require.Len(t, result.Meetings, 1)
	merged := result.Meetings[0]
	assert.Equal(t, viewerURL("AgendaViewer", "2291"), merged.AgendaURL)
	assert.Equal(t, viewerURL("MinutesViewer", "2291"), merged.MinutesURL)
}

func TestDiscoveryService_Discover_FirstRowWinsOnDuplicate(t *testing.T) {
	portal := &mockPortal{
		meetings: []domain.Meeting{
			{
				ID:        "meeting_2024_01_25",
				Date:      time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC),
				Title:     "Regular Board Meeting",
				AgendaURL: viewerURL("AgendaViewer", "2291"),
			},
			{
				ID:        "meeting_unknown_1",
				Title:     "Duplicate Row",
				AgendaURL: viewerURL("AgendaViewer", "2291"),
			},
		},
	}
	service := NewDiscoveryService(portal, newMockArtifactStore(), nil)

	result, err := service.Discover(context.Background())

	require.NoError(t, err)
	require.Len(t, result.Meetings, 1)
	assert.Equal(t, "meeting_2024_01_25", result.Meetings[0].ID)
	assert.Equal(t, "Regular Board Meeting", result.Meetings[0].Title)
}

func TestDiscoveryService_Discover_NoClipRowsPassThrough(t *testing.T) {
	// Rows without a clip id cannot be compared; both are kept.
	portal := &mockPortal{
		meetings: []domain.Meeting{
			{ID: "meeting_unknown_1", AgendaURL: "https://ccsf.granicus.com/agenda.html"},
			{ID: "meeting_unknown_2", AgendaURL: "https://ccsf.granicus.com/other.html"},
		},
	}
	service := NewDiscoveryService(portal, newMockArtifactStore(), nil)

	result, err := service.Discover(context.Background())

	require.NoError(t, err)
	assert.Len(t, result.Meetings, 2)
}

func TestDiscoveryService_Discover_UndatedMeetingsSortLast(t *testing.T) {
	portal := &mockPortal{
		meetings: []domain.Meeting{
			{ID: "meeting_unknown_1", AgendaURL: viewerURL("AgendaViewer", "900")},
			{ID: "meeting_2024_01_25", Date: time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC), AgendaURL: viewerURL("AgendaViewer", "2291")},
			{ID: "meeting_2024_03_28", Date: time.Date(2024, 3, 28, 0, 0, 0, 0, time.UTC), AgendaURL: viewerURL("AgendaViewer", "2310")},
		},
	}
	service := NewDiscoveryService(portal, newMockArtifactStore(), nil)

	result, err := service.Discover(context.Background())

	require.NoError(t, err)
	require.Len(t, result.Meetings, 3)
	assert.Equal(t, "meeting_2024_03_28", result.Meetings[0].ID)
	assert.Equal(t, "meeting_2024_01_25", result.Meetings[1].ID)
	assert.Equal(t, "meeting_unknown_1", result.Meetings[2].ID)
}

func TestDiscoveryService_Discover_ListError(t *testing.T) {
	portal := &mockPortal{listErr: errors.New("connection refused")}
	service := NewDiscoveryService(portal, newMockArtifactStore(), nil)

	_, err := service.Discover(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing meetings")
}

func TestDiscoveryService_Discover_WriteError(t *testing.T) {
	artifacts := newMockArtifactStore()
	artifacts.writeDiscoveryErr = errors.New("disk full")
	service := NewDiscoveryService(&mockPortal{}, artifacts, nil)

	_, err := service.Discover(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "writing discovery artifact")
}

func TestDiscoveryService_Discover_CatalogError(t *testing.T) {
	catalog := &mockCatalogStore{saveMeetingsErr: errors.New("locked")}
	service := NewDiscoveryService(&mockPortal{}, newMockArtifactStore(), catalog)

	_, err := service.Discover(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "cataloguing meetings")
}

func TestDiscoveryService_Discover_NilCatalog(t *testing.T) {
	service := NewDiscoveryService(&mockPortal{}, newMockArtifactStore(), nil)

	result, err := service.Discover(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, result)
}
