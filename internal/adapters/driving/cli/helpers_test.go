package cli

import (
	"context"
	"time"

	"github.com/gavel-labs/gavel/internal/core/domain"
	"github.com/gavel-labs/gavel/internal/core/ports/driving"
)

// Mock services for command tests. Each knob covers the happy path by
// default; set err to exercise failures.

type mockDiscoveryService struct {
	result *domain.DiscoveryResult
	err    error
}

func (m *mockDiscoveryService) Discover(_ context.Context) (*domain.DiscoveryResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

type mockExtractionService struct {
	report  *domain.ExtractionReport
	err     error
	gotOpts domain.ExtractOptions
}

func (m *mockExtractionService) Run(_ context.Context, opts domain.ExtractOptions) (*domain.ExtractionReport, error) {
	m.gotOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	return m.report, nil
}

type mockIndexService struct {
	report   *domain.BuildReport
	stats    *domain.IndexStats
	chunks   []domain.ScoredChunk
	err      error
	gotOpts  domain.BuildOptions
	gotQuery string
	gotN     int
	watched  int
}

func (m *mockIndexService) Build(_ context.Context, opts domain.BuildOptions) (*domain.BuildReport, error) {
	m.gotOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	return m.report, nil
}

func (m *mockIndexService) Stats(_ context.Context) (*domain.IndexStats, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.stats, nil
}

func (m *mockIndexService) TestQuery(_ context.Context, text string, n int) ([]domain.ScoredChunk, error) {
	m.gotQuery = text
	m.gotN = n
	if m.err != nil {
		return nil, m.err
	}
	return m.chunks, nil
}

func (m *mockIndexService) Watch(_ context.Context) error {
	m.watched++
	return m.err
}

type mockQueryService struct {
	answer      *domain.Answer
	chunks      []domain.ScoredChunk
	err         error
	gotQuestion string
	gotK        int
}

func (m *mockQueryService) Retrieve(_ context.Context, question string, k int) ([]domain.ScoredChunk, error) {
	m.gotQuestion = question
	m.gotK = k
	if m.err != nil {
		return nil, m.err
	}
	return m.chunks, nil
}

func (m *mockQueryService) Query(_ context.Context, question string, k int, _ bool) (*domain.Answer, error) {
	m.gotQuestion = question
	m.gotK = k
	if m.err != nil {
		return nil, m.err
	}
	return m.answer, nil
}

func (m *mockQueryService) Chat(_ context.Context, messages []domain.ChatMessage, k int) (*domain.Answer, error) {
	m.gotQuestion = domain.LastUserMessage(messages)
	m.gotK = k
	if m.err != nil {
		return nil, m.err
	}
	return m.answer, nil
}

type mockMeetingService struct {
	meetings []domain.Meeting
	meeting  *domain.Meeting
	rows     []driving.MeetingOverview
	document *domain.Document
	err      error
}

func (m *mockMeetingService) List(_ context.Context) ([]domain.Meeting, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.meetings, nil
}

func (m *mockMeetingService) Get(_ context.Context, _ string) (*domain.Meeting, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.meeting, nil
}

func (m *mockMeetingService) Overview(_ context.Context) ([]driving.MeetingOverview, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.rows, nil
}

func (m *mockMeetingService) Document(_ context.Context, _ string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.document, nil
}

type mockSettingsService struct {
	settings    *domain.Settings
	err         error
	validateErr error
}

func (m *mockSettingsService) Get() (*domain.Settings, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.settings == nil {
		defaults := domain.DefaultSettings()
		return &defaults, nil
	}
	return m.settings, nil
}

func (m *mockSettingsService) Save(_ *domain.Settings) error { return m.err }

func (m *mockSettingsService) SetEmbeddingProvider(_ domain.EmbeddingProvider, _, _, _ string) error {
	return m.err
}

func (m *mockSettingsService) SetGenerationKey(_ string) error   { return m.err }
func (m *mockSettingsService) SetGenerationModel(_ string) error { return m.err }
func (m *mockSettingsService) SetPortal(_ string, _ int) error   { return m.err }
func (m *mockSettingsService) Validate() error                   { return m.validateErr }

type mockHistoryService struct {
	session  *domain.ChatSession
	sessions []domain.ChatSession
	messages []domain.StoredMessage
	err      error
}

func (m *mockHistoryService) StartSession(_ context.Context, title string) (*domain.ChatSession, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.session != nil {
		return m.session, nil
	}
	return &domain.ChatSession{ID: "session-1", Title: title}, nil
}

func (m *mockHistoryService) Record(_ context.Context, _ string, _ domain.ChatMessage, _ []domain.Citation) error {
	return m.err
}

func (m *mockHistoryService) RecentSessions(_ context.Context, _ int) ([]domain.ChatSession, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.sessions, nil
}

func (m *mockHistoryService) SessionMessages(_ context.Context, _ string) ([]domain.StoredMessage, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.messages, nil
}

// setupTestServices swaps the package services for populated mocks
// and returns a cleanup that restores the originals.
func setupTestServices() func() {
	origDiscovery := discoveryService
	origExtraction := extractionService
	origIndex := indexService
	origQuery := queryService
	origMeetings := meetingService
	origSettings := settingsService
	origHistory := historyService

	meeting := domain.Meeting{
		ID:         "meeting_2024_01_05",
		Date:       time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		Title:      "Regular Board Meeting",
		AgendaURL:  "https://ccsf.granicus.com/AgendaViewer.php?view_id=3&clip_id=2291",
		MinutesURL: "https://ccsf.granicus.com/MinutesViewer.php?view_id=3&clip_id=2291",
	}

	discoveryService = &mockDiscoveryService{
		result: &domain.DiscoveryResult{
			ScrapedAt: time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC),
			SourceURL: "https://ccsf.granicus.com/ViewPublisher.php?view_id=3",
			Meetings: []domain.Meeting{
				meeting,
				{ID: "meeting_2023_12_14", Date: time.Date(2023, 12, 14, 0, 0, 0, 0, time.UTC), Title: "Special Meeting"},
			},
		},
	}
	extractionService = &mockExtractionService{
		report: &domain.ExtractionReport{
			RunID:     "run-1",
			Timestamp: time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC),
			Extracted: 3,
			Skipped:   1,
		},
	}
	indexService = &mockIndexService{
		report: &domain.BuildReport{
			Documents:     2,
			TotalChunks:   10,
			AgendaChunks:  6,
			MinutesChunks: 4,
		},
		stats: &domain.IndexStats{
			Collection:    "board_documents",
			TotalChunks:   124,
			DocumentTypes: map[string]int{"agenda": 3, "minutes": 2},
			SampleSize:    5,
		},
		chunks: []domain.ScoredChunk{
			{
				Chunk: domain.Chunk{
					ID:      "agenda_2291_chunk_000",
					Type:    domain.DocumentTypeAgenda,
					ClipID:  "2291",
					Section: "STUDENT SUCCESS",
					Content: "Presentation on enrollment growth and student outcomes.",
				},
				Distance: 0.12,
			},
		},
	}
	queryService = &mockQueryService{
		answer: &domain.Answer{
			Text: "The board approved the travel request.",
			Sources: []domain.Citation{
				{
					ChunkID:      "agenda_2291_chunk_003",
					DocumentType: domain.DocumentTypeAgenda,
					Section:      "REQUESTS TO TRAVEL",
					Distance:     0.2,
				},
			},
			Usage: &domain.TokenUsage{InputTokens: 120, OutputTokens: 48},
		},
	}
	meetingService = &mockMeetingService{
		rows: []driving.MeetingOverview{
			{
				Meeting:     meeting,
				HasAgenda:   true,
				HasMinutes:  true,
				ExtractedAt: time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC),
			},
			{
				Meeting: domain.Meeting{ID: "meeting_2023_12_14", Date: time.Date(2023, 12, 14, 0, 0, 0, 0, time.UTC)},
			},
		},
	}
	settingsService = &mockSettingsService{}
	historyService = &mockHistoryService{}

	return func() {
		discoveryService = origDiscovery
		extractionService = origExtraction
		indexService = origIndex
		queryService = origQuery
		meetingService = origMeetings
		settingsService = origSettings
		historyService = origHistory
	}
}
