package chat

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gavel-labs/gavel/internal/adapters/driving/tui/messages"
	"github.com/gavel-labs/gavel/internal/core/domain"
)

// MockQueryService implements driving.QueryService for testing.
type MockQueryService struct {
	RetrieveFunc func(ctx context.Context, question string, k int) ([]domain.ScoredChunk, error)
	QueryFunc    func(ctx context.Context, question string, k int, withSources bool) (*domain.Answer, error)
	ChatFunc     func(ctx context.Context, messages []domain.ChatMessage, k int) (*domain.Answer, error)
}

func (m *MockQueryService) Retrieve(ctx context.Context, question string, k int) ([]domain.ScoredChunk, error) {
	if m.RetrieveFunc != nil {
		return m.RetrieveFunc(ctx, question, k)
	}
	return nil, nil
}

func (m *MockQueryService) Query(ctx context.Context, question string, k int, withSources bool) (*domain.Answer, error) {
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, question, k, withSources)
	}
	return &domain.Answer{}, nil
}

func (m *MockQueryService) Chat(ctx context.Context, messages []domain.ChatMessage, k int) (*domain.Answer, error) {
	if m.ChatFunc != nil {
		return m.ChatFunc(ctx, messages, k)
	}
	return &domain.Answer{Text: "mock answer"}, nil
}

// MockHistoryService implements driving.HistoryService for testing.
type MockHistoryService struct {
	StartSessionFunc    func(ctx context.Context, title string) (*domain.ChatSession, error)
	RecordFunc          func(ctx context.Context, sessionID string, msg domain.ChatMessage, sources []domain.Citation) error
	RecentSessionsFunc  func(ctx context.Context, limit int) ([]domain.ChatSession, error)
	SessionMessagesFunc func(ctx context.Context, sessionID string) ([]domain.StoredMessage, error)
}

func (m *MockHistoryService) StartSession(ctx context.Context, title string) (*domain.ChatSession, error) {
	if m.StartSessionFunc != nil {
		return m.StartSessionFunc(ctx, title)
	}
	return &domain.ChatSession{ID: "session-1", Title: title}, nil
}

func (m *MockHistoryService) Record(ctx context.Context, sessionID string, msg domain.ChatMessage, sources []domain.Citation) error {
	if m.RecordFunc != nil {
		return m.RecordFunc(ctx, sessionID, msg, sources)
	}
	return nil
}

func (m *MockHistoryService) RecentSessions(ctx context.Context, limit int) ([]domain.ChatSession, error) {
	if m.RecentSessionsFunc != nil {
		return m.RecentSessionsFunc(ctx, limit)
	}
	return nil, nil
}

func (m *MockHistoryService) SessionMessages(ctx context.Context, sessionID string) ([]domain.StoredMessage, error) {
	if m.SessionMessagesFunc != nil {
		return m.SessionMessagesFunc(ctx, sessionID)
	}
	return nil, nil
}

func newTestView() *View {
	return NewView(nil, nil, &MockQueryService{}, &MockHistoryService{})
}

func TestNewView(t *testing.T) {
	view := newTestView()

	require.NotNil(t, view)
	assert.False(t, view.ready)
	assert.False(t, view.thinking)
	assert.Nil(t, view.session)
	assert.Empty(t, view.entries)
	assert.Equal(t, 80, view.width)
	assert.Equal(t, 24, view.height)
}

func TestNewView_NilStyles(t *testing.T) {
	view := NewView(nil, nil, &MockQueryService{}, nil)

	require.NotNil(t, view)
	assert.NotNil(t, view.styles)
	assert.NotNil(t, view.keymap)
}

func TestView_WithContext(t *testing.T) {
	view := newTestView()

	type contextKey string
	ctx := context.WithValue(context.Background(), contextKey("key"), "value")
	result := view.WithContext(ctx)

	assert.Equal(t, view, result)
}

func TestView_Init(t *testing.T) {
	view := newTestView()

	cmd := view.Init()

	assert.NotNil(t, cmd)
}

func TestView_Update_WindowSize(t *testing.T) {
	view := newTestView()

	msg := tea.WindowSizeMsg{Width: 100, Height: 40}
	view, cmd := view.Update(msg)

	assert.Nil(t, cmd)
	assert.True(t, view.Ready())
	assert.Equal(t, 100, view.Width())
	assert.Equal(t, 40, view.Height())
}

func TestView_Submit_EmptyInput(t *testing.T) {
	view := newTestView()
	view.SetDimensions(80, 24)

	msg := tea.KeyMsg{Type: tea.KeyEnter}
	view, cmd := view.Update(msg)

	assert.Nil(t, cmd)
	assert.False(t, view.Thinking())
	assert.Empty(t, view.Messages())
}

func TestView_Submit_StartsThinking(t *testing.T) {
	view := newTestView()
	view.SetDimensions(80, 24)
	view.SetInputValue("What consent items were discussed?")

	msg := tea.KeyMsg{Type: tea.KeyEnter}
	view, cmd := view.Update(msg)

	assert.NotNil(t, cmd)
	assert.True(t, view.Thinking())
	require.Len(t, view.Messages(), 1)
	assert.Equal(t, domain.RoleUser, view.Messages()[0].Role)
	assert.Equal(t, "What consent items were discussed?", view.Messages()[0].Content)
	assert.Empty(t, view.InputValue())
}

func TestView_Submit_IgnoredWhileThinking(t *testing.T) {
	view := newTestView()
	view.SetDimensions(80, 24)
	view.SetInputValue("first question")
	view, _ = view.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, view.Thinking())

	view.SetInputValue("second question")
	view, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Len(t, view.Messages(), 1)
}

func TestView_Ask_Success(t *testing.T) {
	var recorded []domain.ChatMessage
	var started int
	query := &MockQueryService{
		ChatFunc: func(_ context.Context, msgs []domain.ChatMessage, _ int) (*domain.Answer, error) {
			return &domain.Answer{
				Text:  "The board approved three requests.",
				Usage: &domain.TokenUsage{InputTokens: 120, OutputTokens: 48},
			}, nil
		},
	}
	history := &MockHistoryService{
		StartSessionFunc: func(_ context.Context, title string) (*domain.ChatSession, error) {
			started++
			return &domain.ChatSession{ID: "session-42", Title: title}, nil
		},
		RecordFunc: func(_ context.Context, sessionID string, msg domain.ChatMessage, _ []domain.Citation) error {
			assert.Equal(t, "session-42", sessionID)
			recorded = append(recorded, msg)
			return nil
		},
	}
	view := NewView(nil, nil, query, history)

	result := view.ask("What travel requests were approved?")()

	answer, ok := result.(messages.AnswerReceived)
	require.True(t, ok)
	require.NoError(t, answer.Err)
	assert.Equal(t, "The board approved three requests.", answer.Answer.Text)
	require.NotNil(t, answer.Session)
	assert.Equal(t, "session-42", answer.Session.ID)
	assert.Equal(t, 1, started)
	require.Len(t, recorded, 2)
	assert.Equal(t, domain.RoleUser, recorded[0].Role)
	assert.Equal(t, domain.RoleAssistant, recorded[1].Role)
}

func TestView_Ask_ReusesSession(t *testing.T) {
	var started int
	history := &MockHistoryService{
		StartSessionFunc: func(_ context.Context, title string) (*domain.ChatSession, error) {
			started++
			return &domain.ChatSession{ID: "session-1", Title: title}, nil
		},
	}
	view := NewView(nil, nil, &MockQueryService{}, history)
	view.session = &domain.ChatSession{ID: "session-1"}

	result := view.ask("follow-up question")()

	answer, ok := result.(messages.AnswerReceived)
	require.True(t, ok)
	require.NoError(t, answer.Err)
	assert.Equal(t, 0, started)
	assert.Equal(t, "session-1", answer.Session.ID)
}

func TestView_Ask_NilHistory(t *testing.T) {
	view := NewView(nil, nil, &MockQueryService{}, nil)

	result := view.ask("question without persistence")()

	answer, ok := result.(messages.AnswerReceived)
	require.True(t, ok)
	require.NoError(t, answer.Err)
	assert.Nil(t, answer.Session)
	assert.Equal(t, "mock answer", answer.Answer.Text)
}

func TestView_Ask_HistoryFailureDoesNotBreakChat(t *testing.T) {
	history := &MockHistoryService{
		StartSessionFunc: func(_ context.Context, _ string) (*domain.ChatSession, error) {
			return nil, errors.New("disk full")
		},
	}
	view := NewView(nil, nil, &MockQueryService{}, history)

	result := view.ask("question")()

	answer, ok := result.(messages.AnswerReceived)
	require.True(t, ok)
	require.NoError(t, answer.Err)
	assert.Nil(t, answer.Session)
}

func TestView_Ask_ServiceError(t *testing.T) {
	query := &MockQueryService{
		ChatFunc: func(_ context.Context, _ []domain.ChatMessage, _ int) (*domain.Answer, error) {
			return nil, errors.New("generation failed")
		},
	}
	view := NewView(nil, nil, query, &MockHistoryService{})

	result := view.ask("question")()

	answer, ok := result.(messages.AnswerReceived)
	require.True(t, ok)
	assert.Error(t, answer.Err)
	// The started session still rides back so the next turn reuses it
	assert.NotNil(t, answer.Session)
}

func TestView_Ask_NilQueryService(t *testing.T) {
	view := NewView(nil, nil, nil, nil)

	result := view.ask("question")()

	answer, ok := result.(messages.AnswerReceived)
	require.True(t, ok)
	assert.ErrorIs(t, answer.Err, ErrNoQueryService)
}

func TestView_Ask_PassesTopK(t *testing.T) {
	var gotK int
	query := &MockQueryService{
		ChatFunc: func(_ context.Context, _ []domain.ChatMessage, k int) (*domain.Answer, error) {
			gotK = k
			return &domain.Answer{Text: "ok"}, nil
		},
	}
	view := NewView(nil, nil, query, nil)
	view.SetTopK(7)

	view.ask("question")()

	assert.Equal(t, 7, gotK)
}

func TestView_HandleAnswer_Success(t *testing.T) {
	view := newTestView()
	view.SetDimensions(80, 24)
	view.thinking = true

	msg := messages.AnswerReceived{
		Answer: &domain.Answer{
			Text:  "The board has seven trustees.",
			Usage: &domain.TokenUsage{InputTokens: 200, OutputTokens: 80},
		},
		Session: &domain.ChatSession{ID: "session-9"},
	}
	view, cmd := view.Update(msg)

	assert.Nil(t, cmd)
	assert.False(t, view.Thinking())
	assert.NoError(t, view.Err())
	require.Len(t, view.Messages(), 1)
	assert.Equal(t, domain.RoleAssistant, view.Messages()[0].Role)
	require.NotNil(t, view.Session())
	assert.Equal(t, "session-9", view.Session().ID)
	assert.Equal(t, int64(200), view.Usage().InputTokens)
	assert.Equal(t, int64(80), view.Usage().OutputTokens)
}

func TestView_HandleAnswer_AccumulatesUsage(t *testing.T) {
	view := newTestView()
	view.SetDimensions(80, 24)

	view, _ = view.Update(messages.AnswerReceived{
		Answer: &domain.Answer{Text: "one", Usage: &domain.TokenUsage{InputTokens: 100, OutputTokens: 40}},
	})
	view, _ = view.Update(messages.AnswerReceived{
		Answer: &domain.Answer{Text: "two", Usage: &domain.TokenUsage{InputTokens: 50, OutputTokens: 10}},
	})

	assert.Equal(t, int64(150), view.Usage().InputTokens)
	assert.Equal(t, int64(50), view.Usage().OutputTokens)
}

func TestView_HandleAnswer_Error(t *testing.T) {
	view := newTestView()
	view.SetDimensions(80, 24)
	view.thinking = true

	msg := messages.AnswerReceived{Err: errors.New("generation failed")}
	view, cmd := view.Update(msg)

	assert.Nil(t, cmd)
	assert.False(t, view.Thinking())
	assert.Error(t, view.Err())
	assert.Empty(t, view.Messages())
}

func TestView_Update_ErrorOccurred(t *testing.T) {
	view := newTestView()

	msg := messages.ErrorOccurred{Err: errors.New("something went wrong")}
	view, cmd := view.Update(msg)

	assert.Nil(t, cmd)
	assert.Error(t, view.Err())
}

func TestView_Reset(t *testing.T) {
	view := newTestView()
	view.SetDimensions(80, 24)
	view.session = &domain.ChatSession{ID: "session-1"}
	view.entries = []entry{{message: domain.ChatMessage{Role: domain.RoleUser, Content: "question"}}}
	view.statusbar.AddUsage(domain.TokenUsage{InputTokens: 10, OutputTokens: 5})
	view.SetInputValue("half-typed")

	view.Reset()

	assert.Empty(t, view.Messages())
	assert.Nil(t, view.Session())
	assert.False(t, view.Thinking())
	assert.Empty(t, view.InputValue())
	assert.Equal(t, domain.TokenUsage{}, view.Usage())
}

func TestView_ClearHistoryKey(t *testing.T) {
	view := newTestView()
	view.SetDimensions(80, 24)
	view.entries = []entry{{message: domain.ChatMessage{Role: domain.RoleUser, Content: "question"}}}

	msg := tea.KeyMsg{Type: tea.KeyCtrlL}
	view, cmd := view.Update(msg)

	assert.Nil(t, cmd)
	assert.Empty(t, view.Messages())
}

func TestView_View_Welcome(t *testing.T) {
	view := newTestView()
	view.SetDimensions(80, 24)

	rendered := view.View()

	assert.Contains(t, rendered, "Gavel")
	assert.Contains(t, rendered, "Example questions")
	assert.Contains(t, rendered, "What travel requests were recently approved?")
}

func TestView_View_NotReady(t *testing.T) {
	view := newTestView()

	rendered := view.View()

	assert.Contains(t, rendered, "Initialising")
}

func TestView_View_ShowsSources(t *testing.T) {
	view := newTestView()
	view.SetDimensions(120, 40)
	view, _ = view.Update(messages.AnswerReceived{
		Answer: &domain.Answer{
			Text: "The Student Success item covered tutoring.",
			Sources: []domain.Citation{
				{
					ChunkID:      "agenda_2291_chunk_003",
					DocumentType: domain.DocumentTypeAgenda,
					Section:      "STUDENT SUCCESS",
					Distance:     0.12,
				},
			},
		},
	})

	rendered := view.View()

	assert.Contains(t, rendered, "Sources (1)")
	assert.Contains(t, rendered, "[AGENDA]")
}

func TestFormatSource(t *testing.T) {
	tests := []struct {
		name     string
		rank     int
		citation domain.Citation
		want     string
	}{
		{
			name: "agenda with section",
			rank: 1,
			citation: domain.Citation{
				ChunkID:      "agenda_2291_chunk_003",
				DocumentType: domain.DocumentTypeAgenda,
				Section:      "STUDENT SUCCESS",
				Distance:     0.12,
			},
			want: "1. [AGENDA] Meeting 2291 - STUDENT SUCCESS (relevance 88.00%)",
		},
		{
			name: "minutes without section",
			rank: 2,
			citation: domain.Citation{
				ChunkID:      "minutes_2291_chunk_000",
				DocumentType: domain.DocumentTypeMinutes,
				Distance:     0.4,
			},
			want: "2. [MINUTES] Meeting 2291 (relevance 60.00%)",
		},
		{
			name: "unparseable chunk id",
			rank: 3,
			citation: domain.Citation{
				ChunkID:      "custom-id",
				DocumentType: domain.DocumentTypeAgenda,
				Distance:     0,
			},
			want: "3. [AGENDA] (relevance 100.00%)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatSource(tt.rank, tt.citation))
		})
	}
}

func TestMeetingClip(t *testing.T) {
	tests := []struct {
		name     string
		citation domain.Citation
		want     string
	}{
		{
			name: "agenda chunk",
			citation: domain.Citation{
				ChunkID:      "agenda_2291_chunk_003",
				DocumentType: domain.DocumentTypeAgenda,
			},
			want: "2291",
		},
		{
			name: "minutes chunk",
			citation: domain.Citation{
				ChunkID:      "minutes_1847_chunk_000",
				DocumentType: domain.DocumentTypeMinutes,
			},
			want: "1847",
		},
		{
			name: "no chunk marker",
			citation: domain.Citation{
				ChunkID:      "agenda_2291",
				DocumentType: domain.DocumentTypeAgenda,
			},
			want: "",
		},
		{
			name: "type mismatch",
			citation: domain.Citation{
				ChunkID:      "minutes_2291_chunk_000",
				DocumentType: domain.DocumentTypeAgenda,
			},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, meetingClip(tt.citation))
		})
	}
}
