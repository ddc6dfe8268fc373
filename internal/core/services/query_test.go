package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gavel-labs/gavel/internal/core/domain"
	"github.com/gavel-labs/gavel/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockGenerationService implements driven.GenerationService for testing.
type mockGenerationService struct {
	text        string
	usage       domain.TokenUsage
	generateErr error

	calls        int
	lastSystem   string
	lastMessages []domain.ChatMessage
	lastOpts     driven.GenerateOptions
}

func (m *mockGenerationService) Generate(_ context.Context, system string, messages []domain.ChatMessage, opts driven.GenerateOptions) (*driven.Generation, error) {
	m.calls++
	m.lastSystem = system
	m.lastMessages = messages
	m.lastOpts = opts
	if m.generateErr != nil {
		return nil, m.generateErr
	}
	text := m.text
	if text == "" {
		text = "generated answer"
	}
	return &driven.Generation{Text: text, Usage: m.usage}, nil
}

func (m *mockGenerationService) ModelName() string {
	return "mock-model"
}

func (m *mockGenerationService) Close() error {
	return nil
}

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	template string
	loadErr  error
}

func (m *mockPromptStore) Load(_ string) (string, error) {
	if m.loadErr != nil {
		return "", m.loadErr
	}
	if m.template != "" {
		return m.template, nil
	}
	return "Answer from the records below.\n\nCONTEXT:\n%s", nil
}

func (m *mockPromptStore) Reload() {}

// --- Test helpers ---

func retrievedChunks() []domain.ScoredChunk {
	return []domain.ScoredChunk{
		{
			Chunk: domain.Chunk{
				ID:      "agenda_2291_chunk_000",
				Type:    domain.DocumentTypeAgenda,
				ClipID:  "2291",
				Section: "STUDENT SUCCESS",
				Content: "Enrollment is up this semester.",
			},
			Distance: 0.12,
		},
		{
			Chunk: domain.Chunk{
				ID:      "minutes_2291_chunk_003",
				Type:    domain.DocumentTypeMinutes,
				ClipID:  "2291",
				Section: "body",
				Content: "The board approved the budget.",
			},
			Distance: 0.34,
		},
	}
}

func newTestQueryService(t *testing.T, index *mockVectorIndex, gen *mockGenerationService) *QueryService {
	t.Helper()
	settings := domain.DefaultSettings().Generation
	service, err := NewQueryService(index, gen, &mockPromptStore{}, settings)
	require.NoError(t, err)
	return service
}

// --- Tests ---

func TestNewQueryService_NilIndex(t *testing.T) {
	_, err := NewQueryService(nil, &mockGenerationService{}, &mockPromptStore{}, domain.GenerationSettings{})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
}

func TestNewQueryService_NilGenerator(t *testing.T) {
	_, err := NewQueryService(&mockVectorIndex{}, nil, &mockPromptStore{}, domain.GenerationSettings{})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGenerationUnavailable)
}

func TestQueryService_Retrieve(t *testing.T) {
	index := &mockVectorIndex{queryHits: retrievedChunks()}
	service := newTestQueryService(t, index, &mockGenerationService{})

	results, err := service.Retrieve(context.Background(), "enrollment", 1)

	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, "enrollment", index.lastQuery)
}

func TestQueryService_Retrieve_DefaultTopK(t *testing.T) {
	index := &mockVectorIndex{queryHits: retrievedChunks()}
	service := newTestQueryService(t, index, &mockGenerationService{})

	results, err := service.Retrieve(context.Background(), "enrollment", 0)

	require.NoError(t, err)
	// Configured top-K (5) exceeds the hit count; everything comes back.
	assert.Len(t, results, 2)
}

func TestQueryService_Retrieve_Error(t *testing.T) {
	index := &mockVectorIndex{queryErr: errors.New("connection refused")}
	service := newTestQueryService(t, index, &mockGenerationService{})

	_, err := service.Retrieve(context.Background(), "enrollment", 5)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "retrieving chunks")
}

func TestQueryService_Query(t *testing.T) {
	index := &mockVectorIndex{queryHits: retrievedChunks()}
	gen := &mockGenerationService{
		text:  "Enrollment increased.",
		usage: domain.TokenUsage{InputTokens: 120, OutputTokens: 40},
	}
	service := newTestQueryService(t, index, gen)

	answer, err := service.Query(context.Background(), "How is enrollment?", 0, true)

	require.NoError(t, err)
	assert.Equal(t, "Enrollment increased.", answer.Text)
	require.NotNil(t, answer.Usage)
	assert.Equal(t, int64(120), answer.Usage.InputTokens)
	assert.Equal(t, int64(40), answer.Usage.OutputTokens)

	// The question goes over as a single user turn.
	require.Len(t, gen.lastMessages, 1)
	assert.Equal(t, domain.RoleUser, gen.lastMessages[0].Role)
	assert.Equal(t, "How is enrollment?", gen.lastMessages[0].Content)

	// Retrieved chunks are spliced into the system instruction.
	assert.Contains(t, gen.lastSystem, "--- Document 1 [AGENDA] Meeting 2291 - STUDENT SUCCESS ---")
	assert.Contains(t, gen.lastSystem, "Enrollment is up this semester.")
	assert.Contains(t, gen.lastSystem, "--- Document 2 [MINUTES] Meeting 2291 - body ---")

	// Configured sampling options are passed through.
	assert.InDelta(t, 0.3, gen.lastOpts.Temperature, 0.0001)
	assert.Equal(t, 1024, gen.lastOpts.MaxTokens)
}

func TestQueryService_Query_SourcesWithPreviews(t *testing.T) {
	index := &mockVectorIndex{queryHits: retrievedChunks()}
	service := newTestQueryService(t, index, &mockGenerationService{})

	answer, err := service.Query(context.Background(), "How is enrollment?", 0, true)

	require.NoError(t, err)
	require.Len(t, answer.Sources, 2)
	first := answer.Sources[0]
	assert.Equal(t, "agenda_2291_chunk_000", first.ChunkID)
	assert.Equal(t, domain.DocumentTypeAgenda, first.DocumentType)
	assert.Equal(t, "STUDENT SUCCESS", first.Section)
	assert.InDelta(t, 0.12, first.Distance, 0.0001)
	assert.Equal(t, "Enrollment is up this semester.", first.Preview)
}

func TestQueryService_Query_WithoutSources(t *testing.T) {
	index := &mockVectorIndex{queryHits: retrievedChunks()}
	service := newTestQueryService(t, index, &mockGenerationService{})

	answer, err := service.Query(context.Background(), "How is enrollment?", 0, false)

	require.NoError(t, err)
	assert.Empty(t, answer.Sources)
}

func TestQueryService_Query_NoResults(t *testing.T) {
	gen := &mockGenerationService{}
	service := newTestQueryService(t, &mockVectorIndex{}, gen)

	answer, err := service.Query(context.Background(), "Anything?", 0, true)

	require.NoError(t, err)
	assert.Equal(t, "I couldn't find any relevant information in the board meeting documents.", answer.Text)
	assert.Empty(t, answer.Sources)
	assert.Nil(t, answer.Usage)
	// The model is never consulted without context.
	assert.Equal(t, 0, gen.calls)
}

func TestQueryService_Query_GenerateError(t *testing.T) {
	index := &mockVectorIndex{queryHits: retrievedChunks()}
	gen := &mockGenerationService{generateErr: errors.New("overloaded")}
	service := newTestQueryService(t, index, gen)

	_, err := service.Query(context.Background(), "How is enrollment?", 0, false)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "generating answer")
}

func TestQueryService_Query_PromptError(t *testing.T) {
	prompts := &mockPromptStore{loadErr: errors.New("unknown prompt")}
	service, err := NewQueryService(&mockVectorIndex{queryHits: retrievedChunks()}, &mockGenerationService{}, prompts, domain.GenerationSettings{})
	require.NoError(t, err)

	_, err = service.Query(context.Background(), "How is enrollment?", 0, false)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading system prompt")
}

func TestQueryService_Chat(t *testing.T) {
	index := &mockVectorIndex{queryHits: retrievedChunks()}
	gen := &mockGenerationService{text: "It passed unanimously."}
	service := newTestQueryService(t, index, gen)

	history := []domain.ChatMessage{
		{Role: domain.RoleUser, Content: "How is enrollment?"},
		{Role: domain.RoleAssistant, Content: "Enrollment increased."},
		{Role: domain.RoleUser, Content: "And the budget vote?"},
	}

	answer, err := service.Chat(context.Background(), history, 0)

	require.NoError(t, err)
	assert.Equal(t, "It passed unanimously.", answer.Text)

	// Retrieval keys off the last user turn only.
	assert.Equal(t, "And the budget vote?", index.lastQuery)

	// The model sees the whole conversation.
	assert.Len(t, gen.lastMessages, 3)

	// Chat sources carry no previews.
	require.Len(t, answer.Sources, 2)
	assert.Empty(t, answer.Sources[0].Preview)
	assert.Equal(t, "agenda_2291_chunk_000", answer.Sources[0].ChunkID)
}

func TestQueryService_Chat_NoUserTurn(t *testing.T) {
	gen := &mockGenerationService{}
	service := newTestQueryService(t, &mockVectorIndex{}, gen)

	answer, err := service.Chat(context.Background(), nil, 0)

	require.NoError(t, err)
	assert.Equal(t, "Please ask a question.", answer.Text)
	assert.Equal(t, 0, gen.calls)
}

func TestQueryService_Chat_EmptyRetrievalStillGenerates(t *testing.T) {
	// Follow-up turns can be answerable from the conversation alone,
	// so an empty retrieval does not short-circuit chat.
	gen := &mockGenerationService{text: "As I said, it passed."}
	service := newTestQueryService(t, &mockVectorIndex{}, gen)

	history := []domain.ChatMessage{{Role: domain.RoleUser, Content: "Repeat that?"}}
	answer, err := service.Chat(context.Background(), history, 0)

	require.NoError(t, err)
	assert.Equal(t, "As I said, it passed.", answer.Text)
	assert.Equal(t, 1, gen.calls)
	assert.Contains(t, gen.lastSystem, "No relevant documents found.")
	assert.Empty(t, answer.Sources)
}

func TestQueryService_Chat_RetrieveError(t *testing.T) {
	index := &mockVectorIndex{queryErr: errors.New("connection refused")}
	service := newTestQueryService(t, index, &mockGenerationService{})

	history := []domain.ChatMessage{{Role: domain.RoleUser, Content: "Anything?"}}
	_, err := service.Chat(context.Background(), history, 0)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "retrieving chunks")
}

func TestFormatContext(t *testing.T) {
	got := formatContext(retrievedChunks())

	want := "--- Document 1 [AGENDA] Meeting 2291 - STUDENT SUCCESS ---\n" +
		"Enrollment is up this semester.\n\n" +
		"--- Document 2 [MINUTES] Meeting 2291 - body ---\n" +
		"The board approved the budget."
	assert.Equal(t, want, got)
}

func TestSourceRef(t *testing.T) {
	tests := []struct {
		name  string
		chunk domain.Chunk
		want  string
	}{
		{
			name:  "type only",
			chunk: domain.Chunk{Type: domain.DocumentTypeAgenda},
			want:  "[AGENDA]",
		},
		{
			name:  "with clip",
			chunk: domain.Chunk{Type: domain.DocumentTypeMinutes, ClipID: "2291"},
			want:  "[MINUTES] Meeting 2291",
		},
		{
			name:  "with clip and section",
			chunk: domain.Chunk{Type: domain.DocumentTypeAgenda, ClipID: "2291", Section: "FACILITIES"},
			want:  "[AGENDA] Meeting 2291 - FACILITIES",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sourceRef(tt.chunk))
		})
	}
}

func TestContentPreview(t *testing.T) {
	short := "short content"
	assert.Equal(t, short, contentPreview(short))

	long := strings.Repeat("a", 250)
	got := contentPreview(long)
	assert.Len(t, []rune(got), 203)
	assert.True(t, strings.HasSuffix(got, "..."))
}
