package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/gavel-labs/gavel/internal/core/domain"
	"github.com/gavel-labs/gavel/internal/core/ports/driven"
	"github.com/gavel-labs/gavel/internal/core/ports/driving"
	"github.com/gavel-labs/gavel/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

const (
	// defaultTopK is the retrieval depth when none is configured.
	defaultTopK = 5

	// previewLength caps citation previews, in runes.
	previewLength = 200
)

// Fixed answers for terminal states that are not errors.
const (
	noResultsAnswer = "I couldn't find any relevant information in the board meeting documents."

	emptyQuestionAnswer = "Please ask a question."

	// noContextPlaceholder stands in for retrieved context when chat
	// retrieval comes back empty; the model still answers from the
	// conversation.
	noContextPlaceholder = "No relevant documents found."
)

// QueryService answers questions over the indexed board records:
// retrieve nearest chunks, build the grounding context, generate.
type QueryService struct {
	index      driven.VectorIndex
	generator  driven.GenerationService
	prompts    driven.PromptStore
	generation domain.GenerationSettings
}

// NewQueryService creates a new query service. Both the index and the
// generation service must be present; missing ones surface here, not
// on first use.
func NewQueryService(
	index driven.VectorIndex,
	generator driven.GenerationService,
	prompts driven.PromptStore,
	generation domain.GenerationSettings,
) (*QueryService, error) {
	if index == nil {
		return nil, domain.ErrIndexUnavailable
	}
	if generator == nil {
		return nil, domain.ErrGenerationUnavailable
	}
	if prompts == nil {
		return nil, fmt.Errorf("prompt store is required")
	}

	return &QueryService{
		index:      index,
		generator:  generator,
		prompts:    prompts,
		generation: generation,
	}, nil
}

// Retrieve returns the k nearest chunks for a question. k <= 0 uses
// the configured top-K.
func (s *QueryService) Retrieve(ctx context.Context, question string, k int) ([]domain.ScoredChunk, error) {
	if k <= 0 {
		k = s.topK()
	}

	chunks, err := s.index.Query(ctx, question, k)
	if err != nil {
		return nil, fmt.Errorf("retrieving chunks: %w", err)
	}
	logger.Debug("Retrieved %d chunks for %q", len(chunks), question)
	return chunks, nil
}

// Query answers a single question. Zero retrieved chunks yields the
// fixed fallback answer without a generation call.
func (s *QueryService) Query(ctx context.Context, question string, k int, withSources bool) (*domain.Answer, error) {
	logger.Section("Query")
	logger.Debug("Question: %s", question)

	chunks, err := s.Retrieve(ctx, question, k)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return &domain.Answer{Text: noResultsAnswer}, nil
	}

	system, err := s.systemPrompt(formatContext(chunks))
	if err != nil {
		return nil, err
	}

	messages := []domain.ChatMessage{{Role: domain.RoleUser, Content: question}}
	gen, err := s.generator.Generate(ctx, system, messages, s.options())
	if err != nil {
		return nil, fmt.Errorf("generating answer: %w", err)
	}
	logger.Debug("Tokens: %d in, %d out", gen.Usage.InputTokens, gen.Usage.OutputTokens)

	answer := &domain.Answer{Text: gen.Text, Usage: &gen.Usage}
	if withSources {
		answer.Sources = citationsFromChunks(chunks, true)
	}
	return answer, nil
}

// Chat answers the latest user turn of a conversation. Retrieval uses
// the last user turn only; the whole history goes to the model. Empty
// retrieval still generates, with a placeholder context, so the model
// can answer follow-ups from the conversation itself.
func (s *QueryService) Chat(ctx context.Context, messages []domain.ChatMessage, k int) (*domain.Answer, error) {
	question := domain.LastUserMessage(messages)
	if strings.TrimSpace(question) == "" {
		return &domain.Answer{Text: emptyQuestionAnswer}, nil
	}

	chunks, err := s.Retrieve(ctx, question, k)
	if err != nil {
		return nil, err
	}

	contextText := noContextPlaceholder
	if len(chunks) > 0 {
		contextText = formatContext(chunks)
	}

	system, err := s.systemPrompt(contextText)
	if err != nil {
		return nil, err
	}

	gen, err := s.generator.Generate(ctx, system, messages, s.options())
	if err != nil {
		return nil, fmt.Errorf("generating answer: %w", err)
	}
	logger.Debug("Tokens: %d in, %d out", gen.Usage.InputTokens, gen.Usage.OutputTokens)

	return &domain.Answer{
		Text:    gen.Text,
		Sources: citationsFromChunks(chunks, false),
		Usage:   &gen.Usage,
	}, nil
}

// systemPrompt loads the answer instruction template and splices in
// the retrieved context.
func (s *QueryService) systemPrompt(contextText string) (string, error) {
	template, err := s.prompts.Load(driven.PromptAnswerSystem)
	if err != nil {
		return "", fmt.Errorf("loading system prompt: %w", err)
	}
	return fmt.Sprintf(template, contextText), nil
}

func (s *QueryService) options() driven.GenerateOptions {
	return driven.GenerateOptions{
		Temperature: s.generation.Temperature,
		MaxTokens:   s.generation.MaxTokens,
	}
}

func (s *QueryService) topK() int {
	if s.generation.TopK > 0 {
		return s.generation.TopK
	}
	return defaultTopK
}

// formatContext renders retrieved chunks as numbered, source-tagged
// blocks for the system prompt.
func formatContext(chunks []domain.ScoredChunk) string {
	parts := make([]string, 0, len(chunks))
	for i, sc := range chunks {
		parts = append(parts, fmt.Sprintf("--- Document %d %s ---\n%s", i+1, sourceRef(sc.Chunk), sc.Chunk.Content))
	}
	return strings.Join(parts, "\n\n")
}

// sourceRef builds the bracketed source tag for one chunk:
// "[AGENDA] Meeting 2291 - STUDENT SUCCESS".
func sourceRef(c domain.Chunk) string {
	ref := fmt.Sprintf("[%s]", strings.ToUpper(c.Type.String()))
	if c.ClipID != "" {
		ref += fmt.Sprintf(" Meeting %s", c.ClipID)
	}
	if c.Section != "" {
		ref += fmt.Sprintf(" - %s", c.Section)
	}
	return ref
}

// citationsFromChunks converts retrieval results into citations in
// rank order. Previews are included for one-shot queries and left off
// for chat turns, where the TUI renders sources compactly.
func citationsFromChunks(chunks []domain.ScoredChunk, withPreview bool) []domain.Citation {
	if len(chunks) == 0 {
		return nil
	}

	out := make([]domain.Citation, 0, len(chunks))
	for _, sc := range chunks {
		c := domain.Citation{
			ChunkID:      sc.Chunk.ID,
			DocumentType: sc.Chunk.Type,
			Section:      sc.Chunk.Section,
			Distance:     sc.Distance,
		}
		if withPreview {
			c.Preview = contentPreview(sc.Chunk.Content)
		}
		out = append(out, c)
	}
	return out
}

// contentPreview truncates chunk content for display, rune-safe.
func contentPreview(content string) string {
	runes := []rune(content)
	if len(runes) <= previewLength {
		return content
	}
	return string(runes[:previewLength]) + "..."
}
