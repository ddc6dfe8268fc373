// Package anthropic provides the generation service adapter using the
// official Anthropic SDK.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"

	"github.com/gavel-labs/gavel/internal/core/domain"
	"github.com/gavel-labs/gavel/internal/core/ports/driven"
)

// Ensure GenerationService implements the interface.
var _ driven.GenerationService = (*GenerationService)(nil)

// Default configuration values.
const (
	DefaultModel     = "claude-sonnet-4-20250514"
	DefaultMaxTokens = 1024
)

// Config holds configuration for the Anthropic generation service.
type Config struct {
	// APIKey is the Anthropic API key (required).
	APIKey string

	// Model is the model to use (default: claude-sonnet-4-20250514).
	Model string
}

// GenerationService produces answers using the Anthropic Messages API.
type GenerationService struct {
	client *anthropic.Client
	model  string
}

// NewGenerationService creates a new Anthropic generation service.
// The key is required up front; a missing key fails here rather than
// on the first call.
func NewGenerationService(cfg Config) (*GenerationService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: %w", domain.ErrMissingAPIKey)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	client := anthropic.NewClient(
		anthropicopt.WithAPIKey(cfg.APIKey),
	)

	return &GenerationService{
		client: &client,
		model:  cfg.Model,
	}, nil
}

// Generate sends the system instruction plus conversation turns and
// returns the generated text with token usage.
func (s *GenerationService) Generate(ctx context.Context, system string, messages []domain.ChatMessage, opts driven.GenerateOptions) (*driven.Generation, error) {
	apiMessages := make([]anthropic.MessageParam, 0, len(messages))
	for _, msg := range messages {
		block := anthropic.NewTextBlock(msg.Content)
		if msg.Role == domain.RoleAssistant {
			apiMessages = append(apiMessages, anthropic.NewAssistantMessage(block))
		} else {
			apiMessages = append(apiMessages, anthropic.NewUserMessage(block))
		}
	}

	maxTokens := opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = DefaultMaxTokens
	}

	req := anthropic.MessageNewParams{
		Model:     anthropic.Model(s.model),
		MaxTokens: int64(maxTokens),
		Messages:  apiMessages,
	}
	if system != "" {
		req.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if opts.Temperature > 0 {
		req.Temperature = anthropic.Float(opts.Temperature)
	}

	rsp, err := s.client.Messages.New(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("anthropic request: %w", err)
	}

	var b strings.Builder
	for _, content := range rsp.Content {
		if text, ok := content.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(text.Text)
		}
	}
	if b.Len() == 0 {
		return nil, fmt.Errorf("anthropic: no response content returned")
	}

	return &driven.Generation{
		Text: b.String(),
		Usage: domain.TokenUsage{
			InputTokens:  rsp.Usage.InputTokens,
			OutputTokens: rsp.Usage.OutputTokens,
		},
	}, nil
}

// ModelName returns the name of the model being used.
func (s *GenerationService) ModelName() string {
	return s.model
}

// Close releases resources.
func (s *GenerationService) Close() error {
	// SDK client doesn't need explicit cleanup
	return nil
}
