package driven

import (
	"context"

	"github.com/gavel-labs/gavel/internal/core/domain"
)

// GenerateOptions controls a single generation call.
type GenerateOptions struct {
	// Temperature is the sampling temperature.
	Temperature float64

	// MaxTokens bounds the output length.
	MaxTokens int
}

// Generation is the service's response to one call.
type Generation struct {
	// Text is the generated answer.
	Text string

	// Usage holds the service's token counters for the call.
	Usage domain.TokenUsage
}

// GenerationService produces answers from a system instruction and a
// conversation. Failures propagate to the caller; there is no retry.
type GenerationService interface {
	// Generate sends the system instruction plus conversation turns
	// and returns the generated text with token usage.
	Generate(ctx context.Context, system string, messages []domain.ChatMessage, opts GenerateOptions) (*Generation, error)

	// ModelName returns the model identifier in use.
	ModelName() string

	// Close releases resources.
	Close() error
}
