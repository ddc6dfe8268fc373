// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/gavel-labs/gavel/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/gavel-labs/gavel/internal/adapters/driven/embedding/openai"
	anthropicgen "github.com/gavel-labs/gavel/internal/adapters/driven/generation/anthropic"
	chromaindex "github.com/gavel-labs/gavel/internal/adapters/driven/vector/chroma"
	"github.com/gavel-labs/gavel/internal/core/domain"
	"github.com/gavel-labs/gavel/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// CreateEmbeddingService creates the appropriate embedding service
// based on settings. Retrieval cannot run without one, so an
// unconfigured provider is an error rather than a fallback.
func CreateEmbeddingService(settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: run 'gavel settings wizard' to configure a provider",
			domain.ErrEmbeddingUnavailable)
	}

	switch settings.Provider {
	case domain.EmbeddingProviderOllama:
		return createOllamaEmbedding(settings), nil

	case domain.EmbeddingProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateAndValidateEmbeddingService creates an embedding service and
// validates connectivity. Returns the service if successful, or an
// error with guidance.
func CreateAndValidateEmbeddingService(settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'gavel settings wizard' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}

	return svc, nil
}

// ValidateEmbeddingSettings validates an embedding configuration by
// creating a service and pinging it. This is intended for the settings
// wizard to validate credentials on configuration.
func ValidateEmbeddingSettings(settings domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// CreateGenerationService creates the Anthropic generation service.
// The API key comes from settings, with the environment applied by the
// caller before this point.
func CreateGenerationService(settings domain.GenerationSettings) (driven.GenerationService, error) {
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: set ANTHROPIC_API_KEY or run 'gavel settings wizard'",
			domain.ErrGenerationUnavailable)
	}

	return anthropicgen.NewGenerationService(anthropicgen.Config{
		APIKey: settings.APIKey,
		Model:  settings.Model,
	})
}

// CreateVectorIndex opens the Chroma index using the given embedder.
func CreateVectorIndex(ctx context.Context, embedder driven.EmbeddingService, settings domain.IndexSettings) (driven.VectorIndex, error) {
	if embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	index, err := chromaindex.NewIndex(ctx, embedder, chromaindex.Config{
		URL:        settings.URL,
		Collection: settings.Collection,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}

	return index, nil
}

// createOllamaEmbedding creates an Ollama embedding service.
func createOllamaEmbedding(settings domain.EmbeddingSettings) driven.EmbeddingService {
	dimensions := domain.EmbeddingDimensions()[settings.Model]
	if dimensions == 0 {
		dimensions = ollamaembed.DefaultDimensions
	}

	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}
