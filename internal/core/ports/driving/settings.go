package driving

import "github.com/gavel-labs/gavel/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get returns current settings (stored values over defaults).
	Get() (*domain.Settings, error)

	// Save persists settings.
	Save(settings *domain.Settings) error

	// SetEmbeddingProvider configures the embedding provider.
	SetEmbeddingProvider(provider domain.EmbeddingProvider, model, baseURL, apiKey string) error

	// SetGenerationKey stores the generation API key.
	SetGenerationKey(apiKey string) error

	// SetGenerationModel sets the generation model identifier.
	SetGenerationModel(model string) error

	// SetPortal points the scraper at a different archive.
	SetPortal(baseURL string, viewID int) error

	// Validate checks the configuration is usable.
	Validate() error
}
