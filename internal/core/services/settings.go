package services

import (
	"fmt"
	"os"
	"strings"

	"github.com/gavel-labs/gavel/internal/core/domain"
	"github.com/gavel-labs/gavel/internal/core/ports/driven"
	"github.com/gavel-labs/gavel/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// defaultOllamaURL is applied when a local provider is selected
// without an explicit endpoint.
const defaultOllamaURL = "http://localhost:11434"

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get returns current settings, stored values over defaults. The
// result never folds in environment overrides; those apply only when
// services are built, so a later Save cannot leak an environment key
// into the config file.
func (s *SettingsService) Get() (*domain.Settings, error) {
	settings, err := s.configStore.Load()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	return settings, nil
}

// Save persists settings.
func (s *SettingsService) Save(settings *domain.Settings) error {
	if err := s.configStore.Save(settings); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	return nil
}

// SetEmbeddingProvider configures the embedding provider. An empty
// model selects the provider's default. Local providers keep or gain
// a base URL; cloud providers never carry one.
func (s *SettingsService) SetEmbeddingProvider(provider domain.EmbeddingProvider, model, baseURL, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider

	if model != "" {
		settings.Embedding.Model = model
	} else if defaultModel, ok := domain.DefaultEmbeddingModels()[provider]; ok {
		settings.Embedding.Model = defaultModel
	}

	if provider.IsLocal() {
		if baseURL != "" {
			settings.Embedding.BaseURL = baseURL
		}
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = defaultOllamaURL
		}
	} else {
		settings.Embedding.BaseURL = ""
	}

	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetGenerationKey stores the generation API key.
func (s *SettingsService) SetGenerationKey(apiKey string) error {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return fmt.Errorf("API key must not be empty")
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Generation.APIKey = apiKey
	return s.Save(settings)
}

// SetGenerationModel sets the generation model identifier.
func (s *SettingsService) SetGenerationModel(model string) error {
	model = strings.TrimSpace(model)
	if model == "" {
		return fmt.Errorf("model must not be empty")
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Generation.Model = model
	return s.Save(settings)
}

// SetPortal points the scraper at a different archive listing.
func (s *SettingsService) SetPortal(baseURL string, viewID int) error {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return fmt.Errorf("portal base URL must not be empty")
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return fmt.Errorf("portal base URL must start with http:// or https://")
	}
	if viewID <= 0 {
		return fmt.Errorf("view ID must be positive")
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Portal.BaseURL = baseURL
	settings.Portal.ViewID = viewID
	return s.Save(settings)
}

// Validate checks the configuration is usable end to end. The
// generation key may come from the environment instead of the store.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if settings.Portal.BaseURL == "" {
		return fmt.Errorf("portal base URL is not set")
	}
	if settings.Portal.ViewID <= 0 {
		return fmt.Errorf("portal view ID is not set")
	}
	if settings.Data.Dir == "" {
		return fmt.Errorf("data directory is not set")
	}
	if settings.Index.URL == "" {
		return fmt.Errorf("index URL is not set")
	}
	if settings.Index.Collection == "" {
		return fmt.Errorf("index collection is not set")
	}
	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("embedding provider %s is not fully configured", settings.Embedding.Provider)
	}
	if !settings.Generation.IsConfigured() && os.Getenv("ANTHROPIC_API_KEY") == "" {
		return fmt.Errorf("generation API key is not set (run the settings wizard or export ANTHROPIC_API_KEY)")
	}

	c := settings.Chunking
	if c.MinSize <= 0 || c.TargetSize < c.MinSize || c.MaxSize < c.TargetSize {
		return fmt.Errorf("chunking sizes must satisfy 0 < min <= target <= max")
	}

	return nil
}
