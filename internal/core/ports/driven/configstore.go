package driven

import "github.com/gavel-labs/gavel/internal/core/domain"

// ConfigStore persists application settings.
type ConfigStore interface {
	// Load reads stored settings, falling back to defaults for
	// anything unset. A missing file is not an error.
	Load() (*domain.Settings, error)

	// Save writes settings back.
	Save(settings *domain.Settings) error

	// Path returns the backing file location, for display.
	Path() string
}
