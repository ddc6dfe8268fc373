package file

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/gavel-labs/gavel/internal/core/domain"
	"github.com/gavel-labs/gavel/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore is a file-based implementation of driven.ConfigStore using TOML.
// Settings are stored in a TOML file within the gavel config directory.
// Keys missing from the file keep their defaults, so a partial file
// (or no file at all) always loads cleanly.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
}

// NewConfigStore creates a new TOML-based config store.
// If configDir is empty, defaults to ~/.gavel/config.toml.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".gavel")
	}

	// Ensure directory exists
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	return &ConfigStore{
		filePath: filepath.Join(configDir, "config.toml"),
	}, nil
}

// Load reads settings from the TOML file, overlaying them on the
// defaults. A missing file returns the defaults unchanged.
func (s *ConfigStore) Load() (*domain.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	settings := domain.DefaultSettings()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			// No config file yet - that's fine, run on defaults
			return &settings, nil
		}
		return nil, err
	}

	cfg := settingsToConfig(settings)
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	settings = configToSettings(cfg)
	return &settings, nil
}

// Save persists settings to disk.
func (s *ConfigStore) Save(settings *domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := settingsToConfig(*settings)
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	// Write with restricted permissions; the file may hold API keys
	return os.WriteFile(s.filePath, data, 0600)
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}

// config mirrors domain.Settings with TOML field names. Unmarshalling
// over a pre-populated value leaves absent keys at their defaults.
type config struct {
	Portal     portalConfig     `toml:"portal"`
	Data       dataConfig       `toml:"data"`
	Index      indexConfig      `toml:"index"`
	Embedding  embeddingConfig  `toml:"embedding"`
	Generation generationConfig `toml:"generation"`
	Chunking   chunkingConfig   `toml:"chunking"`
}

type portalConfig struct {
	BaseURL           string  `toml:"base_url"`
	ViewID            int     `toml:"view_id"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

type dataConfig struct {
	Dir string `toml:"dir"`
}

type indexConfig struct {
	URL        string `toml:"url"`
	Collection string `toml:"collection"`
}

type embeddingConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	BaseURL  string `toml:"base_url"`
	APIKey   string `toml:"api_key"`
}

type generationConfig struct {
	Model       string  `toml:"model"`
	APIKey      string  `toml:"api_key"`
	Temperature float64 `toml:"temperature"`
	MaxTokens   int     `toml:"max_tokens"`
	TopK        int     `toml:"top_k"`
}

type chunkingConfig struct {
	MinSize    int `toml:"min_size"`
	TargetSize int `toml:"target_size"`
	MaxSize    int `toml:"max_size"`
}

func settingsToConfig(s domain.Settings) config {
	return config{
		Portal: portalConfig{
			BaseURL:           s.Portal.BaseURL,
			ViewID:            s.Portal.ViewID,
			RequestsPerSecond: s.Portal.RequestsPerSecond,
		},
		Data: dataConfig{
			Dir: s.Data.Dir,
		},
		Index: indexConfig{
			URL:        s.Index.URL,
			Collection: s.Index.Collection,
		},
		Embedding: embeddingConfig{
			Provider: s.Embedding.Provider.String(),
			Model:    s.Embedding.Model,
			BaseURL:  s.Embedding.BaseURL,
			APIKey:   s.Embedding.APIKey,
		},
		Generation: generationConfig{
			Model:       s.Generation.Model,
			APIKey:      s.Generation.APIKey,
			Temperature: s.Generation.Temperature,
			MaxTokens:   s.Generation.MaxTokens,
			TopK:        s.Generation.TopK,
		},
		Chunking: chunkingConfig{
			MinSize:    s.Chunking.MinSize,
			TargetSize: s.Chunking.TargetSize,
			MaxSize:    s.Chunking.MaxSize,
		},
	}
}

func configToSettings(c config) domain.Settings {
	return domain.Settings{
		Portal: domain.PortalSettings{
			BaseURL:           c.Portal.BaseURL,
			ViewID:            c.Portal.ViewID,
			RequestsPerSecond: c.Portal.RequestsPerSecond,
		},
		Data: domain.DataSettings{
			Dir: c.Data.Dir,
		},
		Index: domain.IndexSettings{
			URL:        c.Index.URL,
			Collection: c.Index.Collection,
		},
		Embedding: domain.EmbeddingSettings{
			Provider: domain.EmbeddingProvider(c.Embedding.Provider),
			Model:    c.Embedding.Model,
			BaseURL:  c.Embedding.BaseURL,
			APIKey:   c.Embedding.APIKey,
		},
		Generation: domain.GenerationSettings{
			Model:       c.Generation.Model,
			APIKey:      c.Generation.APIKey,
			Temperature: c.Generation.Temperature,
			MaxTokens:   c.Generation.MaxTokens,
			TopK:        c.Generation.TopK,
		},
		Chunking: domain.ChunkingSettings{
			MinSize:    c.Chunking.MinSize,
			TargetSize: c.Chunking.TargetSize,
			MaxSize:    c.Chunking.MaxSize,
		},
	}
}
