// Command gavel is the board-records pipeline and chat front-end.
//
// main is the composition root: it builds the driven adapters from the
// stored settings, wires them into the core services, and injects the
// services into the command tree. Adapters that need a live backend
// (the vector index, the generation API) are allowed to fail here;
// the commands that depend on them report the gap when invoked, and
// everything else keeps working.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/gavel-labs/gavel/internal/adapters/driven/ai"
	"github.com/gavel-labs/gavel/internal/adapters/driven/config/file"
	"github.com/gavel-labs/gavel/internal/adapters/driven/portal/granicus"
	"github.com/gavel-labs/gavel/internal/adapters/driven/storage/jsonfile"
	"github.com/gavel-labs/gavel/internal/adapters/driven/storage/memory"
	"github.com/gavel-labs/gavel/internal/adapters/driven/storage/sqlite"
	"github.com/gavel-labs/gavel/internal/adapters/driving/cli"
	"github.com/gavel-labs/gavel/internal/chunker"
	"github.com/gavel-labs/gavel/internal/core/domain"
	"github.com/gavel-labs/gavel/internal/core/ports/driven"
	"github.com/gavel-labs/gavel/internal/core/services"
	"github.com/gavel-labs/gavel/internal/extractors/agenda"
	"github.com/gavel-labs/gavel/internal/extractors/minutes"
	"github.com/gavel-labs/gavel/internal/logger"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = ""

// indexStartupTimeout bounds opening the vector index so an
// unreachable server cannot stall startup.
const indexStartupTimeout = 10 * time.Second

func main() {
	// A .env in the working directory is optional.
	_ = godotenv.Load()

	// Wiring runs before cobra parses flags, so pick up --verbose by
	// hand to make degradation notes visible during startup.
	for _, arg := range os.Args[1:] {
		if arg == "--verbose" || arg == "-v" {
			logger.SetVerbose(true)
			break
		}
	}

	cli.SetVersion(version)

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config store: %w", err)
	}

	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	// The environment always wins over a stored generation key.
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		settings.Generation.APIKey = key
	}

	artifacts, err := jsonfile.NewArtifactStore(settings.Data.Dir)
	if err != nil {
		return fmt.Errorf("opening artifact store: %w", err)
	}

	catalog, chats, closeStores := openStores()
	defer closeStores()

	portal := granicus.NewPortal(granicus.Config{
		BaseURL:           settings.Portal.BaseURL,
		ViewID:            settings.Portal.ViewID,
		RequestsPerSecond: settings.Portal.RequestsPerSecond,
	})

	splitter := chunker.New(
		chunker.WithMinSize(settings.Chunking.MinSize),
		chunker.WithTargetSize(settings.Chunking.TargetSize),
		chunker.WithMaxSize(settings.Chunking.MaxSize),
	)

	extractors := []driven.Extractor{agenda.New(), minutes.New()}

	svcs := cli.Services{
		Discovery:  services.NewDiscoveryService(portal, artifacts, catalog),
		Extraction: services.NewExtractionService(portal, extractors, artifacts, catalog),
		Meetings:   services.NewMeetingService(catalog),
		Settings:   settingsService,
		History:    services.NewHistoryService(chats),
	}

	index := openIndex(settings.Embedding, settings.Index)
	if index != nil {
		defer index.Close() //nolint:errcheck
		svcs.Index = services.NewIndexService(splitter, index, artifacts, settings.Data.Dir)
		if query := buildQueryService(index, settings.Generation); query != nil {
			svcs.Query = query
		}
	}

	cli.SetServices(svcs)
	return cli.Execute()
}

// openStores opens the SQLite catalog, falling back to in-memory
// stores when the database cannot be opened. The fallback keeps the
// pipeline commands usable; only persistence across runs is lost.
func openStores() (driven.CatalogStore, driven.ChatStore, func()) {
	store, err := sqlite.NewStore("")
	if err != nil {
		logger.Warn("Catalog unavailable (%v); using in-memory stores for this run", err)
		return memory.NewCatalogStore(), memory.NewChatStore(), func() {}
	}

	logger.Debug("Catalog: %s", store.Path())
	return store.CatalogStore(), store.ChatStore(), func() {
		if err := store.Close(); err != nil {
			logger.Warn("Closing catalog: %v", err)
		}
	}
}

// openIndex builds the embedder and opens the vector index. Either
// step failing leaves indexing and querying disabled for this run.
func openIndex(embedding domain.EmbeddingSettings, indexSettings domain.IndexSettings) driven.VectorIndex {
	embedder, err := ai.CreateEmbeddingService(embedding)
	if err != nil {
		logger.Warn("Embedding service unavailable: %v", err)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), indexStartupTimeout)
	defer cancel()

	index, err := ai.CreateVectorIndex(ctx, embedder, indexSettings)
	if err != nil {
		embedder.Close() //nolint:errcheck
		logger.Warn("Vector index unavailable: %v", err)
		return nil
	}

	return index
}

// buildQueryService assembles the question-answering service. A
// missing API key or prompt store disables it without taking the
// rest of the CLI down.
func buildQueryService(index driven.VectorIndex, generation domain.GenerationSettings) *services.QueryService {
	generator, err := ai.CreateGenerationService(generation)
	if err != nil {
		logger.Warn("Generation service unavailable: %v", err)
		return nil
	}

	prompts, err := file.NewPromptStore("")
	if err != nil {
		logger.Warn("Prompt store unavailable: %v", err)
		return nil
	}

	query, err := services.NewQueryService(index, generator, prompts, generation)
	if err != nil {
		logger.Warn("Query service unavailable: %v", err)
		return nil
	}

	return query
}
