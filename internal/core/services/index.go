package services

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gavel-labs/gavel/internal/core/domain"
	"github.com/gavel-labs/gavel/internal/core/ports/driven"
	"github.com/gavel-labs/gavel/internal/core/ports/driving"
	"github.com/gavel-labs/gavel/internal/logger"
)

// Ensure IndexService implements the interface.
var _ driving.IndexService = (*IndexService)(nil)

// watchSettle is how long the watcher waits after the last filesystem
// event before rebuilding, so a burst of artifact writes triggers one
// build.
const watchSettle = 2 * time.Second

// IndexService chunks extracted documents and loads the chunks into
// the vector index.
type IndexService struct {
	chunker   driven.Chunker
	index     driven.VectorIndex
	artifacts driven.ArtifactStore
	dataDir   string
}

// NewIndexService creates a new index service. dataDir is the
// artifact root; Watch observes its documents directory.
func NewIndexService(
	chunker driven.Chunker,
	index driven.VectorIndex,
	artifacts driven.ArtifactStore,
	dataDir string,
) *IndexService {
	return &IndexService{
		chunker:   chunker,
		index:     index,
		artifacts: artifacts,
		dataDir:   dataDir,
	}
}

// Build chunks every extracted document and adds the chunks to the
// index in one batch. Per-document chunking failures are collected on
// the report and do not abort the build.
func (s *IndexService) Build(ctx context.Context, opts domain.BuildOptions) (*domain.BuildReport, error) {
	logger.Section("Index Build")

	docs, err := s.artifacts.ReadDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading document artifacts: %w", err)
	}
	if len(docs) == 0 {
		return nil, domain.ErrNoDocuments
	}
	logger.Info("Chunking %d documents", len(docs))

	if opts.Clear {
		logger.Info("Clearing existing collection")
		if err := s.index.Clear(ctx); err != nil {
			return nil, fmt.Errorf("clearing index: %w", err)
		}
	}

	report := &domain.BuildReport{}
	var all []domain.Chunk

	for i := range docs {
		doc := &docs[i]

		chunks, err := s.chunker.Chunk(ctx, doc)
		if err != nil {
			logger.Warn("Chunking %s: %v", doc.ID, err)
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", doc.ID, err))
			continue
		}

		if err := s.artifacts.WriteChunks(ctx, doc.ID, chunks); err != nil {
			logger.Warn("Writing chunks for %s: %v", doc.ID, err)
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", doc.ID, err))
			continue
		}

		report.Documents++
		switch doc.Type {
		case domain.DocumentTypeAgenda:
			report.AgendaChunks += len(chunks)
		case domain.DocumentTypeMinutes:
			report.MinutesChunks += len(chunks)
		}
		all = append(all, chunks...)
		logger.Debug("%s: %d chunks", doc.ID, len(chunks))
	}

	if len(all) > 0 {
		logger.Info("Embedding %d chunks into the index", len(all))
		added, err := s.index.AddChunks(ctx, all)
		if err != nil {
			return nil, fmt.Errorf("adding chunks to index: %w", err)
		}
		report.TotalChunks = added
	}

	logger.Info("Index build finished: %d documents, %d chunks, %d errors",
		report.Documents, report.TotalChunks, len(report.Errors))
	return report, nil
}

// Stats reports the index's current state.
func (s *IndexService) Stats(ctx context.Context) (*domain.IndexStats, error) {
	stats, err := s.index.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading index stats: %w", err)
	}
	return stats, nil
}

// TestQuery runs a retrieval-only query for inspection.
func (s *IndexService) TestQuery(ctx context.Context, text string, n int) ([]domain.ScoredChunk, error) {
	results, err := s.index.Query(ctx, text, n)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}
	return results, nil
}

// Watch rebuilds the index whenever a document artifact changes. The
// rebuild waits for writes to settle so one extraction run triggers
// one build. Blocks until the context is cancelled.
func (s *IndexService) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Join(s.dataDir, "documents")
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	logger.Info("Watching %s for changes", dir)

	var settle *time.Timer
	var settleC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Create | fsnotify.Write | fsnotify.Rename) {
				continue
			}
			if filepath.Ext(event.Name) != ".json" {
				continue
			}
			logger.Debug("Artifact changed: %s", filepath.Base(event.Name))
			if settle == nil {
				settle = time.NewTimer(watchSettle)
				settleC = settle.C
			} else {
				settle.Reset(watchSettle)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)

		case <-settleC:
			settle = nil
			settleC = nil
			if _, err := s.Build(ctx, domain.BuildOptions{}); err != nil {
				logger.Warn("Rebuild failed: %v", err)
			}
		}
	}
}
