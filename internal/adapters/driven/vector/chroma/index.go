// Package chroma implements the vector index on a ChromaDB server.
//
// Embeddings are generated through the embedding service port rather
// than Chroma's built-in embedding function, so the index works the
// same against any configured embedder.
package chroma

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"

	"github.com/gavel-labs/gavel/internal/core/domain"
	"github.com/gavel-labs/gavel/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Default configuration values.
const (
	DefaultURL        = "http://localhost:8000"
	DefaultCollection = "board_documents"
)

const collectionDescription = "Board of Trustees meeting documents"

// statsSampleSize bounds how many records Stats inspects for the
// document type breakdown.
const statsSampleSize = 10

// addBatchSize bounds one embed-and-add round trip.
const addBatchSize = 64

// Config holds configuration for the Chroma index.
type Config struct {
	// URL is the Chroma server address (default: http://localhost:8000).
	URL string

	// Collection is the collection name (default: board_documents).
	Collection string
}

// Index stores chunk embeddings in a Chroma collection.
type Index struct {
	client     chromago.Client
	collection chromago.Collection
	embedder   driven.EmbeddingService
	name       string
}

// NewIndex connects to the Chroma server and opens the collection,
// creating it when absent.
func NewIndex(ctx context.Context, embedder driven.EmbeddingService, cfg Config) (*Index, error) {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}

	client, err := chromago.NewHTTPClient(chromago.WithBaseURL(cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("creating chroma client: %w", err)
	}

	collection, err := openCollection(ctx, client, cfg.Collection)
	if err != nil {
		client.Close()
		return nil, err
	}

	return &Index{
		client:     client,
		collection: collection,
		embedder:   embedder,
		name:       cfg.Collection,
	}, nil
}

func openCollection(ctx context.Context, client chromago.Client, name string) (chromago.Collection, error) {
	collection, err := client.GetOrCreateCollection(ctx, name,
		chromago.WithCollectionMetadataCreate(
			chromago.NewMetadata(
				chromago.NewStringAttribute("description", collectionDescription),
			),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("opening collection %q: %w", name, err)
	}
	return collection, nil
}

// AddChunks embeds and stores chunks under their chunk IDs.
// Whitespace-only chunks are skipped; the rest are written in batches.
func (ix *Index) AddChunks(ctx context.Context, chunks []domain.Chunk) (int, error) {
	kept := make([]domain.Chunk, 0, len(chunks))
	for _, chunk := range chunks {
		if strings.TrimSpace(chunk.Content) == "" {
			continue
		}
		kept = append(kept, chunk)
	}

	added := 0
	for start := 0; start < len(kept); start += addBatchSize {
		end := start + addBatchSize
		if end > len(kept) {
			end = len(kept)
		}
		if err := ix.addBatch(ctx, kept[start:end]); err != nil {
			return added, err
		}
		added += end - start
	}

	return added, nil
}

func (ix *Index) addBatch(ctx context.Context, chunks []domain.Chunk) error {
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}

	vectors, err := ix.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding batch: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedding batch returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	ids := make([]chromago.DocumentID, len(chunks))
	embs := make([]embeddings.Embedding, len(chunks))
	metas := make([]chromago.DocumentMetadata, len(chunks))
	for i, chunk := range chunks {
		ids[i] = chromago.DocumentID(chunk.ID)
		embs[i] = embeddings.NewEmbeddingFromFloat32(vectors[i])
		metas[i] = chunkMetadata(chunk)
	}

	err = ix.collection.Add(ctx,
		chromago.WithIDs(ids...),
		chromago.WithTexts(texts...),
		chromago.WithEmbeddings(embs...),
		chromago.WithMetadatas(metas...),
	)
	if err != nil {
		return fmt.Errorf("adding records: %w", err)
	}

	return nil
}

// Query embeds the text and returns up to k chunks ranked by ascending
// distance.
func (ix *Index) Query(ctx context.Context, text string, k int) ([]domain.ScoredChunk, error) {
	if k <= 0 {
		k = 5
	}

	vector, err := ix.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	result, err := ix.collection.Query(ctx,
		chromago.WithQueryEmbeddings(embeddings.NewEmbeddingFromFloat32(vector)),
		chromago.WithNResults(k),
	)
	if err != nil {
		return nil, fmt.Errorf("querying collection: %w", err)
	}

	docGroups := result.GetDocumentsGroups()
	metaGroups := result.GetMetadatasGroups()
	distGroups := result.GetDistancesGroups()
	if len(docGroups) == 0 {
		return nil, nil
	}

	scored := make([]domain.ScoredChunk, 0, len(docGroups[0]))
	for i, doc := range docGroups[0] {
		chunk := domain.Chunk{Content: doc.ContentString()}
		if len(metaGroups) > 0 && i < len(metaGroups[0]) {
			applyMetadata(&chunk, metaGroups[0][i])
		}
		chunk.ID = domain.ChunkID(chunk.Type, chunk.ClipID, chunk.Index)

		var distance float64
		if len(distGroups) > 0 && i < len(distGroups[0]) {
			distance = float64(distGroups[0][i])
		}

		scored = append(scored, domain.ScoredChunk{Chunk: chunk, Distance: distance})
	}

	return scored, nil
}

// Count returns the number of stored records.
func (ix *Index) Count(ctx context.Context) (int, error) {
	count, err := ix.collection.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return int(count), nil
}

// Stats returns the record count with a sampled document type breakdown.
func (ix *Index) Stats(ctx context.Context) (*domain.IndexStats, error) {
	count, err := ix.collection.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting records: %w", err)
	}

	result, err := ix.collection.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("sampling records: %w", err)
	}

	types := make(map[string]int)
	sampled := 0
	for _, meta := range result.GetMetadatas() {
		if sampled >= statsSampleSize {
			break
		}
		sampled++

		docType := ""
		if fields := metadataFields(meta); fields != nil {
			docType, _ = fields["document_type"].(string)
		}
		if docType == "" {
			docType = "unknown"
		}
		types[docType]++
	}

	return &domain.IndexStats{
		Collection:    ix.name,
		TotalChunks:   int(count),
		DocumentTypes: types,
		SampleSize:    sampled,
	}, nil
}

// Clear drops and recreates the collection.
func (ix *Index) Clear(ctx context.Context) error {
	if err := ix.client.DeleteCollection(ctx, ix.name); err != nil {
		return fmt.Errorf("deleting collection %q: %w", ix.name, err)
	}

	collection, err := openCollection(ctx, ix.client, ix.name)
	if err != nil {
		return err
	}
	ix.collection = collection

	return nil
}

// Close releases the client handle.
func (ix *Index) Close() error {
	return ix.client.Close()
}

// chunkMetadata flattens a chunk into the metadata fields stored with
// each record. Chroma requires a flat structure with simple types.
func chunkMetadata(chunk domain.Chunk) chromago.DocumentMetadata {
	return chromago.NewDocumentMetadata(
		chromago.NewStringAttribute("document_id", chunk.DocumentID),
		chromago.NewStringAttribute("document_type", string(chunk.Type)),
		chromago.NewStringAttribute("clip_id", chunk.ClipID),
		chromago.NewStringAttribute("section", chunk.Section),
		chromago.NewIntAttribute("chunk_index", int64(chunk.Index)),
		chromago.NewIntAttribute("total_chunks", int64(chunk.TotalChunks)),
		chromago.NewStringAttribute("source_url", chunk.SourceURL),
	)
}

// applyMetadata copies stored metadata fields back onto a chunk.
func applyMetadata(chunk *domain.Chunk, meta chromago.DocumentMetadata) {
	fields := metadataFields(meta)
	if fields == nil {
		return
	}

	if v, ok := fields["document_id"].(string); ok {
		chunk.DocumentID = v
	}
	if v, ok := fields["document_type"].(string); ok {
		chunk.Type = domain.DocumentType(v)
	}
	if v, ok := fields["clip_id"].(string); ok {
		chunk.ClipID = v
	}
	if v, ok := fields["section"].(string); ok {
		chunk.Section = v
	}
	if v, ok := fields["source_url"].(string); ok {
		chunk.SourceURL = v
	}
	if v, ok := fields["chunk_index"].(float64); ok {
		chunk.Index = int(v)
	}
	if v, ok := fields["total_chunks"].(float64); ok {
		chunk.TotalChunks = int(v)
	}
}

// metadataFields converts the client's metadata type into a plain map.
// The type exposes no accessor for arbitrary keys, so it goes through
// a JSON round trip.
func metadataFields(meta chromago.DocumentMetadata) map[string]any {
	if meta == nil {
		return nil
	}

	raw, err := json.Marshal(meta)
	if err != nil {
		return nil
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}

	return fields
}
