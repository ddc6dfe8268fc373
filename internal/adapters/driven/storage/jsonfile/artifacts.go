// Package jsonfile persists pipeline artifacts as pretty-printed JSON
// files under the data directory: meetings.json from discovery, one
// document file per extracted agenda or minutes, one chunk file per
// chunked document, and the extraction error report.
//
// The files are the pipeline's interchange format; each stage reads the
// previous stage's output from here rather than holding it in memory.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gavel-labs/gavel/internal/core/domain"
	"github.com/gavel-labs/gavel/internal/core/ports/driven"
)

// Artifact layout under the data directory.
const (
	meetingsFile = "meetings.json"
	documentsDir = "documents"
	chunksDir    = "chunks"
	errorsFile   = "extraction_errors.json"
)

// dateLayout is the calendar date format used in meetings.json.
const dateLayout = "2006-01-02"

// Ensure ArtifactStore implements the interface.
var _ driven.ArtifactStore = (*ArtifactStore)(nil)

// ArtifactStore is a file-based implementation of driven.ArtifactStore.
type ArtifactStore struct {
	dataDir string
}

// NewArtifactStore creates an artifact store rooted at dataDir.
// If dataDir is empty, defaults to "data" in the working directory.
func NewArtifactStore(dataDir string) (*ArtifactStore, error) {
	if dataDir == "" {
		dataDir = "data"
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &ArtifactStore{dataDir: dataDir}, nil
}

// Dir returns the artifact root directory.
func (s *ArtifactStore) Dir() string {
	return s.dataDir
}

// WriteDiscovery writes the discovery result to meetings.json.
func (s *ArtifactStore) WriteDiscovery(ctx context.Context, result *domain.DiscoveryResult) error {
	artifact := discoveryArtifact{
		ScrapedAt:     result.ScrapedAt.UTC().Format(time.RFC3339),
		SourceURL:     result.SourceURL,
		TotalMeetings: len(result.Meetings),
		Meetings:      make([]meetingRecord, 0, len(result.Meetings)),
	}

	for _, meeting := range result.Meetings {
		artifact.Meetings = append(artifact.Meetings, meetingRecord{
			MeetingID:  meeting.ID,
			Date:       formatDate(meeting.Date),
			Title:      meeting.Title,
			AgendaURL:  meeting.AgendaURL,
			MinutesURL: meeting.MinutesURL,
		})
	}

	return writeJSON(filepath.Join(s.dataDir, meetingsFile), artifact)
}

// ReadDiscovery loads the last discovery result from meetings.json.
func (s *ArtifactStore) ReadDiscovery(ctx context.Context) (*domain.DiscoveryResult, error) {
	data, err := os.ReadFile(filepath.Join(s.dataDir, meetingsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNoDocuments
		}
		return nil, fmt.Errorf("reading %s: %w", meetingsFile, err)
	}

	var artifact discoveryArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", meetingsFile, err)
	}

	result := &domain.DiscoveryResult{
		ScrapedAt: parseTimestamp(artifact.ScrapedAt),
		SourceURL: artifact.SourceURL,
		Meetings:  make([]domain.Meeting, 0, len(artifact.Meetings)),
	}

	for _, record := range artifact.Meetings {
		result.Meetings = append(result.Meetings, domain.Meeting{
			ID:         record.MeetingID,
			Date:       parseDate(record.Date),
			Title:      record.Title,
			AgendaURL:  record.AgendaURL,
			MinutesURL: record.MinutesURL,
		})
	}

	return result, nil
}

// WriteDocument writes one extracted document to documents/{id}.json.
func (s *ArtifactStore) WriteDocument(ctx context.Context, doc *domain.Document) error {
	dir := filepath.Join(s.dataDir, documentsDir)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating documents directory: %w", err)
	}

	artifact := documentArtifact{
		SourceURL:           doc.SourceURL,
		DocumentType:        string(doc.Type),
		ClipID:              doc.ClipID,
		Content:             doc.Content,
		Header:              doc.Title,
		Sections:            sectionsToRecords(doc.Sections),
		PageCount:           len(doc.Pages),
		ExtractionTimestamp: doc.ExtractedAt.UTC().Format(time.RFC3339),
		Metadata: documentMetadata{
			CharacterCount: doc.CharacterCount,
			SectionCount:   len(doc.Sections),
			WordCount:      doc.WordCount,
		},
	}

	return writeJSON(filepath.Join(dir, doc.ID+".json"), artifact)
}

// DocumentExists reports whether a document artifact is already on disk.
func (s *ArtifactStore) DocumentExists(ctx context.Context, id string) bool {
	_, err := os.Stat(filepath.Join(s.dataDir, documentsDir, id+".json"))
	return err == nil
}

// ReadDocuments loads every extracted document artifact, in filename
// order. A missing documents directory yields an empty slice.
func (s *ArtifactStore) ReadDocuments(ctx context.Context) ([]domain.Document, error) {
	dir := filepath.Join(s.dataDir, documentsDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading documents directory: %w", err)
	}

	var docs []domain.Document //nolint:prealloc // directory may hold other files
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}

		var artifact documentArtifact
		if err := json.Unmarshal(data, &artifact); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}

		docs = append(docs, documentFromArtifact(artifact))
	}

	return docs, nil
}

// WriteChunks writes a document's chunk sequence to
// chunks/{documentID}_chunks.json.
func (s *ArtifactStore) WriteChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error {
	dir := filepath.Join(s.dataDir, chunksDir)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating chunks directory: %w", err)
	}

	artifact := chunksArtifact{
		DocumentID: documentID,
		ChunkCount: len(chunks),
		ChunkedAt:  time.Now().UTC().Format(time.RFC3339),
		Chunks:     make([]chunkRecord, 0, len(chunks)),
	}

	for _, chunk := range chunks {
		artifact.Chunks = append(artifact.Chunks, chunkRecord{
			ChunkID:       chunk.ID,
			DocumentID:    chunk.DocumentID,
			ChunkIndex:    chunk.Index,
			Content:       chunk.Content,
			TokenEstimate: chunk.TokenEstimate,
			Section:       chunk.Section,
			TotalChunks:   chunk.TotalChunks,
			Metadata: chunkMetadata{
				DocumentType: string(chunk.Type),
				ClipID:       chunk.ClipID,
				SourceURL:    chunk.SourceURL,
			},
		})
	}

	return writeJSON(filepath.Join(dir, documentID+"_chunks.json"), artifact)
}

// WriteExtractionReport writes the error report to
// extraction_errors.json.
func (s *ArtifactStore) WriteExtractionReport(ctx context.Context, report *domain.ExtractionReport) error {
	artifact := reportArtifact{
		RunID:         report.RunID,
		Timestamp:     report.Timestamp.UTC().Format(time.RFC3339),
		Extracted:     report.Extracted,
		Skipped:       report.Skipped,
		AgendaErrors:  errorsToRecords(report.AgendaErrors),
		MinutesErrors: errorsToRecords(report.MinutesErrors),
	}

	return writeJSON(filepath.Join(s.dataDir, errorsFile), artifact)
}

// ==================== Artifact Schemas ====================

// discoveryArtifact mirrors meetings.json.
type discoveryArtifact struct {
	ScrapedAt     string          `json:"scraped_at"`
	SourceURL     string          `json:"source_url"`
	TotalMeetings int             `json:"total_meetings"`
	Meetings      []meetingRecord `json:"meetings"`
}

type meetingRecord struct {
	MeetingID  string `json:"meeting_id"`
	Date       string `json:"date"`
	Title      string `json:"title"`
	AgendaURL  string `json:"agenda_url"`
	MinutesURL string `json:"minutes_url"`
}

// documentArtifact mirrors documents/{id}.json. Agendas carry header
// and sections; minutes carry page_count and word_count. Per-page text
// stays out of the artifact to keep file sizes reasonable.
type documentArtifact struct {
	SourceURL           string           `json:"source_url"`
	DocumentType        string           `json:"document_type"`
	ClipID              string           `json:"clip_id"`
	Content             string           `json:"content"`
	Header              string           `json:"header,omitempty"`
	Sections            []sectionRecord  `json:"sections,omitempty"`
	PageCount           int              `json:"page_count,omitempty"`
	ExtractionTimestamp string           `json:"extraction_timestamp"`
	Metadata            documentMetadata `json:"metadata"`
}

type sectionRecord struct {
	Number string       `json:"number"`
	Title  string       `json:"title"`
	Items  []itemRecord `json:"items"`
}

type itemRecord struct {
	Letter string `json:"letter"`
	Text   string `json:"text"`
}

type documentMetadata struct {
	CharacterCount int `json:"character_count"`
	SectionCount   int `json:"section_count,omitempty"`
	WordCount      int `json:"word_count,omitempty"`
}

// chunksArtifact mirrors chunks/{documentID}_chunks.json.
type chunksArtifact struct {
	DocumentID string        `json:"document_id"`
	ChunkCount int           `json:"chunk_count"`
	ChunkedAt  string        `json:"chunked_at"`
	Chunks     []chunkRecord `json:"chunks"`
}

type chunkRecord struct {
	ChunkID       string        `json:"chunk_id"`
	DocumentID    string        `json:"document_id"`
	ChunkIndex    int           `json:"chunk_index"`
	Content       string        `json:"content"`
	TokenEstimate int           `json:"token_estimate"`
	Section       string        `json:"section"`
	TotalChunks   int           `json:"total_chunks"`
	Metadata      chunkMetadata `json:"metadata"`
}

type chunkMetadata struct {
	DocumentType string `json:"document_type"`
	ClipID       string `json:"clip_id"`
	SourceURL    string `json:"source_url"`
}

// reportArtifact mirrors extraction_errors.json.
type reportArtifact struct {
	RunID         string        `json:"run_id"`
	Timestamp     string        `json:"timestamp"`
	Extracted     int           `json:"extracted"`
	Skipped       int           `json:"skipped"`
	AgendaErrors  []errorRecord `json:"agenda_errors"`
	MinutesErrors []errorRecord `json:"minutes_errors"`
}

type errorRecord struct {
	MeetingID string `json:"meeting_id"`
	URL       string `json:"url"`
	Error     string `json:"error"`
}

// ==================== Helper Functions ====================

// writeJSON writes v as pretty-printed JSON with restricted permissions.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling artifact: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}

// documentFromArtifact converts the stored form back to the domain type.
func documentFromArtifact(artifact documentArtifact) domain.Document {
	docType := domain.DocumentType(artifact.DocumentType)
	doc := domain.Document{
		ID:             domain.DocumentID(docType, artifact.ClipID),
		Type:           docType,
		ClipID:         artifact.ClipID,
		SourceURL:      artifact.SourceURL,
		Title:          artifact.Header,
		Content:        artifact.Content,
		ExtractedAt:    parseTimestamp(artifact.ExtractionTimestamp),
		CharacterCount: artifact.Metadata.CharacterCount,
		WordCount:      artifact.Metadata.WordCount,
	}

	if len(artifact.Sections) > 0 {
		sections := make([]domain.Section, 0, len(artifact.Sections))
		for _, record := range artifact.Sections {
			section := domain.Section{
				Number: record.Number,
				Title:  record.Title,
			}
			for _, item := range record.Items {
				section.Items = append(section.Items, domain.Item{
					Letter: item.Letter,
					Text:   item.Text,
				})
			}
			sections = append(sections, section)
		}
		doc.Sections = sections
	}

	return doc
}

// sectionsToRecords converts the domain section tree to its stored form.
func sectionsToRecords(sections []domain.Section) []sectionRecord {
	if len(sections) == 0 {
		return nil
	}

	records := make([]sectionRecord, 0, len(sections))
	for _, section := range sections {
		record := sectionRecord{
			Number: section.Number,
			Title:  section.Title,
			Items:  make([]itemRecord, 0, len(section.Items)),
		}
		for _, item := range section.Items {
			record.Items = append(record.Items, itemRecord{
				Letter: item.Letter,
				Text:   item.Text,
			})
		}
		records = append(records, record)
	}
	return records
}

// errorsToRecords converts extraction errors to their stored form.
func errorsToRecords(errors []domain.ExtractionError) []errorRecord {
	records := make([]errorRecord, 0, len(errors))
	for _, e := range errors {
		records = append(records, errorRecord{
			MeetingID: e.MeetingID,
			URL:       e.URL,
			Error:     e.Message,
		})
	}
	return records
}

// formatDate renders a meeting date, or "" for meetings whose archive
// row carried no parseable date.
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// parseDate is the inverse of formatDate; unparseable input yields the
// zero time.
func parseDate(s string) time.Time {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// parseTimestamp parses an RFC 3339 timestamp, tolerating absence.
func parseTimestamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
