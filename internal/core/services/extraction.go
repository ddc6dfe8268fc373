package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gavel-labs/gavel/internal/core/domain"
	"github.com/gavel-labs/gavel/internal/core/ports/driven"
	"github.com/gavel-labs/gavel/internal/core/ports/driving"
	"github.com/gavel-labs/gavel/internal/logger"
)

// Ensure ExtractionService implements the interface.
var _ driving.ExtractionService = (*ExtractionService)(nil)

// ExtractionService walks discovered meetings and extracts each linked
// document into an artifact. Per-document failures are accumulated in
// the run report, never fatal to the batch.
type ExtractionService struct {
	portal     driven.Portal
	extractors map[domain.DocumentType]driven.Extractor
	artifacts  driven.ArtifactStore
	catalog    driven.CatalogStore
}

// NewExtractionService creates a new extraction service. Extractors
// are registered under the type they report. The catalog is optional.
func NewExtractionService(
	portal driven.Portal,
	extractors []driven.Extractor,
	artifacts driven.ArtifactStore,
	catalog driven.CatalogStore,
) *ExtractionService {
	byType := make(map[domain.DocumentType]driven.Extractor, len(extractors))
	for _, e := range extractors {
		byType[e.Type()] = e
	}

	return &ExtractionService{
		portal:     portal,
		extractors: byType,
		artifacts:  artifacts,
		catalog:    catalog,
	}
}

// Run extracts documents for every discovered meeting. Documents that
// already have artifacts are skipped unless opts.Force is set; a run
// that produced errors also writes the error report artifact.
func (s *ExtractionService) Run(ctx context.Context, opts domain.ExtractOptions) (*domain.ExtractionReport, error) {
	logger.Section("Document Extraction")

	discovery, err := s.artifacts.ReadDiscovery(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading discovery artifact: %w", err)
	}

	meetings := discovery.Meetings
	if opts.Limit > 0 && opts.Limit < len(meetings) {
		meetings = meetings[:opts.Limit]
	}
	logger.Info("Processing %d meetings", len(meetings))

	report := &domain.ExtractionReport{RunID: uuid.NewString()}

	for _, meeting := range meetings {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if !meeting.HasDocuments() {
			logger.Debug("%s: no documents linked", meeting.ID)
			continue
		}

		// One clip identifies the meeting's whole document set, so
		// both documents share the skip check key.
		clip := meetingClipID(meeting)

		if meeting.AgendaURL != "" {
			s.extractDocument(ctx, meeting, meeting.AgendaURL, clip, domain.DocumentTypeAgenda, opts.Force, report)
		}
		if meeting.MinutesURL != "" {
			s.extractDocument(ctx, meeting, meeting.MinutesURL, clip, domain.DocumentTypeMinutes, opts.Force, report)
		}
	}

	report.Timestamp = time.Now().UTC()

	if report.HasErrors() {
		if err := s.artifacts.WriteExtractionReport(ctx, report); err != nil {
			return nil, fmt.Errorf("writing extraction report: %w", err)
		}
	}

	logger.Info("Extraction finished: %d extracted, %d skipped, %d failed",
		report.Extracted, report.Skipped, len(report.AgendaErrors)+len(report.MinutesErrors))
	return report, nil
}

// extractDocument handles one document end to end and records the
// outcome on the report.
func (s *ExtractionService) extractDocument(
	ctx context.Context,
	meeting domain.Meeting,
	rawURL string,
	clip string,
	docType domain.DocumentType,
	force bool,
	report *domain.ExtractionReport,
) {
	if !force && clip != "" {
		id := domain.DocumentID(docType, clip)
		if s.artifacts.DocumentExists(ctx, id) {
			logger.Debug("%s already extracted, skipping", id)
			report.Skipped++
			return
		}
	}

	doc, err := s.fetchAndExtract(ctx, rawURL, docType)
	if err == nil {
		err = s.storeDocument(ctx, doc)
	}
	if err != nil {
		logger.Warn("%s %s: %v", meeting.ID, docType, err)
		record := domain.ExtractionError{
			MeetingID: meeting.ID,
			URL:       rawURL,
			Type:      docType,
			Message:   err.Error(),
		}
		switch docType {
		case domain.DocumentTypeAgenda:
			report.AgendaErrors = append(report.AgendaErrors, record)
		case domain.DocumentTypeMinutes:
			report.MinutesErrors = append(report.MinutesErrors, record)
		}
		return
	}

	report.Extracted++
	logger.Info("Extracted %s (%d chars)", doc.ID, doc.CharacterCount)
}

// fetchAndExtract downloads the document and runs the registered
// extractor for its type.
func (s *ExtractionService) fetchAndExtract(ctx context.Context, rawURL string, docType domain.DocumentType) (*domain.Document, error) {
	var (
		raw *domain.RawDocument
		err error
	)
	switch docType {
	case domain.DocumentTypeAgenda:
		raw, err = s.portal.FetchAgenda(ctx, rawURL)
	case domain.DocumentTypeMinutes:
		raw, err = s.portal.FetchMinutes(ctx, rawURL)
	default:
		return nil, fmt.Errorf("unsupported document type %q", docType)
	}
	if err != nil {
		return nil, fmt.Errorf("fetching: %w", err)
	}

	extractor, ok := s.extractors[docType]
	if !ok {
		return nil, fmt.Errorf("no extractor registered for type %q", docType)
	}

	doc, err := extractor.Extract(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("extracting: %w", err)
	}
	return doc, nil
}

// storeDocument persists the extracted document. The artifact is the
// authoritative output; a catalog failure is logged but does not fail
// the document.
func (s *ExtractionService) storeDocument(ctx context.Context, doc *domain.Document) error {
	if err := s.artifacts.WriteDocument(ctx, doc); err != nil {
		return fmt.Errorf("writing artifact: %w", err)
	}

	if s.catalog != nil {
		if err := s.catalog.SaveDocument(ctx, doc); err != nil {
			logger.Warn("Cataloguing %s failed: %v", doc.ID, err)
		}
	}
	return nil
}
