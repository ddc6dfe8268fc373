package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/gavel-labs/gavel/internal/core/domain"
	"github.com/gavel-labs/gavel/internal/core/ports/driven"
	"github.com/gavel-labs/gavel/internal/core/ports/driving"
	"github.com/gavel-labs/gavel/internal/logger"
)

// Ensure DiscoveryService implements the interface.
var _ driving.DiscoveryService = (*DiscoveryService)(nil)

// DiscoveryService scrapes the records portal archive into meeting
// records and persists the result.
type DiscoveryService struct {
	portal    driven.Portal
	artifacts driven.ArtifactStore
	catalog   driven.CatalogStore
}

// NewDiscoveryService creates a new discovery service. The catalog is
// optional; when nil, discovered meetings are only written as artifacts.
func NewDiscoveryService(
	portal driven.Portal,
	artifacts driven.ArtifactStore,
	catalog driven.CatalogStore,
) *DiscoveryService {
	return &DiscoveryService{
		portal:    portal,
		artifacts: artifacts,
		catalog:   catalog,
	}
}

// Discover scrapes the archive listing, collapses rows that reference
// the same document set, sorts newest-first, and writes the result to
// the meetings artifact and the catalog.
func (s *DiscoveryService) Discover(ctx context.Context) (*domain.DiscoveryResult, error) {
	logger.Section("URL Discovery")
	logger.Debug("Archive: %s", s.portal.ArchiveURL())

	meetings, err := s.portal.ListMeetings(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing meetings: %w", err)
	}
	logger.Debug("Archive rows: %d meetings", len(meetings))

	meetings = dedupeByClip(meetings)

	// Newest first; meetings without a parseable date sink to the end.
	sort.SliceStable(meetings, func(i, j int) bool {
		return meetings[i].Date.After(meetings[j].Date)
	})

	result := &domain.DiscoveryResult{
		ScrapedAt: time.Now().UTC(),
		SourceURL: s.portal.ArchiveURL(),
		Meetings:  meetings,
	}

	if err := s.artifacts.WriteDiscovery(ctx, result); err != nil {
		return nil, fmt.Errorf("writing discovery artifact: %w", err)
	}

	if s.catalog != nil {
		if err := s.catalog.SaveMeetings(ctx, meetings); err != nil {
			return nil, fmt.Errorf("cataloguing meetings: %w", err)
		}
	}

	logger.Info("Discovered %d meetings", len(meetings))
	return result, nil
}

// dedupeByClip collapses listing rows that point at the same document
// set. The archive shows some meetings in more than one table; the
// first row wins, and later rows only contribute viewer links the kept
// row lacks. Rows without a clip id pass through untouched.
func dedupeByClip(meetings []domain.Meeting) []domain.Meeting {
	var out []domain.Meeting //nolint:prealloc // duplicates shrink the result
	index := make(map[string]int)

	for _, m := range meetings {
		key := meetingClipID(m)
		if key == "" {
			out = append(out, m)
			continue
		}

		if i, ok := index[key]; ok {
			if out[i].AgendaURL == "" {
				out[i].AgendaURL = m.AgendaURL
			}
			if out[i].MinutesURL == "" {
				out[i].MinutesURL = m.MinutesURL
			}
			logger.Debug("Duplicate listing for clip %s (%s)", key, m.ID)
			continue
		}

		index[key] = len(out)
		out = append(out, m)
	}

	return out
}

// meetingClipID derives the meeting's document-set key from whichever
// viewer link it carries. Empty when neither link names a clip.
func meetingClipID(m domain.Meeting) string {
	for _, u := range []string{m.AgendaURL, m.MinutesURL} {
		if u == "" {
			continue
		}
		if clip := domain.ClipIDFromURL(u); clip != "unknown" {
			return clip
		}
	}
	return ""
}
