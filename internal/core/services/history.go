package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gavel-labs/gavel/internal/core/domain"
	"github.com/gavel-labs/gavel/internal/core/ports/driven"
	"github.com/gavel-labs/gavel/internal/core/ports/driving"
)

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

// titleLength caps session titles, in runes.
const titleLength = 80

// HistoryService records chat conversations. Turn sequence numbers
// are tracked per session so appends stay ordered even when a session
// is resumed by a later process.
type HistoryService struct {
	store driven.ChatStore

	mu   sync.Mutex
	seqs map[string]int
}

// NewHistoryService creates a new history service.
func NewHistoryService(store driven.ChatStore) *HistoryService {
	return &HistoryService{
		store: store,
		seqs:  make(map[string]int),
	}
}

// StartSession opens a new persisted session.
func (s *HistoryService) StartSession(ctx context.Context, title string) (*domain.ChatSession, error) {
	session := &domain.ChatSession{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Title:     sessionTitle(title),
	}

	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	s.mu.Lock()
	s.seqs[session.ID] = 0
	s.mu.Unlock()

	return session, nil
}

// Record appends one turn to a session.
func (s *HistoryService) Record(ctx context.Context, sessionID string, msg domain.ChatMessage, sources []domain.Citation) error {
	seq, err := s.nextSeq(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("resolving turn sequence: %w", err)
	}

	stored := &domain.StoredMessage{
		SessionID: sessionID,
		Seq:       seq,
		Message:   msg,
		Sources:   sources,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.AppendMessage(ctx, stored); err != nil {
		return fmt.Errorf("appending message: %w", err)
	}
	return nil
}

// RecentSessions returns recent sessions, newest first.
func (s *HistoryService) RecentSessions(ctx context.Context, limit int) ([]domain.ChatSession, error) {
	sessions, err := s.store.Sessions(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	return sessions, nil
}

// SessionMessages returns a session's turns in order.
func (s *HistoryService) SessionMessages(ctx context.Context, sessionID string) ([]domain.StoredMessage, error) {
	msgs, err := s.store.Messages(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading messages: %w", err)
	}
	return msgs, nil
}

// nextSeq claims the next sequence number for a session. Sessions not
// started by this process initialise from the stored turn count.
func (s *HistoryService) nextSeq(ctx context.Context, sessionID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq, ok := s.seqs[sessionID]; ok {
		s.seqs[sessionID] = seq + 1
		return seq, nil
	}

	msgs, err := s.store.Messages(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	s.seqs[sessionID] = len(msgs) + 1
	return len(msgs), nil
}

// sessionTitle trims and caps a session label.
func sessionTitle(title string) string {
	title = strings.TrimSpace(title)
	runes := []rune(title)
	if len(runes) <= titleLength {
		return title
	}
	return string(runes[:titleLength]) + "..."
}
