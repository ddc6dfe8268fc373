package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/gavel-labs/gavel/internal/core/domain"
	"github.com/gavel-labs/gavel/internal/core/ports/driven"
)

// Ensure ChatStore implements the interface.
var _ driven.ChatStore = (*ChatStore)(nil)

// ChatStore is an in-memory implementation of driven.ChatStore.
type ChatStore struct {
	mu       sync.Mutex
	sessions map[string]domain.ChatSession
	messages map[string][]domain.StoredMessage
}

// NewChatStore creates a new in-memory chat store.
func NewChatStore() *ChatStore {
	return &ChatStore{
		sessions: make(map[string]domain.ChatSession),
		messages: make(map[string][]domain.StoredMessage),
	}
}

// CreateSession records a new chat session.
func (s *ChatStore) CreateSession(_ context.Context, session *domain.ChatSession) error {
	if session.ID == "" {
		return domain.ErrInvalidInput
	}

	if session.StartedAt.IsZero() {
		session.StartedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[session.ID]; exists {
		return fmt.Errorf("creating session: session %s exists", session.ID)
	}
	s.sessions[session.ID] = *session
	return nil
}

// AppendMessage appends one turn to a session, assigning the next
// sequence number. The session must exist.
func (s *ChatStore) AppendMessage(_ context.Context, msg *domain.StoredMessage) error {
	if msg.SessionID == "" {
		return domain.ErrInvalidInput
	}

	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[msg.SessionID]; !exists {
		return fmt.Errorf("appending message: unknown session %s", msg.SessionID)
	}

	msg.Seq = len(s.messages[msg.SessionID])
	s.messages[msg.SessionID] = append(s.messages[msg.SessionID], *msg)
	return nil
}

// Messages returns a session's turns in order.
func (s *ChatStore) Messages(_ context.Context, sessionID string) ([]domain.StoredMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.messages[sessionID]
	if !ok {
		return nil, nil
	}
	out := make([]domain.StoredMessage, len(stored))
	copy(out, stored)
	return out, nil
}

// Sessions returns recent sessions, newest first. A non-positive limit
// returns all sessions.
func (s *ChatStore) Sessions(_ context.Context, limit int) ([]domain.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sessions []domain.ChatSession //nolint:prealloc // symmetric with the SQLite store
	for id := range s.sessions {
		sessions = append(sessions, s.sessions[id])
	}

	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].StartedAt.Equal(sessions[j].StartedAt) {
			return sessions[i].StartedAt.After(sessions[j].StartedAt)
		}
		return sessions[i].ID < sessions[j].ID
	})

	if limit > 0 && len(sessions) > limit {
		sessions = sessions[:limit]
	}

	return sessions, nil
}

// Close is a no-op for the in-memory store.
func (s *ChatStore) Close() error {
	return nil
}
