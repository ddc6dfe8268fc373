package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gavel-labs/gavel/internal/core/domain"
)

func TestNewChatStore(t *testing.T) {
	store := NewChatStore()
	require.NotNil(t, store)
	assert.NotNil(t, store.sessions)
	assert.NotNil(t, store.messages)
}

func TestChatStore_CreateSession_Success(t *testing.T) {
	store := NewChatStore()
	ctx := context.Background()

	session := &domain.ChatSession{
		ID:        "session-1",
		StartedAt: time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC),
		Title:     "What was approved?",
	}

	err := store.CreateSession(ctx, session)
	require.NoError(t, err)

	sessions, err := store.Sessions(ctx, 10)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "session-1", sessions[0].ID)
	assert.Equal(t, "What was approved?", sessions[0].Title)
}

func TestChatStore_CreateSession_DefaultsStartedAt(t *testing.T) {
	store := NewChatStore()
	ctx := context.Background()

	session := &domain.ChatSession{ID: "session-1"}

	err := store.CreateSession(ctx, session)
	require.NoError(t, err)
	assert.False(t, session.StartedAt.IsZero())
}

func TestChatStore_CreateSession_EmptyID(t *testing.T) {
	store := NewChatStore()
	ctx := context.Background()

	err := store.CreateSession(ctx, &domain.ChatSession{Title: "no id"})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestChatStore_CreateSession_Duplicate(t *testing.T) {
	store := NewChatStore()
	ctx := context.Background()

	err := store.CreateSession(ctx, &domain.ChatSession{ID: "session-1"})
	require.NoError(t, err)

	err = store.CreateSession(ctx, &domain.ChatSession{ID: "session-1"})
	assert.Error(t, err)
}

func TestChatStore_AppendMessage_AssignsSeq(t *testing.T) {
	store := NewChatStore()
	ctx := context.Background()

	err := store.CreateSession(ctx, &domain.ChatSession{ID: "session-1"})
	require.NoError(t, err)

	first := &domain.StoredMessage{
		SessionID: "session-1",
		Seq:       99, // the store assigns the real sequence
		Message:   domain.ChatMessage{Role: domain.RoleUser, Content: "What was approved?"},
	}
	err = store.AppendMessage(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, 0, first.Seq)

	second := &domain.StoredMessage{
		SessionID: "session-1",
		Message:   domain.ChatMessage{Role: domain.RoleAssistant, Content: "The budget."},
	}
	err = store.AppendMessage(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Seq)
}

func TestChatStore_AppendMessage_EmptySessionID(t *testing.T) {
	store := NewChatStore()
	ctx := context.Background()

	err := store.AppendMessage(ctx, &domain.StoredMessage{
		Message: domain.ChatMessage{Role: domain.RoleUser, Content: "hello"},
	})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestChatStore_AppendMessage_UnknownSession(t *testing.T) {
	store := NewChatStore()
	ctx := context.Background()

	err := store.AppendMessage(ctx, &domain.StoredMessage{
		SessionID: "nonexistent",
		Message:   domain.ChatMessage{Role: domain.RoleUser, Content: "hello"},
	})

	assert.Error(t, err)
}

func TestChatStore_AppendMessage_DefaultsCreatedAt(t *testing.T) {
	store := NewChatStore()
	ctx := context.Background()

	err := store.CreateSession(ctx, &domain.ChatSession{ID: "session-1"})
	require.NoError(t, err)

	msg := &domain.StoredMessage{
		SessionID: "session-1",
		Message:   domain.ChatMessage{Role: domain.RoleUser, Content: "hello"},
	}
	err = store.AppendMessage(ctx, msg)
	require.NoError(t, err)
	assert.False(t, msg.CreatedAt.IsZero())
}

func TestChatStore_Messages_InOrder(t *testing.T) {
	store := NewChatStore()
	ctx := context.Background()

	err := store.CreateSession(ctx, &domain.ChatSession{ID: "session-1"})
	require.NoError(t, err)

	turns := []domain.ChatMessage{
		{Role: domain.RoleUser, Content: "What was approved?"},
		{Role: domain.RoleAssistant, Content: "The budget."},
		{Role: domain.RoleUser, Content: "When?"},
	}
	for _, turn := range turns {
		err := store.AppendMessage(ctx, &domain.StoredMessage{
			SessionID: "session-1",
			Message:   turn,
			Sources: []domain.Citation{
				{ChunkID: "agenda_100_chunk_000"},
			},
		})
		require.NoError(t, err)
	}

	msgs, err := store.Messages(ctx, "session-1")
	require.NoError(t, err)
	require.Len(t, msgs, 3)

	for i, msg := range msgs {
		assert.Equal(t, i, msg.Seq)
		assert.Equal(t, turns[i], msg.Message)
		assert.Len(t, msg.Sources, 1)
	}
}

func TestChatStore_Messages_UnknownSession(t *testing.T) {
	store := NewChatStore()
	ctx := context.Background()

	msgs, err := store.Messages(ctx, "nonexistent")

	require.NoError(t, err)
	assert.Nil(t, msgs)
}

func TestChatStore_Messages_ReturnsCopy(t *testing.T) {
	store := NewChatStore()
	ctx := context.Background()

	err := store.CreateSession(ctx, &domain.ChatSession{ID: "session-1"})
	require.NoError(t, err)

	err = store.AppendMessage(ctx, &domain.StoredMessage{
		SessionID: "session-1",
		Message:   domain.ChatMessage{Role: domain.RoleUser, Content: "Original"},
	})
	require.NoError(t, err)

	msgs, err := store.Messages(ctx, "session-1")
	require.NoError(t, err)
	msgs[0].Message.Content = "Modified"

	again, err := store.Messages(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, "Original", again[0].Message.Content)
}

func TestChatStore_Sessions_NewestFirst(t *testing.T) {
	store := NewChatStore()
	ctx := context.Background()

	base := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := store.CreateSession(ctx, &domain.ChatSession{
			ID:        fmt.Sprintf("session-%d", i),
			StartedAt: base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	sessions, err := store.Sessions(ctx, 10)
	require.NoError(t, err)
	require.Len(t, sessions, 3)

	assert.Equal(t, "session-2", sessions[0].ID)
	assert.Equal(t, "session-1", sessions[1].ID)
	assert.Equal(t, "session-0", sessions[2].ID)
}

func TestChatStore_Sessions_Limit(t *testing.T) {
	store := NewChatStore()
	ctx := context.Background()

	base := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		err := store.CreateSession(ctx, &domain.ChatSession{
			ID:        fmt.Sprintf("session-%d", i),
			StartedAt: base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	sessions, err := store.Sessions(ctx, 2)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "session-4", sessions[0].ID)
	assert.Equal(t, "session-3", sessions[1].ID)

	all, err := store.Sessions(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestChatStore_Concurrency_AppendsStayOrdered(t *testing.T) {
	store := NewChatStore()
	ctx := context.Background()

	err := store.CreateSession(ctx, &domain.ChatSession{ID: "session-1"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	numAppends := 50

	wg.Add(numAppends)
	for i := 0; i < numAppends; i++ {
		go func(id int) {
			defer wg.Done()
			_ = store.AppendMessage(ctx, &domain.StoredMessage{
				SessionID: "session-1",
				Message:   domain.ChatMessage{Role: domain.RoleUser, Content: fmt.Sprintf("turn %d", id)},
			})
		}(i)
	}
	wg.Wait()

	msgs, err := store.Messages(ctx, "session-1")
	require.NoError(t, err)
	require.Len(t, msgs, numAppends)

	// Every sequence number appears exactly once, in order.
	for i, msg := range msgs {
		assert.Equal(t, i, msg.Seq)
	}
}

func TestChatStore_Close(t *testing.T) {
	store := NewChatStore()
	assert.NoError(t, store.Close())
}
