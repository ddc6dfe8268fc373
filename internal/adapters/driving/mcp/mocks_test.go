package mcp

import (
	"context"

	"github.com/gavel-labs/gavel/internal/core/domain"
	"github.com/gavel-labs/gavel/internal/core/ports/driving"
)

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	answer *domain.Answer
	chunks []domain.ScoredChunk
	err    error

	gotQuestion string
	gotK        int
}

func (m *mockQueryService) Retrieve(_ context.Context, question string, k int) ([]domain.ScoredChunk, error) {
	m.gotQuestion = question
	m.gotK = k
	return m.chunks, m.err
}

func (m *mockQueryService) Query(_ context.Context, question string, k int, _ bool) (*domain.Answer, error) {
	m.gotQuestion = question
	m.gotK = k
	return m.answer, m.err
}

func (m *mockQueryService) Chat(_ context.Context, messages []domain.ChatMessage, k int) (*domain.Answer, error) {
	m.gotQuestion = domain.LastUserMessage(messages)
	m.gotK = k
	return m.answer, m.err
}

// mockMeetingService is a mock implementation of driving.MeetingService.
type mockMeetingService struct {
	meetings []domain.Meeting
	meeting  *domain.Meeting
	rows     []driving.MeetingOverview
	document *domain.Document
	err      error
}

func (m *mockMeetingService) List(_ context.Context) ([]domain.Meeting, error) {
	return m.meetings, m.err
}

func (m *mockMeetingService) Get(_ context.Context, _ string) (*domain.Meeting, error) {
	return m.meeting, m.err
}

func (m *mockMeetingService) Overview(_ context.Context) ([]driving.MeetingOverview, error) {
	return m.rows, m.err
}

func (m *mockMeetingService) Document(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}
