package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLastUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		messages []ChatMessage
		expected string
	}{
		{
			name:     "empty history",
			messages: nil,
			expected: "",
		},
		{
			name: "single user turn",
			messages: []ChatMessage{
				{Role: RoleUser, Content: "What was approved?"},
			},
			expected: "What was approved?",
		},
		{
			name: "assistant turns only",
			messages: []ChatMessage{
				{Role: RoleAssistant, Content: "Hello."},
			},
			expected: "",
		},
		{
			name: "most recent user turn wins",
			messages: []ChatMessage{
				{Role: RoleUser, Content: "first question"},
				{Role: RoleAssistant, Content: "first answer"},
				{Role: RoleUser, Content: "second question"},
			},
			expected: "second question",
		},
		{
			name: "trailing assistant turn is skipped",
			messages: []ChatMessage{
				{Role: RoleUser, Content: "the question"},
				{Role: RoleAssistant, Content: "the answer"},
			},
			expected: "the question",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, LastUserMessage(tt.messages))
		})
	}
}

func TestTokenUsage_Add(t *testing.T) {
	total := TokenUsage{}
	total.Add(TokenUsage{InputTokens: 100, OutputTokens: 50})
	total.Add(TokenUsage{InputTokens: 200, OutputTokens: 75})

	assert.Equal(t, int64(300), total.InputTokens)
	assert.Equal(t, int64(125), total.OutputTokens)
}

func TestCitation_Relevance(t *testing.T) {
	c := Citation{Distance: 0.25}
	assert.InDelta(t, 0.75, c.Relevance(), 1e-9)

	// Distances above 1 yield negative relevance; display code clamps.
	far := Citation{Distance: 1.4}
	assert.InDelta(t, -0.4, far.Relevance(), 1e-9)
}
