package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecentWindow(t *testing.T) {
	conv := &Conversation{}
	for i := 0; i < 15; i++ {
		conv.Messages = append(conv.Messages, Message{Role: RoleUser, Content: string(rune('a' + i))})
	}

	window := conv.RecentWindow(10)
	require.Len(t, window, 10)
	assert.Equal(t, "f", window[0].Content)
	assert.Equal(t, "o", window[9].Content)

	// Shorter logs come back whole.
	short := &Conversation{Messages: conv.Messages[:3]}
	assert.Len(t, short.RecentWindow(10), 3)

	assert.Nil(t, conv.RecentWindow(0))

	// The window is a copy.
	window[0].Content = "mutated"
	assert.Equal(t, "f", conv.Messages[5].Content)
}

func TestTopicContextTextPrefersGenerated(t *testing.T) {
	topic := &Topic{Content: "raw", GeneratedContent: "generated"}
	assert.Equal(t, "generated", topic.ContextText())

	topic.GeneratedContent = ""
	assert.Equal(t, "raw", topic.ContextText())
}

func TestWebsiteDisplayTitleFallsBackToURL(t *testing.T) {
	site := &Website{URL: "https://example.com"}
	assert.Equal(t, "https://example.com", site.DisplayTitle())

	site.Title = "Example"
	assert.Equal(t, "Example", site.DisplayTitle())
}

func TestConversationCloneIsDeep(t *testing.T) {
	now := time.Now().UTC()
	conv := &Conversation{
		ID: "c1",
		Messages: []Message{
			{Role: RoleUser, Content: "q", Timestamp: now, Metadata: map[string]any{"k": "v"}},
		},
	}

	clone := conv.Clone()
	clone.Messages[0].Content = "changed"
	clone.Messages[0].Metadata["k"] = "changed"

	assert.Equal(t, "q", conv.Messages[0].Content)
	assert.Equal(t, "v", conv.Messages[0].Metadata["k"])
}

func TestQuizCloneIsDeep(t *testing.T) {
	quiz := &Quiz{
		ID: "q1",
		Questions: []Question{
			{Text: "Q?", Options: []string{"a", "b", "c", "d"}, CorrectOption: 1},
		},
		Attempts: []Attempt{
			{ID: "a1", Answers: []Answer{{QuestionIndex: 0, SelectedOption: 1, IsCorrect: true}}},
		},
	}

	clone := quiz.Clone()
	clone.Questions[0].Options[0] = "changed"
	clone.Attempts[0].Answers[0].SelectedOption = 3

	assert.Equal(t, "a", quiz.Questions[0].Options[0])
	assert.Equal(t, 1, quiz.Attempts[0].Answers[0].SelectedOption)
}
