package generation

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyloom/studyloom/internal/model"
)

func draftJSON(n int) string {
	out := `{"title":"Sample Quiz","questions":[`
	for i := 0; i < n; i++ {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf(`{"questionText":"Q%d?","options":["a","b","c","d"],"correctOption":%d,"explanation":"because","difficulty":"easy","includesCalculation":false}`, i+1, i%4)
	}
	return out + `]}`
}

func TestParseQuizDraft(t *testing.T) {
	settings := model.QuizSettings{NumberOfQuestions: 3}

	draft, err := parseQuizDraft(draftJSON(3), settings)
	require.NoError(t, err)

	assert.Equal(t, "Sample Quiz", draft.Title)
	require.Len(t, draft.Questions, 3)
	assert.Equal(t, "Q1?", draft.Questions[0].Text)
	assert.Equal(t, 2, draft.Questions[2].CorrectOption)
}

func TestParseQuizDraftStripsCodeFences(t *testing.T) {
	settings := model.QuizSettings{NumberOfQuestions: 2}
	raw := "```json\n" + draftJSON(2) + "\n```"

	draft, err := parseQuizDraft(raw, settings)
	require.NoError(t, err)
	assert.Len(t, draft.Questions, 2)
}

func TestParseQuizDraftRejectsMalformed(t *testing.T) {
	settings := model.QuizSettings{NumberOfQuestions: 2}

	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"not json", "here is your quiz!"},
		{"count mismatch", draftJSON(3)},
		{"missing text", `{"questions":[{"questionText":"","options":["a","b","c","d"],"correctOption":0},{"questionText":"Q?","options":["a","b","c","d"],"correctOption":1}]}`},
		{"three options", `{"questions":[{"questionText":"Q?","options":["a","b","c"],"correctOption":0},{"questionText":"Q?","options":["a","b","c","d"],"correctOption":1}]}`},
		{"correctOption out of range", `{"questions":[{"questionText":"Q?","options":["a","b","c","d"],"correctOption":4},{"questionText":"Q?","options":["a","b","c","d"],"correctOption":1}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseQuizDraft(tt.raw, settings)
			require.Error(t, err)
			_, ok := err.(*FormatError)
			assert.True(t, ok, "want *FormatError, got %T", err)
		})
	}
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFences(`{"a":1}`))
}
