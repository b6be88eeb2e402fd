package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/studyloom/studyloom/internal/model"
)

func TestBuildExplainPromptDeterministic(t *testing.T) {
	c := model.DefaultCustomizations()
	c.FocusAreas = []string{"thermodynamics", "entropy"}

	first := BuildExplainPrompt("heat engines", c)
	second := BuildExplainPrompt("heat engines", c)
	assert.Equal(t, first, second)
}

func TestBuildExplainPromptDirectives(t *testing.T) {
	c := model.Customizations{
		Level:                    "expert",
		IncludeCalculations:      true,
		IncludePracticeQuestions: true,
		IncludeExamples:          false,
		IncludeApplications:      true,
		FocusAreas:               []string{"limits", "series"},
		AdditionalRequirements:   "keep it under 500 words",
	}
	prompt := BuildExplainPrompt("calculus", c)

	assert.Contains(t, prompt, `"calculus"`)
	assert.Contains(t, prompt, "- Level: expert")
	assert.Contains(t, prompt, "calculations and mathematical examples")
	assert.Contains(t, prompt, "practice questions at the end")
	assert.NotContains(t, prompt, "practical examples and real-world applications")
	assert.Contains(t, prompt, "practical applications and use cases")
	assert.Contains(t, prompt, "limits, series")
	assert.Contains(t, prompt, "keep it under 500 words")
}

func TestBuildExplainPromptDefaultsOmitUnsetDirectives(t *testing.T) {
	prompt := BuildExplainPrompt("osmosis", model.DefaultCustomizations())

	assert.Contains(t, prompt, "- Level: intermediate")
	assert.Contains(t, prompt, "practical examples and real-world applications")
	assert.NotContains(t, prompt, "calculations and mathematical examples")
	assert.NotContains(t, prompt, "Focus specifically on these areas")
	assert.NotContains(t, prompt, "Additional requirements")
}

func TestBuildQuizPrompt(t *testing.T) {
	s := model.QuizSettings{
		NumberOfQuestions:   5,
		Difficulty:          model.DifficultyHard,
		IncludeCalculations: true,
	}
	prompt := BuildQuizPrompt("photosynthesis notes", s)

	assert.Contains(t, prompt, "exactly 5 questions")
	assert.Contains(t, prompt, "Content: photosynthesis notes")
	assert.Contains(t, prompt, "- Difficulty: hard")
	assert.Contains(t, prompt, "- Include calculations: Yes")
	assert.Contains(t, prompt, `"correctOption": 0`)
	assert.Contains(t, prompt, "exactly 4 options")
}

func TestBuildSummaryPrompt(t *testing.T) {
	prompt := BuildSummaryPrompt("Example", "https://example.com", "page text", "Summarize it.")
	assert.Equal(t, "Website: Example\nURL: https://example.com\nContent: page text\n\nTask: Summarize it.", prompt)
}
