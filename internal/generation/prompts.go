package generation

import (
	"fmt"
	"strings"

	"github.com/studyloom/studyloom/internal/model"
)

// BuildExplainPrompt renders the explanation prompt for a topic. The
// builder is pure: identical inputs always produce identical prompt text,
// which keeps regeneration idempotent and the builder testable.
func BuildExplainPrompt(topicText string, c model.Customizations) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Please provide a comprehensive explanation of the topic: %q\n\n", topicText)
	b.WriteString("Customize the explanation for the following requirements:\n")
	fmt.Fprintf(&b, "- Level: %s\n", c.Level)

	if c.IncludeCalculations {
		b.WriteString("- Include relevant calculations and mathematical examples\n")
	}
	if c.IncludePracticeQuestions {
		b.WriteString("- Include practice questions at the end\n")
	}
	if c.IncludeExamples {
		b.WriteString("- Include practical examples and real-world applications\n")
	}
	if c.IncludeApplications {
		b.WriteString("- Focus on practical applications and use cases\n")
	}
	if len(c.FocusAreas) > 0 {
		fmt.Fprintf(&b, "- Focus specifically on these areas: %s\n", strings.Join(c.FocusAreas, ", "))
	}
	if c.AdditionalRequirements != "" {
		fmt.Fprintf(&b, "- Additional requirements: %s\n", c.AdditionalRequirements)
	}

	b.WriteString("\nPlease structure the response with clear headings and make it engaging and educational.")
	return b.String()
}

// BuildQuizPrompt renders the quiz generation prompt, including the JSON
// shape the backend must return.
func BuildQuizPrompt(content string, s model.QuizSettings) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Based on the following content, generate a quiz with exactly %d questions.\n\n", s.NumberOfQuestions)
	fmt.Fprintf(&b, "Content: %s\n\n", content)

	b.WriteString("Quiz Requirements:\n")
	fmt.Fprintf(&b, "- Difficulty: %s\n", s.Difficulty)
	fmt.Fprintf(&b, "- Include calculations: %s\n", yesNo(s.IncludeCalculations))

	b.WriteString("\nReturn the quiz in the following JSON format:\n")
	b.WriteString(`{
  "title": "Quiz Title",
  "questions": [
    {
      "questionText": "Question text here",
      "options": ["Option A", "Option B", "Option C", "Option D"],
      "correctOption": 0,
      "explanation": "Explanation for the correct answer",
      "difficulty": "easy|medium|hard",
      "includesCalculation": true|false
    }
  ]
}`)
	b.WriteString("\n\nMake sure each question has exactly 4 options, and the correctOption index is 0-based (0, 1, 2, or 3).")

	return b.String()
}

// BuildSummaryPrompt frames the initial task for a scraped website.
func BuildSummaryPrompt(title, finalURL, content, task string) string {
	return fmt.Sprintf("Website: %s\nURL: %s\nContent: %s\n\nTask: %s", title, finalURL, content, task)
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
