package generation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/studyloom/studyloom/internal/model"
)

// parseQuizDraft decodes the backend's JSON quiz and enforces the
// structural contract before the draft reaches any caller.
func parseQuizDraft(raw string, settings model.QuizSettings) (*QuizDraft, error) {
	text := stripCodeFences(raw)
	if text == "" {
		return nil, &FormatError{Reason: "empty response", Raw: raw}
	}

	var draft QuizDraft
	if err := json.Unmarshal([]byte(text), &draft); err != nil {
		return nil, &FormatError{
			Reason: fmt.Sprintf("invalid JSON: %v", err),
			Raw:    raw,
		}
	}

	if err := validateDraft(&draft, settings); err != nil {
		return nil, err
	}
	return &draft, nil
}

func validateDraft(draft *QuizDraft, settings model.QuizSettings) error {
	if len(draft.Questions) != settings.NumberOfQuestions {
		return &FormatError{
			Reason: fmt.Sprintf("expected %d questions, got %d", settings.NumberOfQuestions, len(draft.Questions)),
		}
	}

	for i, q := range draft.Questions {
		if q.Text == "" {
			return &FormatError{Reason: fmt.Sprintf("question %d has no text", i)}
		}
		if len(q.Options) != model.OptionsPerQuestion {
			return &FormatError{
				Reason: fmt.Sprintf("question %d has %d options, want %d", i, len(q.Options), model.OptionsPerQuestion),
			}
		}
		if q.CorrectOption < 0 || q.CorrectOption >= model.OptionsPerQuestion {
			return &FormatError{
				Reason: fmt.Sprintf("question %d correctOption %d out of range", i, q.CorrectOption),
			}
		}
	}
	return nil
}

// stripCodeFences removes a surrounding markdown code block, which some
// backends wrap around JSON output even when asked for raw JSON.
func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	lines := strings.Split(text, "\n")
	endIdx := len(lines) - 1
	for i := len(lines) - 1; i > 0; i-- {
		if strings.TrimSpace(lines[i]) == "```" {
			endIdx = i
			break
		}
	}
	return strings.TrimSpace(strings.Join(lines[1:endIdx], "\n"))
}
