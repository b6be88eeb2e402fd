// Package generationtest provides a deterministic Gateway fake for tests.
package generationtest

import (
	"context"
	"fmt"

	"github.com/studyloom/studyloom/internal/generation"
	"github.com/studyloom/studyloom/internal/model"
)

// Fake implements generation.Gateway with canned behavior. Zero-value
// methods return deterministic placeholder text; set the corresponding
// func to override, or Err to fail every call.
type Fake struct {
	Err error

	ExplainFunc         func(ctx context.Context, topicText string, c model.Customizations) (string, error)
	ProcessDocumentFunc func(ctx context.Context, content []byte, mimeType, prompt string) (string, error)
	GenerateQuizFunc    func(ctx context.Context, content string, s model.QuizSettings) (*generation.QuizDraft, error)
	ChatReplyFunc       func(ctx context.Context, history []model.Message, contextText string) (string, error)

	// ChatHistories records the history passed to each ChatReply call.
	ChatHistories [][]model.Message
	// ChatContexts records the context string of each ChatReply call.
	ChatContexts []string
}

var _ generation.Gateway = (*Fake)(nil)

func (f *Fake) Explain(ctx context.Context, topicText string, c model.Customizations) (string, error) {
	if f.Err != nil {
		return "", f.Err
	}
	if f.ExplainFunc != nil {
		return f.ExplainFunc(ctx, topicText, c)
	}
	return fmt.Sprintf("Explanation of %s at %s level.", topicText, c.Level), nil
}

func (f *Fake) ProcessDocument(ctx context.Context, content []byte, mimeType, prompt string) (string, error) {
	if f.Err != nil {
		return "", f.Err
	}
	if f.ProcessDocumentFunc != nil {
		return f.ProcessDocumentFunc(ctx, content, mimeType, prompt)
	}
	return fmt.Sprintf("Summary of %d bytes (%s).", len(content), mimeType), nil
}

func (f *Fake) GenerateQuiz(ctx context.Context, content string, s model.QuizSettings) (*generation.QuizDraft, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	if f.GenerateQuizFunc != nil {
		return f.GenerateQuizFunc(ctx, content, s)
	}
	return &generation.QuizDraft{
		Title:     "Generated Quiz",
		Questions: Questions(s.NumberOfQuestions),
	}, nil
}

func (f *Fake) ChatReply(ctx context.Context, history []model.Message, contextText string) (string, error) {
	f.ChatHistories = append(f.ChatHistories, history)
	f.ChatContexts = append(f.ChatContexts, contextText)
	if f.Err != nil {
		return "", f.Err
	}
	if f.ChatReplyFunc != nil {
		return f.ChatReplyFunc(ctx, history, contextText)
	}
	return "Assistant reply.", nil
}

// Questions builds n well-formed questions with correctOption cycling
// through the four slots.
func Questions(n int) []model.Question {
	qs := make([]model.Question, n)
	for i := range qs {
		qs[i] = model.Question{
			Text:          fmt.Sprintf("Question %d?", i+1),
			Options:       []string{"A", "B", "C", "D"},
			CorrectOption: i % model.OptionsPerQuestion,
			Explanation:   fmt.Sprintf("Because of fact %d.", i+1),
			Difficulty:    model.DifficultyMedium,
		}
	}
	return qs
}
