// Package quiz generates multiple-choice quizzes from completed sources
// and scores attempts against them.
package quiz

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/studyloom/studyloom/internal/generation"
	"github.com/studyloom/studyloom/internal/model"
	"github.com/studyloom/studyloom/internal/store"
	"github.com/studyloom/studyloom/pkg/locking"
	"github.com/studyloom/studyloom/pkg/logging"
)

// IndexOutOfRangeError rejects a submission referencing a question index
// the quiz does not have. The whole submission fails; nothing is scored.
type IndexOutOfRangeError struct {
	QuestionIndex int
	Total         int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("question index %d out of range for quiz with %d questions", e.QuestionIndex, e.Total)
}

// SettingsPatch overrides quiz defaults field by field.
type SettingsPatch struct {
	NumberOfQuestions   *int    `json:"numberOfQuestions"`
	Difficulty          *string `json:"difficulty"`
	IncludeCalculations *bool   `json:"includeCalculations"`
	TimeLimitMinutes    *int    `json:"timeLimit"`
}

// Apply merges the patch over base, leaving unset fields untouched.
func (p *SettingsPatch) Apply(base model.QuizSettings) model.QuizSettings {
	if p == nil {
		return base
	}
	if p.NumberOfQuestions != nil {
		base.NumberOfQuestions = *p.NumberOfQuestions
	}
	if p.Difficulty != nil {
		base.Difficulty = *p.Difficulty
	}
	if p.IncludeCalculations != nil {
		base.IncludeCalculations = *p.IncludeCalculations
	}
	if p.TimeLimitMinutes != nil {
		base.TimeLimitMinutes = *p.TimeLimitMinutes
	}
	return base
}

func validDifficulty(d string) bool {
	switch d {
	case model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard, model.DifficultyMixed:
		return true
	}
	return false
}

// Engine generates and scores quizzes.
type Engine struct {
	store   store.Store
	gateway generation.Gateway
	locks   *locking.KeyedMutex
	log     zerolog.Logger
}

// NewEngine wires the quiz engine.
func NewEngine(st store.Store, gw generation.Gateway) *Engine {
	return &Engine{
		store:   st,
		gateway: gw,
		locks:   locking.NewKeyedMutex(),
		log:     logging.GetLogger("quiz"),
	}
}

// GenerateFromSource builds a quiz from a completed source. Sources still
// processing or failed are rejected with SourceNotReadyError.
func (e *Engine) GenerateFromSource(ctx context.Context, ownerID string, kind model.SourceKind, sourceID string, patch *SettingsPatch) (*model.Quiz, error) {
	settings := patch.Apply(model.DefaultQuizSettings())
	if settings.NumberOfQuestions < 1 {
		return nil, &model.ValidationError{Field: "settings.numberOfQuestions", Message: "must be at least 1"}
	}
	if !validDifficulty(settings.Difficulty) {
		return nil, &model.ValidationError{Field: "settings.difficulty", Message: "difficulty must be easy, medium, hard, or mixed"}
	}

	src, err := e.loadSource(ctx, ownerID, kind, sourceID)
	if err != nil {
		return nil, err
	}
	if src.ProcessingState() != model.StatusCompleted {
		return nil, &model.SourceNotReadyError{Kind: kind, ID: sourceID, Status: src.ProcessingState()}
	}
	content := src.ContextText()
	if content == "" {
		return nil, &model.ValidationError{Field: "source", Message: "source has no content to quiz on"}
	}

	draft, err := e.gateway.GenerateQuiz(ctx, content, settings)
	if err != nil {
		e.log.Warn().Err(err).Str("source_id", sourceID).Msg("Quiz generation failed")
		return nil, err
	}

	title := draft.Title
	if title == "" {
		title = "Quiz: " + src.DisplayTitle()
	}

	now := time.Now().UTC()
	quiz := &model.Quiz{
		ID:         uuid.New().String(),
		OwnerID:    ownerID,
		Title:      title,
		SourceKind: kind,
		SourceID:   sourceID,
		Questions:  draft.Questions,
		Settings:   settings,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := e.store.PutQuiz(ctx, quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

func (e *Engine) loadSource(ctx context.Context, ownerID string, kind model.SourceKind, sourceID string) (model.Source, error) {
	switch kind {
	case model.KindTopic:
		return e.store.GetTopic(ctx, ownerID, sourceID)
	case model.KindDocument:
		return e.store.GetDocument(ctx, ownerID, sourceID)
	case model.KindWebsite:
		return e.store.GetWebsite(ctx, ownerID, sourceID)
	}
	return nil, &model.ValidationError{Field: "sourceType", Message: "sourceType must be topic, document, or website"}
}

// Get returns one quiz, answers and all. Callers presenting a quiz to a
// taker should use Start instead.
func (e *Engine) Get(ctx context.Context, ownerID, id string) (*model.Quiz, error) {
	return e.store.GetQuiz(ctx, ownerID, id)
}

// List returns the owner's quizzes, newest first.
func (e *Engine) List(ctx context.Context, ownerID string) ([]*model.Quiz, error) {
	return e.store.ListQuizzes(ctx, ownerID)
}

// Delete removes a quiz and its attempt history.
func (e *Engine) Delete(ctx context.Context, ownerID, id string) error {
	e.locks.Lock(id)
	defer e.locks.Unlock(id)
	return e.store.DeleteQuiz(ctx, ownerID, id)
}

// StartQuestion is the taker-facing view of a question. Correct answers
// and explanations are withheld until the attempt is submitted.
type StartQuestion struct {
	Index               int      `json:"index"`
	Text                string   `json:"questionText"`
	Options             []string `json:"options"`
	Difficulty          string   `json:"difficulty"`
	IncludesCalculation bool     `json:"includesCalculation"`
}

// StartView is what a quiz taker receives when beginning an attempt.
type StartView struct {
	ID               string          `json:"id"`
	Title            string          `json:"title"`
	TotalQuestions   int             `json:"totalQuestions"`
	TimeLimitMinutes int             `json:"timeLimit,omitempty"`
	Questions        []StartQuestion `json:"questions"`
}

// Start returns the sanitized view of a quiz. It mutates nothing and is
// safe to call repeatedly.
func (e *Engine) Start(ctx context.Context, ownerID, id string) (*StartView, error) {
	quiz, err := e.store.GetQuiz(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	view := &StartView{
		ID:               quiz.ID,
		Title:            quiz.Title,
		TotalQuestions:   len(quiz.Questions),
		TimeLimitMinutes: quiz.Settings.TimeLimitMinutes,
		Questions:        make([]StartQuestion, len(quiz.Questions)),
	}
	for i, q := range quiz.Questions {
		view.Questions[i] = StartQuestion{
			Index:               i,
			Text:                q.Text,
			Options:             append([]string(nil), q.Options...),
			Difficulty:          q.Difficulty,
			IncludesCalculation: q.IncludesCalculation,
		}
	}
	return view, nil
}

// SubmittedAnswer is one answer in a submission.
type SubmittedAnswer struct {
	QuestionIndex    int `json:"questionIndex"`
	SelectedOption   int `json:"selectedOption"`
	TimeSpentSeconds int `json:"timeSpent"`
}

// AnswerResult grades a single answer.
type AnswerResult struct {
	QuestionIndex  int    `json:"questionIndex"`
	SelectedOption int    `json:"selectedOption"`
	CorrectOption  int    `json:"correctOption"`
	IsCorrect      bool   `json:"isCorrect"`
	Explanation    string `json:"explanation,omitempty"`
}

// SubmitResult is the outcome of a graded attempt.
type SubmitResult struct {
	AttemptID      string         `json:"attemptId"`
	Score          int            `json:"score"`
	CorrectCount   int            `json:"correctCount"`
	TotalQuestions int            `json:"totalQuestions"`
	Answers        []AnswerResult `json:"answers"`
}

// Submit grades an attempt and appends it to the quiz's history. Every
// questionIndex is bounds-checked before any grading happens; one bad
// index fails the whole submission. A selectedOption outside 0..3 is
// simply wrong, it is not an error: takers may submit skips that way.
func (e *Engine) Submit(ctx context.Context, ownerID, id string, answers []SubmittedAnswer) (*SubmitResult, error) {
	if len(answers) == 0 {
		return nil, &model.ValidationError{Field: "answers", Message: "answers are required"}
	}

	e.locks.Lock(id)
	defer e.locks.Unlock(id)

	quiz, err := e.store.GetQuiz(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	for _, a := range answers {
		if a.QuestionIndex < 0 || a.QuestionIndex >= len(quiz.Questions) {
			return nil, &IndexOutOfRangeError{QuestionIndex: a.QuestionIndex, Total: len(quiz.Questions)}
		}
	}

	now := time.Now().UTC()
	attempt := model.Attempt{
		ID:             uuid.New().String(),
		AttemptedAt:    now,
		CompletedAt:    now,
		TotalQuestions: len(quiz.Questions),
		Answers:        make([]model.Answer, len(answers)),
	}
	results := make([]AnswerResult, len(answers))
	correct := 0
	for i, a := range answers {
		q := quiz.Questions[a.QuestionIndex]
		isCorrect := a.SelectedOption == q.CorrectOption
		if isCorrect {
			correct++
		}
		attempt.Answers[i] = model.Answer{
			QuestionIndex:    a.QuestionIndex,
			SelectedOption:   a.SelectedOption,
			IsCorrect:        isCorrect,
			TimeSpentSeconds: a.TimeSpentSeconds,
		}
		results[i] = AnswerResult{
			QuestionIndex:  a.QuestionIndex,
			SelectedOption: a.SelectedOption,
			CorrectOption:  q.CorrectOption,
			IsCorrect:      isCorrect,
			Explanation:    q.Explanation,
		}
	}
	attempt.Score = model.ComputeScore(correct, len(quiz.Questions))

	quiz.Attempts = append(quiz.Attempts, attempt)
	quiz.UpdatedAt = now
	if err := e.store.PutQuiz(ctx, quiz); err != nil {
		return nil, err
	}

	return &SubmitResult{
		AttemptID:      attempt.ID,
		Score:          attempt.Score,
		CorrectCount:   correct,
		TotalQuestions: len(quiz.Questions),
		Answers:        results,
	}, nil
}

// Attempts returns a quiz's attempt history, oldest first.
func (e *Engine) Attempts(ctx context.Context, ownerID, id string) ([]model.Attempt, error) {
	quiz, err := e.store.GetQuiz(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	return quiz.Attempts, nil
}

// BestScore returns the highest score across attempts, or 0 with ok=false
// when the quiz has never been taken.
func (e *Engine) BestScore(ctx context.Context, ownerID, id string) (int, bool, error) {
	quiz, err := e.store.GetQuiz(ctx, ownerID, id)
	if err != nil {
		return 0, false, err
	}
	if len(quiz.Attempts) == 0 {
		return 0, false, nil
	}
	best := math.MinInt
	for _, a := range quiz.Attempts {
		if a.Score > best {
			best = a.Score
		}
	}
	return best, true, nil
}
