package model

import (
	"math"
	"time"
)

// Question difficulty levels. "mixed" is only valid in settings, never on
// a stored question.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
	DifficultyMixed  = "mixed"
)

// OptionsPerQuestion is the fixed arity of every question.
const OptionsPerQuestion = 4

// Question is one generated multiple-choice question.
type Question struct {
	Text                string   `json:"questionText"`
	Options             []string `json:"options"`
	CorrectOption       int      `json:"correctOption"`
	Explanation         string   `json:"explanation"`
	Difficulty          string   `json:"difficulty"`
	IncludesCalculation bool     `json:"includesCalculation"`
}

// QuizSettings control quiz generation. TimeLimitMinutes of zero means no
// limit.
type QuizSettings struct {
	NumberOfQuestions   int    `json:"numberOfQuestions"`
	Difficulty          string `json:"difficulty"`
	IncludeCalculations bool   `json:"includeCalculations"`
	TimeLimitMinutes    int    `json:"timeLimit,omitempty"`
}

// DefaultQuizSettings returns the generation defaults.
func DefaultQuizSettings() QuizSettings {
	return QuizSettings{
		NumberOfQuestions: 10,
		Difficulty:        DifficultyMixed,
	}
}

// Answer records one scored response inside an attempt.
type Answer struct {
	QuestionIndex    int  `json:"questionIndex"`
	SelectedOption   int  `json:"selectedOption"`
	IsCorrect        bool `json:"isCorrect"`
	TimeSpentSeconds int  `json:"timeSpent"`
}

// Attempt is an immutable record of one quiz submission.
type Attempt struct {
	ID             string    `json:"id"`
	AttemptedAt    time.Time `json:"attemptedAt"`
	Answers        []Answer  `json:"answers"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	CompletedAt    time.Time `json:"completedAt"`
}

// Quiz is a generated question set plus its attempt history. Questions and
// attempts are embedded; they have no identity outside the quiz.
type Quiz struct {
	ID          string       `json:"id"`
	OwnerID     string       `json:"ownerId"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	SourceKind  SourceKind   `json:"sourceType"`
	SourceID    string       `json:"sourceId"`
	Questions   []Question   `json:"questions"`
	Settings    QuizSettings `json:"settings"`
	Attempts    []Attempt    `json:"attempts"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// ComputeScore maps a correct count onto the 0..100 scale.
func ComputeScore(correctCount, totalQuestions int) int {
	if totalQuestions == 0 {
		return 0
	}
	return int(math.Round(100 * float64(correctCount) / float64(totalQuestions)))
}
