package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/studyloom/studyloom/internal/model"
	"github.com/studyloom/studyloom/internal/quiz"
)

// GenerateQuizRequest represents a quiz generation request.
type GenerateQuizRequest struct {
	SourceType string              `json:"sourceType"`
	SourceID   string              `json:"sourceId"`
	Settings   *quiz.SettingsPatch `json:"settings"`
}

// GenerateQuiz builds a quiz from a completed source.
func (h *Handlers) GenerateQuiz(c *fiber.Ctx) error {
	var req GenerateQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.SourceID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "sourceId is required"})
	}

	q, err := h.quizzes.GenerateFromSource(c.Context(), userID(c), model.SourceKind(req.SourceType), req.SourceID, req.Settings)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(q)
}

// ListQuizzes returns the caller's quizzes, newest first.
func (h *Handlers) ListQuizzes(c *fiber.Ctx) error {
	quizzes, err := h.quizzes.List(c.Context(), userID(c))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"quizzes": quizzes})
}

// GetQuiz returns one quiz with its answers and attempt history.
func (h *Handlers) GetQuiz(c *fiber.Ctx) error {
	q, err := h.quizzes.Get(c.Context(), userID(c), c.Params("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(q)
}

// StartQuiz returns the taker view: questions without correct answers or
// explanations.
func (h *Handlers) StartQuiz(c *fiber.Ctx) error {
	view, err := h.quizzes.Start(c.Context(), userID(c), c.Params("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(view)
}

// SubmitQuizRequest represents a graded submission.
type SubmitQuizRequest struct {
	Answers []quiz.SubmittedAnswer `json:"answers"`
}

// SubmitQuiz grades an attempt and returns the detailed results.
func (h *Handlers) SubmitQuiz(c *fiber.Ctx) error {
	var req SubmitQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	result, err := h.quizzes.Submit(c.Context(), userID(c), c.Params("id"), req.Answers)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(result)
}

// ListAttempts returns a quiz's attempt history.
func (h *Handlers) ListAttempts(c *fiber.Ctx) error {
	attempts, err := h.quizzes.Attempts(c.Context(), userID(c), c.Params("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"attempts": attempts})
}

// DeleteQuiz removes a quiz and its attempts.
func (h *Handlers) DeleteQuiz(c *fiber.Ctx) error {
	if err := h.quizzes.Delete(c.Context(), userID(c), c.Params("id")); err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Quiz deleted successfully"})
}
