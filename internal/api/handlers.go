// Package api exposes the HTTP surface with Fiber handlers for sources,
// conversations, and quizzes.
package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/studyloom/studyloom/internal/conversation"
	"github.com/studyloom/studyloom/internal/model"
	"github.com/studyloom/studyloom/internal/quiz"
	"github.com/studyloom/studyloom/internal/source"
	"github.com/studyloom/studyloom/internal/store"
	"github.com/studyloom/studyloom/pkg/extractor"
	"github.com/studyloom/studyloom/pkg/logging"
)

// UserHeader carries the caller's identity. Every record is scoped to it.
const UserHeader = "X-User-ID"

// Handlers contains the HTTP handlers for the API.
type Handlers struct {
	sources       *source.Processor
	conversations *conversation.Service
	quizzes       *quiz.Engine
	log           zerolog.Logger
}

// NewHandlers creates a new handlers instance.
func NewHandlers(sources *source.Processor, conversations *conversation.Service, quizzes *quiz.Engine) *Handlers {
	return &Handlers{
		sources:       sources,
		conversations: conversations,
		quizzes:       quizzes,
		log:           logging.GetLogger("api"),
	}
}

// Health returns the service health status.
func (h *Handlers) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"service":   "studyloom",
		"timestamp": time.Now().UTC(),
	})
}

// RequireUser rejects requests without an identity header and stashes the
// user id for handlers.
func RequireUser(c *fiber.Ctx) error {
	userID := c.Get(UserHeader)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "missing " + UserHeader + " header",
		})
	}
	c.Locals("userID", userID)
	return c.Next()
}

func userID(c *fiber.Ctx) string {
	return c.Locals("userID").(string)
}

// respondError maps service errors onto HTTP statuses. Unrecognized
// errors become 500s with the message passed through.
func (h *Handlers) respondError(c *fiber.Ctx, err error) error {
	var (
		validation  *model.ValidationError
		notFound    *store.NotFoundError
		notReady    *model.SourceNotReadyError
		unsupported *extractor.UnsupportedTypeError
		badIndex    *quiz.IndexOutOfRangeError
	)
	switch {
	case errors.As(err, &validation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validation.Error()})
	case errors.As(err, &notFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": notFound.Error()})
	case errors.As(err, &notReady):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": notReady.Error()})
	case errors.As(err, &unsupported):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": unsupported.Error()})
	case errors.As(err, &badIndex):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": badIndex.Error()})
	}
	h.log.Error().Err(err).Str("path", c.Path()).Msg("Request failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}
