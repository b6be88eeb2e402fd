package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/studyloom/studyloom/internal/source"
)

// CreateTopicRequest represents a topic creation request.
type CreateTopicRequest struct {
	Title          string                      `json:"title"`
	Description    string                      `json:"description"`
	Content        string                      `json:"content"`
	Customizations *source.CustomizationsPatch `json:"customizations"`
}

// CreateTopic creates a topic and generates its explanation before
// responding. A failed generation still returns the persisted record so
// the caller can inspect the failure.
func (h *Handlers) CreateTopic(c *fiber.Ctx) error {
	var req CreateTopicRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	topic, err := h.sources.CreateTopic(c.Context(), userID(c), source.TopicInput{
		Title:          req.Title,
		Description:    req.Description,
		Content:        req.Content,
		Customizations: req.Customizations,
	})
	if err != nil {
		if topic != nil {
			return c.Status(fiber.StatusCreated).JSON(topic)
		}
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(topic)
}

// ListTopics returns the caller's topics, newest first.
func (h *Handlers) ListTopics(c *fiber.Ctx) error {
	topics, err := h.sources.ListTopics(c.Context(), userID(c))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"topics": topics})
}

// GetTopic returns one topic.
func (h *Handlers) GetTopic(c *fiber.Ctx) error {
	topic, err := h.sources.GetTopic(c.Context(), userID(c), c.Params("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(topic)
}

// UpdateTopicRequest represents a topic edit.
type UpdateTopicRequest struct {
	Title          *string                     `json:"title"`
	Description    *string                     `json:"description"`
	Content        *string                     `json:"content"`
	Customizations *source.CustomizationsPatch `json:"customizations"`
}

// UpdateTopic edits a topic, regenerating content when the input changed.
func (h *Handlers) UpdateTopic(c *fiber.Ctx) error {
	var req UpdateTopicRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	topic, err := h.sources.UpdateTopic(c.Context(), userID(c), c.Params("id"), source.TopicUpdate{
		Title:          req.Title,
		Description:    req.Description,
		Content:        req.Content,
		Customizations: req.Customizations,
	})
	if err != nil {
		if topic != nil {
			return c.JSON(topic)
		}
		return h.respondError(c, err)
	}
	return c.JSON(topic)
}

// DeleteTopic removes a topic and its conversation.
func (h *Handlers) DeleteTopic(c *fiber.Ctx) error {
	if err := h.sources.DeleteTopic(c.Context(), userID(c), c.Params("id")); err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Topic deleted successfully"})
}
