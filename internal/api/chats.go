package api

import (
	"github.com/gofiber/fiber/v2"
)

// CreateChatRequest represents a general conversation creation request.
type CreateChatRequest struct {
	Title string `json:"title"`
}

// CreateChat starts a general conversation.
func (h *Handlers) CreateChat(c *fiber.Ctx) error {
	var req CreateChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	conv, err := h.conversations.Create(c.Context(), userID(c), req.Title)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(conv)
}

// ListChats returns the caller's active conversations, most recent
// activity first.
func (h *Handlers) ListChats(c *fiber.Ctx) error {
	convs, err := h.conversations.List(c.Context(), userID(c))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"conversations": convs})
}

// GetChat returns one conversation with its full message log.
func (h *Handlers) GetChat(c *fiber.Ctx) error {
	conv, err := h.conversations.Get(c.Context(), userID(c), c.Params("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(conv)
}

// AskRequest represents one user question.
type AskRequest struct {
	Message string `json:"message"`
}

// Ask relays a question through the conversation and returns the reply.
func (h *Handlers) Ask(c *fiber.Ctx) error {
	var req AskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	reply, err := h.conversations.Ask(c.Context(), userID(c), c.Params("id"), req.Message)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(reply)
}

// RenameChatRequest represents a title change.
type RenameChatRequest struct {
	Title string `json:"title"`
}

// RenameChat sets the conversation title.
func (h *Handlers) RenameChat(c *fiber.Ctx) error {
	var req RenameChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	conv, err := h.conversations.Rename(c.Context(), userID(c), c.Params("id"), req.Title)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(conv)
}

// ClearChat empties the conversation's message log.
func (h *Handlers) ClearChat(c *fiber.Ctx) error {
	conv, err := h.conversations.Clear(c.Context(), userID(c), c.Params("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(conv)
}

// DeleteChat hides a conversation from listings.
func (h *Handlers) DeleteChat(c *fiber.Ctx) error {
	if err := h.conversations.SoftDelete(c.Context(), userID(c), c.Params("id")); err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Conversation deleted successfully"})
}
