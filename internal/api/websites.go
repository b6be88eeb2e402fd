package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/studyloom/studyloom/internal/model"
)

// CreateWebsiteRequest represents a website ingestion request.
type CreateWebsiteRequest struct {
	URL    string `json:"url"`
	Prompt string `json:"prompt"`
}

// CreateWebsite scrapes the URL and generates its summary before
// responding.
func (h *Handlers) CreateWebsite(c *fiber.Ctx) error {
	var req CreateWebsiteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	site, err := h.sources.CreateWebsite(c.Context(), userID(c), req.URL, req.Prompt)
	if err != nil {
		if site != nil {
			return c.Status(fiber.StatusCreated).JSON(site)
		}
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(site)
}

// ListWebsites returns the caller's websites, newest first.
func (h *Handlers) ListWebsites(c *fiber.Ctx) error {
	sites, err := h.sources.ListWebsites(c.Context(), userID(c))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"websites": sites})
}

// GetWebsite returns one website.
func (h *Handlers) GetWebsite(c *fiber.Ctx) error {
	site, err := h.sources.GetWebsite(c.Context(), userID(c), c.Params("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(site)
}

// AskWebsite relays a question through the website's linked conversation.
// Websites that never completed have no conversation and are rejected.
func (h *Handlers) AskWebsite(c *fiber.Ctx) error {
	var req AskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	site, err := h.sources.GetWebsite(c.Context(), userID(c), c.Params("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	if site.ConversationID == "" {
		return h.respondError(c, &model.SourceNotReadyError{Kind: model.KindWebsite, ID: site.ID, Status: site.Status})
	}

	reply, err := h.conversations.Ask(c.Context(), userID(c), site.ConversationID, req.Message)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(reply)
}

// DeleteWebsite removes a website and its conversation.
func (h *Handlers) DeleteWebsite(c *fiber.Ctx) error {
	if err := h.sources.DeleteWebsite(c.Context(), userID(c), c.Params("id")); err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Website deleted successfully"})
}
