package api

import (
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/studyloom/studyloom/internal/model"
	"github.com/studyloom/studyloom/internal/source"
)

// Uploads above this size are rejected before extraction.
const maxUploadSize = 50 * 1024 * 1024 // 50MB

// UploadDocument accepts a multipart upload under the "document" field,
// extracts its text, and generates the summary before responding.
func (h *Handlers) UploadDocument(c *fiber.Ctx) error {
	file, err := c.FormFile("document")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No document uploaded or invalid file format",
		})
	}
	if file.Size > maxUploadSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("File too large: %d bytes. Maximum size is %d bytes (50MB)", file.Size, maxUploadSize),
		})
	}

	src, err := file.Open()
	if err != nil {
		return h.respondError(c, err)
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return h.respondError(c, err)
	}

	doc, err := h.sources.CreateDocument(c.Context(), userID(c), source.DocumentUpload{
		OriginalName: file.Filename,
		MimeType:     file.Header.Get("Content-Type"),
		Data:         data,
		Prompt:       c.FormValue("prompt"),
	})
	if err != nil {
		if doc != nil {
			return c.Status(fiber.StatusCreated).JSON(doc)
		}
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(doc)
}

// ListDocuments returns the caller's documents, newest first.
func (h *Handlers) ListDocuments(c *fiber.Ctx) error {
	docs, err := h.sources.ListDocuments(c.Context(), userID(c))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"documents": docs})
}

// GetDocument returns one document.
func (h *Handlers) GetDocument(c *fiber.Ctx) error {
	doc, err := h.sources.GetDocument(c.Context(), userID(c), c.Params("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(doc)
}

// AskDocument relays a question through the document's linked
// conversation. Documents that never completed have no conversation and
// are rejected.
func (h *Handlers) AskDocument(c *fiber.Ctx) error {
	var req AskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	doc, err := h.sources.GetDocument(c.Context(), userID(c), c.Params("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	if doc.ConversationID == "" {
		return h.respondError(c, &model.SourceNotReadyError{Kind: model.KindDocument, ID: doc.ID, Status: doc.Status})
	}

	reply, err := h.conversations.Ask(c.Context(), userID(c), doc.ConversationID, req.Message)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(reply)
}

// DeleteDocument removes a document, its conversation, and its file.
func (h *Handlers) DeleteDocument(c *fiber.Ctx) error {
	if err := h.sources.DeleteDocument(c.Context(), userID(c), c.Params("id")); err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Document deleted successfully"})
}
