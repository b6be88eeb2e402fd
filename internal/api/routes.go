package api

import (
	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures all API routes.
func SetupRoutes(app *fiber.App, h *Handlers) {
	app.Get("/health", h.Health)

	v1 := app.Group("/api/v1", RequireUser)

	topics := v1.Group("/topics")
	topics.Post("/", h.CreateTopic)
	topics.Get("/", h.ListTopics)
	topics.Get("/:id", h.GetTopic)
	topics.Put("/:id", h.UpdateTopic)
	topics.Delete("/:id", h.DeleteTopic)

	docs := v1.Group("/documents")
	docs.Post("/", h.UploadDocument)
	docs.Get("/", h.ListDocuments)
	docs.Get("/:id", h.GetDocument)
	docs.Post("/:id/ask", h.AskDocument)
	docs.Delete("/:id", h.DeleteDocument)

	sites := v1.Group("/websites")
	sites.Post("/", h.CreateWebsite)
	sites.Get("/", h.ListWebsites)
	sites.Get("/:id", h.GetWebsite)
	sites.Post("/:id/ask", h.AskWebsite)
	sites.Delete("/:id", h.DeleteWebsite)

	quizzes := v1.Group("/quizzes")
	quizzes.Post("/", h.GenerateQuiz)
	quizzes.Get("/", h.ListQuizzes)
	quizzes.Get("/:id", h.GetQuiz)
	quizzes.Get("/:id/start", h.StartQuiz)
	quizzes.Post("/:id/submit", h.SubmitQuiz)
	quizzes.Get("/:id/attempts", h.ListAttempts)
	quizzes.Delete("/:id", h.DeleteQuiz)

	chats := v1.Group("/chats")
	chats.Post("/", h.CreateChat)
	chats.Get("/", h.ListChats)
	chats.Get("/:id", h.GetChat)
	chats.Post("/:id/messages", h.Ask)
	chats.Put("/:id", h.RenameChat)
	chats.Post("/:id/clear", h.ClearChat)
	chats.Delete("/:id", h.DeleteChat)
}
