// Package main provides the entry point for the StudyLoom server
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/studyloom/studyloom/internal/api"
	"github.com/studyloom/studyloom/internal/conversation"
	"github.com/studyloom/studyloom/internal/generation"
	"github.com/studyloom/studyloom/internal/quiz"
	"github.com/studyloom/studyloom/internal/scraper"
	"github.com/studyloom/studyloom/internal/source"
	"github.com/studyloom/studyloom/internal/store"
	"github.com/studyloom/studyloom/pkg/extractor"
	"github.com/studyloom/studyloom/pkg/logging"
)

func main() {
	if err := logging.SetupLogger(&logging.LogConfig{
		Level:      getEnv("LOG_LEVEL", "info"),
		Format:     getEnv("LOG_FORMAT", "json"),
		OutputFile: getEnv("LOG_FILE", ""),
		Console:    true,
	}); err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}

	// Storage: SQLite when a path is configured, in-memory otherwise.
	var st store.Store
	if dbPath := getEnv("DB_PATH", "./data/studyloom.db"); dbPath != "" && dbPath != "memory" {
		sqlStore, err := store.OpenSQLite(dbPath)
		if err != nil {
			log.Fatalf("Failed to open database at %s: %v", dbPath, err)
		}
		st = sqlStore
	} else {
		st = store.NewMemoryStore()
	}
	defer st.Close()

	timeout := time.Duration(getEnvInt("GENERATION_TIMEOUT_SECONDS", 60)) * time.Second
	gateway, err := generation.NewGemini(context.Background(),
		os.Getenv("GEMINI_API_KEY"),
		getEnv("GEMINI_MODEL", generation.DefaultModel),
		timeout)
	if err != nil {
		log.Fatalf("Failed to initialize generation backend: %v", err)
	}
	defer gateway.Close()

	uploadDir := getEnv("UPLOAD_DIR", "./data/uploads")
	sources := source.NewProcessor(st, gateway, scraper.New(), extractor.NewEngine(), uploadDir)
	conversations := conversation.NewService(st, gateway)
	quizzes := quiz.NewEngine(st, gateway)

	app := fiber.New(fiber.Config{
		AppName:   "StudyLoom API",
		BodyLimit: 55 * 1024 * 1024, // room for a 50MB upload plus form overhead
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${error}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "UTC",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: getEnv("CORS_ORIGINS", "*"),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + api.UserHeader,
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	h := api.NewHandlers(sources, conversations, quizzes)
	api.SetupRoutes(app, h)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	port := getEnv("PORT", "8080")
	log.Printf("Starting StudyLoom server on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// getEnv retrieves an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
