package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/parleyhq/parley-backend/internal/api/handlers"
	"github.com/parleyhq/parley-backend/internal/api/middleware"
	"github.com/parleyhq/parley-backend/internal/auth"
	"github.com/parleyhq/parley-backend/internal/services"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, svc *services.Services, jwtService *auth.JWTService) {
	api := app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "parley-backend",
		})
	})

	api.Use(middleware.AuthRequired(jwtService))

	// Conversation dispatch
	api.Post("/chat", handlers.SendMessage(svc))

	// Chat management
	api.Get("/chats", handlers.GetChats(svc))
	api.Get("/chats/:id", handlers.GetChat(svc))
	api.Get("/chats/:id/messages", handlers.GetChatMessages(svc))
	api.Get("/chats/:id/tokens", handlers.GetChatTokens(svc))
	api.Delete("/chats/:id", handlers.DeleteChat(svc))

	// Custom prompt templates
	api.Post("/prompts", handlers.CreatePrompt(svc))
	api.Get("/prompts", handlers.GetPrompts(svc))
	api.Get("/prompts/:id", handlers.GetPrompt(svc))
	api.Put("/prompts/:id", handlers.UpdatePrompt(svc))
	api.Delete("/prompts/:id", handlers.DeletePrompt(svc))

	// File hosting
	api.Post("/files", handlers.UploadFile(svc))
	api.Delete("/files/:key", handlers.DeleteFile(svc))

	// Model catalog
	api.Get("/models", handlers.GetModels(svc))
}
