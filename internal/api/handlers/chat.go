package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/parleyhq/parley-backend/internal/services"
)

// SendMessage processes one conversation turn
func SendMessage(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			ChatID    string `json:"chatId"`
			PromptID  string `json:"promptId"`
			Model     string `json:"model"`
			MaxTokens int    `json:"maxTokens"`
			WebSearch bool   `json:"webSearch"`
			Content   string `json:"content"`
			FileURL   string `json:"fileUrl"`
		}

		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}

		if req.Content == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Content is required",
			})
		}
		if req.ChatID == "" && req.Model == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Model is required for a new chat",
			})
		}

		resp, err := svc.Chat.SendMessage(c.Context(), services.SendMessageInput{
			ChatID:    req.ChatID,
			PromptID:  req.PromptID,
			Model:     req.Model,
			MaxTokens: req.MaxTokens,
			WebSearch: req.WebSearch,
			Content:   req.Content,
			FileURL:   req.FileURL,
		})
		if err != nil {
			return errorResponse(c, err)
		}

		return c.JSON(resp)
	}
}
