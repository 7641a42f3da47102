package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/parleyhq/parley-backend/internal/services"
)

// GetChats returns all chats
func GetChats(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		chats, err := svc.Chat.ListChats(c.Context())
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(chats)
	}
}

// GetChat returns a chat by ID
func GetChat(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		chat, err := svc.Chat.GetChat(c.Context(), c.Params("id"))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(chat)
	}
}

// GetChatMessages returns a chat's messages in creation order
func GetChatMessages(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		messages, err := svc.Chat.GetChatMessages(c.Context(), c.Params("id"))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(messages)
	}
}

// GetChatTokens returns a chat's running token totals
func GetChatTokens(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sum, err := svc.Chat.GetChatTokens(c.Context(), c.Params("id"))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(sum)
	}
}

// DeleteChat deletes a chat and its messages
func DeleteChat(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Chat.DeleteChat(c.Context(), c.Params("id")); err != nil {
			return errorResponse(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
