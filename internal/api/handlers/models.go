package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/parleyhq/parley-backend/internal/services"
)

// GetModels returns the model catalog
func GetModels(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(svc.Catalog.Models())
	}
}
