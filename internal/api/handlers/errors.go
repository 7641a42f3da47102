package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/parleyhq/parley-backend/internal/attachment"
	"github.com/parleyhq/parley-backend/internal/providers"
	"github.com/parleyhq/parley-backend/internal/services"
)

// errorResponse maps domain errors onto HTTP statuses
func errorResponse(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrChatNotFound),
		errors.Is(err, services.ErrPromptNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, providers.ErrUnsupportedModel),
		errors.Is(err, attachment.ErrUnsupportedFileType),
		errors.Is(err, services.ErrInvalidPrompt):
		status = fiber.StatusBadRequest
	case errors.Is(err, providers.ErrDispatchFailed):
		status = fiber.StatusBadGateway
	}

	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}
