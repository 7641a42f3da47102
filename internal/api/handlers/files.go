package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/parleyhq/parley-backend/internal/services"
)

// UploadFile stores a multipart file and returns its public URL
func UploadFile(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if svc.Files == nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "File storage is not configured",
			})
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Missing file field",
			})
		}

		file, err := fileHeader.Open()
		if err != nil {
			return errorResponse(c, err)
		}
		defer file.Close()

		key, url, err := svc.Files.Upload(c.Context(), fileHeader.Filename, fileHeader.Header.Get("Content-Type"), file)
		if err != nil {
			return errorResponse(c, err)
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"key": key,
			"url": url,
		})
	}
}

// DeleteFile removes a stored file by key
func DeleteFile(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if svc.Files == nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "File storage is not configured",
			})
		}

		if err := svc.Files.Delete(c.Context(), c.Params("key")); err != nil {
			return errorResponse(c, err)
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
