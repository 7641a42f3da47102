package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/parleyhq/parley-backend/internal/auth"
)

const userIDKey = "userID"

// AuthRequired creates a middleware that requires a valid bearer token
func AuthRequired(jwtService *auth.JWTService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing bearer token",
			})
		}

		claims, err := jwtService.ValidateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		c.Locals(userIDKey, claims.UserID)
		return c.Next()
	}
}

// GetUserID returns the authenticated user id, empty if unauthenticated
func GetUserID(c *fiber.Ctx) string {
	if id, ok := c.Locals(userIDKey).(string); ok {
		return id
	}
	return ""
}
