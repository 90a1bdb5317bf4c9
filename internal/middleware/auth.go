package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/collegecab/collegecab-backend/internal/services"
)

// UserIDKey is the Locals key the authenticated user's ID is stored
// under for downstream handlers.
const UserIDKey = "user_id"

// RequireAuth validates the Bearer access token and scopes the request
// to the authenticated user.
func RequireAuth(tokens *services.TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"detail": "Authentication credentials were not provided.",
			})
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"detail": "Invalid authorization header.",
			})
		}

		userID, err := tokens.ParseAccess(parts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"detail": "Invalid or expired token.",
			})
		}

		c.Locals(UserIDKey, userID)
		return c.Next()
	}
}

// AuthenticatedUserID returns the user ID set by RequireAuth.
func AuthenticatedUserID(c *fiber.Ctx) uint {
	id, _ := c.Locals(UserIDKey).(uint)
	return id
}
