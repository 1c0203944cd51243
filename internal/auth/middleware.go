package auth

import (
	"strings"

	"jar-backend/internal/database"
	"jar-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

const CtxUserKey = "current_user"

// TokenMiddleware resolves the bearer token to its user and stores the user
// in the request locals. Tokens are looked up on every request so revocation
// takes effect immediately.
func TokenMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization header missing")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || (!strings.EqualFold(parts[0], "token") && !strings.EqualFold(parts[0], "bearer")) {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization header must be 'Token <key>'")
		}

		var token models.AuthToken
		if err := database.DB.Preload("User").Where("key = ?", parts[1]).First(&token).Error; err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
		}

		c.Locals(CtxUserKey, &token.User)
		return c.Next()
	}
}

// CurrentUser returns the user stored by TokenMiddleware.
func CurrentUser(c *fiber.Ctx) (*models.User, error) {
	user, ok := c.Locals(CtxUserKey).(*models.User)
	if !ok || user == nil {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Not authenticated")
	}
	return user, nil
}
