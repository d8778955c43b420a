package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"clipfeed_backend/pkg/utils/jwt"
)

// AuthMiddleware rejects requests without a valid bearer token and stores the claims under
// c.Locals("user").
func AuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := parseBearer(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}
		c.Locals("user", claims)
		return c.Next()
	}
}

// OptionalAuth lets anonymous requests through. A token that is present but invalid is still
// rejected so a client with an expired session finds out.
func OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderAuthorization) == "" {
			return c.Next()
		}
		claims, ok := parseBearer(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token",
			})
		}
		c.Locals("user", claims)
		return c.Next()
	}
}

// RequesterID returns the authenticated account id, or 0 for anonymous requests.
func RequesterID(c *fiber.Ctx) uint {
	if claims, ok := c.Locals("user").(*jwt.Claims); ok && claims != nil {
		return claims.UserID
	}
	return 0
}

func parseBearer(c *fiber.Ctx) (*jwt.Claims, bool) {
	header := c.Get(fiber.HeaderAuthorization)
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return nil, false
	}
	claims, err := jwt.ValidateToken(token)
	if err != nil {
		return nil, false
	}
	return claims, true
}
