package api

import (
	"strings"

	"github.com/example/task-todo-api/domain/identity"
	"github.com/example/task-todo-api/modules/auth"
	"github.com/gofiber/fiber/v2"
)

const (
	// IdentityContextKey is the key used to store the caller identity in the Fiber context.
	IdentityContextKey = "identity"
)

// AuthMiddleware creates a middleware that validates bearer tokens.
func AuthMiddleware(authAdapter auth.AuthPort) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: "Authorization header is required",
			})
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: "Invalid authorization header format. Use: Bearer <token>",
			})
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: "Token is required",
			})
		}

		claims, err := authAdapter.ValidateToken(c.UserContext(), token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: "Invalid or expired token",
			})
		}

		c.Locals(IdentityContextKey, claims)

		return c.Next()
	}
}

// CallerIdentity returns the identity stored by AuthMiddleware, if any.
func CallerIdentity(c *fiber.Ctx) (*identity.Claims, bool) {
	claims, ok := c.Locals(IdentityContextKey).(*identity.Claims)
	return claims, ok && claims != nil
}
