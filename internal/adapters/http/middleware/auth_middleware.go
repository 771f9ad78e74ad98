package middleware

import (
	"errors"
	"strings"

	"outsized-identity/internal/core/domain"
	"outsized-identity/internal/core/services"
	"outsized-identity/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware creates authentication middleware. A passing signature
// and expiry are not enough: the account behind the token is re-checked
// on every request, with the role resolved fresh.
func AuthMiddleware(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// 1. Extract bearer token
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return response.Unauthorized(c, "Authorization header is required")
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return response.Unauthorized(c, "Invalid authorization format. Use 'Bearer <token>'")
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == "" {
			return response.Unauthorized(c, "Token is required")
		}

		// 2. Validate token and re-validate the account behind it
		user, err := authService.ValidateToken(c.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrTokenExpired):
				return response.Unauthorized(c, "Token expired")
			case errors.Is(err, domain.ErrTokenMalformed):
				return response.Unauthorized(c, "Invalid token payload")
			case errors.Is(err, domain.ErrTokenInvalid):
				return response.Unauthorized(c, "Invalid token")
			case errors.Is(err, domain.ErrUserNotFound):
				return response.Unauthorized(c, "User not found or account deactivated")
			default:
				return response.InternalServerError(c, "Token validation failed")
			}
		}

		// 3. Attach the re-validated caller
		c.Locals("userID", user.ID)
		c.Locals("uuid", user.UUID)
		c.Locals("email", user.Email)
		c.Locals("role", user.Role)

		return c.Next()
	}
}

// RoleMiddleware creates role-based authorization middleware
func RoleMiddleware(allowedRoles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("role").(string)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}

		for _, allowedRole := range allowedRoles {
			if role == allowedRole {
				return c.Next()
			}
		}

		return response.Forbidden(c, "Only admins can perform this action")
	}
}

// AdminOnly middleware allows only ADMIN role
func AdminOnly() fiber.Handler {
	return RoleMiddleware(domain.RoleAdmin)
}
