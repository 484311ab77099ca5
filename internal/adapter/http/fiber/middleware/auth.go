package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/sigec-posto/internal/adapter/auth"
	"github.com/seu-repo/sigec-posto/pkg/config"
)

// AuthRequired puts the token subject in Locals("user_id"). Handlers use it
// as the acting user for acknowledgements, resolutions and validations.
func AuthRequired(cfg config.JWTConfig, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing authorization header"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid authorization header format"})
		}

		claims, err := auth.ParseToken(parts[1], cfg)
		if err != nil {
			log.Debug("Token rejected", zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token"})
		}

		c.Locals("user_id", claims.Subject)
		c.Locals("user_role", claims.Role)

		return c.Next()
	}
}

// UserID returns the authenticated actor, or "" on unauthenticated routes.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}
