package middleware

import (
	"crypto/subtle"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/daaqui-joyas/salesbot/internal/logger"
)

// RequireBearer protects automation endpoints with a shared secret. With an
// empty token every request is rejected.
func RequireBearer(token string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		got, ok := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
		if !ok || token == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			logger.HTTP.Warn("unauthorized request", slog.String("event", "http.unauthorized"), slog.String("path", c.Path()))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "No autorizado",
			})
		}
		return c.Next()
	}
}
