package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/daaqui-joyas/salesbot/internal/logger"
)

// ValidateMetaSignature checks X-Hub-Signature-256 against the app secret.
func ValidateMetaSignature(appSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("X-Hub-Signature-256")
		sig, ok := strings.CutPrefix(header, "sha256=")
		if !ok || !validMetaSignature(appSecret, c.Body(), sig) {
			logger.HTTP.Warn("invalid meta signature", slog.String("event", "http.signature_invalid"), slog.String("path", c.Path()))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid signature",
			})
		}
		return c.Next()
	}
}

func validMetaSignature(secret string, body []byte, signature string) bool {
	expected, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), expected)
}
