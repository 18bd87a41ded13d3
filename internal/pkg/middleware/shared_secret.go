package middleware

import (
	"crypto/hmac"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/LukasBrandt/PaySweep/internal/pkg/env"
)

// SharedSecretMiddleware gates internal operations behind a deployment
// secret. It fails closed: a missing server-side secret refuses every
// request instead of letting them through.
func SharedSecretMiddleware(envKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		secret := strings.TrimSpace(env.GetEnv(envKey, ""))
		if secret == "" {
			log.Printf("shared secret middleware: %s is not configured, refusing request", envKey)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Endpoint not configured"})
		}

		provided := extractSecretFromHeader(c)
		if provided == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing secret"})
		}

		if !hmac.Equal([]byte(provided), []byte(secret)) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Invalid secret"})
		}

		return c.Next()
	}
}

func extractSecretFromHeader(c *fiber.Ctx) string {
	provided := strings.TrimSpace(c.Get("X-Internal-Secret"))
	if provided != "" {
		return provided
	}
	auth := strings.TrimSpace(c.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
