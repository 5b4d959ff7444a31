package rest

import (
	"log/slog"
	"strings"
	"time"

	"chat-pulse/auth"

	"github.com/gofiber/fiber/v2"
)

const antiForgeryHeader = "X-Csrf-Token"

// RequireAuth validates the bearer token shared with the dashboard pages.
// The user ID claimed by the token is stored in the request locals.
func RequireAuth(secret []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "authorization token is missing")
		}
		tokenStr := strings.TrimPrefix(header, "Bearer ")
		claims, err := auth.ValidateToken(secret, tokenStr)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}
		c.Locals("user_id", claims.UserID)
		return c.Next()
	}
}

// RequireAntiForgery enforces the presence of the anti-forgery header the
// dashboard sends with state-reading POST calls. Its value is checked by
// the surrounding session layer, not here.
func RequireAntiForgery() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get(antiForgeryHeader) == "" {
			return fiber.NewError(fiber.StatusForbidden, "missing anti-forgery token")
		}
		return c.Next()
	}
}

// RequestLogger logs one line per request with status and duration.
func RequestLogger(log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		log.Info("http request",
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"duration", time.Since(start))
		return err
	}
}
