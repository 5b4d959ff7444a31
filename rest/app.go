// Package rest exposes the chat API over HTTP. Responses follow a uniform
// envelope: {"data": ...} on success, {"error": "<reason>"} on failure.
package rest

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// NewApp builds the fiber application with the error envelope handler and
// request logging installed. Handlers return errors; this is the single
// place turning them into wire responses.
func NewApp(log *slog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "internal error"
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				code = fiberErr.Code
				message = fiberErr.Message
			}
			return c.Status(code).JSON(fiber.Map{"error": message})
		},
	})
	app.Use(RequestLogger(log))
	return app
}
