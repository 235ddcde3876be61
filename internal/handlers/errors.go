package handlers

import (
	"errors"

	"storefront/internal/apperr"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorHandler renders every error as {message, errors?, stack?}. The stack
// (the full wrapped error text) is omitted in production.
func ErrorHandler(production bool, logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		message := "Internal Server Error"
		var fields map[string]string

		var ae *apperr.Error
		var fe *fiber.Error
		switch {
		case errors.As(err, &ae):
			status = ae.Kind.HTTPStatus()
			message = ae.Message
			fields = ae.Fields
		case errors.As(err, &fe):
			status = fe.Code
			message = fe.Message
		case errors.Is(err, apperr.ErrNotFound):
			status = fiber.StatusNotFound
			message = "Resource not found"
		}

		if status >= fiber.StatusInternalServerError {
			logger.Error("request failed", zap.String("method", c.Method()), zap.String("path", c.Path()), zap.Error(err))
		} else {
			logger.Debug("request rejected", zap.String("path", c.Path()), zap.Int("status", status), zap.Error(err))
		}

		body := fiber.Map{"message": message}
		if len(fields) > 0 {
			body["errors"] = fields
		}
		if !production {
			body["stack"] = err.Error()
		}
		return c.Status(status).JSON(body)
	}
}

// NotFound is the catch-all for unknown routes.
func NotFound(c *fiber.Ctx) error {
	return apperr.NotFound("Not Found - %s", c.OriginalURL())
}
