package web

import (
	"errors"

	"goldsure-backend/internal/ledger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// StatusOf maps ledger and fiber errors to an HTTP status and a user-facing message.
func StatusOf(err error) (int, string) {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code, fe.Message
	case errors.Is(err, ledger.ErrValidation):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, ledger.ErrNotFound):
		return fiber.StatusNotFound, err.Error()
	case errors.Is(err, ledger.ErrInsufficientStock):
		return fiber.StatusConflict, "Not enough stock"
	case errors.Is(err, ledger.ErrInvalidCredentials):
		return fiber.StatusUnauthorized, "Invalid credentials"
	default:
		return fiber.StatusInternalServerError, "Unexpected server error"
	}
}

// ErrorHandler renders every error returned by a handler as an error page,
// or as JSON when the client asks for it.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, msg := StatusOf(err)
		if status >= fiber.StatusInternalServerError {
			log.Error("unexpected error", zap.String("path", c.Path()), zap.Error(err))
		}

		if c.Accepts(fiber.MIMETextHTML, fiber.MIMEApplicationJSON) == fiber.MIMEApplicationJSON {
			return c.Status(status).JSON(fiber.Map{"error": msg})
		}
		return Render(c, status, "error.html", ErrorPage{Status: status, Message: msg})
	}
}
