package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/sigec-posto/internal/domain"
)

// ErrorHandler maps domain failures onto HTTP statuses: validation 422,
// conflict 409, not found 404.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := StatusFor(err)

		if code == fiber.StatusInternalServerError {
			log.Error("Internal Server Error", zap.Error(err), zap.String("path", c.Path()))
		}

		return c.Status(code).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
}

func StatusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case domain.IsNotFound(err):
		return fiber.StatusNotFound
	case domain.IsConflict(err):
		return fiber.StatusConflict
	case domain.IsValidation(err):
		return fiber.StatusUnprocessableEntity
	}
	return fiber.StatusInternalServerError
}
