package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/sigec-posto/internal/infrastructure/circuitbreaker"
	"github.com/seu-repo/sigec-posto/pkg/config"
)

var errServerFailure = errors.New("server failure")

// CircuitBreaker sheds API load while downstream storage keeps failing. Only
// 5xx responses count as failures; business rejections do not trip it.
func CircuitBreaker(cfg config.CircuitBreakerConfig, log *zap.Logger) fiber.Handler {
	cb := circuitbreaker.New(circuitbreaker.FromConfig("sigec-posto-api", cfg), log)

	return func(c *fiber.Ctx) error {
		var handlerErr error
		_, err := cb.Execute(func() (interface{}, error) {
			handlerErr = c.Next()
			if handlerErr != nil {
				// Run the error handler now so the status code is known.
				if herr := c.App().ErrorHandler(c, handlerErr); herr != nil {
					return nil, herr
				}
				handlerErr = nil
			}
			if c.Response().StatusCode() >= fiber.StatusInternalServerError {
				return nil, errServerFailure
			}
			return nil, nil
		})

		if circuitbreaker.IsShortCircuit(err) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "Service temporarily unavailable",
			})
		}
		if err != nil && !errors.Is(err, errServerFailure) {
			return err
		}
		return handlerErr
	}
}
