package middleware

import (
	"fmt"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"taskmanager-api/pkg/logger"
)

// ErrorHandler recovers panics and writes one request log line per request.
// Errors returned by the chain are rendered here so the logged status is the
// one the client sees.
func ErrorHandler() fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		start := time.Now()

		defer func() {
			if r := recover(); r != nil {
				logger.ErrorLogger.Error(fmt.Sprintf("Recovered from panic: %v", r),
					zap.String("stack", string(debug.Stack())),
					zap.String("method", c.Method()),
					zap.String("url", c.OriginalURL()),
				)
				err = c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"message": "internal error",
					"success": false,
					"status":  fiber.StatusInternalServerError,
				})
			}

			logger.RequestLogger.Info("Request",
				zap.String("request_id", fmt.Sprint(c.Locals("requestid"))),
				zap.String("method", c.Method()),
				zap.String("url", c.OriginalURL()),
				zap.Int("status", c.Response().StatusCode()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", c.IP()),
			)
		}()

		if chainErr := c.Next(); chainErr != nil {
			if herr := c.App().ErrorHandler(c, chainErr); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		return nil
	}
}
