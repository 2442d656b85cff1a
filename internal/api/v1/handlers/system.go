package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"taskmanager-api/pkg/logger"
)

const healthTimeout = 2 * time.Second

func Root(mode string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return success(c, fiber.StatusOK, "Task manager API is running", fiber.Map{"mode": mode})
	}
}

// Health pings the store; a failed ping reports 503 "degraded".
func Health(ping func(ctx context.Context) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
		defer cancel()

		if err := ping(ctx); err != nil {
			logger.ErrorLogger.Error("Health check failed", zap.Error(err))
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"message": "degraded",
				"success": false,
				"status":  fiber.StatusServiceUnavailable,
			})
		}
		return success(c, fiber.StatusOK, "ok", fiber.Map{"store": "up"})
	}
}
