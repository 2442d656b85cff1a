package handlers

import (
	"github.com/gofiber/fiber/v2"

	"taskmanager-api/internal/middleware"
)

// Me returns the authenticated user.
func Me(c *fiber.Ctx) error {
	return success(c, fiber.StatusOK, "User fetched successfully", middleware.CurrentUser(c))
}
