package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"taskmanager-api/internal/common"
	"taskmanager-api/internal/models"
	"taskmanager-api/internal/service"
	"taskmanager-api/pkg/logger"
)

// UserKey is the Locals key holding the authenticated models.User.
const UserKey = "user"

// bearerToken reads the Authorization header. Websocket upgrades may pass the
// token as ?token= since browsers cannot set headers on them.
func bearerToken(c *fiber.Ctx) (string, bool) {
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return "", false
		}
		return strings.TrimSpace(token), true
	}
	if websocket.IsWebSocketUpgrade(c) {
		if token := c.Query("token"); token != "" {
			return token, true
		}
	}
	return "", false
}

// UseToken resolves the bearer token to a user and stores it for CurrentUser.
func UseToken(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c)
		if !ok {
			return common.Unauthenticated("Not authenticated")
		}

		user, err := auth.CurrentUser(c.UserContext(), token)
		if err != nil {
			if common.KindOf(err) == common.ErrUnauthenticated {
				logger.SecurityLogger.Warn("Rejected bearer token",
					zap.String("ip", c.IP()),
					zap.String("path", c.Path()),
					zap.String("reason", err.Error()),
				)
			}
			return err
		}

		c.Locals(UserKey, user)
		return c.Next()
	}
}

// CurrentUser returns the user stored by UseToken.
func CurrentUser(c *fiber.Ctx) models.User {
	user, _ := c.Locals(UserKey).(models.User)
	return user
}
