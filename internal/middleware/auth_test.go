package middleware

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"taskmanager-api/internal/common"
	"taskmanager-api/internal/models"
	"taskmanager-api/internal/repository"
	"taskmanager-api/internal/service"
)

func newAuthApp(t *testing.T) (*fiber.App, string) {
	t.Helper()
	auth := service.NewAuthService(repository.NewMemoryUserRepository(), service.AuthConfig{
		Secret:     []byte("middleware-secret"),
		Algorithm:  "HS256",
		TokenTTL:   time.Minute,
		BcryptCost: bcrypt.MinCost,
	})
	user, err := auth.RegisterUser(context.Background(), models.UserCreate{
		Username: "alice", Email: "alice@example.com", Password: "correct-horse",
	})
	require.NoError(t, err)
	token, err := auth.MintAccessToken(user.ID)
	require.NoError(t, err)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if errors.Is(err, common.ErrUnauthenticated) {
				return c.SendStatus(fiber.StatusUnauthorized)
			}
			return c.SendStatus(fiber.StatusInternalServerError)
		},
	})
	app.Get("/me", UseToken(auth), func(c *fiber.Ctx) error {
		return c.SendString(CurrentUser(c).Username)
	})
	return app, token
}

func TestUseToken(t *testing.T) {
	app, token := newAuthApp(t)

	cases := []struct {
		name   string
		header string
		query  string
		status int
	}{
		{"valid", "Bearer " + token, "", fiber.StatusOK},
		{"lowercase scheme", "bearer " + token, "", fiber.StatusOK},
		{"missing", "", "", fiber.StatusUnauthorized},
		{"basic scheme", "Basic " + token, "", fiber.StatusUnauthorized},
		{"garbage", "Bearer nope", "", fiber.StatusUnauthorized},
		{"query outside websocket", "", token, fiber.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			target := "/me"
			if tc.query != "" {
				target += "?token=" + tc.query
			}
			req := httptest.NewRequest(fiber.MethodGet, target, nil)
			if tc.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tc.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}
