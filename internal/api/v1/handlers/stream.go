package handlers

import (
	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"

	"taskmanager-api/internal/middleware"
	"taskmanager-api/internal/models"
	"taskmanager-api/internal/websocket"
)

// RequireUpgrade rejects plain HTTP requests on websocket routes.
func RequireUpgrade(c *fiber.Ctx) error {
	if fiberws.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// StreamTasks subscribes the socket to the caller's task events. Incoming
// frames are read and discarded until the peer disconnects.
func StreamTasks(hub *websocket.Hub) fiber.Handler {
	return fiberws.New(func(conn *fiberws.Conn) {
		user, _ := conn.Locals(middleware.UserKey).(models.User)
		client := &websocket.Client{OwnerID: user.ID, Conn: conn}
		hub.Register(client)
		defer hub.Unregister(client)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
}
