// Package websocket fans task change events out to the owner's open sockets.
package websocket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"taskmanager-api/internal/models"
	"taskmanager-api/pkg/logger"
)

const (
	EventTaskCreated  = "task.created"
	EventTaskReplaced = "task.replaced"
	EventTaskPatched  = "task.patched"
	EventTaskDeleted  = "task.deleted"
)

// Event is the message pushed to subscribers. Task is omitted on delete.
type Event struct {
	Type   string       `json:"type"`
	TaskID string       `json:"task_id"`
	Task   *models.Task `json:"task,omitempty"`
}

const (
	// clientBuffer is how many events may queue for one socket before the
	// hub gives up on it.
	clientBuffer = 32
	writeTimeout = 10 * time.Second
)

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Client is one subscribed socket. Its queue is drained by a dedicated
// writer goroutine so a slow peer never blocks the hub.
type Client struct {
	OwnerID string
	Conn    Conn
	send    chan []byte
}

type envelope struct {
	ownerID string
	payload []byte
}

// Hub keeps clients grouped by owner. All map access and every close of a
// client queue happen on the Run goroutine.
type Hub struct {
	clients    map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan envelope
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan envelope, 64),
		done:       make(chan struct{}),
	}
}

// Run serves the hub until ctx is cancelled, then closes every client.
// Nothing in the loop blocks on a socket.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, set := range h.clients {
				for client := range set {
					close(client.send)
					_ = client.Conn.Close()
				}
			}
			h.clients = map[string]map[*Client]struct{}{}
			return
		case client := <-h.register:
			set, ok := h.clients[client.OwnerID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.OwnerID] = set
			}
			set[client] = struct{}{}
		case client := <-h.unregister:
			h.remove(client)
		case msg := <-h.broadcast:
			for client := range h.clients[msg.ownerID] {
				select {
				case client.send <- msg.payload:
				default:
					logger.ErrorLogger.Warn("Dropping slow websocket client", zap.String("owner_id", msg.ownerID))
					h.remove(client)
				}
			}
		}
	}
}

func (h *Hub) remove(client *Client) {
	set, ok := h.clients[client.OwnerID]
	if !ok {
		return
	}
	if _, ok := set[client]; !ok {
		return
	}
	delete(set, client)
	if len(set) == 0 {
		delete(h.clients, client.OwnerID)
	}
	close(client.send)
	_ = client.Conn.Close()
}

// writePump delivers queued events to one socket until its queue is closed
// or a write fails.
func (h *Hub) writePump(client *Client) {
	for msg := range client.send {
		_ = client.Conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := client.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			logger.ErrorLogger.Warn("Dropping websocket client", zap.String("owner_id", client.OwnerID), zap.Error(err))
			h.Unregister(client)
			// Drain until Run closes the queue.
			for range client.send {
			}
			return
		}
	}
}

// Register adds client and starts its writer. It is a no-op once the hub has
// stopped.
func (h *Hub) Register(client *Client) {
	client.send = make(chan []byte, clientBuffer)
	select {
	case h.register <- client:
		go h.writePump(client)
	case <-h.done:
	}
}

// Unregister removes and closes client.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish queues ev for every socket of ownerID.
func (h *Hub) Publish(ownerID string, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		logger.ErrorLogger.Error("Encoding websocket event", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- envelope{ownerID: ownerID, payload: payload}:
	case <-h.done:
	}
}

// Done is closed when Run has returned.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}
