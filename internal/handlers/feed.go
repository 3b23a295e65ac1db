// internal/handlers/feed.go
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/dmuchai/Rent-Management-System-sub001/internal/reconciliation"
	"github.com/dmuchai/Rent-Management-System-sub001/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Feed is the single outcome feed for the whole application. Back-office
// clients subscribe to watch payments reconcile in real time.
var Feed = NewFeedHub()

// OutcomeMessage is one reconciliation outcome pushed over the feed.
type OutcomeMessage struct {
	Type       string                `json:"type"`
	EventID    uint                  `json:"eventId"`
	ExternalID string                `json:"externalId"`
	Amount     string                `json:"amount"`
	Result     reconciliation.Result `json:"result"`
	At         time.Time             `json:"at"`
}

type feedClient struct {
	hub  *FeedHub
	conn *websocket.Conn
	send chan []byte
}

type FeedHub struct {
	clients    map[*feedClient]bool
	broadcast  chan []byte
	register   chan *feedClient
	unregister chan *feedClient
	mu         sync.Mutex
}

func NewFeedHub() *FeedHub {
	return &FeedHub{
		clients:    make(map[*feedClient]bool),
		broadcast:  make(chan []byte),
		register:   make(chan *feedClient),
		unregister: make(chan *feedClient),
	}
}

func (h *FeedHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastOutcome pushes a reconciliation outcome to all subscribers.
// Non-blocking when nobody is listening.
func (h *FeedHub) BroadcastOutcome(event *models.PaymentEvent, res reconciliation.Result) {
	msg := OutcomeMessage{
		Type:       "reconciliationOutcome",
		EventID:    event.ID,
		ExternalID: event.ExternalID,
		Amount:     event.Amount.StringFixed(2),
		Result:     res,
		At:         time.Now(),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("Failed to marshal feed message", "error", err)
		return
	}
	select {
	case h.broadcast <- data:
	default:
	}
}

func (c *feedClient) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	for {
		// The feed is outbound only; we read just to notice disconnects.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("Unexpected websocket close error", "error", err)
			}
			break
		}
	}
}

func (c *feedClient) writePump() {
	defer c.conn.Close()
	for message := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			slog.Error("Failed to write message to websocket", "error", err)
			return
		}
	}
}

// FeedWSEndpoint upgrades an authenticated request to a feed subscription.
func FeedWSEndpoint(c *gin.Context) {
	if _, exists := c.Get("user_id"); !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("Failed to upgrade connection to WebSocket", "error", err)
		return
	}

	client := &feedClient{hub: Feed, conn: conn, send: make(chan []byte, 256)}
	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}
