package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/sigec-posto/internal/adapter/queue"
)

// conn is the part of *websocket.Conn the hub uses.
type conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// FeedMessage is what operators receive on /ws/alerts.
type FeedMessage struct {
	Event string           `json:"event"`
	Alert queue.AlertEvent `json:"alert"`
}

type outbound struct {
	stationID string
	data      []byte
}

// Hub fans alert events out to connected back-office screens. A client
// subscribed to a station only receives that station's alerts; a client
// without a station receives everything.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	broadcast  chan outbound
	register   chan *Client
	unregister chan *Client

	done chan struct{}
	mu   sync.RWMutex
	log  *zap.Logger
}

type Client struct {
	hub  *Hub
	conn conn
	// Buffered channel of outbound messages.
	send      chan []byte
	userID    string
	stationID string
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan outbound, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run owns the client set until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return
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
		case msg := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if client.stationID != "" && client.stationID != msg.stationID {
					continue
				}
				select {
				case client.send <- msg.data:
				default:
					// Slow reader; drop it rather than block the feed.
					close(client.send)
					delete(h.clients, client)
					h.log.Warn("Dropping slow websocket client", zap.String("user_id", client.userID))
				}
			}
			h.mu.Unlock()
		}
	}
}

// Subscribe forwards alert events from the bus to the hub.
func (h *Hub) Subscribe(mq queue.MessageQueue) error {
	for _, subject := range []string{queue.SubjectAlertCreated, queue.SubjectAlertUpdated} {
		subject := subject
		if err := mq.Subscribe(subject, func(data []byte) error {
			return h.forward(subject, data)
		}); err != nil {
			return fmt.Errorf("subscribe %s: %w", subject, err)
		}
	}
	return nil
}

func (h *Hub) forward(subject string, data []byte) error {
	var evt queue.AlertEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		return fmt.Errorf("decode %s: %w", subject, err)
	}
	payload, err := json.Marshal(FeedMessage{Event: subject, Alert: evt})
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- outbound{stationID: evt.Alert.StationID, data: payload}:
	case <-h.done:
	}
	return nil
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Serve registers the connection and blocks until the client goes away. The
// fiber websocket handler must not return before that.
func (h *Hub) Serve(c conn, userID, stationID string) {
	client := &Client{hub: h, conn: c, send: make(chan []byte, 256), userID: userID, stationID: stationID}
	select {
	case h.register <- client:
	case <-h.done:
		c.Close()
		return
	}

	go client.writePump()
	client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	for {
		// The feed is push only; reads keep control frames flowing.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
