package websocket

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/sigec-casa/internal/domain"
)

// transcriptDepth is how many recent replies a newly connected display
// is caught up with.
const transcriptDepth = 20

// Hub fans spoken replies out to every connected display client and
// keeps a short transcript so late joiners see recent context. It
// implements the VisualSink port.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Outbound replies to fan out.
	broadcast chan []byte

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	mu         sync.RWMutex
	transcript [][]byte
	logger     *zap.Logger
}

type Client struct {
	hub *Hub
	// The websocket connection.
	conn *websocket.Conn
	// Buffered channel of outbound messages.
	send chan []byte
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		logger:     logger,
	}
}

// Show implements ports.VisualSink. It never blocks the speaking path;
// if the hub loop is wedged the reply is dropped.
func (h *Hub) Show(reply domain.VisualReply) {
	data, err := json.Marshal(reply)
	if err != nil {
		return
	}
	select {
	case h.broadcast <- data:
	default:
		h.logger.Warn("Display broadcast dropped, hub busy")
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			backlog := make([][]byte, len(h.transcript))
			copy(backlog, h.transcript)
			h.mu.Unlock()
			for _, msg := range backlog {
				select {
				case client.send <- msg:
				default:
				}
			}
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			h.transcript = append(h.transcript, message)
			if len(h.transcript) > transcriptDepth {
				h.transcript = h.transcript[len(h.transcript)-transcriptDepth:]
			}
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

func (h *Hub) AddClient(conn *websocket.Conn) {
	client := &Client{hub: h, conn: conn, send: make(chan []byte, 256)}
	client.hub.register <- client

	go client.writePump()
	client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	for {
		// Displays are push-only; the read loop just services pings and
		// notices disconnects.
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
	// The hub closed the channel.
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
