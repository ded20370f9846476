package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ankitpasayat/confident-trivia/game/engine"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = 15 * time.Second

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development
		// TODO: Configure this for production
		return true
	},
}

// Message is the wire envelope pushed to clients. Game is a full state
// snapshot; clients replace their local copy wholesale.
type Message struct {
	GameID    string              `json:"gameId"`
	Event     string              `json:"event"`
	Game      *engine.GameSession `json:"game,omitempty"`
	Timestamp time.Time           `json:"timestamp"`
}

// SnapshotFunc provides the current state of a game for the initial push to
// a freshly connected client.
type SnapshotFunc func(ctx context.Context, gameID string) (*engine.GameSession, error)

// Presence is notified when a player's realtime link comes and goes.
type Presence interface {
	SetConnected(ctx context.Context, gameID, playerID string, connected bool) error
}

// Client represents one WebSocket connection subscribed to a game.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	gameID   string
	playerID string
}

// Hub maintains the set of active clients and fans out game snapshots. All
// client-map access happens inside Run, including publishes, so the hub
// needs no locks.
type Hub struct {
	games map[string]map[*Client]bool

	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client

	snapshot SnapshotFunc
	presence Presence
}

// NewHub creates a hub. snapshot may be nil, in which case new clients get
// no initial state push. presence may be nil to disable connection tracking.
func NewHub(snapshot SnapshotFunc, presence Presence) *Hub {
	return &Hub{
		games:      make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		snapshot:   snapshot,
		presence:   presence,
	}
}

// Run starts the hub's event loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// Publish queues a snapshot for every client watching the game. It is safe
// to call from any goroutine.
func (h *Hub) Publish(gameID, event string, snapshot *engine.GameSession) {
	h.broadcast <- &Message{GameID: gameID, Event: event, Game: snapshot, Timestamp: time.Now()}
}

// ServeWS upgrades the request and subscribes the connection to a game.
// playerID may be empty for spectators; named players get presence tracking.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, gameID, playerID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] Upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:      h,
		conn:     conn,
		send:     make(chan []byte, 256),
		gameID:   gameID,
		playerID: playerID,
	}

	// Presence runs outside the hub loop: the resulting publish feeds back
	// into the broadcast channel the loop drains.
	if h.presence != nil && playerID != "" {
		if err := h.presence.SetConnected(r.Context(), gameID, playerID, true); err != nil {
			log.Printf("[WS] Presence update failed for %s: %v", playerID, err)
		}
	}

	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

func (h *Hub) registerClient(client *Client) {
	if h.games[client.gameID] == nil {
		h.games[client.gameID] = make(map[*Client]bool)
	}
	h.games[client.gameID][client] = true

	log.Printf("[WS] Client registered for game %s (total clients: %d)",
		client.gameID, len(h.games[client.gameID]))

	// Initial state push so the client renders without waiting for the next
	// mutation.
	if h.snapshot == nil {
		return
	}
	msg := &Message{GameID: client.gameID, Event: "init", Timestamp: time.Now()}
	if game, err := h.snapshot(context.Background(), client.gameID); err == nil {
		msg.Game = game
	}
	if data, err := json.Marshal(msg); err == nil {
		select {
		case client.send <- data:
		default:
		}
	}
}

func (h *Hub) unregisterClient(client *Client) {
	clients, ok := h.games[client.gameID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.send)

	if len(clients) == 0 {
		delete(h.games, client.gameID)
	}

	log.Printf("[WS] Client unregistered from game %s (remaining clients: %d)",
		client.gameID, len(clients))
}

func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("[WS] Failed to marshal broadcast message: %v", err)
		return
	}

	if clients, ok := h.games[message.GameID]; ok {
		for client := range clients {
			select {
			case client.send <- data:
			default:
				// Client's send buffer is full; drop the connection rather
				// than stall the fan-out.
				h.unregisterClient(client)
			}
		}
	}
}

// readPump drains the connection until it closes. Incoming frames are not
// processed; all gameplay goes through the REST API.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
		if c.hub.presence != nil && c.playerID != "" {
			if err := c.hub.presence.SetConnected(context.Background(), c.gameID, c.playerID, false); err != nil {
				log.Printf("[WS] Presence update failed for %s: %v", c.playerID, err)
			}
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] Read error: %v", err)
			}
			break
		}
	}
}

// writePump forwards queued messages to the connection and keeps it alive
// with periodic pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Flush any queued messages into the same frame.
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
