package web

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WebSocket upgrader with reasonable settings
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// Hub maintains the WebSocket connections watching each game
type Hub struct {
	// Registered clients by game ID
	gameClients map[string]map[*Client]bool

	broadcast  chan GameUpdate
	register   chan *Client
	unregister chan *Client

	// Closed when Run returns
	done chan struct{}

	mu sync.RWMutex
}

// Client represents a WebSocket connection
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	gameID string
}

// GameUpdate is pushed to every client watching a game
type GameUpdate struct {
	GameID string      `json:"gameId"`
	Type   string      `json:"type"` // "move"
	Data   interface{} `json:"data"`
}

func NewHub() *Hub {
	return &Hub{
		gameClients: make(map[string]map[*Client]bool),
		broadcast:   make(chan GameUpdate, 64),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		done:        make(chan struct{}),
	}
}

// Run is the hub's event loop. It returns when ctx is done and must only be
// started once.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.gameClients[client.gameID] == nil {
				h.gameClients[client.gameID] = make(map[*Client]bool)
			}
			h.gameClients[client.gameID][client] = true
			h.mu.Unlock()

			log.Info().Str("gameID", client.gameID).Msg("Client connected to game")

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()

			log.Info().Str("gameID", client.gameID).Msg("Client disconnected from game")

		case update := <-h.broadcast:
			message, err := json.Marshal(update)
			if err != nil {
				log.Error().Err(err).Msg("Failed to marshal game update")
				continue
			}

			h.mu.Lock()
			for client := range h.gameClients[update.GameID] {
				select {
				case client.send <- message:
				default:
					// Client's send channel is full, drop it
					h.remove(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// remove must be called with h.mu held.
func (h *Hub) remove(client *Client) {
	clients, ok := h.gameClients[client.gameID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.send)

	// Clean up empty game rooms
	if len(clients) == 0 {
		delete(h.gameClients, client.gameID)
	}
}

// subscribe hands a client to the event loop. It reports false once the hub
// has stopped.
func (h *Hub) subscribe(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) unsubscribe(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// CloseGame disconnects every client watching a game and drops its room.
func (h *Hub) CloseGame(gameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients := len(h.gameClients[gameID])
	for client := range h.gameClients[gameID] {
		h.remove(client)
	}
	if clients > 0 {
		log.Info().Str("gameID", gameID).Int("clients", clients).Msg("Closed game room")
	}
}

// Clients reports how many connections are watching a game.
func (h *Hub) Clients(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.gameClients[gameID])
}

// BroadcastGameUpdate queues an update for every client watching the game.
func (h *Hub) BroadcastGameUpdate(update GameUpdate) {
	select {
	case h.broadcast <- update:
	default:
		log.Warn().Str("gameID", update.GameID).Msg("Broadcast channel full, dropping update")
	}
}

// WebSocketHandler subscribes the connection to updates of ?gameId=.
func (s *Service) WebSocketHandler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := r.URL.Query().Get("gameId")
		if gameID == "" {
			http.Error(w, "Missing gameId parameter", http.StatusBadRequest)
			return
		}
		if !s.store.Has(gameID) {
			writeError(w, gameID, ErrGameNotFound)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
			return
		}

		client := &Client{
			hub:    hub,
			conn:   conn,
			send:   make(chan []byte, 256),
			gameID: gameID,
		}
		if !client.hub.subscribe(client) {
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			conn.Close()
			return
		}

		go client.writePump()
		go client.readPump()
	}
}

// readPump drains incoming frames until the peer goes away. Updates only
// flow from server to client.
func (c *Client) readPump() {
	defer func() {
		c.hub.unsubscribe(c)
		c.conn.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Msg("WebSocket error")
			}
			break
		}
	}
}

// writePump sends queued updates and keeps the connection alive
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
