// Package server exposes a running game over WebSocket: it streams
// engine events to connected clients and routes their submissions back
// into the engine's input gate.
package server

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Event types sent over WebSocket.
const (
	EventConnected      = "connected"
	EventTurnStarted    = "turn_started"
	EventStateUpdated   = "state_updated"
	EventQuestionPosed  = "question_posed"
	EventBattleResolved = "battle_resolved"
	EventGameOver       = "game_over"
)

// WSEvent is the envelope for all WebSocket messages.
type WSEvent struct {
	Type   string `json:"type"`
	GameID string `json:"game_id"`
	Data   any    `json:"data"`
}

// ClientMessage is the envelope for messages sent from the client.
type ClientMessage struct {
	Action string  `json:"action"` // "select_region", "answer" or "numeric_answer"
	Region int     `json:"region,omitempty"`
	Move   string  `json:"move,omitempty"` // "attack" or "fortify" with select_region
	Choice int     `json:"choice,omitempty"`
	Value  float64 `json:"value,omitempty"`
}

// WSConn wraps a WebSocket connection with its outbound queue.
type WSConn struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans game events out to every connected client. One hub serves
// one game.
type Hub struct {
	gameID string

	mu          sync.RWMutex
	connections map[*WSConn]bool
}

// NewHub creates a hub for the given game.
func NewHub(gameID string) *Hub {
	return &Hub{
		gameID:      gameID,
		connections: make(map[*WSConn]bool),
	}
}

// Register adds a connection to the hub.
func (h *Hub) Register(c *WSConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[c] = true
}

// Unregister removes a connection from the hub and closes its queue.
func (h *Hub) Unregister(c *WSConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.connections[c]; !ok {
		return
	}
	delete(h.connections, c)
	close(c.send)
}

// Broadcast sends an event to every connected client.
func (h *Hub) Broadcast(eventType string, data any) {
	payload, err := json.Marshal(WSEvent{
		Type:   eventType,
		GameID: h.gameID,
		Data:   data,
	})
	if err != nil {
		log.Error().Err(err).Str("gameId", h.gameID).Msg("Failed to marshal WebSocket event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.connections {
		select {
		case c.send <- payload:
		default:
			log.Warn().Str("gameId", h.gameID).Msg("Dropping WebSocket message, buffer full")
		}
	}
}

// ConnectionCount returns the number of active connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}
