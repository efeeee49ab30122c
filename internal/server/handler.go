package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/iamstoobit/Triviador/pkg/conquest"
)

const (
	writeWait   = 10 * time.Second
	pongWait    = 60 * time.Second
	pingPeriod  = 54 * time.Second // Must be less than pongWait
	maxMsgSize  = 4096
	sendBufSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // local single-player server; tighten if ever exposed
	},
}

// inputSink is the slice of the engine gate the handler feeds. The
// gate discards anything it is not currently awaiting, so the handler
// forwards without validating game state.
type inputSink interface {
	SubmitRegionSelection(region conquest.RegionID, action conquest.Action)
	SubmitCategoricalAnswer(choice int)
	SubmitNumericAnswer(value float64)
}

// WSHandler upgrades HTTP connections and bridges client messages into
// the engine.
type WSHandler struct {
	hub  *Hub
	gate inputSink
}

// NewWSHandler creates a WSHandler over the given hub and input gate.
func NewWSHandler(hub *Hub, gate inputSink) *WSHandler {
	return &WSHandler{hub: hub, gate: gate}
}

// ServeWS handles GET /ws and upgrades to WebSocket.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := &WSConn{
		conn: conn,
		send: make(chan []byte, sendBufSize),
	}
	h.hub.Register(client)

	// Confirm the connection is live before any game event arrives.
	welcome, _ := json.Marshal(WSEvent{Type: EventConnected, GameID: h.hub.gameID})
	client.send <- welcome

	go h.writePump(client)
	go h.readPump(client)

	log.Info().Int("total", h.hub.ConnectionCount()).Msg("WebSocket client connected")
}

// readPump reads client messages and routes them into the gate.
func (h *WSHandler) readPump(c *WSConn) {
	defer func() {
		h.hub.Unregister(c)
		c.conn.Close()
		log.Info().Msg("WebSocket client disconnected")
	}()

	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("WebSocket unexpected close")
			}
			break
		}
		h.handleMessage(message)
	}
}

// handleMessage parses one client message and forwards it to the gate.
// Malformed or unknown messages are dropped.
func (h *WSHandler) handleMessage(raw []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return
	}

	switch msg.Action {
	case "select_region":
		action := conquest.ActionAttack
		if msg.Move == string(conquest.ActionFortify) {
			action = conquest.ActionFortify
		}
		h.gate.SubmitRegionSelection(conquest.RegionID(msg.Region), action)
	case "answer":
		h.gate.SubmitCategoricalAnswer(msg.Choice)
	case "numeric_answer":
		h.gate.SubmitNumericAnswer(msg.Value)
	}
}

// writePump writes queued messages to the WebSocket connection.
func (h *WSHandler) writePump(c *WSConn) {
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
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Drain queued messages into the same write
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte("\n"))
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
