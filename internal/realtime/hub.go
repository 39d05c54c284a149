// Package realtime pushes favorite changes to every open session of a user.
package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"maidmarket/internal/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 4 * 1024
	sendBuffer = 64
)

// Event types sent to clients.
const (
	EventFavoriteAdded   = "favorite.added"
	EventFavoriteRemoved = "favorite.removed"
)

// Event is a change pushed to clients.
type Event struct {
	Type   string    `json:"type"`
	MaidID string    `json:"maid_id"`
	At     time.Time `json:"at"`
}

type connection struct {
	userID int64
	conn   *websocket.Conn
	send   chan []byte
}

// Hub tracks live connections per user. A user may hold several at once,
// one per device or view.
type Hub struct {
	mu    sync.RWMutex
	conns map[int64]map[*connection]struct{}
}

func NewHub() *Hub {
	return &Hub{conns: make(map[int64]map[*connection]struct{})}
}

// FavoriteChanged broadcasts the change to every connection of userID.
func (h *Hub) FavoriteChanged(userID int64, maidID string, added bool) {
	ev := Event{Type: EventFavoriteRemoved, MaidID: maidID, At: time.Now().UTC()}
	if added {
		ev.Type = EventFavoriteAdded
	}
	h.Publish(userID, ev)
}

// Publish sends ev to userID's connections. Slow connections drop the event.
func (h *Hub) Publish(userID int64, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.conns[userID] {
		select {
		case c.send <- data:
		default:
			logger.Logger.Warn().Int64("user_id", userID).Str("type", ev.Type).Msg("realtime client too slow, event dropped")
		}
	}
}

// Connections reports how many connections userID holds.
func (h *Hub) Connections(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[userID])
}

func (h *Hub) register(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.conns[c.userID]
	if !ok {
		set = make(map[*connection]struct{})
		h.conns[c.userID] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) unregister(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.conns[c.userID]
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.conns, c.userID)
	}
}

// Serve runs the connection until the client goes away. It blocks.
func (h *Hub) Serve(conn *websocket.Conn, userID int64) {
	c := &connection{
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
	}

	h.register(c)
	logger.Logger.Debug().Int64("user_id", userID).Msg("realtime client connected")

	go h.writePump(c)
	h.readPump(c)

	logger.Logger.Debug().Int64("user_id", userID).Msg("realtime client disconnected")
}

// readPump only keeps the connection alive; clients do not send commands.
func (h *Hub) readPump(c *connection) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
