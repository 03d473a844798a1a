// Package chat implements the single-room chat served over WebSocket.
package chat

import (
	"encoding/json"
	"errors"
	"io"
	"sync"
	"time"

	"golang.org/x/net/websocket"

	"github.com/venuevibe/vibecheck/internal/logging"
)

// DefaultRoom is the room every connection joins.
const DefaultRoom = 1

const (
	writeTimeout = 5 * time.Second
	maxFrame     = 4 << 10
)

// Message is the frame broadcast to room members.
type Message struct {
	RoomID  int    `json:"room_id"`
	Message string `json:"message"`
}

type member struct {
	conn *websocket.Conn
	mu   sync.Mutex // serialises writes
}

func (m *member) send(frame string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_ = m.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return websocket.Message.Send(m.conn, frame)
}

// Hub tracks room membership. It is safe for concurrent use.
type Hub struct {
	mu    sync.Mutex
	rooms map[int]map[*member]struct{}
	log   *logging.Logger
}

func NewHub(log *logging.Logger) *Hub {
	if log == nil {
		log = logging.Nop()
	}
	return &Hub{rooms: make(map[int]map[*member]struct{}), log: log}
}

// Count returns the number of connections in room.
func (h *Hub) Count(room int) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[room])
}

func (h *Hub) join(room int, m *member) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*member]struct{})
	}
	h.rooms[room][m] = struct{}{}
}

func (h *Hub) leave(room int, m *member) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.rooms[room], m)
	if len(h.rooms[room]) == 0 {
		delete(h.rooms, room)
	}
}

func (h *Hub) members(room int) []*member {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*member, 0, len(h.rooms[room]))
	for m := range h.rooms[room] {
		out = append(out, m)
	}
	return out
}

// Broadcast sends text to every member of room, the sender included.
// Members whose send fails are dropped from the room.
func (h *Hub) Broadcast(room int, text string) {
	b, _ := json.Marshal(Message{RoomID: room, Message: text})
	frame := string(b)
	for _, m := range h.members(room) {
		if err := m.send(frame); err != nil {
			h.log.Debugf("chat: drop member after send error: %v", err)
			h.leave(room, m)
			_ = m.conn.Close()
		}
	}
}

// Handler serves one connection: it joins DefaultRoom and rebroadcasts
// every text frame received until the client disconnects.
func (h *Hub) Handler() websocket.Handler {
	return func(conn *websocket.Conn) {
		conn.MaxPayloadBytes = maxFrame
		m := &member{conn: conn}
		h.join(DefaultRoom, m)
		defer func() {
			h.leave(DefaultRoom, m)
			_ = conn.Close()
		}()

		for {
			var text string
			if err := websocket.Message.Receive(conn, &text); err != nil {
				if !errors.Is(err, io.EOF) {
					h.log.Debugf("chat: receive: %v", err)
				}
				return
			}
			h.Broadcast(DefaultRoom, text)
		}
	}
}
