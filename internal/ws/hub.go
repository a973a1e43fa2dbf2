// Package ws implements the board-room broadcast primitive over websockets.
// Each board has a room; every mutation pushes a full snapshot to all of the
// room's subscribers.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Hub tracks subscribers per board room and fans broadcasts out to them.
// Delivery is best-effort: a subscriber whose send buffer is full is dropped
// rather than allowed to block the mutation path.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[uuid.UUID]map[*Client]struct{}
	logger *slog.Logger
}

// NewHub creates an empty Hub. If logger is nil, a default logger is used.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		rooms:  make(map[uuid.UUID]map[*Client]struct{}),
		logger: logger.With(slog.String("component", "ws_hub")),
	}
}

// Register adds a client to a board's room.
func (h *Hub) Register(boardID uuid.UUID, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[boardID]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[boardID] = room
	}
	room[c] = struct{}{}

	h.logger.Debug("client registered",
		slog.String("board_id", boardID.String()),
		slog.Int("room_size", len(room)))
}

// Unregister removes a client from a board's room and closes its send
// channel. Safe to call for a client that was already removed.
func (h *Hub) Unregister(boardID uuid.UUID, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[boardID]
	if !ok {
		return
	}
	if _, ok := room[c]; !ok {
		return
	}

	delete(room, c)
	close(c.send)
	if len(room) == 0 {
		delete(h.rooms, boardID)
	}
}

// BroadcastToBoard implements service.Broadcaster. The payload is marshalled
// once and handed to each subscriber's send buffer; subscribers that cannot
// keep up are dropped.
func (h *Hub) BroadcastToBoard(ctx context.Context, boardID uuid.UUID, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[boardID]
	if !ok {
		return nil // nobody subscribed; nothing to do
	}

	for c := range room {
		select {
		case c.send <- data:
		default:
			// Slow client: drop it instead of blocking the broadcast.
			delete(room, c)
			close(c.send)
			h.logger.Warn("dropped slow subscriber",
				slog.String("board_id", boardID.String()))
		}
	}
	if len(room) == 0 {
		delete(h.rooms, boardID)
	}

	return nil
}

// RoomSize returns the number of subscribers in a board's room.
func (h *Hub) RoomSize(boardID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[boardID])
}
