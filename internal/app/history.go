package app

import (
	"sync"

	"watchparty/internal/domain"
)

// History keeps the last N chat messages per room, oldest evicted first.
// Purely in-memory; a room's history outlives directory eviction and is lost
// on process restart.
type History struct {
	mu     sync.RWMutex
	limit  int
	byRoom map[domain.RoomID][]domain.ChatMessage
}

func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = 50
	}
	return &History{
		limit:  limit,
		byRoom: make(map[domain.RoomID][]domain.ChatMessage),
	}
}

func (h *History) Append(id domain.RoomID, msg domain.ChatMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	msgs := append(h.byRoom[id], msg)
	if len(msgs) > h.limit {
		msgs = msgs[len(msgs)-h.limit:]
	}
	h.byRoom[id] = msgs
}

// Replay returns a copy in insertion order, oldest first.
func (h *History) Replay(id domain.RoomID) []domain.ChatMessage {
	h.mu.RLock()
	defer h.mu.RUnlock()
	msgs := h.byRoom[id]
	if len(msgs) == 0 {
		return nil
	}
	out := make([]domain.ChatMessage, len(msgs))
	copy(out, msgs)
	return out
}
