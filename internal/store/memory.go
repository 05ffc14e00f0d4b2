package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"watchparty/internal/domain"
)

// Memory is the cache-only backend. Nothing survives a restart; it also
// serves as the store double in tests.
type Memory struct {
	mu           sync.RWMutex
	rooms        map[domain.RoomID]domain.Room
	participants map[domain.ConnID]domain.Participant
}

func NewMemory() *Memory {
	return &Memory{
		rooms:        make(map[domain.RoomID]domain.Room),
		participants: make(map[domain.ConnID]domain.Participant),
	}
}

func (m *Memory) UpsertRoom(ctx context.Context, room domain.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.rooms[room.ID]; ok {
		room.CreatedAt = cur.CreatedAt
	}
	m.rooms[room.ID] = room
	return nil
}

func (m *Memory) GetRoom(ctx context.Context, id domain.RoomID) (domain.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	room, ok := m.rooms[id]
	if !ok {
		return domain.Room{}, ErrNotFound
	}
	return room, nil
}

func (m *Memory) UpsertParticipant(ctx context.Context, p domain.Participant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.participants[p.ID] = p
	return nil
}

func (m *Memory) ListParticipants(ctx context.Context, id domain.RoomID) ([]domain.Participant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.Participant
	for _, p := range m.participants {
		if p.RoomID == id {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastActive.Equal(out[j].LastActive) {
			return out[i].LastActive.Before(out[j].LastActive)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) RemoveParticipant(ctx context.Context, id domain.ConnID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.participants, id)
	return nil
}

func (m *Memory) RemoveStaleParticipants(ctx context.Context, olderThan time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, p := range m.participants {
		if p.LastActive.Before(olderThan) {
			delete(m.participants, id)
			n++
		}
	}
	return n, nil
}

func (m *Memory) Close() error { return nil }
