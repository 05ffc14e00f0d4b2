package app

import (
	"sync"

	"watchparty/internal/domain"
)

// roomLocks serialises room-mutating operations per room id so directory
// membership always mirrors live connections. Entries are never collected;
// room-id cardinality is small in this deployment.
type roomLocks struct {
	mu    sync.Mutex
	locks map[domain.RoomID]*sync.Mutex
}

func (l *roomLocks) lock(id domain.RoomID) *sync.Mutex {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[domain.RoomID]*sync.Mutex)
	}
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	l.mu.Unlock()
	m.Lock()
	return m
}
