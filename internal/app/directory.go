package app

import (
	"sync"

	"watchparty/internal/domain"
)

type roomEntry struct {
	names     map[domain.ConnID]string
	order     []domain.ConnID
	videoLink string
}

// Directory is the authoritative in-memory view of live rooms. An entry
// exists while the room has connected participants, or after get-video
// pinned it by back-filling from the store. Only the coordinator mutates it.
type Directory struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]*roomEntry
}

func NewDirectory() *Directory {
	return &Directory{rooms: make(map[domain.RoomID]*roomEntry)}
}

func (d *Directory) ensure(id domain.RoomID) *roomEntry {
	e, ok := d.rooms[id]
	if !ok {
		e = &roomEntry{names: make(map[domain.ConnID]string)}
		d.rooms[id] = e
	}
	return e
}

func (d *Directory) EnsureRoom(id domain.RoomID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ensure(id)
}

func (d *Directory) AddParticipant(id domain.RoomID, cid domain.ConnID, name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e := d.ensure(id)
	if _, ok := e.names[cid]; !ok {
		e.order = append(e.order, cid)
	}
	e.names[cid] = name
}

// RemoveParticipant reports whether the room entry was evicted. Removing a
// non-member is a no-op.
func (d *Directory) RemoveParticipant(id domain.RoomID, cid domain.ConnID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.rooms[id]
	if !ok {
		return false
	}
	if _, ok := e.names[cid]; !ok {
		return false
	}
	delete(e.names, cid)
	for i, oid := range e.order {
		if oid == cid {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	if len(e.names) == 0 {
		delete(d.rooms, id)
		return true
	}
	return false
}

// SetVideoLink creates the entry if absent; a set-video on an unknown room
// establishes it.
func (d *Directory) SetVideoLink(id domain.RoomID, link string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ensure(id).videoLink = link
}

func (d *Directory) VideoLink(id domain.RoomID) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	e, ok := d.rooms[id]
	if !ok || e.videoLink == "" {
		return "", false
	}
	return e.videoLink, true
}

// ParticipantNames returns display names in join order.
func (d *Directory) ParticipantNames(id domain.RoomID) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	e, ok := d.rooms[id]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(e.order))
	for _, cid := range e.order {
		out = append(out, e.names[cid])
	}
	return out
}

func (d *Directory) ParticipantCount(id domain.RoomID) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	e, ok := d.rooms[id]
	if !ok {
		return 0
	}
	return len(e.names)
}

func (d *Directory) Has(id domain.RoomID) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.rooms[id]
	return ok
}

func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.rooms)
}
