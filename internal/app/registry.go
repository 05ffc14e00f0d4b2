package app

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"watchparty/internal/domain"
)

type sessionEntry struct {
	RoomID    domain.RoomID
	Username  string
	Sender    Sender
	lastTouch time.Time
}

// MemberSnap is one room member's send endpoint plus identity.
type MemberSnap struct {
	ID       domain.ConnID
	Username string
	Sender   Sender
}

// Registry tracks every live connection and its room binding. RoomID is
// empty while the connection is CONNECTED but not yet in a room.
type Registry struct {
	mu       sync.RWMutex
	sessions map[domain.ConnID]*sessionEntry
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[domain.ConnID]*sessionEntry)}
}

func (r *Registry) Bind(cid domain.ConnID, s Sender) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[cid] = &sessionEntry{Sender: s}
	log.Info().Str("module", "app.registry").Str("cid", string(cid)).Msg("bound connection")
}

func (r *Registry) Unbind(cid domain.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, cid)
	log.Info().Str("module", "app.registry").Str("cid", string(cid)).Msg("unbound connection")
}

func (r *Registry) SetRoom(cid domain.ConnID, room domain.RoomID, username string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[cid]
	if !ok {
		return false
	}
	e.RoomID = room
	e.Username = username
	e.lastTouch = time.Now()
	return true
}

func (r *Registry) ClearRoom(cid domain.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[cid]; ok {
		e.RoomID = ""
		e.Username = ""
	}
}

// RoomOf returns the room binding of a connection. ok is false when the
// connection is unknown or not in a room.
func (r *Registry) RoomOf(cid domain.ConnID) (domain.RoomID, string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[cid]
	if !ok || e.RoomID == "" {
		return "", "", false
	}
	return e.RoomID, e.Username, true
}

func (r *Registry) Sender(cid domain.ConnID) (Sender, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[cid]
	if !ok {
		return nil, false
	}
	return e.Sender, true
}

// MembersOfRoom lists the members bound to a room. The empty room id is
// what lobby sessions carry, so it never matches anyone.
func (r *Registry) MembersOfRoom(room domain.RoomID) []MemberSnap {
	if room == "" {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]MemberSnap, 0, len(r.sessions))
	for cid, e := range r.sessions {
		if e.RoomID == room {
			out = append(out, MemberSnap{ID: cid, Username: e.Username, Sender: e.Sender})
		}
	}
	return out
}

// TouchDue reports whether the connection's last-active refresh is due and
// marks it done, so relays do not become a store write per event.
func (r *Registry) TouchDue(cid domain.ConnID, now time.Time, every time.Duration) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[cid]
	if !ok || e.RoomID == "" {
		return false
	}
	if now.Sub(e.lastTouch) < every {
		return false
	}
	e.lastTouch = now
	return true
}
