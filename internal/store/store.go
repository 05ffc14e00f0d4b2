package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"watchparty/internal/domain"
)

var ErrNotFound = errors.New("not found")

// Store is the durability backstop behind the in-memory directory. Room rows
// persist indefinitely; participant rows are removed on disconnect and swept
// by the reaper. The coordinator and the reaper write concurrently, so every
// delete is row-conditional rather than read-then-write.
type Store interface {
	// UpsertRoom inserts the room or overwrites its video link. created_at is
	// preserved on update.
	UpsertRoom(ctx context.Context, room domain.Room) error
	GetRoom(ctx context.Context, id domain.RoomID) (domain.Room, error)
	UpsertParticipant(ctx context.Context, p domain.Participant) error
	// ListParticipants returns the room's participants ordered by last_active
	// then id, which tracks join order under normal traffic.
	ListParticipants(ctx context.Context, id domain.RoomID) ([]domain.Participant, error)
	RemoveParticipant(ctx context.Context, id domain.ConnID) error
	RemoveStaleParticipants(ctx context.Context, olderThan time.Time) (int64, error)
	Close() error
}

// Open selects a backend by driver name: memory, sqlite or postgres.
func Open(driver, dsn string) (Store, error) {
	switch driver {
	case "", "memory":
		return NewMemory(), nil
	case "sqlite":
		return OpenSQLite(dsn)
	case "postgres":
		return OpenPostgres(dsn)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
