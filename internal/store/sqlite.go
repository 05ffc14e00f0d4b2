package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"watchparty/internal/domain"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS rooms (
	id TEXT PRIMARY KEY,
	video_link TEXT,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS participants (
	id TEXT PRIMARY KEY,
	room_id TEXT,
	username TEXT,
	last_active TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (room_id) REFERENCES rooms(id)
);
`

type SQLite struct {
	db *sql.DB
}

func OpenSQLite(dsn string) (*SQLite, error) {
	if dsn == "" {
		dsn = "./watchparty.db"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) UpsertRoom(ctx context.Context, room domain.Room) error {
	query := `
		INSERT INTO rooms (id, video_link, created_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET video_link = excluded.video_link
	`
	if _, err := s.db.ExecContext(ctx, query, room.ID, room.VideoLink, room.CreatedAt); err != nil {
		return fmt.Errorf("failed to upsert room %q: %w", room.ID, err)
	}
	return nil
}

func (s *SQLite) GetRoom(ctx context.Context, id domain.RoomID) (domain.Room, error) {
	query := `SELECT id, video_link, created_at FROM rooms WHERE id = ?`
	var room domain.Room
	var link sql.NullString
	if err := s.db.QueryRowContext(ctx, query, id).Scan(&room.ID, &link, &room.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Room{}, ErrNotFound
		}
		return domain.Room{}, fmt.Errorf("failed to query room %q: %w", id, err)
	}
	room.VideoLink = link.String
	return room, nil
}

func (s *SQLite) UpsertParticipant(ctx context.Context, p domain.Participant) error {
	query := `
		INSERT INTO participants (id, room_id, username, last_active) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			room_id = excluded.room_id,
			username = excluded.username,
			last_active = excluded.last_active
	`
	if _, err := s.db.ExecContext(ctx, query, p.ID, p.RoomID, p.Username, p.LastActive); err != nil {
		return fmt.Errorf("failed to upsert participant %q: %w", p.ID, err)
	}
	return nil
}

func (s *SQLite) ListParticipants(ctx context.Context, id domain.RoomID) ([]domain.Participant, error) {
	query := `
		SELECT id, room_id, username, last_active FROM participants
		WHERE room_id = ? ORDER BY last_active, id
	`
	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants of %q: %w", id, err)
	}
	defer rows.Close()

	var out []domain.Participant
	for rows.Next() {
		var p domain.Participant
		if err := rows.Scan(&p.ID, &p.RoomID, &p.Username, &p.LastActive); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participants of %q: %w", id, err)
	}
	return out, nil
}

func (s *SQLite) RemoveParticipant(ctx context.Context, id domain.ConnID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM participants WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete participant %q: %w", id, err)
	}
	return nil
}

func (s *SQLite) RemoveStaleParticipants(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM participants WHERE last_active < ?`, olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale participants: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLite) Close() error { return s.db.Close() }
