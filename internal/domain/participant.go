package domain

import "time"

// ConnID identifies one live connection. Issued by the transport at connect
// time and never reused while the connection is open.
type ConnID string

type Participant struct {
	ID         ConnID
	RoomID     RoomID
	Username   string
	LastActive time.Time
}
