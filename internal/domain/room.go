package domain

import "time"

// RoomID names one synchronization scope. Opaque: clients may supply their
// own or use a generated one.
type RoomID string

// Room is the durable record of a watch room. VideoLink stays empty until a
// participant sets a video.
type Room struct {
	ID        RoomID    `json:"id"`
	VideoLink string    `json:"video_link"`
	CreatedAt time.Time `json:"created_at"`
}
