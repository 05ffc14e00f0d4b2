package app

import (
	"encoding/json"

	"watchparty/internal/domain"
)

// Server-to-client event types. Every frame is a JSON object carrying a
// "type" discriminator.
const (
	EvtRoomJoined       = "room-joined"
	EvtRoomLeft         = "room-left"
	EvtVideoSet         = "video-set"
	EvtVideoPlay        = "video-play"
	EvtVideoPause       = "video-pause"
	EvtVideoSeek        = "video-seek"
	EvtSyncRequest      = "sync-request"
	EvtSyncResponse     = "sync-response"
	EvtChatMessage      = "chat-message"
	EvtChatHistory      = "chat-history"
	EvtVoiceSignal      = "voice-signal"
	EvtVoiceStateChange = "voice-state-change"
	EvtError            = "error"
)

type RoomJoinedEvent struct {
	Type         string   `json:"type"`
	Username     string   `json:"username"`
	Participants []string `json:"participants"`
}

type RoomLeftEvent struct {
	Type         string   `json:"type"`
	Username     string   `json:"username"`
	Participants []string `json:"participants"`
}

type VideoSetEvent struct {
	Type      string `json:"type"`
	VideoLink string `json:"videoLink"`
	SetBy     string `json:"setBy"`
}

type PlaybackEvent struct {
	Type string `json:"type"`
}

type SeekEvent struct {
	Type        string  `json:"type"`
	CurrentTime float64 `json:"currentTime"`
}

type SyncResponseEvent struct {
	Type        string  `json:"type"`
	CurrentTime float64 `json:"currentTime"`
	IsPaused    bool    `json:"isPaused"`
	VideoLink   string  `json:"videoLink"`
}

type ChatMessageEvent struct {
	Type string `json:"type"`
	domain.ChatMessage
}

type ChatHistoryEvent struct {
	Type     string               `json:"type"`
	Messages []domain.ChatMessage `json:"messages"`
}

type VoiceSignalEvent struct {
	Type   string          `json:"type"`
	Signal json.RawMessage `json:"signal"`
	From   domain.ConnID   `json:"from"`
}

type VoiceStateEvent struct {
	Type     string        `json:"type"`
	UserID   domain.ConnID `json:"userId"`
	Username string        `json:"username"`
	IsMuted  bool          `json:"isMuted"`
}

type ErrorEvent struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}
