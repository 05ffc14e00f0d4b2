package ws

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"watchparty/internal/domain"
)

func (ctl *Controller) handleVoiceSignal(ctx context.Context, cid domain.ConnID, c *wsConn, data []byte) {
	type voiceSignalPayload struct {
		Type   string          `json:"type"`
		RoomID string          `json:"roomId"`
		To     string          `json:"to"`
		Signal json.RawMessage `json:"signal"`
	}
	var p voiceSignalPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("bad voice-signal payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	ctl.Coord.VoiceSignal(ctx, cid, domain.RoomID(p.RoomID), domain.ConnID(p.To), p.Signal)
}

func (ctl *Controller) handleVoiceState(ctx context.Context, cid domain.ConnID, c *wsConn, data []byte) {
	type voiceStatePayload struct {
		Type    string `json:"type"`
		RoomID  string `json:"roomId"`
		IsMuted bool   `json:"isMuted"`
	}
	var p voiceStatePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("bad voice-state payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	ctl.Coord.VoiceState(ctx, cid, domain.RoomID(p.RoomID), p.IsMuted)
}
