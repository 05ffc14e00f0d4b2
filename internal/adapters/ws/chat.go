package ws

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"watchparty/internal/app"
	"watchparty/internal/domain"
)

func (ctl *Controller) handleChatMessage(ctx context.Context, cid domain.ConnID, c *wsConn, data []byte) {
	type chatPayload struct {
		Type    string `json:"type"`
		RoomID  string `json:"roomId"`
		Message string `json:"message"`
		Sender  string `json:"sender"`
	}
	var p chatPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("bad chat payload")
		ctl.sendError(c, "bad_payload")
		return
	}

	err := ctl.Coord.Chat(ctx, cid, domain.RoomID(p.RoomID), p.Message, p.Sender)
	switch {
	case errors.Is(err, app.ErrRateLimited):
		ctl.sendError(c, "slow down")
	case errors.Is(err, app.ErrValidation):
		ctl.sendError(c, "roomId and message are required")
	}
}
