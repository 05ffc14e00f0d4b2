package ws

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"watchparty/internal/app"
	"watchparty/internal/domain"
)

func (ctl *Controller) handleJoinRoom(ctx context.Context, cid domain.ConnID, c *wsConn, data []byte) {
	type joinPayload struct {
		Type     string `json:"type"`
		RoomID   string `json:"roomId"`
		Username string `json:"username"`
	}
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("bad join payload")
		ctl.sendError(c, "bad_payload")
		return
	}

	if err := ctl.Coord.Join(ctx, cid, domain.RoomID(p.RoomID), p.Username); err != nil {
		if errors.Is(err, app.ErrValidation) {
			ctl.sendError(c, "roomId and username are required")
			return
		}
		ctl.sendError(c, "could not join")
	}
}
