package ws

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"watchparty/internal/app"
	"watchparty/internal/domain"
)

func (ctl *Controller) handleSetVideo(ctx context.Context, cid domain.ConnID, c *wsConn, data []byte) {
	type setVideoPayload struct {
		Type      string `json:"type"`
		RoomID    string `json:"roomId"`
		VideoLink string `json:"videoLink"`
		SetBy     string `json:"setBy"`
	}
	var p setVideoPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("bad set-video payload")
		ctl.sendError(c, "bad_payload")
		return
	}

	if err := ctl.Coord.SetVideo(ctx, cid, domain.RoomID(p.RoomID), p.VideoLink, p.SetBy); err != nil {
		if errors.Is(err, app.ErrValidation) {
			ctl.sendError(c, "roomId and videoLink are required")
		}
	}
}

func (ctl *Controller) handleGetVideo(ctx context.Context, cid domain.ConnID, c *wsConn, data []byte) {
	type getVideoPayload struct {
		Type   string `json:"type"`
		RoomID string `json:"roomId"`
	}
	var p getVideoPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("bad get-video payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	ctl.Coord.GetVideo(ctx, cid, domain.RoomID(p.RoomID))
}

type roomOnlyPayload struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
}

func (ctl *Controller) handlePlay(ctx context.Context, cid domain.ConnID, c *wsConn, data []byte) {
	var p roomOnlyPayload
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.sendError(c, "bad_payload")
		return
	}
	ctl.Coord.RelayPlay(ctx, cid, domain.RoomID(p.RoomID))
}

func (ctl *Controller) handlePause(ctx context.Context, cid domain.ConnID, c *wsConn, data []byte) {
	var p roomOnlyPayload
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.sendError(c, "bad_payload")
		return
	}
	ctl.Coord.RelayPause(ctx, cid, domain.RoomID(p.RoomID))
}

func (ctl *Controller) handleSeek(ctx context.Context, cid domain.ConnID, c *wsConn, data []byte) {
	type seekPayload struct {
		Type        string  `json:"type"`
		RoomID      string  `json:"roomId"`
		CurrentTime float64 `json:"currentTime"`
	}
	var p seekPayload
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.sendError(c, "bad_payload")
		return
	}
	ctl.Coord.RelaySeek(ctx, cid, domain.RoomID(p.RoomID), p.CurrentTime)
}

func (ctl *Controller) handleRequestSync(ctx context.Context, cid domain.ConnID, c *wsConn, data []byte) {
	var p roomOnlyPayload
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.sendError(c, "bad_payload")
		return
	}
	ctl.Coord.RelaySyncRequest(ctx, cid, domain.RoomID(p.RoomID))
}

func (ctl *Controller) handleSyncResponse(ctx context.Context, cid domain.ConnID, c *wsConn, data []byte) {
	type syncResponsePayload struct {
		Type        string  `json:"type"`
		RoomID      string  `json:"roomId"`
		CurrentTime float64 `json:"currentTime"`
		IsPaused    bool    `json:"isPaused"`
		VideoLink   string  `json:"videoLink"`
	}
	var p syncResponsePayload
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.sendError(c, "bad_payload")
		return
	}
	ctl.Coord.RelaySyncResponse(ctx, cid, domain.RoomID(p.RoomID), p.CurrentTime, p.IsPaused, p.VideoLink)
}
