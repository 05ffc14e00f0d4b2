package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"watchparty/internal/app"
	"watchparty/internal/domain"
	"watchparty/internal/metrics"
)

const writeWait = 5 * time.Second

func (ctl *Controller) writePump(ctx context.Context, c *wsConn) {
	ping := ctl.PingPeriod
	if ping <= 0 {
		ping = 54 * time.Second
	}
	ticker := time.NewTicker(ping)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "ws").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "ws").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, cancel context.CancelFunc, cid domain.ConnID, c *wsConn) {
	defer func() {
		log.Info().Str("module", "ws").Str("cid", string(cid)).Msg("connection closing")
		cancel()
		// The request ctx is gone by now; cleanup still has to reach the store.
		ctl.Coord.Disconnect(context.Background(), cid)
		metrics.ConnectionsOpen.Dec()
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				return
			}
			ctl.dispatch(ctx, cid, c, data)
		}
	}
}

func (ctl *Controller) dispatch(ctx context.Context, cid domain.ConnID, c *wsConn, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("bad json")
		ctl.sendError(c, "bad_payload")
		return
	}
	metrics.EventsTotal.WithLabelValues(env.Type).Inc()

	switch env.Type {
	case "join-room":
		ctl.handleJoinRoom(ctx, cid, c, data)
	case "set-video":
		ctl.handleSetVideo(ctx, cid, c, data)
	case "get-video":
		ctl.handleGetVideo(ctx, cid, c, data)
	case "video-play":
		ctl.handlePlay(ctx, cid, c, data)
	case "video-pause":
		ctl.handlePause(ctx, cid, c, data)
	case "video-seek":
		ctl.handleSeek(ctx, cid, c, data)
	case "request-sync":
		ctl.handleRequestSync(ctx, cid, c, data)
	case "sync-response":
		ctl.handleSyncResponse(ctx, cid, c, data)
	case "chat-message":
		ctl.handleChatMessage(ctx, cid, c, data)
	case "voice-signal":
		ctl.handleVoiceSignal(ctx, cid, c, data)
	case "voice-state-change":
		ctl.handleVoiceState(ctx, cid, c, data)
	case "ping":
		ctl.handlePing(c)
	default:
		log.Warn().Str("module", "ws").Str("type", env.Type).Msg("unknown event")
	}
}

func (ctl *Controller) sendJSON(c *wsConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(app.Frame(b))
}

func (ctl *Controller) sendError(c *wsConn, msg string) {
	ctl.sendJSON(c, app.ErrorEvent{Type: app.EvtError, Error: msg})
}
