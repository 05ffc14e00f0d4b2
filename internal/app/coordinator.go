package app

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"watchparty/internal/domain"
	"watchparty/internal/store"
)

const touchEvery = time.Minute

// Coordinator owns the join/leave protocol, the authoritative video state
// per room, the chat path and every relay. The directory mirrors live
// connections; the store is a durability backstop reconciled here. Store
// failures degrade to cache-only behavior and never crash a connection.
type Coordinator struct {
	Registry  *Registry
	Directory *Directory
	History   *History
	Store     store.Store

	chatLimiter *RateLimiter
	locks       roomLocks
	now         func() time.Time
}

func NewCoordinator(reg *Registry, dir *Directory, hist *History, st store.Store) *Coordinator {
	return &Coordinator{
		Registry:  reg,
		Directory: dir,
		History:   hist,
		Store:     st,
		now:       time.Now,
	}
}

// SetChatLimit enables the per-sender chat rate limit.
func (c *Coordinator) SetChatLimit(limit int, interval time.Duration) {
	if limit > 0 && interval > 0 {
		c.chatLimiter = NewRateLimiter(limit, interval)
	}
}

// Join binds a connection to a room. A second join on a bound connection
// performs an implicit leave of the prior room first. The participant is
// persisted before the broadcast; on store failure the join continues with
// the directory's view only.
func (c *Coordinator) Join(ctx context.Context, cid domain.ConnID, roomID domain.RoomID, username string) error {
	if roomID == "" || username == "" {
		return ErrValidation
	}
	if prev, _, ok := c.Registry.RoomOf(cid); ok {
		c.leave(ctx, cid, prev)
	}

	l := c.locks.lock(roomID)
	defer l.Unlock()

	now := c.now()
	link := ""
	room, err := c.Store.GetRoom(ctx, roomID)
	switch {
	case err == nil:
		link = room.VideoLink
	case errors.Is(err, store.ErrNotFound):
		if err := c.Store.UpsertRoom(ctx, domain.Room{ID: roomID, CreatedAt: now}); err != nil {
			log.Error().Err(err).Str("module", "app.coordinator").Str("room", string(roomID)).Msg("create room row")
		}
	default:
		log.Error().Err(err).Str("module", "app.coordinator").Str("room", string(roomID)).Msg("read room row")
	}

	if err := c.Store.UpsertParticipant(ctx, domain.Participant{
		ID: cid, RoomID: roomID, Username: username, LastActive: now,
	}); err != nil {
		log.Error().Err(err).Str("module", "app.coordinator").Str("cid", string(cid)).Msg("persist participant")
	}

	c.Directory.AddParticipant(roomID, cid, username)
	if link != "" {
		if _, ok := c.Directory.VideoLink(roomID); !ok {
			c.Directory.SetVideoLink(roomID, link)
		}
	}
	c.Registry.SetRoom(cid, roomID, username)

	names := c.participantNames(ctx, roomID)
	c.broadcastRoom(roomID, RoomJoinedEvent{Type: EvtRoomJoined, Username: username, Participants: names})

	if link, ok := c.Directory.VideoLink(roomID); ok {
		c.sendTo(cid, VideoSetEvent{Type: EvtVideoSet, VideoLink: link, SetBy: "someone in the room"})
	}
	if msgs := c.History.Replay(roomID); len(msgs) > 0 {
		c.sendTo(cid, ChatHistoryEvent{Type: EvtChatHistory, Messages: msgs})
	}

	log.Info().Str("module", "app.coordinator").
		Str("cid", string(cid)).Str("room", string(roomID)).Str("username", username).
		Msg("joined room")
	return nil
}

// Disconnect handles a transport-originated close. Safe to call for
// connections that never joined a room.
func (c *Coordinator) Disconnect(ctx context.Context, cid domain.ConnID) {
	if roomID, _, ok := c.Registry.RoomOf(cid); ok {
		c.leave(ctx, cid, roomID)
	}
	if c.chatLimiter != nil {
		c.chatLimiter.Forget(cid)
	}
	c.Registry.Unbind(cid)
}

func (c *Coordinator) leave(ctx context.Context, cid domain.ConnID, roomID domain.RoomID) {
	l := c.locks.lock(roomID)
	defer l.Unlock()

	_, username, _ := c.Registry.RoomOf(cid)

	if err := c.Store.RemoveParticipant(ctx, cid); err != nil {
		log.Error().Err(err).Str("module", "app.coordinator").Str("cid", string(cid)).Msg("remove participant row")
	}
	evicted := c.Directory.RemoveParticipant(roomID, cid)
	c.Registry.ClearRoom(cid)

	names := c.participantNames(ctx, roomID)
	c.broadcastRoom(roomID, RoomLeftEvent{Type: EvtRoomLeft, Username: username, Participants: names})

	log.Info().Str("module", "app.coordinator").
		Str("cid", string(cid)).Str("room", string(roomID)).Bool("room_evicted", evicted).
		Msg("left room")
}

// SetVideo persists the room's current video and announces it room-wide,
// sender included. A set-video on an unknown room establishes the room.
func (c *Coordinator) SetVideo(ctx context.Context, cid domain.ConnID, roomID domain.RoomID, link, setBy string) error {
	if roomID == "" || link == "" {
		return ErrValidation
	}
	l := c.locks.lock(roomID)
	defer l.Unlock()

	c.Touch(ctx, cid)
	if err := c.Store.UpsertRoom(ctx, domain.Room{ID: roomID, VideoLink: link, CreatedAt: c.now()}); err != nil {
		log.Error().Err(err).Str("module", "app.coordinator").Str("room", string(roomID)).Msg("persist video link")
	}
	c.Directory.SetVideoLink(roomID, link)
	c.broadcastRoom(roomID, VideoSetEvent{Type: EvtVideoSet, VideoLink: link, SetBy: setBy})
	return nil
}

// GetVideo answers the requester only. Cache-first; a store hit back-fills
// (and thereby pins) the directory entry. Silent no-op when nothing is known.
func (c *Coordinator) GetVideo(ctx context.Context, cid domain.ConnID, roomID domain.RoomID) {
	if roomID == "" {
		return
	}
	c.Touch(ctx, cid)
	if link, ok := c.Directory.VideoLink(roomID); ok {
		c.sendTo(cid, VideoSetEvent{Type: EvtVideoSet, VideoLink: link, SetBy: "someone"})
		return
	}

	l := c.locks.lock(roomID)
	defer l.Unlock()

	room, err := c.Store.GetRoom(ctx, roomID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Error().Err(err).Str("module", "app.coordinator").Str("room", string(roomID)).Msg("read room row")
		}
		return
	}
	if room.VideoLink == "" {
		return
	}
	c.Directory.SetVideoLink(roomID, room.VideoLink)
	c.sendTo(cid, VideoSetEvent{Type: EvtVideoSet, VideoLink: room.VideoLink, SetBy: "someone"})
}

// Playback relays. Nothing is persisted; the sender already applied the
// change locally and is excluded. An unknown room relays to the empty set.

func (c *Coordinator) RelayPlay(ctx context.Context, cid domain.ConnID, roomID domain.RoomID) {
	c.Touch(ctx, cid)
	c.relayFrom(cid, roomID, PlaybackEvent{Type: EvtVideoPlay})
}

func (c *Coordinator) RelayPause(ctx context.Context, cid domain.ConnID, roomID domain.RoomID) {
	c.Touch(ctx, cid)
	c.relayFrom(cid, roomID, PlaybackEvent{Type: EvtVideoPause})
}

func (c *Coordinator) RelaySeek(ctx context.Context, cid domain.ConnID, roomID domain.RoomID, currentTime float64) {
	c.Touch(ctx, cid)
	c.relayFrom(cid, roomID, SeekEvent{Type: EvtVideoSeek, CurrentTime: currentTime})
}

// RelaySyncRequest asks the rest of the room to report live playback state.
func (c *Coordinator) RelaySyncRequest(ctx context.Context, cid domain.ConnID, roomID domain.RoomID) {
	c.Touch(ctx, cid)
	c.relayFrom(cid, roomID, PlaybackEvent{Type: EvtSyncRequest})
}

func (c *Coordinator) RelaySyncResponse(ctx context.Context, cid domain.ConnID, roomID domain.RoomID, currentTime float64, isPaused bool, videoLink string) {
	c.Touch(ctx, cid)
	c.relayFrom(cid, roomID, SyncResponseEvent{
		Type:        EvtSyncResponse,
		CurrentTime: currentTime,
		IsPaused:    isPaused,
		VideoLink:   videoLink,
	})
}

// Chat stamps the timestamp and sender id server-side, records the message
// and broadcasts it room-wide, sender included, so every client renders one
// authoritative timestamp.
func (c *Coordinator) Chat(ctx context.Context, cid domain.ConnID, roomID domain.RoomID, message, sender string) error {
	if roomID == "" || message == "" {
		return ErrValidation
	}
	c.Touch(ctx, cid)
	if c.chatLimiter != nil && !c.chatLimiter.Allow(cid) {
		return ErrRateLimited
	}
	msg := domain.ChatMessage{
		Sender:    sender,
		Message:   message,
		Timestamp: c.now().UTC().Format(time.RFC3339),
		SenderID:  cid,
	}
	c.History.Append(roomID, msg)
	c.broadcastRoom(roomID, ChatMessageEvent{Type: EvtChatMessage, ChatMessage: msg})
	return nil
}

// VoiceSignal relays one signaling payload to its target connection only,
// re-stamped with the transport-verified sender id. Both ends must be
// members of the named room or the signal is dropped.
func (c *Coordinator) VoiceSignal(ctx context.Context, cid domain.ConnID, roomID domain.RoomID, to domain.ConnID, signal json.RawMessage) {
	c.Touch(ctx, cid)
	senderRoom, _, ok := c.Registry.RoomOf(cid)
	if !ok || senderRoom != roomID {
		log.Warn().Str("module", "app.coordinator").Str("cid", string(cid)).Str("room", string(roomID)).
			Msg("voice signal from non-member dropped")
		return
	}
	targetRoom, _, ok := c.Registry.RoomOf(to)
	if !ok || targetRoom != roomID {
		log.Warn().Str("module", "app.coordinator").Str("cid", string(cid)).Str("to", string(to)).
			Msg("voice signal target outside room dropped")
		return
	}
	c.sendTo(to, VoiceSignalEvent{Type: EvtVoiceSignal, Signal: signal, From: cid})
}

// VoiceState announces mute state to the rest of the room. The sender must
// be a member of the named room; username comes from the registry, never
// the payload.
func (c *Coordinator) VoiceState(ctx context.Context, cid domain.ConnID, roomID domain.RoomID, isMuted bool) {
	c.Touch(ctx, cid)
	senderRoom, username, ok := c.Registry.RoomOf(cid)
	if !ok || senderRoom != roomID {
		log.Warn().Str("module", "app.coordinator").Str("cid", string(cid)).Str("room", string(roomID)).
			Msg("voice state from non-member dropped")
		return
	}
	c.relayFrom(cid, roomID, VoiceStateEvent{
		Type:     EvtVoiceStateChange,
		UserID:   cid,
		Username: username,
		IsMuted:  isMuted,
	})
}

// Touch refreshes the participant's last_active, throttled per connection.
func (c *Coordinator) Touch(ctx context.Context, cid domain.ConnID) {
	now := c.now()
	if !c.Registry.TouchDue(cid, now, touchEvery) {
		return
	}
	roomID, username, ok := c.Registry.RoomOf(cid)
	if !ok {
		return
	}
	if err := c.Store.UpsertParticipant(ctx, domain.Participant{
		ID: cid, RoomID: roomID, Username: username, LastActive: now,
	}); err != nil {
		log.Warn().Err(err).Str("module", "app.coordinator").Str("cid", string(cid)).Msg("refresh last_active")
	}
}

// participantNames reads the room's name list from the store, the source of
// truth for the broadcast; the directory's view is the cache-only fallback.
func (c *Coordinator) participantNames(ctx context.Context, roomID domain.RoomID) []string {
	parts, err := c.Store.ListParticipants(ctx, roomID)
	if err != nil {
		log.Error().Err(err).Str("module", "app.coordinator").Str("room", string(roomID)).Msg("list participants")
		return c.Directory.ParticipantNames(roomID)
	}
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		names = append(names, p.Username)
	}
	return names
}

func (c *Coordinator) broadcastRoom(roomID domain.RoomID, v any) {
	f, err := marshalFrame(v)
	if err != nil {
		return
	}
	for _, m := range c.Registry.MembersOfRoom(roomID) {
		if err := m.Sender.TrySend(f); err != nil {
			log.Warn().Err(err).Str("module", "app.coordinator").Str("cid", string(m.ID)).Msg("frame dropped")
		}
	}
}

func (c *Coordinator) relayFrom(cid domain.ConnID, roomID domain.RoomID, v any) {
	f, err := marshalFrame(v)
	if err != nil {
		return
	}
	for _, m := range c.Registry.MembersOfRoom(roomID) {
		if m.ID == cid {
			continue
		}
		if err := m.Sender.TrySend(f); err != nil {
			log.Warn().Err(err).Str("module", "app.coordinator").Str("cid", string(m.ID)).Msg("frame dropped")
		}
	}
}

func (c *Coordinator) sendTo(cid domain.ConnID, v any) {
	s, ok := c.Registry.Sender(cid)
	if !ok {
		return
	}
	f, err := marshalFrame(v)
	if err != nil {
		return
	}
	if err := s.TrySend(f); err != nil {
		log.Warn().Err(err).Str("module", "app.coordinator").Str("cid", string(cid)).Msg("frame dropped")
	}
}

func marshalFrame(v any) (Frame, error) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.coordinator").Msg("marshal frame")
		return nil, err
	}
	return Frame(b), nil
}
