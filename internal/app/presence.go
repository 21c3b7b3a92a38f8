package app

import (
	"fmt"

	"github.com/dkeye/Punk/internal/core"
	"github.com/dkeye/Punk/internal/domain"
	"github.com/dkeye/Punk/internal/metrics"
	"github.com/rs/zerolog/log"
)

// Presence drives the per-connection lifecycle
// Disconnected -> Connected(user, room) -> Disconnected.
type Presence struct {
	Registry *Registry
	Rooms    *RoomManager
	Users    *Users
}

// Connect joins a connection to a room and announces it to everyone in the
// room, the new connection included.
func (p *Presence) Connect(sid core.SessionID, uid domain.UserID, code domain.RoomCode, conn core.SignalConnection) (core.RoomService, core.PublishResult, error) {
	if code == "" {
		return nil, core.PublishResult{}, fmt.Errorf("%w: room code not set", core.ErrValidation)
	}
	user, ok := p.Users.Get(uid)
	if !ok {
		return nil, core.PublishResult{}, fmt.Errorf("%w: user %s", core.ErrNotFound, uid)
	}
	room, ok := p.Rooms.GetRoom(code)
	if !ok {
		return nil, core.PublishResult{}, fmt.Errorf("%w: room %s", core.ErrNotFound, code)
	}
	if !room.CanJoin(uid) {
		return nil, core.PublishResult{}, fmt.Errorf("%w: room %s is private", core.ErrUnauthorized, code)
	}

	sess := core.NewMemberSession(sid, domain.NewMember(user, domain.Now()), conn)
	if !p.Registry.Bind(sess, room) {
		return nil, core.PublishResult{}, fmt.Errorf("%w: session %s already connected", core.ErrValidation, sid)
	}
	res, err := room.AddMember(sess)
	if err != nil {
		p.Registry.Unbind(sid)
		return nil, core.PublishResult{}, fmt.Errorf("room %s: %w", code, err)
	}
	metrics.ConnectionsActive.Inc()
	log.Info().Str("module", "app.presence").Str("sid", string(sid)).Str("user", string(uid)).Str("room", string(code)).Msg("connected")
	return room, res, nil
}

// Disconnect is a no-op for unknown or already disconnected sessions.
// An ephemeral room left empty is removed from the registry.
func (p *Presence) Disconnect(sid core.SessionID) (core.RoomService, core.PublishResult) {
	entry, ok := p.Registry.Unbind(sid)
	if !ok {
		return nil, core.PublishResult{}
	}
	res := entry.Room.RemoveMember(sid)
	if !res.Removed {
		return entry.Room, core.PublishResult{}
	}
	metrics.ConnectionsActive.Dec()
	if res.Closed {
		p.Rooms.Forget(entry.Room)
	}
	log.Info().Str("module", "app.presence").Str("sid", string(sid)).Str("user", string(entry.UserID)).Str("room", string(entry.Room.Code())).Int("members", res.Members).Msg("disconnected")
	return entry.Room, res.Publish
}
