package orch

import (
	"context"
	"fmt"

	"github.com/dkeye/Punk/internal/app"
	"github.com/dkeye/Punk/internal/core"
	"github.com/dkeye/Punk/internal/domain"
	"github.com/dkeye/Punk/internal/metrics"
	"github.com/rs/zerolog/log"
)

// Orchestrator is the surface the transport adapters talk to.
type Orchestrator struct {
	Registry *app.Registry
	Rooms    *app.RoomManager
	Users    *app.Users
	Presence *app.Presence
	Messages *app.Messages
	Inbox    *app.Inbox
	Policy   app.Policy
	Auth     core.AuthProvider
	Blobs    core.BlobStore
}

// New wires the engine around a shared change notifier.
func New(codeLen int, changes app.Changes, policy app.Policy, auth core.AuthProvider, blobs core.BlobStore) *Orchestrator {
	reg := app.NewRegistry()
	rooms := app.NewRoomManager(codeLen, changes)
	users := app.NewUsers(changes)
	return &Orchestrator{
		Registry: reg,
		Rooms:    rooms,
		Users:    users,
		Presence: &app.Presence{Registry: reg, Rooms: rooms, Users: users},
		Messages: &app.Messages{Rooms: rooms, Users: users, Blobs: blobs, Uploads: app.NewUploads(), Changes: changes},
		Inbox:    &app.Inbox{Rooms: rooms, Users: users},
		Policy:   policy,
		Auth:     auth,
		Blobs:    blobs,
	}
}

// Identify resolves a token and refreshes the cached user record.
func (o *Orchestrator) Identify(ctx context.Context, token string) (domain.User, error) {
	if o.Auth == nil || token == "" {
		return domain.User{}, core.ErrUnauthenticated
	}
	u, err := o.Auth.ResolveSession(ctx, token)
	if err != nil {
		return domain.User{}, fmt.Errorf("resolve session: %w", err)
	}
	return o.Users.Upsert(u), nil
}

// OnPublish applies the backpressure policy to connections that missed a frame.
func (o *Orchestrator) OnPublish(room core.RoomService, res core.PublishResult) {
	if len(res.Dropped) == 0 {
		return
	}
	metrics.BroadcastDropped.Add(float64(len(res.Dropped)))
	if o.Policy == nil || room == nil {
		return
	}
	for _, slow := range res.Dropped {
		switch o.Policy.OnBackPressure(room, slow) {
		case app.KickMember:
			log.Warn().Str("module", "orch").Str("room", string(room.Code())).Str("sid", string(slow.ID())).Msg("kicking slow member")
			o.KickBySID(slow.ID())
		case app.DropFrame, app.NoAction:
		}
	}
}

// KickBySID closes the connection; its read loop then reports the disconnect.
func (o *Orchestrator) KickBySID(sid core.SessionID) {
	if sess, ok := o.Registry.GetSession(sid); ok {
		sess.Signal().Close()
	}
}

func (o *Orchestrator) Stats() (rooms, connections int) {
	return o.Rooms.Count(), o.Registry.Count()
}
