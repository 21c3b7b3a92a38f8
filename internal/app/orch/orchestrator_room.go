package orch

import (
	"fmt"

	"github.com/dkeye/Punk/internal/core"
	"github.com/dkeye/Punk/internal/domain"
	"github.com/rs/zerolog/log"
)

// RoomView is a room as one viewer sees it.
type RoomView struct {
	core.RoomInfo
	Participants []domain.UserID  `json:"participants,omitempty"`
	CreatedBy    domain.UserID    `json:"created_by,omitempty"`
	CreatedAt    float64          `json:"created_at"`
	Online       []core.MemberDTO `json:"online"`
}

func (o *Orchestrator) CreateRoom(code domain.RoomCode, title string, isPublic bool, creator domain.UserID) (RoomView, error) {
	room, err := o.Rooms.CreateRoom(code, title, isPublic, creator)
	if err != nil {
		return RoomView{}, err
	}
	return o.view(room, creator), nil
}

func (o *Orchestrator) GetRoom(code domain.RoomCode, viewer domain.UserID) (RoomView, error) {
	room, ok := o.Rooms.GetRoom(code)
	if !ok {
		return RoomView{}, fmt.Errorf("%w: room %s", core.ErrNotFound, code)
	}
	if !room.CanJoin(viewer) {
		return RoomView{}, fmt.Errorf("%w: room %s is private", core.ErrUnauthorized, code)
	}
	return o.view(room, viewer), nil
}

// view titles private rooms after the other participant's current name.
func (o *Orchestrator) view(room core.RoomService, viewer domain.UserID) RoomView {
	sum := room.Summary()
	v := RoomView{
		RoomInfo:     room.Info(),
		Participants: sum.Room.Participants,
		CreatedBy:    sum.Room.CreatedBy,
		CreatedAt:    sum.Room.CreatedAt,
		Online:       room.MembersSnapshot(),
	}
	if other, ok := sum.Room.OtherParticipant(viewer); ok {
		if u, ok := o.Users.Get(other); ok {
			v.Title = domain.PrivateTitle(u.DisplayName)
		}
	}
	return v
}

func (o *Orchestrator) ListPublicRooms() []core.RoomInfo {
	return o.Rooms.ListPublicRooms()
}

func (o *Orchestrator) SearchPublicRooms(query string) []core.RoomInfo {
	return o.Rooms.SearchPublicRooms(query)
}

// OpenPrivateRoom returns the 1:1 room between uid and other, creating it once.
func (o *Orchestrator) OpenPrivateRoom(uid, other domain.UserID) (RoomView, error) {
	me, ok := o.Users.Get(uid)
	if !ok {
		return RoomView{}, fmt.Errorf("%w: user %s", core.ErrNotFound, uid)
	}
	them, ok := o.Users.Get(other)
	if !ok {
		return RoomView{}, fmt.Errorf("%w: user %s", core.ErrNotFound, other)
	}
	room, _, err := o.Rooms.GetOrCreatePrivateRoom(me, them)
	if err != nil {
		return RoomView{}, err
	}
	return o.view(room, uid), nil
}

// EvictRoom closes every connection in the room and deletes it.
func (o *Orchestrator) EvictRoom(code domain.RoomCode) {
	for _, snap := range o.Registry.MembersOfRoom(code) {
		o.KickBySID(snap.SID)
	}
	o.Rooms.DeleteRoom(code)
}

// Connect joins a live connection to a room.
func (o *Orchestrator) Connect(sid core.SessionID, uid domain.UserID, code domain.RoomCode, conn core.SignalConnection) error {
	room, res, err := o.Presence.Connect(sid, uid, code, conn)
	if err != nil {
		log.Info().Err(err).Str("module", "orch").Str("sid", string(sid)).Str("room", string(code)).Msg("connect rejected")
		return err
	}
	o.OnPublish(room, res)
	return nil
}

// Disconnect is safe to call for any sid, any number of times.
func (o *Orchestrator) Disconnect(sid core.SessionID) {
	room, res := o.Presence.Disconnect(sid)
	o.OnPublish(room, res)
}
