package app

import (
	"sync"

	"github.com/dkeye/Punk/internal/core"
	"github.com/dkeye/Punk/internal/domain"
	"github.com/rs/zerolog/log"
)

type sessionEntry struct {
	UserID  domain.UserID
	Room    core.RoomService
	Session core.MemberSession
}

// Registry maps live connections to their user and room.
type Registry struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*sessionEntry
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[core.SessionID]*sessionEntry),
	}
}

// Bind registers sid. It reports false when sid is already bound.
func (r *Registry) Bind(sess core.MemberSession, room core.RoomService) bool {
	sid := sess.ID()
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[sid]; ok {
		return false
	}
	r.sessions[sid] = &sessionEntry{
		UserID:  sess.Meta().User.ID,
		Room:    room,
		Session: sess,
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(room.Code())).Msg("bound session")
	return true
}

// Unbind removes sid and returns what it was bound to. A second call for
// the same sid reports false.
func (r *Registry) Unbind(sid core.SessionID) (sessionEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok {
		return sessionEntry{}, false
	}
	delete(r.sessions, sid)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("unbind session")
	return *e, true
}

func (r *Registry) GetSession(sid core.SessionID) (core.MemberSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[sid]; ok {
		return e.Session, true
	}
	return nil, false
}

type regSnap struct {
	SID     core.SessionID
	Session core.MemberSession
}

func (r *Registry) MembersOfRoom(code domain.RoomCode) []regSnap {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]regSnap, 0)
	for sid, e := range r.sessions {
		if e.Room.Code() == code {
			out = append(out, regSnap{SID: sid, Session: e.Session})
		}
	}
	return out
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
