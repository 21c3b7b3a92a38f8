package core

import (
	"slices"
	"sync"

	"github.com/dkeye/Punk/internal/domain"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"
)

// roomImpl is a threadsafe in-memory room.
// All mutations and their fan-out happen under mu, so frames leave in
// the order the lock was acquired.
// It never closes adapter-owned resources.
type roomImpl struct {
	room   *domain.Room
	mu     sync.RWMutex
	bySID  map[SessionID]MemberSession
	closed bool
}

func NewRoomService(room *domain.Room) RoomService {
	if room.Messages == nil {
		room.Messages = []domain.Message{}
	}
	return &roomImpl{
		room:  room,
		bySID: make(map[SessionID]MemberSession),
	}
}

func (r *roomImpl) Code() domain.RoomCode { return r.room.Code }

func (r *roomImpl) Snapshot() domain.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.room.Clone()
}

func (r *roomImpl) Summary() RoomSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	head := *r.room
	head.Messages = nil
	head.Participants = slices.Clone(r.room.Participants)
	sum := RoomSummary{Room: head}
	if last, ok := r.room.LastMessage(); ok {
		last = last.Clone()
		sum.Last = &last
	}
	return sum
}

// CanJoin keeps private rooms to their two participants.
func (r *roomImpl) CanJoin(uid domain.UserID) bool {
	return !r.room.IsPrivate || r.room.HasParticipant(uid)
}

func (r *roomImpl) Info() RoomInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return RoomInfo{
		Code:    r.room.Code,
		Title:   r.room.Title,
		Members: r.room.Members,
		Public:  r.room.IsPublic,
		Private: r.room.IsPrivate,
	}
}

func (r *roomImpl) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.room.Members
}

func (r *roomImpl) Closed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.closed
}

func (r *roomImpl) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
}

func (r *roomImpl) Messages() []domain.Message {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Message, len(r.room.Messages))
	for i, m := range r.room.Messages {
		out[i] = m.Clone()
	}
	return out
}

func (r *roomImpl) AddMember(ms MemberSession) (PublishResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return PublishResult{}, ErrNotFound
	}
	sid := ms.ID()
	if _, ok := r.bySID[sid]; ok {
		return PublishResult{}, nil
	}
	r.bySID[sid] = ms
	r.room.Members++
	u := ms.Meta().User
	log.Info().Str("module", "core.room").Str("room", string(r.room.Code)).Str("sid", string(sid)).Str("user", string(u.ID)).Int("members", r.room.Members).Msg("member added")

	notice := domain.JoinNotice(u.DisplayName, domain.Now())
	return r.broadcastLocked(Event{Type: EventSystem, Room: r.room.Code, Message: &notice}), nil
}

func (r *roomImpl) RemoveMember(sid SessionID) RemoveResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	ms, ok := r.bySID[sid]
	if !ok {
		return RemoveResult{Members: r.room.Members}
	}
	delete(r.bySID, sid)
	r.room.Members = max(0, r.room.Members-1)
	res := RemoveResult{Removed: true, Members: r.room.Members}

	notice := domain.LeaveNotice(ms.Meta().User.DisplayName, domain.Now())
	res.Publish = r.broadcastLocked(Event{Type: EventSystem, Room: r.room.Code, Message: &notice})

	if r.room.Members <= 0 && r.room.Ephemeral() {
		r.closed = true
		res.Closed = true
	}
	log.Info().Str("module", "core.room").Str("room", string(r.room.Code)).Str("sid", string(sid)).Int("members", r.room.Members).Bool("closed", res.Closed).Msg("member removed")
	return res
}

// Post stamps msg with an id and the current time, appends it and fans it
// out to every connection in the room, the sender's included.
func (r *roomImpl) Post(msg domain.Message) (domain.Message, int, PublishResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return domain.Message{}, 0, PublishResult{}, ErrNotFound
	}
	msg.ID = ulid.Make().String()
	msg.Timestamp = domain.Now()
	r.room.Messages = append(r.room.Messages, msg)
	index := len(r.room.Messages) - 1

	out := msg.Clone()
	res := r.broadcastLocked(Event{Type: EventMessage, Room: r.room.Code, Index: &index, Message: &out})
	return msg.Clone(), index, res, nil
}

func (r *roomImpl) DeleteMessage(index int, expectedTS float64, by domain.UserID) (domain.Message, PublishResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || index < 0 || index >= len(r.room.Messages) {
		return domain.Message{}, PublishResult{}, ErrNotFound
	}
	orig := r.room.Messages[index]
	if orig.Timestamp != expectedTS {
		return domain.Message{}, PublishResult{}, ErrConflict
	}
	if !r.canDeleteLocked(orig, by) {
		return domain.Message{}, PublishResult{}, ErrUnauthorized
	}
	if orig.Deleted {
		return orig, PublishResult{}, nil
	}
	r.room.Messages[index] = domain.DeletedMarker(orig)
	log.Info().Str("module", "core.room").Str("room", string(r.room.Code)).Int("index", index).Str("by", string(by)).Msg("message deleted")

	res := r.broadcastLocked(Event{Type: EventDeleted, Room: r.room.Code, Index: &index, Timestamp: orig.Timestamp})
	return orig.Clone(), res, nil
}

func (r *roomImpl) canDeleteLocked(m domain.Message, by domain.UserID) bool {
	if by == "" {
		return false
	}
	return m.SenderUserID == by || r.room.CreatedBy == by || r.room.HasParticipant(by)
}

// broadcastLocked never blocks: a connection with a full buffer is
// reported in Dropped and skipped.
func (r *roomImpl) broadcastLocked(ev Event) PublishResult {
	res := PublishResult{}
	data, err := ev.Frame()
	if err != nil {
		log.Error().Err(err).Str("module", "core.room").Str("room", string(r.room.Code)).Msg("encode event")
		return res
	}
	for _, m := range r.bySID {
		if err := m.Signal().TrySend(data); err != nil {
			res.Dropped = append(res.Dropped, m)
			continue
		}
		res.SendTo++
	}
	log.Debug().Str("module", "core.room").Str("room", string(r.room.Code)).Str("event", string(ev.Type)).Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}

func (r *roomImpl) MembersSnapshot() []MemberDTO {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]MemberDTO, 0, len(r.bySID))
	for sid, ms := range r.bySID {
		u := ms.Meta().User
		out = append(out, MemberDTO{SID: sid, UserID: u.ID, DisplayName: u.DisplayName})
	}
	return out
}
