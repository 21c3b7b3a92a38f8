package core

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/dkeye/Punk/internal/domain"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []Frame
	full   bool
}

func (c *fakeConn) TrySend(f Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.full {
		return ErrBackpressure
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *fakeConn) Close() {}

func (c *fakeConn) events(t *testing.T) []Event {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, 0, len(c.frames))
	for _, f := range c.frames {
		var ev Event
		if err := json.Unmarshal(f, &ev); err != nil {
			t.Fatal(err)
		}
		out = append(out, ev)
	}
	return out
}

func member(sid string, uid domain.UserID, name string, conn SignalConnection) MemberSession {
	return NewMemberSession(SessionID(sid), domain.NewMember(domain.User{ID: uid, DisplayName: name}, 0), conn)
}

func TestRoomJoinBroadcastIncludesJoiner(t *testing.T) {
	r := NewRoomService(&domain.Room{Code: "ABCDEF"})
	c1 := &fakeConn{}
	if _, err := r.AddMember(member("s1", "u1", "Ann", c1)); err != nil {
		t.Fatal(err)
	}
	evs := c1.events(t)
	if len(evs) != 1 || evs[0].Type != EventSystem || evs[0].Message.Text != "Ann entered the room" {
		t.Fatalf("unexpected events %+v", evs)
	}
	if r.MemberCount() != 1 {
		t.Fatalf("members = %d", r.MemberCount())
	}
}

func TestRoomEphemeralClosesWhenEmpty(t *testing.T) {
	r := NewRoomService(&domain.Room{Code: "ABCDEF"})
	_, _ = r.AddMember(member("s1", "u1", "Ann", &fakeConn{}))
	_, _ = r.AddMember(member("s2", "u1", "Ann", &fakeConn{}))

	res := r.RemoveMember("s1")
	if !res.Removed || res.Closed || res.Members != 1 {
		t.Fatalf("first remove %+v", res)
	}
	res = r.RemoveMember("s2")
	if !res.Closed || res.Members != 0 {
		t.Fatalf("second remove %+v", res)
	}
	res = r.RemoveMember("s2")
	if res.Removed || res.Members != 0 {
		t.Fatalf("double remove %+v", res)
	}
	if _, err := r.AddMember(member("s3", "u2", "Bob", &fakeConn{})); !errors.Is(err, ErrNotFound) {
		t.Fatalf("join closed room: %v", err)
	}
}

func TestRoomPublicStaysOpen(t *testing.T) {
	r := NewRoomService(&domain.Room{Code: "ABCDEF", IsPublic: true})
	_, _ = r.AddMember(member("s1", "u1", "Ann", &fakeConn{}))
	res := r.RemoveMember("s1")
	if res.Closed || r.Closed() || r.MemberCount() != 0 {
		t.Fatalf("public room closed: %+v", res)
	}
}

func TestRoomPostReportsDropped(t *testing.T) {
	r := NewRoomService(&domain.Room{Code: "ABCDEF", IsPublic: true})
	ok := &fakeConn{}
	slow := &fakeConn{}
	_, _ = r.AddMember(member("s1", "u1", "Ann", ok))
	_, _ = r.AddMember(member("s2", "u2", "Bob", slow))
	slow.full = true

	msg, index, res, err := r.Post(domain.Message{Sender: "Ann", SenderUserID: "u1", Text: "hi"})
	if err != nil {
		t.Fatal(err)
	}
	if index != 0 || msg.ID == "" || msg.Timestamp == 0 {
		t.Fatalf("bad stored message %+v at %d", msg, index)
	}
	if res.SendTo != 1 || len(res.Dropped) != 1 || res.Dropped[0].ID() != "s2" {
		t.Fatalf("unexpected publish result %+v", res)
	}
}

func TestRoomDeleteMessage(t *testing.T) {
	r := NewRoomService(&domain.Room{Code: "ABCDEF", IsPublic: true, CreatedBy: "owner"})
	msg, _, _, _ := r.Post(domain.Message{Sender: "Ann", SenderUserID: "u1", Text: "hi"})

	if _, _, err := r.DeleteMessage(0, msg.Timestamp+1, "u1"); !errors.Is(err, ErrConflict) {
		t.Fatalf("stale timestamp: %v", err)
	}
	if _, _, err := r.DeleteMessage(0, msg.Timestamp, "stranger"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("stranger: %v", err)
	}
	if _, _, err := r.DeleteMessage(5, msg.Timestamp, "u1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("out of range: %v", err)
	}
	if got := r.Messages()[0]; got.Deleted {
		t.Fatal("message changed by rejected deletes")
	}
	if _, _, err := r.DeleteMessage(0, msg.Timestamp, "owner"); err != nil {
		t.Fatalf("creator delete: %v", err)
	}
	got := r.Messages()
	if len(got) != 1 || !got[0].Deleted || got[0].Timestamp != msg.Timestamp {
		t.Fatalf("bad marker %+v", got)
	}
	if _, _, err := r.DeleteMessage(0, msg.Timestamp, "stranger"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("stranger on deleted message: %v", err)
	}
	if _, res, err := r.DeleteMessage(0, msg.Timestamp, "u1"); err != nil || res.SendTo != 0 {
		t.Fatalf("repeat delete by sender: %v %+v", err, res)
	}
}

func TestRoomDeleteByPrivateParticipant(t *testing.T) {
	r := NewRoomService(&domain.Room{Code: "private_a_b", IsPrivate: true, Participants: []domain.UserID{"a", "b"}, CreatedBy: "a"})
	msg, _, _, _ := r.Post(domain.Message{Sender: "A", SenderUserID: "a", Text: "hi"})
	if _, _, err := r.DeleteMessage(0, msg.Timestamp, "b"); err != nil {
		t.Fatalf("participant delete: %v", err)
	}
}
