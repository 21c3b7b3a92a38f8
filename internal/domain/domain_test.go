package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestPrivateRoomCodeOrderIndependent(t *testing.T) {
	ab, err := PrivateRoomCode("alice", "bob")
	if err != nil {
		t.Fatal(err)
	}
	ba, err := PrivateRoomCode("bob", "alice")
	if err != nil {
		t.Fatal(err)
	}
	if ab != ba {
		t.Fatalf("codes differ: %s vs %s", ab, ba)
	}
	if ab != "private_alice_bob" {
		t.Fatalf("unexpected code %s", ab)
	}
}

func TestPrivateRoomCodeSameUser(t *testing.T) {
	if _, err := PrivateRoomCode("u1", "u1"); !errors.Is(err, ErrSameParticipant) {
		t.Fatalf("expected ErrSameParticipant, got %v", err)
	}
}

func TestAnonymousName(t *testing.T) {
	name := AnonymousName()
	if !strings.HasPrefix(name, "Anonymous##") {
		t.Fatalf("bad prefix: %s", name)
	}
	if got := len(strings.TrimPrefix(name, "Anonymous##")); got != 8 {
		t.Fatalf("tripcode length %d", got)
	}
}

func TestNewUser(t *testing.T) {
	u, err := NewUser("  ", "")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(u.DisplayName, "Anonymous##") {
		t.Fatalf("expected anonymous name, got %q", u.DisplayName)
	}
	if u.ID == "" {
		t.Fatal("empty id")
	}
	if _, err := NewUser(strings.Repeat("x", MaxUsernameLen+1), ""); !errors.Is(err, ErrUsernameTooLong) {
		t.Fatalf("expected ErrUsernameTooLong, got %v", err)
	}
}

func TestMessagePreview(t *testing.T) {
	m := Message{Text: strings.Repeat("é", 150)}
	if got := []rune(m.Preview(PreviewLen)); len(got) != PreviewLen {
		t.Fatalf("preview runes = %d", len(got))
	}
	att := Message{Attachment: &Attachment{Kind: KindImage}}
	if got := att.Preview(PreviewLen); got != "[image]" {
		t.Fatalf("attachment preview = %q", got)
	}
}

func TestDeletedMarkerKeepsAddress(t *testing.T) {
	m := Message{ID: "x", Sender: "u", SenderUserID: "u1", Text: "hi", Timestamp: 12.5, Attachment: &Attachment{Kind: KindFile}}
	d := DeletedMarker(m)
	if !d.Deleted || d.Timestamp != m.Timestamp || d.ID != m.ID || d.Attachment != nil || d.SenderUserID != "u1" || d.Text != DeletedNotice {
		t.Fatalf("bad marker %+v", d)
	}
}

func TestRoomLastMessageSkipsDeleted(t *testing.T) {
	r := Room{Messages: []Message{{Text: "a", Timestamp: 1}, DeletedMarker(Message{Text: "b", Timestamp: 2})}}
	m, ok := r.LastMessage()
	if !ok || m.Text != "a" {
		t.Fatalf("got %+v %v", m, ok)
	}
}
