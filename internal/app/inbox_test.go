package app

import (
	"testing"
)

func TestRecentChats(t *testing.T) {
	e := newEngine(t, nil)
	a := e.addUser("a", "Ann")
	b := e.addUser("b", "Bob")
	c := e.addUser("c", "Cid")

	ab, _, _ := e.rooms.GetOrCreatePrivateRoom(a, b)
	ac, _, _ := e.rooms.GetOrCreatePrivateRoom(c, a)
	if _, err := e.messages.Send("b", ab.Code(), "hi Ann", nil); err != nil {
		t.Fatal(err)
	}

	chats := e.inbox.RecentChats("a")
	if len(chats) != 2 {
		t.Fatalf("chats %+v", chats)
	}
	if chats[0].RoomCode != ab.Code() || chats[0].DisplayName != "Bob" || chats[0].Preview != "hi Ann" {
		t.Fatalf("first chat %+v", chats[0])
	}
	if chats[1].RoomCode != ac.Code() || chats[1].DisplayName != "Cid" || chats[1].Preview != NoMessagesPreview {
		t.Fatalf("second chat %+v", chats[1])
	}
	if chats[1].Timestamp != ac.Summary().Room.CreatedAt {
		t.Fatalf("empty chat should carry creation time")
	}
	if got := e.inbox.RecentChats("b"); len(got) != 1 || got[0].UserID != "a" {
		t.Fatalf("bob chats %+v", got)
	}
}

func TestNotifications(t *testing.T) {
	e := newEngine(t, nil)
	a := e.addUser("a", "Ann")
	b := e.addUser("b", "Bob")
	room, _, _ := e.rooms.GetOrCreatePrivateRoom(a, b)

	if _, err := e.messages.Send("b", room.Code(), "ping", nil); err != nil {
		t.Fatal(err)
	}
	notes := e.inbox.Notifications("a")
	if len(notes) != 1 || notes[0].FromUserID != "b" || notes[0].FromUser != "Bob" || notes[0].Preview != "ping" {
		t.Fatalf("notifications %+v", notes)
	}
	// reading does not advance the watermark
	if again := e.inbox.Notifications("a"); len(again) != 1 {
		t.Fatalf("second read %+v", again)
	}
	// own message is never a notification
	if got := e.inbox.Notifications("b"); len(got) != 0 {
		t.Fatalf("sender notified %+v", got)
	}

	if err := e.users.MarkNotificationsSeen("a", notes[0].Timestamp); err != nil {
		t.Fatal(err)
	}
	if got := e.inbox.Notifications("a"); len(got) != 0 {
		t.Fatalf("after watermark %+v", got)
	}

	if _, err := e.messages.Send("a", room.Code(), "pong", nil); err != nil {
		t.Fatal(err)
	}
	if got := e.inbox.Notifications("a"); len(got) != 0 {
		t.Fatalf("last message is mine %+v", got)
	}
}
