package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dkeye/Punk/internal/core"
	"github.com/dkeye/Punk/internal/core/mock"
	"github.com/dkeye/Punk/internal/domain"
	"go.uber.org/mock/gomock"
)

func feedLen(t *testing.T, e *engine, code domain.RoomCode) int {
	t.Helper()
	feed, err := e.messages.Feed(code)
	if err != nil {
		t.Fatal(err)
	}
	return len(feed)
}

func TestSendRejections(t *testing.T) {
	e := newEngine(t, nil)
	e.addUser("u1", "Ann")
	_, _ = e.rooms.CreateRoom("AAAAAA", "Lobby", true, "u1")

	tests := []struct {
		name string
		uid  domain.UserID
		code domain.RoomCode
		text string
		att  *domain.Attachment
		want error
	}{
		{"too long", "u1", "AAAAAA", strings.Repeat("a", domain.MaxMessageLen+1), nil, core.ErrValidation},
		{"empty", "u1", "AAAAAA", "", nil, core.ErrValidation},
		{"blank", "u1", "AAAAAA", "   \n\t", nil, core.ErrValidation},
		{"unknown user", "ghost", "AAAAAA", "hi", nil, core.ErrNotFound},
		{"missing room", "u1", "NOPE", "hi", nil, core.ErrNotFound},
		{"bad attachment", "u1", "AAAAAA", "", &domain.Attachment{Kind: "exe", StoredName: "x"}, core.ErrValidation},
		{"attachment never uploaded", "u1", "AAAAAA", "look", &domain.Attachment{Kind: domain.KindImage, StoredName: "abcd1234_cat.png"}, core.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := e.messages.Send(tt.uid, tt.code, tt.text, tt.att); !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
			if n := feedLen(t, e, "AAAAAA"); n != 0 {
				t.Fatalf("log length %d", n)
			}
		})
	}
}

func TestSendLimitAndTrim(t *testing.T) {
	e := newEngine(t, nil)
	e.addUser("u1", "Ann")
	_, _ = e.rooms.CreateRoom("AAAAAA", "Lobby", true, "u1")

	text := "  " + strings.Repeat("é", domain.MaxMessageLen) + "  "
	sent, err := e.messages.Send("u1", "AAAAAA", text, nil)
	if err != nil {
		t.Fatal(err)
	}
	if sent.Message.Text != strings.TrimSpace(text) || sent.Message.Sender != "Ann" {
		t.Fatalf("stored %+v", sent.Message)
	}

	att := &domain.Attachment{Kind: domain.KindImage, StoredName: "abcd1234_cat.png", MimeType: "image/png", URL: "/media/AAAAAA/abcd1234_cat.png"}
	e.messages.Uploads.Add("AAAAAA", "u1", *att)
	if _, err := e.messages.Send("u1", "AAAAAA", "", att); err != nil {
		t.Fatalf("attachment only: %v", err)
	}
	if n := feedLen(t, e, "AAAAAA"); n != 2 {
		t.Fatalf("log length %d", n)
	}
}

func TestSendReachesSender(t *testing.T) {
	e := newEngine(t, nil)
	e.addUser("u1", "Ann")
	_, _ = e.rooms.CreateRoom("AAAAAA", "Lobby", true, "u1")
	c := &fakeConn{}
	_, _, _ = e.presence.Connect("s1", "u1", "AAAAAA", c)

	sent, err := e.messages.Send("u1", "AAAAAA", "hello", nil)
	if err != nil {
		t.Fatal(err)
	}
	if sent.Publish.SendTo != 1 || c.count() != 2 {
		t.Fatalf("sent to %d, frames %d", sent.Publish.SendTo, c.count())
	}
}

func TestLobbyScenario(t *testing.T) {
	ctrl := gomock.NewController(t)
	blobs := mock.NewMockBlobStore(ctrl)
	blobs.EXPECT().DeleteAttachment(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	e := newEngine(t, blobs)
	e.addUser("U1", "U1")
	e.addUser("U2", "U2")
	if _, err := e.rooms.CreateRoom("AAAAAA", "Lobby", true, "U1"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := e.presence.Connect("c1", "U1", "AAAAAA", &fakeConn{}); err != nil {
		t.Fatal(err)
	}
	if _, err := e.messages.Send("U1", "AAAAAA", "hello", nil); err != nil {
		t.Fatal(err)
	}
	feed, _ := e.messages.Feed("AAAAAA")
	if len(feed) != 1 || feed[0].Sender != "U1" || feed[0].Text != "hello" || feed[0].Deleted {
		t.Fatalf("feed %+v", feed)
	}

	room, _ := e.rooms.GetRoom("AAAAAA")
	_, _, _ = e.presence.Connect("c2", "U2", "AAAAAA", &fakeConn{})
	if room.MemberCount() != 2 {
		t.Fatalf("members = %d", room.MemberCount())
	}
	e.presence.Disconnect("c2")
	if room.MemberCount() != 1 {
		t.Fatalf("members = %d", room.MemberCount())
	}
	if _, ok := e.rooms.GetRoom("AAAAAA"); !ok {
		t.Fatal("room removed")
	}

	if _, _, err := e.messages.Delete(context.Background(), "U1", "AAAAAA", 0, feed[0].Timestamp); err != nil {
		t.Fatal(err)
	}
	feed, _ = e.messages.Feed("AAAAAA")
	if len(feed) != 1 || !feed[0].Deleted {
		t.Fatalf("feed after delete %+v", feed)
	}
}

func TestDeleteRemovesAttachment(t *testing.T) {
	ctrl := gomock.NewController(t)
	blobs := mock.NewMockBlobStore(ctrl)
	blobs.EXPECT().DeleteAttachment(gomock.Any(), domain.RoomCode("AAAAAA"), "abcd1234_cat.png").Return(nil).Times(1)

	e := newEngine(t, blobs)
	e.addUser("u1", "Ann")
	_, _ = e.rooms.CreateRoom("AAAAAA", "Lobby", true, "u1")
	att := &domain.Attachment{Kind: domain.KindImage, StoredName: "abcd1234_cat.png", MimeType: "image/png"}
	e.messages.Uploads.Add("AAAAAA", "u1", *att)
	sent, err := e.messages.Send("u1", "AAAAAA", "look", att)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := e.messages.Delete(context.Background(), "u1", "AAAAAA", sent.Index, sent.Message.Timestamp); err != nil {
		t.Fatal(err)
	}
	// already deleted: no second blob call
	if _, _, err := e.messages.Delete(context.Background(), "u1", "AAAAAA", sent.Index, sent.Message.Timestamp); err != nil {
		t.Fatal(err)
	}
}

func TestDeleteGuards(t *testing.T) {
	ctrl := gomock.NewController(t)
	blobs := mock.NewMockBlobStore(ctrl)

	e := newEngine(t, blobs)
	e.addUser("owner", "Owner")
	e.addUser("u1", "Ann")
	e.addUser("u2", "Bob")
	_, _ = e.rooms.CreateRoom("AAAAAA", "Lobby", true, "owner")
	sent, _ := e.messages.Send("u1", "AAAAAA", "hello", nil)
	ctx := context.Background()

	if _, _, err := e.messages.Delete(ctx, "u1", "AAAAAA", 0, sent.Message.Timestamp-1); !errors.Is(err, core.ErrConflict) {
		t.Fatalf("stale timestamp: %v", err)
	}
	if _, _, err := e.messages.Delete(ctx, "u2", "AAAAAA", 0, sent.Message.Timestamp); !errors.Is(err, core.ErrUnauthorized) {
		t.Fatalf("stranger: %v", err)
	}
	feed, _ := e.messages.Feed("AAAAAA")
	if feed[0].Deleted || feed[0].Text != "hello" {
		t.Fatalf("log modified: %+v", feed)
	}
	if _, _, err := e.messages.Delete(ctx, "owner", "AAAAAA", 0, sent.Message.Timestamp); err != nil {
		t.Fatalf("creator: %v", err)
	}
	// repeating a delete is only a no-op for someone allowed to delete
	if _, _, err := e.messages.Delete(ctx, "u2", "AAAAAA", 0, sent.Message.Timestamp); !errors.Is(err, core.ErrUnauthorized) {
		t.Fatalf("stranger on deleted message: %v", err)
	}
	if _, _, err := e.messages.Delete(ctx, "u1", "AAAAAA", 0, sent.Message.Timestamp); err != nil {
		t.Fatalf("sender on deleted message: %v", err)
	}
}

func TestAttachmentBelongsToUploader(t *testing.T) {
	ctrl := gomock.NewController(t)
	blobs := mock.NewMockBlobStore(ctrl)
	stored := domain.Attachment{Kind: domain.KindFile, StoredName: "d39a7225_cat.txt", MimeType: "text/plain", URL: "/media/AAAAAA/d39a7225_cat.txt"}
	blobs.EXPECT().StoreAttachment(gomock.Any(), domain.RoomCode("AAAAAA"), gomock.Any(), "cat.txt", "text/plain").Return(stored, nil)
	blobs.EXPECT().DeleteAttachment(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	e := newEngine(t, blobs)
	e.addUser("alice", "Alice")
	e.addUser("bob", "Bob")
	_, _ = e.rooms.CreateRoom("AAAAAA", "Lobby", true, "owner")
	ctx := context.Background()

	att, err := e.messages.Upload(ctx, "alice", "AAAAAA", strings.NewReader("meow"), "cat.txt", "text/plain")
	if err != nil {
		t.Fatal(err)
	}

	forged := &domain.Attachment{Kind: domain.KindFile, StoredName: att.StoredName, URL: "https://evil.example/x"}
	if _, err := e.messages.Send("bob", "AAAAAA", "mine now", forged); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("foreign attachment: %v", err)
	}

	sent, err := e.messages.Send("alice", "AAAAAA", "", &domain.Attachment{Kind: domain.KindImage, StoredName: att.StoredName, URL: "https://evil.example/x"})
	if err != nil {
		t.Fatal(err)
	}
	if *sent.Message.Attachment != stored {
		t.Fatalf("attachment not taken from the store: %+v", sent.Message.Attachment)
	}

	if _, err := e.messages.Send("alice", "AAAAAA", "again", &domain.Attachment{Kind: domain.KindFile, StoredName: att.StoredName}); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("attachment reused: %v", err)
	}
	if n := feedLen(t, e, "AAAAAA"); n != 1 {
		t.Fatalf("log length %d", n)
	}
}
