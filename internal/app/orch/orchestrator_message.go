package orch

import (
	"context"
	"io"

	"github.com/dkeye/Punk/internal/app"
	"github.com/dkeye/Punk/internal/domain"
)

func (o *Orchestrator) Send(uid domain.UserID, code domain.RoomCode, text string, att *domain.Attachment) (app.Sent, error) {
	sent, err := o.Messages.Send(uid, code, text, att)
	if err != nil {
		return app.Sent{}, err
	}
	o.OnPublish(sent.Room, sent.Publish)
	return sent, nil
}

// Upload stores a file in a room the user can see. The returned attachment
// can be posted once, by the same user.
func (o *Orchestrator) Upload(ctx context.Context, uid domain.UserID, code domain.RoomCode, r io.Reader, filename, mimeType string) (domain.Attachment, error) {
	if _, err := o.GetRoom(code, uid); err != nil {
		return domain.Attachment{}, err
	}
	return o.Messages.Upload(ctx, uid, code, r, filename, mimeType)
}

func (o *Orchestrator) DeleteMessage(ctx context.Context, uid domain.UserID, code domain.RoomCode, index int, expectedTS float64) error {
	room, res, err := o.Messages.Delete(ctx, uid, code, index, expectedTS)
	if err != nil {
		return err
	}
	o.OnPublish(room, res)
	return nil
}

// Feed is the ordered history used for the initial render of a room.
func (o *Orchestrator) Feed(code domain.RoomCode, viewer domain.UserID) ([]domain.Message, error) {
	if _, err := o.GetRoom(code, viewer); err != nil {
		return nil, err
	}
	return o.Messages.Feed(code)
}

func (o *Orchestrator) RecentChats(uid domain.UserID) []app.RecentChat {
	return o.Inbox.RecentChats(uid)
}

func (o *Orchestrator) Notifications(uid domain.UserID) []app.Notification {
	return o.Inbox.Notifications(uid)
}

func (o *Orchestrator) MarkNotificationsSeen(uid domain.UserID) error {
	return o.Users.MarkNotificationsSeen(uid, domain.Now())
}
