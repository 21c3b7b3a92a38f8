package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/dkeye/Punk/internal/core"
	"github.com/dkeye/Punk/internal/domain"
	"github.com/dkeye/Punk/internal/metrics"
	"github.com/rs/zerolog/log"
)

// Messages validates, stores and fans out chat messages.
type Messages struct {
	Rooms   *RoomManager
	Users   *Users
	Blobs   core.BlobStore
	Uploads *Uploads
	Changes Changes
}

type Sent struct {
	Message domain.Message
	Index   int
	Room    core.RoomService
	Publish core.PublishResult
}

func (m *Messages) reject(reason string, err error) error {
	metrics.MessagesRejected.WithLabelValues(reason).Inc()
	return err
}

// Send appends a message to the room log and broadcasts it. Rejections
// leave the log untouched.
func (m *Messages) Send(uid domain.UserID, code domain.RoomCode, text string, att *domain.Attachment) (Sent, error) {
	room, ok := m.Rooms.GetRoom(code)
	if !ok {
		return Sent{}, m.reject("no_room", fmt.Errorf("%w: room %s", core.ErrNotFound, code))
	}
	user, ok := m.Users.Get(uid)
	if !ok {
		return Sent{}, m.reject("no_user", fmt.Errorf("%w: user %s", core.ErrNotFound, uid))
	}
	if !room.CanJoin(uid) {
		return Sent{}, m.reject("private", fmt.Errorf("%w: room %s is private", core.ErrUnauthorized, code))
	}
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) > domain.MaxMessageLen {
		return Sent{}, m.reject("too_long", fmt.Errorf("%w: message longer than %d", core.ErrValidation, domain.MaxMessageLen))
	}
	if text == "" && att == nil {
		return Sent{}, m.reject("empty", fmt.Errorf("%w: empty message", core.ErrValidation))
	}
	if att != nil {
		// only the stored metadata is kept; client supplied kind and url are ignored
		if att.StoredName == "" || m.Uploads == nil {
			return Sent{}, m.reject("bad_attachment", fmt.Errorf("%w: bad attachment", core.ErrValidation))
		}
		claimed, ok := m.Uploads.Claim(code, uid, att.StoredName)
		if !ok {
			return Sent{}, m.reject("bad_attachment", fmt.Errorf("%w: attachment %s was not uploaded by %s", core.ErrValidation, att.StoredName, uid))
		}
		att = &claimed
	}

	msg := domain.Message{
		Sender:       user.DisplayName,
		SenderUserID: user.ID,
		Avatar:       user.AvatarRef,
		Text:         text,
	}
	if att != nil {
		a := *att
		msg.Attachment = &a
	}
	stored, index, res, err := room.Post(msg)
	if err != nil {
		if att != nil {
			m.Uploads.Add(code, uid, *att)
		}
		return Sent{}, m.reject("no_room", fmt.Errorf("room %s: %w", code, err))
	}
	orNop(m.Changes).Request()

	info := room.Info()
	metrics.MessagesSent.WithLabelValues(metrics.RoomType(info.Public, info.Private)).Inc()
	log.Debug().Str("module", "app.messages").Str("room", string(code)).Str("user", string(uid)).Int("index", index).Msg("message sent")
	return Sent{Message: stored, Index: index, Room: room, Publish: res}, nil
}

// Upload stores a file for a later message in code. Only uid can attach it.
func (m *Messages) Upload(ctx context.Context, uid domain.UserID, code domain.RoomCode, r io.Reader, filename, mimeType string) (domain.Attachment, error) {
	if m.Blobs == nil || m.Uploads == nil {
		return domain.Attachment{}, fmt.Errorf("%w: uploads disabled", core.ErrValidation)
	}
	att, err := m.Blobs.StoreAttachment(ctx, code, r, filename, mimeType)
	if err != nil {
		return domain.Attachment{}, err
	}
	m.Uploads.Add(code, uid, att)
	return att, nil
}

// Delete soft-deletes the message at index once expectedTS still matches.
// Attachment bytes are removed after the room lock is released.
func (m *Messages) Delete(ctx context.Context, uid domain.UserID, code domain.RoomCode, index int, expectedTS float64) (core.RoomService, core.PublishResult, error) {
	room, ok := m.Rooms.GetRoom(code)
	if !ok {
		return nil, core.PublishResult{}, fmt.Errorf("%w: room %s", core.ErrNotFound, code)
	}
	orig, res, err := room.DeleteMessage(index, expectedTS, uid)
	if err != nil {
		return nil, core.PublishResult{}, fmt.Errorf("delete %s#%d: %w", code, index, err)
	}
	if orig.Deleted {
		return room, res, nil
	}
	orNop(m.Changes).Request()
	metrics.MessagesDeleted.Inc()

	if orig.Attachment != nil && m.Blobs != nil {
		if err := m.Blobs.DeleteAttachment(ctx, code, orig.Attachment.StoredName); err != nil {
			log.Error().Err(err).Str("module", "app.messages").Str("room", string(code)).Str("file", orig.Attachment.StoredName).Msg("attachment delete failed")
		}
	}
	return room, res, nil
}

// Feed returns the ordered message history of a room.
func (m *Messages) Feed(code domain.RoomCode) ([]domain.Message, error) {
	room, ok := m.Rooms.GetRoom(code)
	if !ok {
		return nil, fmt.Errorf("%w: room %s", core.ErrNotFound, code)
	}
	return room.Messages(), nil
}
