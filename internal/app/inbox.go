package app

import (
	"cmp"
	"slices"

	"github.com/dkeye/Punk/internal/domain"
)

const NoMessagesPreview = "No messages yet"

type RecentChat struct {
	RoomCode    domain.RoomCode `json:"room_code"`
	UserID      domain.UserID   `json:"user_id"`
	DisplayName string          `json:"display_name"`
	Avatar      string          `json:"avatar,omitempty"`
	Preview     string          `json:"preview"`
	Timestamp   float64         `json:"timestamp"`
}

type Notification struct {
	RoomCode   domain.RoomCode `json:"room_code"`
	FromUserID domain.UserID   `json:"from_user_id"`
	FromUser   string          `json:"from_user"`
	Preview    string          `json:"preview"`
	Timestamp  float64         `json:"timestamp"`
}

// Inbox projects private rooms into per-user views. Nothing is cached and
// reads never write.
type Inbox struct {
	Rooms *RoomManager
	Users *Users
}

func (i *Inbox) RecentChats(uid domain.UserID) []RecentChat {
	out := make([]RecentChat, 0)
	for _, sum := range i.Rooms.PrivateRoomsOf(uid) {
		other, ok := sum.Room.OtherParticipant(uid)
		if !ok {
			continue
		}
		chat := RecentChat{
			RoomCode:  sum.Room.Code,
			UserID:    other,
			Preview:   NoMessagesPreview,
			Timestamp: sum.Room.CreatedAt,
		}
		if u, ok := i.Users.Get(other); ok {
			chat.DisplayName = u.DisplayName
			chat.Avatar = u.AvatarRef
		}
		if sum.Last != nil {
			chat.Preview = sum.Last.Preview(domain.PreviewLen)
			chat.Timestamp = sum.Last.Timestamp
		}
		out = append(out, chat)
	}
	slices.SortFunc(out, func(a, b RecentChat) int { return cmp.Compare(b.Timestamp, a.Timestamp) })
	return out
}

func (i *Inbox) Notifications(uid domain.UserID) []Notification {
	out := make([]Notification, 0)
	user, ok := i.Users.Get(uid)
	if !ok {
		return out
	}
	for _, sum := range i.Rooms.PrivateRoomsOf(uid) {
		last := sum.Last
		if last == nil || last.SenderUserID == uid || last.Timestamp <= user.NotificationsSeenAt {
			continue
		}
		out = append(out, Notification{
			RoomCode:   sum.Room.Code,
			FromUserID: last.SenderUserID,
			FromUser:   last.Sender,
			Preview:    last.Preview(domain.PreviewLen),
			Timestamp:  last.Timestamp,
		})
	}
	slices.SortFunc(out, func(a, b Notification) int { return cmp.Compare(b.Timestamp, a.Timestamp) })
	return out
}
