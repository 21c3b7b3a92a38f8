package domain

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

const privatePrefix = "private_"

var ErrSameParticipant = errors.New("private room needs two distinct users")

type RoomCode string

type Room struct {
	Code         RoomCode `json:"code"`
	Title        string   `json:"title"`
	IsPublic     bool     `json:"public"`
	IsPrivate    bool     `json:"private"`
	Participants []UserID `json:"participants,omitempty"`
	// Members counts live connections. It is reset to 0 on load.
	Members   int       `json:"members"`
	Messages  []Message `json:"messages"`
	CreatedBy UserID    `json:"created_by,omitempty"`
	CreatedAt float64   `json:"created_at"`
}

// Ephemeral rooms are removed as soon as the last connection leaves.
func (r *Room) Ephemeral() bool { return !r.IsPublic && !r.IsPrivate }

func (r *Room) HasParticipant(uid UserID) bool {
	return r.IsPrivate && slices.Contains(r.Participants, uid)
}

// OtherParticipant returns the participant of a private room that is not uid.
func (r *Room) OtherParticipant(uid UserID) (UserID, bool) {
	if !r.HasParticipant(uid) {
		return "", false
	}
	for _, p := range r.Participants {
		if p != uid {
			return p, true
		}
	}
	return "", false
}

// LastMessage returns the newest message that was not deleted.
func (r *Room) LastMessage() (Message, bool) {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if !r.Messages[i].Deleted {
			return r.Messages[i], true
		}
	}
	return Message{}, false
}

// Clone returns a deep copy that is safe to hand out of a lock.
func (r *Room) Clone() Room {
	out := *r
	out.Participants = slices.Clone(r.Participants)
	out.Messages = make([]Message, len(r.Messages))
	for i, m := range r.Messages {
		out.Messages[i] = m.Clone()
	}
	return out
}

func DefaultTitle(code RoomCode) string { return fmt.Sprintf("Room %s", code) }

func PrivateTitle(otherName string) string { return "Chat with " + otherName }

// PrivateRoomCode is order independent: both participants resolve to the same code.
func PrivateRoomCode(a, b UserID) (RoomCode, error) {
	if a == b {
		return "", ErrSameParticipant
	}
	lo, hi := a, b
	if hi < lo {
		lo, hi = hi, lo
	}
	return RoomCode(fmt.Sprintf("%s%s_%s", privatePrefix, lo, hi)), nil
}

// Now returns the current time in fractional seconds since epoch.
func Now() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}
