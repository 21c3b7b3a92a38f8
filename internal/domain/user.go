// Package domain contains entities and the small pure helpers around them.
package domain

import (
	"errors"
	"math/rand/v2"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	MaxUserIDLen   = 36
	MaxUsernameLen = 36
)

var (
	ErrUsernameTooLong = errors.New("username too long")
	ErrUsernameEmpty   = errors.New("username empty")
)

type UserID string

// User is supplied by the auth provider. The engine only reads it.
type User struct {
	ID          UserID `json:"id"`
	DisplayName string `json:"display_name"`
	AvatarRef   string `json:"avatar,omitempty"`
	// NotificationsSeenAt is the last-checked watermark, seconds since epoch.
	NotificationsSeenAt float64 `json:"notifications_seen_at,omitempty"`
}

// NewUser creates a user with a fresh id. An empty name becomes an
// anonymous tripcode name.
func NewUser(displayName, avatar string) (*User, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = AnonymousName()
	}
	u := &User{ID: UserID(uuid.NewString()), AvatarRef: avatar}
	if err := u.SetDisplayName(displayName); err != nil {
		return nil, err
	}
	return u, nil
}

func (u *User) SetDisplayName(name string) error {
	if len(name) == 0 {
		return ErrUsernameEmpty
	}
	if utf8.RuneCountInString(name) > MaxUsernameLen {
		return ErrUsernameTooLong
	}
	u.DisplayName = name
	return nil
}

const tripAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// AnonymousName returns "Anonymous##" followed by an 8 character tripcode.
func AnonymousName() string {
	var b strings.Builder
	b.WriteString("Anonymous##")
	for range 8 {
		b.WriteByte(tripAlphabet[rand.IntN(len(tripAlphabet))])
	}
	return b.String()
}
