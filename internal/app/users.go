package app

import (
	"fmt"
	"sync"

	"github.com/dkeye/Punk/internal/core"
	"github.com/dkeye/Punk/internal/domain"
	"github.com/rs/zerolog/log"
)

// Users caches identities handed over by the auth provider together with
// the per-user notification watermark.
type Users struct {
	mu      sync.RWMutex
	users   map[domain.UserID]domain.User
	changes Changes
}

func NewUsers(changes Changes) *Users {
	return &Users{
		users:   make(map[domain.UserID]domain.User),
		changes: orNop(changes),
	}
}

func (u *Users) Get(id domain.UserID) (domain.User, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	user, ok := u.users[id]
	return user, ok
}

// Upsert refreshes profile fields and keeps the stored watermark.
func (u *Users) Upsert(user domain.User) domain.User {
	u.mu.Lock()
	prev, ok := u.users[user.ID]
	if ok {
		user.NotificationsSeenAt = prev.NotificationsSeenAt
		if prev == user {
			u.mu.Unlock()
			return user
		}
	}
	u.users[user.ID] = user
	u.mu.Unlock()

	log.Debug().Str("module", "app.users").Str("user", string(user.ID)).Bool("new", !ok).Msg("user stored")
	u.changes.Request()
	return user
}

// MarkNotificationsSeen moves the watermark forward; it never moves back.
func (u *Users) MarkNotificationsSeen(id domain.UserID, ts float64) error {
	u.mu.Lock()
	user, ok := u.users[id]
	if !ok {
		u.mu.Unlock()
		return fmt.Errorf("%w: user %s", core.ErrNotFound, id)
	}
	if ts <= user.NotificationsSeenAt {
		u.mu.Unlock()
		return nil
	}
	user.NotificationsSeenAt = ts
	u.users[id] = user
	u.mu.Unlock()

	u.changes.Request()
	return nil
}

func (u *Users) Snapshot() map[domain.UserID]domain.User {
	u.mu.RLock()
	defer u.mu.RUnlock()
	out := make(map[domain.UserID]domain.User, len(u.users))
	for id, user := range u.users {
		out[id] = user
	}
	return out
}

func (u *Users) Load(users map[domain.UserID]domain.User) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.users = make(map[domain.UserID]domain.User, len(users))
	for id, user := range users {
		user.ID = id
		u.users[id] = user
	}
	log.Info().Str("module", "app.users").Int("users", len(u.users)).Msg("users loaded")
}
