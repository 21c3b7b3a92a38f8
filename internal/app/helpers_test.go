package app

import (
	"sync"
	"testing"

	"github.com/dkeye/Punk/internal/core"
	"github.com/dkeye/Punk/internal/domain"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
	closed bool
}

func (c *fakeConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return core.ErrConnClosed
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *fakeConn) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}

type countingChanges struct {
	mu sync.Mutex
	n  int
}

func (c *countingChanges) Request() {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
}

func (c *countingChanges) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

type engine struct {
	rooms    *RoomManager
	users    *Users
	registry *Registry
	presence *Presence
	messages *Messages
	inbox    *Inbox
	changes  *countingChanges
}

func newEngine(t *testing.T, blobs core.BlobStore) *engine {
	t.Helper()
	ch := &countingChanges{}
	rooms := NewRoomManager(DefaultCodeLength, ch)
	users := NewUsers(ch)
	reg := NewRegistry()
	return &engine{
		rooms:    rooms,
		users:    users,
		registry: reg,
		presence: &Presence{Registry: reg, Rooms: rooms, Users: users},
		messages: &Messages{Rooms: rooms, Users: users, Blobs: blobs, Uploads: NewUploads(), Changes: ch},
		inbox:    &Inbox{Rooms: rooms, Users: users},
		changes:  ch,
	}
}

func (e *engine) addUser(id, name string) domain.User {
	return e.users.Upsert(domain.User{ID: domain.UserID(id), DisplayName: name})
}
