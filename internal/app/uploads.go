package app

import (
	"sync"

	"github.com/dkeye/Punk/internal/domain"
)

type uploadKey struct {
	room domain.RoomCode
	name string
}

type pendingUpload struct {
	owner domain.UserID
	att   domain.Attachment
}

// Uploads remembers stored files that were uploaded but not yet posted.
// A file can be attached once, by the user who uploaded it, and the
// attachment is always the one the blob store returned.
type Uploads struct {
	mu      sync.Mutex
	pending map[uploadKey]pendingUpload
}

func NewUploads() *Uploads {
	return &Uploads{pending: make(map[uploadKey]pendingUpload)}
}

func (u *Uploads) Add(room domain.RoomCode, owner domain.UserID, att domain.Attachment) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.pending[uploadKey{room, att.StoredName}] = pendingUpload{owner: owner, att: att}
}

// Claim hands out the stored attachment for name and forgets it. Unknown
// names and files uploaded by someone else report false.
func (u *Uploads) Claim(room domain.RoomCode, owner domain.UserID, name string) (domain.Attachment, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	key := uploadKey{room, name}
	p, ok := u.pending[key]
	if !ok || p.owner != owner {
		return domain.Attachment{}, false
	}
	delete(u.pending, key)
	return p.att, true
}
