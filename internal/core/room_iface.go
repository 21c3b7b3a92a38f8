package core

import (
	"github.com/dkeye/Punk/internal/domain"
)

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SendTo  int
	Dropped []MemberSession
}

// RemoveResult describes what a disconnect did to the room.
type RemoveResult struct {
	Removed bool
	Members int
	// Closed is set when an ephemeral room lost its last member. The room
	// refuses further joins and must be dropped from the registry.
	Closed  bool
	Publish PublishResult
}

// MemberDTO is a read-only view for APIs (no transport fields).
type MemberDTO struct {
	SID         SessionID     `json:"sid"`
	UserID      domain.UserID `json:"id"`
	DisplayName string        `json:"display_name"`
}

// RoomService is the core-facing API of a live room.
// It owns the membership set and the message log but never touches
// transport resources beyond a non-blocking TrySend.
type RoomService interface {
	Code() domain.RoomCode
	Snapshot() domain.Room
	Info() RoomInfo
	MemberCount() int
	MembersSnapshot() []MemberDTO
	Summary() RoomSummary
	Messages() []domain.Message
	CanJoin(uid domain.UserID) bool
	Closed() bool

	AddMember(ms MemberSession) (PublishResult, error)
	RemoveMember(sid SessionID) RemoveResult
	Post(msg domain.Message) (domain.Message, int, PublishResult, error)
	DeleteMessage(index int, expectedTS float64, by domain.UserID) (domain.Message, PublishResult, error)
	Close()
}

// RoomSummary is a room header without its log, plus the newest
// message that was not deleted.
type RoomSummary struct {
	Room domain.Room
	Last *domain.Message
}

type RoomInfo struct {
	Code    domain.RoomCode `json:"code"`
	Title   string          `json:"title"`
	Members int             `json:"members"`
	Public  bool            `json:"public"`
	Private bool            `json:"private"`
}
