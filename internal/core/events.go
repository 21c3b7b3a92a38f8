package core

import (
	"encoding/json"

	"github.com/dkeye/Punk/internal/domain"
)

type EventType string

const (
	EventSystem  EventType = "system"
	EventMessage EventType = "message"
	EventDeleted EventType = "message_deleted"
)

// Event is the server to client envelope for room traffic.
type Event struct {
	Type      EventType       `json:"type"`
	Room      domain.RoomCode `json:"room"`
	Index     *int            `json:"index,omitempty"`
	Timestamp float64         `json:"timestamp,omitempty"`
	Message   *domain.Message `json:"message,omitempty"`
}

func (e Event) Frame() (Frame, error) {
	return json.Marshal(e)
}
