package core

import (
	"context"

	"github.com/dkeye/Punk/internal/domain"
)

// Store persists whole-table snapshots. Saves replace the previous table.
type Store interface {
	LoadAllRooms(ctx context.Context) (map[domain.RoomCode]domain.Room, error)
	SaveAllRooms(ctx context.Context, rooms map[domain.RoomCode]domain.Room) error
	LoadAllUsers(ctx context.Context) (map[domain.UserID]domain.User, error)
	SaveAllUsers(ctx context.Context, users map[domain.UserID]domain.User) error
	Close() error
}
