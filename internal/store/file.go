package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dkeye/Punk/internal/domain"
	"github.com/rs/zerolog/log"
)

const (
	roomsFile = "rooms.json"
	usersFile = "users.json"
)

// FileStore keeps each table in one JSON file inside dir.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		dir = "./data"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	log.Info().Str("module", "store.file").Str("dir", dir).Msg("file store ready")
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) LoadAllRooms(ctx context.Context) (map[domain.RoomCode]domain.Room, error) {
	rooms := make(map[domain.RoomCode]domain.Room)
	if err := s.read(roomsFile, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

func (s *FileStore) SaveAllRooms(ctx context.Context, rooms map[domain.RoomCode]domain.Room) error {
	return s.write(roomsFile, rooms)
}

func (s *FileStore) LoadAllUsers(ctx context.Context) (map[domain.UserID]domain.User, error) {
	users := make(map[domain.UserID]domain.User)
	if err := s.read(usersFile, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *FileStore) SaveAllUsers(ctx context.Context, users map[domain.UserID]domain.User) error {
	return s.write(usersFile, users)
}

func (s *FileStore) Close() error { return nil }

// read leaves v untouched when the file does not exist yet.
func (s *FileStore) read(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// write replaces name through a temp file and rename so a crash never
// leaves a half-written table behind.
func (s *FileStore) write(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(s.dir, name))
}
