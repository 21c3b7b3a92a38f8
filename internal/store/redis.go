package store

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/dkeye/Punk/internal/domain"
)

const (
	roomsKey = "punk:rooms"
	usersKey = "punk:users"
)

// RedisStore keeps each table in one hash, field per row.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) LoadAllRooms(ctx context.Context) (map[domain.RoomCode]domain.Room, error) {
	rows, err := s.client.HGetAll(ctx, roomsKey).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[domain.RoomCode]domain.Room, len(rows))
	for k, doc := range rows {
		room, err := decodeRow[domain.Room](k, []byte(doc))
		if err != nil {
			return nil, err
		}
		out[domain.RoomCode(k)] = room
	}
	return out, nil
}

func (s *RedisStore) SaveAllRooms(ctx context.Context, rooms map[domain.RoomCode]domain.Room) error {
	rows, err := encodeTable(rooms)
	if err != nil {
		return err
	}
	return s.replaceHash(ctx, roomsKey, rows)
}

func (s *RedisStore) LoadAllUsers(ctx context.Context) (map[domain.UserID]domain.User, error) {
	rows, err := s.client.HGetAll(ctx, usersKey).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[domain.UserID]domain.User, len(rows))
	for k, doc := range rows {
		user, err := decodeRow[domain.User](k, []byte(doc))
		if err != nil {
			return nil, err
		}
		out[domain.UserID(k)] = user
	}
	return out, nil
}

func (s *RedisStore) SaveAllUsers(ctx context.Context, users map[domain.UserID]domain.User) error {
	rows, err := encodeTable(users)
	if err != nil {
		return err
	}
	return s.replaceHash(ctx, usersKey, rows)
}

// replaceHash drops and refills key inside MULTI/EXEC.
func (s *RedisStore) replaceHash(ctx context.Context, key string, rows map[string][]byte) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(rows) == 0 {
			return nil
		}
		fields := make([]any, 0, len(rows)*2)
		for k, doc := range rows {
			fields = append(fields, k, doc)
		}
		pipe.HSet(ctx, key, fields...)
		return nil
	})
	return err
}
