package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dkeye/Punk/internal/domain"
)

// PostgresStore keeps the snapshot tables as JSONB rows.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	s := &PostgresStore{pool: pool}
	if err := s.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) initSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
	CREATE TABLE IF NOT EXISTS punk_rooms (
		code TEXT PRIMARY KEY,
		doc  JSONB NOT NULL
	);
	CREATE TABLE IF NOT EXISTS punk_users (
		id  TEXT PRIMARY KEY,
		doc JSONB NOT NULL
	);`)
	return err
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) LoadAllRooms(ctx context.Context) (map[domain.RoomCode]domain.Room, error) {
	rows, err := s.loadTable(ctx, "SELECT code, doc FROM punk_rooms")
	if err != nil {
		return nil, err
	}
	out := make(map[domain.RoomCode]domain.Room, len(rows))
	for k, doc := range rows {
		room, err := decodeRow[domain.Room](k, doc)
		if err != nil {
			return nil, err
		}
		out[domain.RoomCode(k)] = room
	}
	return out, nil
}

func (s *PostgresStore) SaveAllRooms(ctx context.Context, rooms map[domain.RoomCode]domain.Room) error {
	rows, err := encodeTable(rooms)
	if err != nil {
		return err
	}
	return s.replaceTable(ctx, "punk_rooms", "code", rows)
}

func (s *PostgresStore) LoadAllUsers(ctx context.Context) (map[domain.UserID]domain.User, error) {
	rows, err := s.loadTable(ctx, "SELECT id, doc FROM punk_users")
	if err != nil {
		return nil, err
	}
	out := make(map[domain.UserID]domain.User, len(rows))
	for k, doc := range rows {
		user, err := decodeRow[domain.User](k, doc)
		if err != nil {
			return nil, err
		}
		out[domain.UserID(k)] = user
	}
	return out, nil
}

func (s *PostgresStore) SaveAllUsers(ctx context.Context, users map[domain.UserID]domain.User) error {
	rows, err := encodeTable(users)
	if err != nil {
		return err
	}
	return s.replaceTable(ctx, "punk_users", "id", rows)
}

func (s *PostgresStore) loadTable(ctx context.Context, query string) (map[string][]byte, error) {
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]byte)
	for rows.Next() {
		var key string
		var doc []byte
		if err := rows.Scan(&key, &doc); err != nil {
			return nil, err
		}
		out[key] = doc
	}
	return out, rows.Err()
}

func (s *PostgresStore) replaceTable(ctx context.Context, table, keyCol string, rows map[string][]byte) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
		return err
	}
	batch := &pgx.Batch{}
	insert := fmt.Sprintf("INSERT INTO %s (%s, doc) VALUES ($1, $2)", table, keyCol)
	for k, doc := range rows {
		batch.Queue(insert, k, string(doc))
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
