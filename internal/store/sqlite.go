package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dkeye/Punk/internal/domain"
)

// SQLiteStore keeps the snapshot tables in a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens dbPath, "./data/punk.db" when empty.
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "./data/punk.db"
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	s := &SQLiteStore{db: db}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS rooms (
		code TEXT PRIMARY KEY,
		doc  TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS users (
		id  TEXT PRIMARY KEY,
		doc TEXT NOT NULL
	);`)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) LoadAllRooms(ctx context.Context) (map[domain.RoomCode]domain.Room, error) {
	rows, err := s.loadTable(ctx, "SELECT code, doc FROM rooms")
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

func (s *SQLiteStore) SaveAllRooms(ctx context.Context, rooms map[domain.RoomCode]domain.Room) error {
	rows, err := encodeTable(rooms)
	if err != nil {
		return err
	}
	return s.replaceTable(ctx, "rooms", "code", rows)
}

func (s *SQLiteStore) LoadAllUsers(ctx context.Context) (map[domain.UserID]domain.User, error) {
	rows, err := s.loadTable(ctx, "SELECT id, doc FROM users")
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

func (s *SQLiteStore) SaveAllUsers(ctx context.Context, users map[domain.UserID]domain.User) error {
	rows, err := encodeTable(users)
	if err != nil {
		return err
	}
	return s.replaceTable(ctx, "users", "id", rows)
}

func (s *SQLiteStore) loadTable(ctx context.Context, query string) (map[string][]byte, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]byte)
	for rows.Next() {
		var key, doc string
		if err := rows.Scan(&key, &doc); err != nil {
			return nil, err
		}
		out[key] = []byte(doc)
	}
	return out, rows.Err()
}

// replaceTable swaps the table contents in one transaction.
func (s *SQLiteStore) replaceTable(ctx context.Context, table, keyCol string, rows map[string][]byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s, doc) VALUES (?, ?)", table, keyCol))
	if err != nil {
		return err
	}
	defer stmt.Close()
	for k, doc := range rows {
		if _, err := stmt.ExecContext(ctx, k, string(doc)); err != nil {
			return err
		}
	}
	return tx.Commit()
}
