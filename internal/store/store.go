// Package store holds the snapshot backends behind core.Store.
// Every backend keeps two tables, rooms by code and users by id, with one
// JSON document per row. Saves replace a whole table atomically.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dkeye/Punk/internal/core"
)

type Options struct {
	Driver string
	Path   string
	DSN    string
}

// Open returns the backend named by opts.Driver. The default is "file".
func Open(ctx context.Context, opts Options) (core.Store, error) {
	switch opts.Driver {
	case "", "file":
		return NewFileStore(opts.Path)
	case "sqlite":
		return NewSQLiteStore(ctx, opts.Path)
	case "redis":
		return NewRedisStore(ctx, opts.DSN)
	case "postgres":
		return NewPostgresStore(ctx, opts.DSN)
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}

func encodeTable[K ~string, V any](table map[K]V) (map[string][]byte, error) {
	out := make(map[string][]byte, len(table))
	for k, v := range table {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", k, err)
		}
		out[string(k)] = b
	}
	return out, nil
}

func decodeRow[V any](key string, doc []byte) (V, error) {
	var v V
	if err := json.Unmarshal(doc, &v); err != nil {
		return v, fmt.Errorf("decode %s: %w", key, err)
	}
	return v, nil
}
