package kvsearch

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrFlushUnsupported is returned by Index.ClearAll when the store cannot flush.
var ErrFlushUnsupported = errors.New("store does not support FLUSHALL")

// Store is the key-value store the index is built on (Redis, Bolt, SQLite, in-memory).
//
// Patterns passed to Keys follow Redis KEYS semantics: '*' matches any
// sequence (including ':'), '?' matches one byte, '[...]' is a class and '\'
// escapes the next byte.
type Store interface {
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Get returns the value of key; ok is false when the key doesn't exist.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Keys returns all keys matching pattern, in no particular order.
	Keys(ctx context.Context, pattern string) ([]string, error)

	// Del removes keys in a single call. Missing keys are ignored.
	Del(ctx context.Context, keys ...string) error
}

// Flusher is implemented by stores that can wipe everything they hold.
//
// This is deliberately not part of Store: FLUSHALL ignores namespaces and
// removes data that does not belong to the index.
type Flusher interface {
	FlushAll(ctx context.Context) error
}

// OpenStore opens a store described by a URL:
//
//	redis://[user:pass@]host:port/db, rediss://...
//	bolt:///path/to/file.db
//	sqlite:///path/to/file.db, sqlite://:memory:
//	mem://
func OpenStore(ctx context.Context, rawURL string) (Store, error) {
	scheme, rest, ok := strings.Cut(rawURL, "://")
	if !ok {
		return nil, fmt.Errorf("kvsearch: invalid store URL %q", rawURL)
	}
	switch strings.ToLower(scheme) {
	case "redis", "rediss", "unix":
		return NewRedisStoreFromURL(ctx, rawURL)
	case "bolt", "bbolt":
		path, err := storePath(rest)
		if err != nil {
			return nil, err
		}
		return OpenBoltStore(path, BoltOptions{})
	case "sqlite", "sqlite3":
		path, err := storePath(rest)
		if err != nil {
			return nil, err
		}
		return OpenSQLiteStore(ctx, path)
	case "mem", "memory":
		return NewMemStore(), nil
	default:
		return nil, fmt.Errorf("kvsearch: unsupported store scheme %q", scheme)
	}
}

func storePath(rest string) (string, error) {
	path, err := url.PathUnescape(rest)
	if err != nil {
		return "", fmt.Errorf("kvsearch: invalid store path %q: %w", rest, err)
	}
	if path == "" {
		return "", fmt.Errorf("kvsearch: store URL has no path")
	}
	return path, nil
}

// CloseStore closes s if it holds resources.
func CloseStore(s Store) error {
	if c, ok := s.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
