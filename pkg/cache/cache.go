// Package cache stores rendered artifacts keyed by a hash of their input.
//
// Rendering a canvas through Graphviz is far slower than laying it out, and
// the same DOT document is often rendered repeatedly: by the live server on
// every export request and by the CLI across runs. Callers derive a key from
// the input with [Key] and keep the output in one of the implementations:
//
//   - [MemoryCache]: bounded, in-process, used by the server
//   - [FileCache]: on-disk, shared across CLI runs
//   - [NullCache]: stores nothing, for --no-cache
//
// [Scoped] prefixes keys so several users can share one backing cache.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Cache is a byte store with per-entry expiry. A zero ttl never expires.
type Cache interface {
	// Get returns the entry for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Key derives a cache key from prefix and the JSON encoding of parts, e.g.
// Key("graphviz", "svg", dot) gives "graphviz:3f1c...".
func Key(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return fmt.Sprintf("%s:%s", prefix, Hash(data))
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return time.Now().Add(ttl)
}

func expired(at time.Time) bool {
	return !at.IsZero() && time.Now().After(at)
}
