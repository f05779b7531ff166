// Package budget persists embedding token counters in the cache backend.
package budget

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// kv is the slice of db.KVStore the counters need.
type kv interface {
	MGet(ctx context.Context, keys []string) ([][]byte, error)
	IncrBy(ctx context.Context, key string, val int64) error
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// Store keeps one INCRBY counter per budget window key.
type Store struct {
	kv kv
}

// New creates a budget store.
func New(s kv) *Store {
	return &Store{kv: s}
}

// Add increments key by tokens. ttl is applied only to a key without an expiry,
// so the first write of a window fixes its lifetime. ttl <= 0 keeps the key forever.
func (s *Store) Add(ctx context.Context, key string, tokens int64, ttl time.Duration) error {
	if err := s.kv.IncrBy(ctx, key, tokens); err != nil {
		return fmt.Errorf("budget add %s: %w", key, err)
	}
	if ttl <= 0 {
		return nil
	}
	if err := s.kv.Expire(ctx, key, ttl, true); err != nil {
		return fmt.Errorf("budget expire %s: %w", key, err)
	}
	return nil
}

// Load reads all keys in one round trip. Missing keys read as zero.
func (s *Store) Load(ctx context.Context, keys ...string) ([]int64, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	raw, err := s.kv.MGet(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("budget load: %w", err)
	}
	if len(raw) != len(keys) {
		return nil, fmt.Errorf("budget load: got %d values for %d keys", len(raw), len(keys))
	}

	out := make([]int64, len(keys))
	for i, b := range raw {
		if b == nil {
			continue
		}
		v, err := strconv.ParseInt(string(b), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("budget load %s: %w", keys[i], err)
		}
		out[i] = v
	}
	return out, nil
}
