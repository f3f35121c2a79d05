// Package session implements the Redis-backed session snapshot store.
//
// A snapshot is an opaque serialized account projection keyed by account id.
// The store carries its own TTL: a structurally valid refresh token never
// implies a live session, the snapshot must independently exist and be
// unexpired.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned by Get when no snapshot exists for the key,
// either because it was never written, was deleted, or expired.
var ErrNotFound = errors.New("session not found")

// ErrUnavailable wraps Redis transport failures.
var ErrUnavailable = errors.New("session backend unavailable")

// Store persists session snapshots in Redis under a configurable key
// prefix. All operations are safe for concurrent use.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// NewStore creates a Store backed by the given Redis client. prefix sets
// the key namespace; an empty prefix defaults to "acct".
func NewStore(client redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = "acct"
	}
	return &Store{
		redis:  client,
		prefix: prefix,
	}
}

func (s *Store) key(accountID string) string {
	return s.prefix + ":sess:" + accountID
}

// Get loads the snapshot for accountID. Missing or expired snapshots
// return ErrNotFound.
func (s *Store) Get(ctx context.Context, accountID string) (string, error) {
	data, err := s.redis.Get(ctx, s.key(accountID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return data, nil
}

// Set writes the snapshot for accountID, overwriting any prior one and
// resetting the expiry to ttl. A non-positive ttl stores without expiry.
func (s *Store) Set(ctx context.Context, accountID, snapshot string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := s.redis.Set(ctx, s.key(accountID), snapshot, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Del removes the snapshot for accountID. Deleting a missing key is a
// no-op, which makes logout idempotent; an empty accountID is tolerated
// the same way.
func (s *Store) Del(ctx context.Context, accountID string) error {
	if err := s.redis.Del(ctx, s.key(accountID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
