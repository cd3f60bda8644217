// Package redis implements the ephemeral session store on Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"authgate.org/internal/auth"
)

const keyPrefix = "session:"

// Store is a Redis-backed auth.SessionStore. Records are written with a key
// TTL, so expiry is enforced by Redis itself; an expired session reads back
// exactly like one that never existed.
type Store struct {
	rdb *redis.Client
}

var _ auth.SessionStore = (*Store)(nil)

// Open connects to Redis at the given address.
func Open(addr string) *Store {
	return &Store{rdb: redis.NewClient(&redis.Options{Addr: addr})}
}

// New wraps an existing client.
func New(rdb *redis.Client) *Store { return &Store{rdb: rdb} }

func (s *Store) Close() error { return s.rdb.Close() }

func key(sessionID string) string { return keyPrefix + sessionID }

func (s *Store) Create(ctx context.Context, sess *auth.Session, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("%w: session ttl must be positive", auth.ErrInvalidInput)
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.rdb.Set(ctx, key(sess.ID), data, ttl).Err(); err != nil {
		return storeErr("create session", err)
	}
	return nil
}

func (s *Store) Find(ctx context.Context, sessionID string) (*auth.Session, error) {
	data, err := s.rdb.Get(ctx, key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, auth.ErrSessionNotFound
		}
		return nil, storeErr("find session", err)
	}
	var sess auth.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

func (s *Store) Delete(ctx context.Context, sessionID string) (bool, error) {
	removed, err := s.rdb.Del(ctx, key(sessionID)).Result()
	if err != nil {
		return false, storeErr("delete session", err)
	}
	return removed > 0, nil
}

// Ping reports Redis reachability for the readiness probe.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return storeErr("ping", err)
	}
	return nil
}

func storeErr(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", auth.ErrStoreUnavailable, op, err)
}
