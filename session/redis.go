package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces session documents in Redis.
const DefaultKeyPrefix = "user_session"

// RedisStore is a [Store] that keeps each session as a JSON document under
// "user_session:<user_id>" with a native Redis TTL. Expiry is passive: no
// sweep is needed because the backing store evicts keys itself.
type RedisStore struct {
	redis    redis.UniversalClient
	prefix   string
	lifetime time.Duration
}

// NewRedisStore creates a Redis-backed session store. An empty prefix and a
// non-positive lifetime fall back to the package defaults.
func NewRedisStore(client redis.UniversalClient, prefix string, lifetime time.Duration) *RedisStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	if lifetime <= 0 {
		lifetime = DefaultLifetime
	}
	return &RedisStore{
		redis:    client,
		prefix:   prefix,
		lifetime: lifetime,
	}
}

func (s *RedisStore) key(userID string) string {
	return s.prefix + ":" + userID
}

// Update persists the session document and its TTL in one transaction.
//
// The SET and the EXPIRE are pipelined under MULTI/EXEC so a session is
// never durably stored without an accompanying expiry — a bare SET whose
// EXPIRE fails independently would leak the key forever.
func (s *RedisStore) Update(ctx context.Context, sess *Session) error {
	data, err := Encode(sess)
	if err != nil {
		return err
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(sess.UserID), data, 0)
		pipe.Expire(ctx, s.key(sess.UserID), s.lifetime)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Get fetches the session document for userID. Absent and passively expired
// keys both surface as [ErrNotFound].
func (s *RedisStore) Get(ctx context.Context, userID string) (*Session, error) {
	data, err := s.redis.Get(ctx, s.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return Decode(data)
}

// Remove deletes the session document. A missing key is not an error.
func (s *RedisStore) Remove(ctx context.Context, userID string) error {
	if err := s.redis.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Ping returns a point-in-time Redis availability check and latency.
func (s *RedisStore) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return time.Since(start), nil
}
