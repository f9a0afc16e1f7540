package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by [Store.Get] when no live session exists for the
// user, whether the key never existed or has passively expired.
var ErrNotFound = errors.New("session not found")

// ErrRedisUnavailable wraps any Redis transport failure. Callers must treat
// a failed Update as "session not durably saved" and carry on; nothing in
// this package is fatal to the request path.
var ErrRedisUnavailable = errors.New("redis unavailable")

// DefaultLifetime is the session lifetime applied when none is configured.
const DefaultLifetime = 30 * time.Minute

// Store is the capability shared by both session backends.
//
// Get returns [ErrNotFound] for absent or expired sessions. Update upserts
// the session and resets its lifetime. Remove is idempotent: removing an
// absent session is not an error.
type Store interface {
	Get(ctx context.Context, userID string) (*Session, error)
	Update(ctx context.Context, sess *Session) error
	Remove(ctx context.Context, userID string) error
}
