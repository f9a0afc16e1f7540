package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrInvalidTTL is returned when a mutex is created with a non-positive TTL.
var ErrInvalidTTL = errors.New("lock ttl must be positive")

// ErrEmptyName is returned when a mutex is created without a lock name.
var ErrEmptyName = errors.New("lock name must not be empty")

// renewScript extends the lease only while this instance still owns it.
// Compare and EXPIRE run as one script so another replica acquiring between
// the read and the expiry bump can never have its lease extended by us.
const renewScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  redis.call("EXPIRE", KEYS[1], ARGV[2])
  return 1
end
return 0
`

// releaseScript deletes the lease only while this instance still owns it.
// Releasing after losing ownership is a safe no-op, never a destructive
// delete of another replica's lock.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  redis.call("DEL", KEYS[1])
  return 1
end
return 0
`

var (
	renewLua   = redis.NewScript(renewScript)
	releaseLua = redis.NewScript(releaseScript)
)

// Mutex is a Redis-backed advisory lock over one named resource, typically
// a scheduled maintenance job that must run on at most one replica.
//
// Each Mutex mints a fresh random owner token at construction; the
// authoritative owner is whatever Redis stores under the lock name. The
// local held flag is only a cache of that state and is corrected whenever
// a renew or release reports the lease gone.
type Mutex struct {
	redis redis.UniversalClient
	name  string
	id    string
	ttl   time.Duration

	mu      sync.Mutex
	held    bool
	lastErr error
}

// NewMutex creates a lock instance for the named resource with the given
// lease duration. The instance does not touch Redis until TryAcquire.
func NewMutex(client redis.UniversalClient, name string, ttl time.Duration) (*Mutex, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if ttl <= 0 {
		return nil, ErrInvalidTTL
	}
	return &Mutex{
		redis: client,
		name:  name,
		id:    uuid.NewString(),
		ttl:   ttl,
	}, nil
}

// Name returns the resource this mutex protects.
func (m *Mutex) Name() string { return m.name }

// TTL returns the lease duration applied on acquire and renew.
func (m *Mutex) TTL() time.Duration { return m.ttl }

// Held reports this instance's local belief about ownership. It can go
// stale between renewals; the stored value in Redis is authoritative.
func (m *Mutex) Held() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.held
}

// LastErr returns the most recent transport error observed by any
// operation, for diagnostics. It is cleared by the next successful call.
func (m *Mutex) LastErr() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// TryAcquire attempts SET name id NX EX ttl. It returns true iff this
// instance now owns the lock. False means another replica holds it or the
// store was unreachable — callers should skip this cycle, not block.
func (m *Mutex) TryAcquire(ctx context.Context) bool {
	ok, err := m.redis.SetNX(ctx, m.name, m.id, m.ttl).Result()
	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.lastErr = err
		m.held = false
		return false
	}
	m.lastErr = nil
	m.held = ok
	return ok
}

// Renew extends the lease iff the stored value still equals this instance's
// owner token, as one atomic script. Any false return clears the local held
// flag: either the lease moved to another replica or the store is
// unreachable, and in both cases this instance must stop assuming ownership.
func (m *Mutex) Renew(ctx context.Context) bool {
	res, err := renewLua.Run(ctx, m.redis, []string{m.name}, m.id, int(m.ttl.Seconds())).Int64()
	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.lastErr = err
		m.held = false
		return false
	}
	m.lastErr = nil
	m.held = res == 1
	return m.held
}

// Release deletes the lease iff this instance still owns it, as one atomic
// script. It returns true iff this instance performed the delete; a foreign
// or absent lease is left untouched.
func (m *Mutex) Release(ctx context.Context) bool {
	res, err := releaseLua.Run(ctx, m.redis, []string{m.name}, m.id).Int64()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.held = false
	if err != nil {
		m.lastErr = err
		return false
	}
	m.lastErr = nil
	return res == 1
}
