package session

import (
	"context"
	"sync"
	"time"
)

// DefaultCleanInterval rate-limits the inline expiry sweep.
const DefaultCleanInterval = time.Minute

type storedSession struct {
	sess      *Session
	updatedAt time.Time
}

// MemoryStore is a process-local [Store] backed by a map.
//
// Expired entries are swept inline by Get/Update/Remove, at most once per
// clean interval, so no timer goroutine is needed; an entry can outlive its
// lifetime by at most one clean interval. Request handlers run on parallel
// goroutines, so the map and the sweep clock share one mutex.
//
// MemoryStore is NOT safe across replicas: sessions are invisible to other
// instances. The Builder never selects it when a Redis URL is configured.
type MemoryStore struct {
	lifetime      time.Duration
	cleanInterval time.Duration

	mu          sync.Mutex
	sessions    map[string]storedSession
	lastCleaned time.Time

	now func() time.Time
}

// NewMemoryStore creates an in-process store. Non-positive lifetime or
// cleanInterval fall back to the package defaults.
func NewMemoryStore(lifetime, cleanInterval time.Duration) *MemoryStore {
	if lifetime <= 0 {
		lifetime = DefaultLifetime
	}
	if cleanInterval <= 0 {
		cleanInterval = DefaultCleanInterval
	}
	return &MemoryStore{
		lifetime:      lifetime,
		cleanInterval: cleanInterval,
		sessions:      make(map[string]storedSession),
		lastCleaned:   time.Now(),
		now:           time.Now,
	}
}

// Get returns the live session for userID or [ErrNotFound].
func (m *MemoryStore) Get(_ context.Context, userID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleanExpiredLocked()

	entry, ok := m.sessions[userID]
	if !ok {
		return nil, ErrNotFound
	}
	// A sweep may be up to one clean interval stale; never hand out an
	// entry that is already past its lifetime.
	if m.now().Sub(entry.updatedAt) > m.lifetime {
		delete(m.sessions, userID)
		return nil, ErrNotFound
	}
	return entry.sess.Clone(), nil
}

// Update upserts the session and resets its lifetime clock.
func (m *MemoryStore) Update(_ context.Context, sess *Session) error {
	if err := sess.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleanExpiredLocked()

	m.sessions[sess.UserID] = storedSession{
		sess:      sess.Clone(),
		updatedAt: m.now(),
	}
	return nil
}

// Remove deletes the session if present. Removing an absent session is a
// no-op, not an error.
func (m *MemoryStore) Remove(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleanExpiredLocked()

	delete(m.sessions, userID)
	return nil
}

// Len reports the number of stored entries, including any not yet swept.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *MemoryStore) cleanExpiredLocked() {
	current := m.now()
	if current.Sub(m.lastCleaned) <= m.cleanInterval {
		return
	}
	m.lastCleaned = current

	for userID, entry := range m.sessions {
		if current.Sub(entry.updatedAt) > m.lifetime {
			delete(m.sessions, userID)
		}
	}
}
