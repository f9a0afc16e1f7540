package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStoreTest(t *testing.T, lifetime time.Duration) (*RedisStore, *miniredis.Miniredis, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(rdb, "", lifetime)
	return store, mr, func() {
		rdb.Close()
		mr.Close()
	}
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, _, done := newRedisStoreTest(t, time.Hour)
	defer done()
	ctx := context.Background()

	sess := New("u-1")
	sess.AccessToken = &TokenRef{Token: "tok", Expiry: 1234}

	if err := store.Update(ctx, sess); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := store.Get(ctx, "u-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.UserID != "u-1" || got.AccessToken == nil || got.AccessToken.Token != "tok" || got.AccessToken.Expiry != 1234 {
		t.Fatalf("unexpected session: %+v", got)
	}
}

func TestRedisStoreUpdateAlwaysSetsTTL(t *testing.T) {
	store, mr, done := newRedisStoreTest(t, 30*time.Minute)
	defer done()

	if err := store.Update(context.Background(), New("u-1")); err != nil {
		t.Fatalf("update: %v", err)
	}

	ttl := mr.TTL(store.key("u-1"))
	if ttl <= 0 || ttl > 30*time.Minute {
		t.Fatalf("expected a bounded TTL on the session document, got %v", ttl)
	}
}

func TestRedisStoreUpdateFailureLeavesNoValue(t *testing.T) {
	// A transport failure during the pipelined write must not leave a
	// durable value behind (with or without a TTL).
	store, mr, done := newRedisStoreTest(t, time.Hour)
	defer done()
	ctx := context.Background()

	mr.SetError("injected failure")
	if err := store.Update(ctx, New("u-1")); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable, got %v", err)
	}

	mr.SetError("")
	if mr.Exists(store.key("u-1")) {
		t.Fatal("failed update left a durable session document")
	}
}

func TestRedisStorePassiveExpiry(t *testing.T) {
	store, mr, done := newRedisStoreTest(t, 30*time.Minute)
	defer done()
	ctx := context.Background()

	if err := store.Update(ctx, New("u-1")); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := store.Get(ctx, "u-1"); err != nil {
		t.Fatalf("get before expiry: %v", err)
	}

	mr.FastForward(31 * time.Minute)

	if _, err := store.Get(ctx, "u-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after passive expiry, got %v", err)
	}
}

func TestRedisStoreGetMissing(t *testing.T) {
	store, _, done := newRedisStoreTest(t, time.Hour)
	defer done()

	if _, err := store.Get(context.Background(), "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRedisStoreRemoveIdempotent(t *testing.T) {
	store, _, done := newRedisStoreTest(t, time.Hour)
	defer done()
	ctx := context.Background()

	if err := store.Update(ctx, New("u-1")); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := store.Remove(ctx, "u-1"); err != nil {
		t.Fatalf("first remove: %v", err)
	}
	if err := store.Remove(ctx, "u-1"); err != nil {
		t.Fatalf("second remove: %v", err)
	}
	if _, err := store.Get(ctx, "u-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after remove, got %v", err)
	}
}

func TestRedisStoreCorruptBlob(t *testing.T) {
	store, mr, done := newRedisStoreTest(t, time.Hour)
	defer done()

	if err := mr.Set(store.key("u-1"), "{not json"); err != nil {
		t.Fatalf("seed corrupt blob: %v", err)
	}

	if _, err := store.Get(context.Background(), "u-1"); !errors.Is(err, ErrCorruptSession) {
		t.Fatalf("expected ErrCorruptSession, got %v", err)
	}
}

func TestRedisStoreTransportErrors(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(rdb, "", time.Hour)
	mr.Close()
	defer rdb.Close()
	ctx := context.Background()

	if err := store.Update(ctx, New("u-1")); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("update: expected ErrRedisUnavailable, got %v", err)
	}
	if _, err := store.Get(ctx, "u-1"); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("get: expected ErrRedisUnavailable, got %v", err)
	}
	if err := store.Remove(ctx, "u-1"); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("remove: expected ErrRedisUnavailable, got %v", err)
	}
}
