// Package sessionkit is the distributed session and locking core of a
// multi-tenant chat backend.
//
// It provides a pluggable per-user session store (in-process map or Redis,
// both with TTL-based expiry), a Redis-backed advisory lock with atomic
// compare-and-renew / compare-and-delete semantics plus a background
// renewal loop, and an HTTP middleware that loads a session per request and
// merges in freshly observed third-party access tokens.
//
// The [Builder] selects the store variant once at process start — Redis when
// a connection URL is configured, the in-process map otherwise — and hands
// back a [Service] carrying every dependency explicitly; there is no global
// service handle to swap.
//
// Nothing in this package is fatal to the process: credential failures
// degrade to anonymous requests, store failures to an unpersisted session,
// and lock failures to a skipped maintenance cycle.
package sessionkit
