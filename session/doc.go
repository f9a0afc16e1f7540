// Package session provides the user-session model and its pluggable
// persistence backends.
//
// # Backends
//
//   - [MemoryStore] — process-local map with a rate-limited expiry sweep.
//     Not safe across replicas; only for single-instance deployments.
//   - [RedisStore] — one JSON document per user with a native Redis TTL,
//     written atomically so a session is never stored without an expiry.
//
// Both implement [Store]. The backend is chosen once at startup by the
// root package's Builder based on whether a Redis URL is configured.
//
// # Architecture boundaries
//
// This package owns session persistence and the [Session] model. It does NOT
// parse credentials, evaluate the token-replacement policy, or touch HTTP —
// those belong to the token and middleware packages.
package session
