// Package middleware exposes the per-request session hook: it resolves a
// bearer credential, loads (or starts) the user's session, merges in a
// freshly forwarded third-party access token per the configured policy, and
// persists the session only when it changed.
//
// # Never fail the pipeline
//
// This middleware is observational. A missing, expired, or tampered
// credential, an unreachable store, or a failed persist all degrade to the
// request proceeding — anonymously or with an unpersisted session — and are
// reported through the service's event sink. Authorization is enforced
// elsewhere.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Store and Decoder calls. It
// holds no persistent state of its own.
package middleware
