package sessionkit

import "errors"

var (
	// ErrBuilderUsed is returned when Build is called twice on one Builder.
	ErrBuilderUsed = errors.New("builder already used")
	// ErrTokenSecretRequired is returned when no credential signing secret
	// is configured.
	ErrTokenSecretRequired = errors.New("token secret required")
	// ErrRedisRequired is returned when a Redis-backed capability is
	// requested from a Service built without a Redis connection.
	ErrRedisRequired = errors.New("redis connection required")
	// ErrInvalidRedisURL is returned when the configured Redis URL does
	// not parse.
	ErrInvalidRedisURL = errors.New("invalid redis url")
	// ErrUnknownTokenPolicy is returned for an unrecognized replacement
	// policy name.
	ErrUnknownTokenPolicy = errors.New("unknown token replacement policy")
)
