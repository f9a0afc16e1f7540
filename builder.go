package sessionkit

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/chatstack/sessionkit/session"
	"github.com/chatstack/sessionkit/token"
)

// Builder assembles a [Service]. The zero-value defaults are filled in by
// [New]; the store variant is decided exactly once, at Build time.
type Builder struct {
	config Config
	redis  redis.UniversalClient
	sink   Sink

	built bool
}

// New creates a Builder with default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the entire configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithTokenSecret sets the HS256 signing secret for first-party credentials.
func (b *Builder) WithTokenSecret(secret []byte) *Builder {
	b.config.Token.Secret = secret
	return b
}

// WithRedis injects an existing Redis client instead of dialing
// Config.RedisURL. Passing a client forces the Redis-backed store.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithSink sets the event sink. Defaults to [NoOpSink].
func (b *Builder) WithSink(sink Sink) *Builder {
	b.sink = sink
	return b
}

// WithTokenPolicy overrides the token replacement policy.
func (b *Builder) WithTokenPolicy(p ReplacementPolicy) *Builder {
	b.config.TokenPolicy = p
	return b
}

// Build validates the configuration, selects the store variant, and returns
// the wired Service. A Builder can be used once.
func (b *Builder) Build() (*Service, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}
	b.built = true

	if len(b.config.Token.Secret) == 0 {
		return nil, ErrTokenSecretRequired
	}

	decoder, err := token.NewDecoder(b.config.Token.Secret, b.config.Token.Leeway)
	if err != nil {
		return nil, err
	}

	client := b.redis
	if client == nil && b.config.RedisURL != "" {
		opts, err := redis.ParseURL(b.config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRedisURL, err)
		}
		client = redis.NewClient(opts)
	}

	var store session.Store
	if client != nil {
		store = session.NewRedisStore(client, b.config.Session.KeyPrefix, b.config.Session.Lifetime)
	} else {
		// Process-local fallback. Sessions are not shared across
		// replicas; deployments with more than one instance must
		// configure RedisURL.
		store = session.NewMemoryStore(b.config.Session.Lifetime, b.config.Session.CleanInterval)
	}

	sink := b.sink
	if sink == nil {
		sink = NoOpSink{}
	}

	return &Service{
		config:  b.config,
		store:   store,
		decoder: decoder,
		redis:   client,
		metrics: NewRecorder(),
		sink:    sink,
	}, nil
}
