package sessionkit

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/chatstack/sessionkit/lock"
	"github.com/chatstack/sessionkit/session"
)

// ReplacementPolicy decides whether a freshly observed third-party token
// replaces the one stored on the session.
//
// The upstream service this core was extracted from compared the two expiry
// claims the other way around from its stated "keep the latest token"
// intent. Until product confirms which behavior is wanted, both live here
// behind named constants; [ReplaceWhenNewer] is the default.
type ReplacementPolicy int

const (
	// ReplaceWhenNewer stores the incoming token only when no token is
	// stored yet or the incoming expiry is strictly later — the stored
	// expiry is monotonically non-decreasing.
	ReplaceWhenNewer ReplacementPolicy = iota
	// ReplaceWhenStoredLater preserves the legacy comparison: the incoming
	// token replaces the stored one when the stored expiry is later.
	ReplaceWhenStoredLater
)

// ShouldReplace applies the policy to the currently stored token (nil when
// none) and the incoming token's expiry.
func (p ReplacementPolicy) ShouldReplace(stored *session.TokenRef, newExpiry int64) bool {
	if stored == nil {
		return true
	}
	if p == ReplaceWhenStoredLater {
		return stored.Expiry > newExpiry
	}
	return newExpiry > stored.Expiry
}

// ParseReplacementPolicy maps a configuration string to a policy constant.
func ParseReplacementPolicy(name string) (ReplacementPolicy, error) {
	switch name {
	case "", "newer":
		return ReplaceWhenNewer, nil
	case "stored-later", "legacy":
		return ReplaceWhenStoredLater, nil
	default:
		return ReplaceWhenNewer, fmt.Errorf("%w: %q", ErrUnknownTokenPolicy, name)
	}
}

// SessionConfig controls session persistence.
type SessionConfig struct {
	// KeyPrefix namespaces session documents in Redis.
	KeyPrefix string
	// Lifetime is how long a session survives without an update.
	Lifetime time.Duration
	// CleanInterval rate-limits the in-process store's expiry sweep. It
	// has no effect on the Redis store, which expires keys natively.
	CleanInterval time.Duration
}

// LockConfig controls the distributed maintenance lock.
type LockConfig struct {
	// TTL is the lease duration applied on acquire and renew.
	TTL time.Duration
	// RenewalInterval is the pause between renewal attempts; it must stay
	// strictly below TTL.
	RenewalInterval time.Duration
	// FailureThreshold is how many consecutive failed renewals declare
	// the lease lost.
	FailureThreshold int
}

// TokenConfig controls credential verification.
type TokenConfig struct {
	// Secret is the HS256 signing secret for first-party credentials.
	Secret []byte
	// Leeway tolerates clock skew when validating expiry claims.
	Leeway time.Duration
}

// Config is the complete configuration surface of the session core.
type Config struct {
	// RedisURL selects the Redis-backed session store when non-empty;
	// when empty the in-process store is used and the distributed lock is
	// unavailable.
	RedisURL string

	Session     SessionConfig
	Lock        LockConfig
	Token       TokenConfig
	TokenPolicy ReplacementPolicy
}

func defaultConfig() Config {
	return Config{
		Session: SessionConfig{
			KeyPrefix:     session.DefaultKeyPrefix,
			Lifetime:      session.DefaultLifetime,
			CleanInterval: session.DefaultCleanInterval,
		},
		Lock: LockConfig{
			TTL:              30 * time.Minute,
			RenewalInterval:  lock.DefaultRenewalInterval,
			FailureThreshold: lock.DefaultFailureThreshold,
		},
		Token: TokenConfig{
			Leeway: 0,
		},
		TokenPolicy: ReplaceWhenNewer,
	}
}

// ConfigFromEnv reads configuration from environment variables, with the
// defaults above for anything unset.
//
// Recognized variables: REDIS_URL, SESSION_KEY_PREFIX, SESSION_LIFETIME,
// SESSION_CLEAN_INTERVAL, SESSION_TOKEN_SECRET, SESSION_TOKEN_LEEWAY,
// SESSION_TOKEN_POLICY, LOCK_TTL, LOCK_RENEWAL_INTERVAL,
// LOCK_FAILURE_THRESHOLD. Durations accept Go syntax ("30m") or a bare
// number of seconds.
func ConfigFromEnv() (Config, error) {
	cfg := defaultConfig()

	cfg.RedisURL = os.Getenv("REDIS_URL")
	if v := os.Getenv("SESSION_KEY_PREFIX"); v != "" {
		cfg.Session.KeyPrefix = v
	}
	if v := os.Getenv("SESSION_TOKEN_SECRET"); v != "" {
		cfg.Token.Secret = []byte(v)
	}

	var err error
	if cfg.Session.Lifetime, err = envDuration("SESSION_LIFETIME", cfg.Session.Lifetime); err != nil {
		return Config{}, err
	}
	if cfg.Session.CleanInterval, err = envDuration("SESSION_CLEAN_INTERVAL", cfg.Session.CleanInterval); err != nil {
		return Config{}, err
	}
	if cfg.Token.Leeway, err = envDuration("SESSION_TOKEN_LEEWAY", cfg.Token.Leeway); err != nil {
		return Config{}, err
	}
	if cfg.Lock.TTL, err = envDuration("LOCK_TTL", cfg.Lock.TTL); err != nil {
		return Config{}, err
	}
	if cfg.Lock.RenewalInterval, err = envDuration("LOCK_RENEWAL_INTERVAL", cfg.Lock.RenewalInterval); err != nil {
		return Config{}, err
	}
	if cfg.Lock.FailureThreshold, err = envInt("LOCK_FAILURE_THRESHOLD", cfg.Lock.FailureThreshold); err != nil {
		return Config{}, err
	}
	if cfg.TokenPolicy, err = ParseReplacementPolicy(os.Getenv("SESSION_TOKEN_POLICY")); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d, nil
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return time.Duration(secs) * time.Second, nil
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, v)
	}
	return n, nil
}
