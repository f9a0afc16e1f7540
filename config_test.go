package sessionkit

import (
	"errors"
	"testing"
	"time"

	"github.com/chatstack/sessionkit/session"
)

func TestConfigFromEnvDefaults(t *testing.T) {
	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("config from env: %v", err)
	}
	if cfg.Session.Lifetime != session.DefaultLifetime {
		t.Fatalf("unexpected default lifetime: %v", cfg.Session.Lifetime)
	}
	if cfg.Session.CleanInterval != session.DefaultCleanInterval {
		t.Fatalf("unexpected default clean interval: %v", cfg.Session.CleanInterval)
	}
	if cfg.TokenPolicy != ReplaceWhenNewer {
		t.Fatalf("unexpected default policy: %v", cfg.TokenPolicy)
	}
}

func TestConfigFromEnvOverrides(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("SESSION_LIFETIME", "45m")
	t.Setenv("LOCK_TTL", "1800") // bare seconds
	t.Setenv("LOCK_FAILURE_THRESHOLD", "3")
	t.Setenv("SESSION_TOKEN_POLICY", "legacy")

	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("config from env: %v", err)
	}
	if cfg.RedisURL != "redis://localhost:6379/0" {
		t.Fatalf("redis url not read: %q", cfg.RedisURL)
	}
	if cfg.Session.Lifetime != 45*time.Minute {
		t.Fatalf("lifetime not read: %v", cfg.Session.Lifetime)
	}
	if cfg.Lock.TTL != 1800*time.Second {
		t.Fatalf("bare-seconds lock ttl not read: %v", cfg.Lock.TTL)
	}
	if cfg.Lock.FailureThreshold != 3 {
		t.Fatalf("failure threshold not read: %d", cfg.Lock.FailureThreshold)
	}
	if cfg.TokenPolicy != ReplaceWhenStoredLater {
		t.Fatalf("policy not read: %v", cfg.TokenPolicy)
	}
}

func TestConfigFromEnvRejectsBadValues(t *testing.T) {
	t.Setenv("SESSION_LIFETIME", "soon")
	if _, err := ConfigFromEnv(); err == nil {
		t.Fatal("expected error for unparseable duration")
	}
}

func TestParseReplacementPolicy(t *testing.T) {
	if p, err := ParseReplacementPolicy(""); err != nil || p != ReplaceWhenNewer {
		t.Fatalf("empty: got %v, %v", p, err)
	}
	if p, err := ParseReplacementPolicy("stored-later"); err != nil || p != ReplaceWhenStoredLater {
		t.Fatalf("stored-later: got %v, %v", p, err)
	}
	if _, err := ParseReplacementPolicy("random"); !errors.Is(err, ErrUnknownTokenPolicy) {
		t.Fatalf("expected ErrUnknownTokenPolicy, got %v", err)
	}
}

func TestReplacementPolicies(t *testing.T) {
	stored := &session.TokenRef{Token: "old", Expiry: 100}

	cases := []struct {
		name    string
		policy  ReplacementPolicy
		stored  *session.TokenRef
		expiry  int64
		replace bool
	}{
		{"newer/no stored token", ReplaceWhenNewer, nil, 50, true},
		{"newer/strictly later", ReplaceWhenNewer, stored, 101, true},
		{"newer/equal", ReplaceWhenNewer, stored, 100, false},
		{"newer/earlier", ReplaceWhenNewer, stored, 99, false},
		{"legacy/no stored token", ReplaceWhenStoredLater, nil, 50, true},
		{"legacy/stored later", ReplaceWhenStoredLater, stored, 99, true},
		{"legacy/equal", ReplaceWhenStoredLater, stored, 100, false},
		{"legacy/incoming later", ReplaceWhenStoredLater, stored, 101, false},
	}

	for _, tc := range cases {
		if got := tc.policy.ShouldReplace(tc.stored, tc.expiry); got != tc.replace {
			t.Fatalf("%s: got %v, want %v", tc.name, got, tc.replace)
		}
	}
}
