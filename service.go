package sessionkit

import (
	"github.com/redis/go-redis/v9"

	"github.com/chatstack/sessionkit/lock"
	"github.com/chatstack/sessionkit/session"
	"github.com/chatstack/sessionkit/token"
)

// Service carries the session core's dependencies, wired once by [Builder]
// and passed explicitly to the middleware and maintenance jobs.
type Service struct {
	config  Config
	store   session.Store
	decoder *token.Decoder
	redis   redis.UniversalClient
	metrics *Recorder
	sink    Sink
}

// Store returns the selected session store.
func (s *Service) Store() session.Store { return s.store }

// Decoder returns the first-party credential decoder.
func (s *Service) Decoder() *token.Decoder { return s.decoder }

// Policy returns the configured token replacement policy.
func (s *Service) Policy() ReplacementPolicy { return s.config.TokenPolicy }

// Metrics returns the counter recorder.
func (s *Service) Metrics() *Recorder { return s.metrics }

// Sink returns the event sink; never nil.
func (s *Service) Sink() Sink { return s.sink }

// Distributed reports whether the service was built against Redis and can
// therefore share sessions and locks across replicas.
func (s *Service) Distributed() bool { return s.redis != nil }

// NewMutex creates a distributed lock for the named maintenance job using
// the configured lease TTL. It fails with [ErrRedisRequired] on a service
// built without Redis: the in-process variant has no cross-replica story,
// and a lock that only excludes local callers would be a false comfort.
func (s *Service) NewMutex(name string) (*lock.Mutex, error) {
	if s.redis == nil {
		return nil, ErrRedisRequired
	}
	return lock.NewMutex(s.redis, name, s.config.Lock.TTL)
}

// NewRenewer creates a renewal loop for an acquired mutex with the
// configured interval and failure threshold.
func (s *Service) NewRenewer(m *lock.Mutex, onLost func()) (*lock.Renewer, error) {
	return lock.NewRenewer(
		m,
		s.config.Lock.RenewalInterval,
		onLost,
		lock.WithFailureThreshold(s.config.Lock.FailureThreshold),
	)
}
