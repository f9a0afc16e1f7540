package lock

import (
	"context"
	"errors"
	"sync"
	"time"
)

// DefaultRenewalInterval is the pause between renewal attempts. It must be
// well under the lease TTL so one missed attempt cannot lapse the lease
// before the next one runs.
const DefaultRenewalInterval = 5 * time.Minute

// DefaultFailureThreshold is how many consecutive failed renewals are
// tolerated before the lease is declared lost. With the interval strictly
// below the TTL a single failure usually leaves the lease intact, so the
// realistic loss trigger is the second failure in a row.
const DefaultFailureThreshold = 2

// ErrIntervalTooLong is returned when the renewal interval is not strictly
// below the mutex TTL.
var ErrIntervalTooLong = errors.New("renewal interval must be below lock ttl")

// Renewer periodically renews a held [Mutex] and signals the holder exactly
// once when the lease is lost.
//
// The loop runs RUNNING → sleep → renew → {RUNNING | LOST}. LOST is
// terminal: the loop exits and the lost callback fires. Cancelling the
// context (job finished normally) interrupts the sleep promptly and exits
// without firing the callback.
type Renewer struct {
	mutex     *Mutex
	interval  time.Duration
	threshold int
	onLost    func()

	lostOnce sync.Once
}

// RenewerOption customizes a [Renewer].
type RenewerOption func(*Renewer)

// WithFailureThreshold overrides how many consecutive failed renewals
// terminate the loop. Values below 1 are ignored.
func WithFailureThreshold(n int) RenewerOption {
	return func(r *Renewer) {
		if n >= 1 {
			r.threshold = n
		}
	}
}

// NewRenewer creates a renewal loop for an acquired mutex. onLost may be
// nil; when set it is invoked exactly once if the lease is lost, typically
// to abort the in-flight maintenance job. A non-positive interval falls
// back to [DefaultRenewalInterval].
func NewRenewer(m *Mutex, interval time.Duration, onLost func(), opts ...RenewerOption) (*Renewer, error) {
	if interval <= 0 {
		interval = DefaultRenewalInterval
	}
	if interval >= m.TTL() {
		return nil, ErrIntervalTooLong
	}

	r := &Renewer{
		mutex:     m,
		interval:  interval,
		threshold: DefaultFailureThreshold,
		onLost:    onLost,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run blocks until the context is cancelled or the lease is lost. It is
// normally started as `go renewer.Run(ctx)` alongside the protected job and
// cancelled when the job completes.
func (r *Renewer) Run(ctx context.Context) {
	timer := time.NewTimer(r.interval)
	defer timer.Stop()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if r.attemptRenew(ctx) {
			failures = 0
		} else {
			failures++
			if failures >= r.threshold {
				r.lost()
				return
			}
		}

		timer.Reset(r.interval)
	}
}

// attemptRenew treats any panic inside the renewal path identically to a
// failed renewal: assume the lease is gone rather than crash the holder.
func (r *Renewer) attemptRenew(ctx context.Context) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return r.mutex.Renew(ctx)
}

func (r *Renewer) lost() {
	r.lostOnce.Do(func() {
		if r.onLost != nil {
			r.onLost()
		}
	})
}
