package sessionkit

import "sync/atomic"

// MetricID identifies one counter in the [Recorder].
type MetricID uint16

const (
	// MetricSessionHit counts requests whose session was found in the store.
	MetricSessionHit MetricID = iota
	// MetricSessionMiss counts requests that started a fresh session.
	MetricSessionMiss
	// MetricSessionSaved counts successful session persists.
	MetricSessionSaved
	// MetricSessionSaveFailed counts persists lost to store errors.
	MetricSessionSaveFailed
	// MetricTokenAccepted counts third-party tokens stored per policy.
	MetricTokenAccepted
	// MetricTokenIgnored counts third-party tokens rejected per policy.
	MetricTokenIgnored
	// MetricCredentialRejected counts expired/invalid/malformed credentials.
	MetricCredentialRejected
	// MetricLockAcquired counts successful lock acquisitions.
	MetricLockAcquired
	// MetricLockContended counts acquisitions skipped because another
	// replica holds the lock or the store was unreachable.
	MetricLockContended
	// MetricLockLost counts leases lost during a protected job.
	MetricLockLost
	// MetricJobRuns counts maintenance job executions on this replica.
	MetricJobRuns
	// MetricJobSkipped counts maintenance cycles skipped on this replica.
	MetricJobSkipped

	metricCount
)

// Recorder is a fixed table of lock-free counters. A nil Recorder is valid
// and records nothing, so instrumentation points never need a nil check at
// the call site beyond the method's own.
type Recorder struct {
	counters [metricCount]atomic.Uint64
}

// NewRecorder creates an empty counter table.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Inc increments one counter.
func (r *Recorder) Inc(id MetricID) {
	if r == nil || id >= metricCount {
		return
	}
	r.counters[id].Add(1)
}

// Value reads one counter.
func (r *Recorder) Value(id MetricID) uint64 {
	if r == nil || id >= metricCount {
		return 0
	}
	return r.counters[id].Load()
}

// Snapshot copies all counters at a point in time.
func (r *Recorder) Snapshot() map[MetricID]uint64 {
	out := make(map[MetricID]uint64, metricCount)
	if r == nil {
		return out
	}
	for id := MetricID(0); id < metricCount; id++ {
		out[id] = r.counters[id].Load()
	}
	return out
}
