package maintenance

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	sessionkit "github.com/chatstack/sessionkit"
	"github.com/chatstack/sessionkit/lock"
)

// ErrLockUnavailable is returned by RunOnce when the cycle was skipped
// because the lock could not be acquired.
var ErrLockUnavailable = errors.New("maintenance lock unavailable")

// Job is one maintenance task. It must honor ctx cancellation between
// units of work: the lock is advisory, and ctx is cancelled when the lease
// is lost.
type Job func(ctx context.Context) error

// Runner executes one named job under a distributed lock.
type Runner struct {
	name    string
	mutex   *lock.Mutex
	job     Job
	service *sessionkit.Service
	logger  *slog.Logger
}

// NewRunner wires a job to its lock. The mutex is created from the
// service's lock configuration under the given name.
func NewRunner(svc *sessionkit.Service, name string, job Job, logger *slog.Logger) (*Runner, error) {
	mutex, err := svc.NewMutex(name)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		name:    name,
		mutex:   mutex,
		job:     job,
		service: svc,
		logger:  logger,
	}, nil
}

// RunOnce executes a single cycle: acquire, renew in the background, run
// the job, release. A cycle skipped for lock contention returns
// [ErrLockUnavailable]; the job's own error is returned otherwise.
func (r *Runner) RunOnce(ctx context.Context) error {
	if !r.mutex.TryAcquire(ctx) {
		r.service.Metrics().Inc(sessionkit.MetricLockContended)
		r.service.Metrics().Inc(sessionkit.MetricJobSkipped)
		r.service.Sink().Emit(ctx, sessionkit.Event{
			Timestamp: time.Now(),
			EventType: sessionkit.EventJobSkipped,
			LockName:  r.name,
			Error:     errString(r.mutex.LastErr()),
		})
		r.logger.Debug("maintenance cycle skipped", "job", r.name)
		return ErrLockUnavailable
	}
	r.service.Metrics().Inc(sessionkit.MetricLockAcquired)

	jobCtx, cancelJob := context.WithCancel(ctx)
	defer cancelJob()

	renewer, err := r.service.NewRenewer(r.mutex, func() {
		r.service.Metrics().Inc(sessionkit.MetricLockLost)
		r.service.Sink().Emit(ctx, sessionkit.Event{
			Timestamp: time.Now(),
			EventType: sessionkit.EventLockLost,
			LockName:  r.name,
		})
		r.logger.Warn("lock lost, aborting job", "job", r.name)
		cancelJob()
	})
	if err != nil {
		r.releaseQuietly(ctx)
		return err
	}

	renewCtx, stopRenewal := context.WithCancel(ctx)
	defer stopRenewal()

	g := new(errgroup.Group)
	g.Go(func() error {
		renewer.Run(renewCtx)
		return nil
	})

	r.service.Metrics().Inc(sessionkit.MetricJobRuns)
	jobErr := r.job(jobCtx)

	stopRenewal()
	_ = g.Wait()
	r.releaseQuietly(ctx)

	if jobErr != nil {
		r.service.Sink().Emit(ctx, sessionkit.Event{
			Timestamp: time.Now(),
			EventType: sessionkit.EventJobFailed,
			LockName:  r.name,
			Error:     jobErr.Error(),
		})
		r.logger.Error("maintenance job failed", "job", r.name, "error", jobErr)
		return jobErr
	}

	r.service.Sink().Emit(ctx, sessionkit.Event{
		Timestamp: time.Now(),
		EventType: sessionkit.EventJobCompleted,
		LockName:  r.name,
		Success:   true,
	})
	return nil
}

// RunEvery drives RunOnce on a fixed interval until ctx is cancelled.
// Individual cycle failures are absorbed: a skipped or failed cycle must
// not stop the schedule.
func (r *Runner) RunEvery(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if err := r.RunOnce(ctx); err != nil && !errors.Is(err, ErrLockUnavailable) {
			r.logger.Error("maintenance cycle error", "job", r.name, "error", err)
		}
	}
}

// releaseQuietly lets go of the lease even when the parent context has
// been cancelled during shutdown; an unreleased lease would block other
// replicas until the TTL lapses.
func (r *Runner) releaseQuietly(ctx context.Context) {
	if !r.mutex.Held() {
		return
	}
	r.mutex.Release(context.WithoutCancel(ctx))
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
