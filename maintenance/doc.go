// Package maintenance runs scheduled jobs — chat cleanup, user-pool
// pruning — on at most one replica at a time.
//
// Each cycle tries to acquire the job's distributed lock. On failure the
// cycle is skipped (another replica runs it, or the store is down); on
// success the job runs with a context that is cancelled the moment the
// lease is lost, while a background renewer keeps the lease alive. The lock
// is advisory, so jobs must poll their context between units of work.
package maintenance
