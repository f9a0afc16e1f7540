// Package lock provides an advisory Redis-backed mutual-exclusion lock for
// serializing scheduled maintenance jobs across replicas, plus a background
// renewal loop that keeps a held lease alive for long-running work.
//
// # Atomicity contract
//
// Every mutating operation is a single indivisible step against Redis:
// acquisition is SET NX EX, while renewal and release are Lua scripts that
// compare the stored owner token and act only on a match. A plain GET
// followed by EXPIRE or DEL would open a window where another replica's
// expire-and-reacquire races this instance — that shape is forbidden here.
//
// # Failure semantics
//
// Transport errors never propagate to the protected job. Each operation
// returns false and records the error on [Mutex.LastErr]; ownership loss is
// a first-class outcome, not an error. The lock is advisory: a job running
// under it should poll its context between units of work.
package lock
