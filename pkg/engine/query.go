package engine

import (
	"fmt"
	"sync"
)

// Fingerprint lets a query result opt into early cutoff: two results
// with equal fingerprints are considered unchanged, so a recomputation
// that produces an equal fingerprint does not invalidate dependents
// even though the query body re-ran. hir.FileStructureData implements
// it with a string built from its content; the project-HIR result types
// do not, so each of their recomputations counts as a change.
type Fingerprint interface {
	Fingerprint() string
}

// Query is a tracked, memoized, pure function of typed arguments. One
// Query[A, R] value is the per-function memo table described in the
// engine's contract: the "recursive query calls on the same key within
// one evaluation" rule is enforced per Query instance, and each key's
// dependency read-set is tracked independently so one key's edits never
// invalidate a sibling key's memoized value.
type Query[A comparable, R any] struct {
	name string
	fn   func(db *Database, args A) R

	mu         sync.Mutex
	table      map[A]*memoEntry[R]
	inProgress map[string]bool
}

type memoEntry[R any] struct {
	value      R
	deps       []depHandle
	changedAt  Revision // revision at which the value last actually differed from its predecessor
	verifiedAt Revision // revision up to which the memo is known to still be valid
}

// NewQuery declares a tracked query. fn must be pure: given the same
// arguments and the same values from the inputs/queries it reads, it
// must always produce the same result, and it must not perform
// observable side effects (logging at debug/trace level is the sole
// exception, per the engine's effect-free-queries rule).
func NewQuery[A comparable, R any](name string, fn func(db *Database, args A) R) *Query[A, R] {
	return &Query[A, R]{
		name:       name,
		fn:         fn,
		table:      make(map[A]*memoEntry[R]),
		inProgress: make(map[string]bool),
	}
}

// Get returns the memoized result for args, recomputing it only if the
// dependency read-set recorded the last time it ran has changed since.
// A query panicking, or a query calling itself (directly or through a
// cycle) on the same key within one evaluation, is a fatal programming
// error.
func (q *Query[A, R]) Get(db *Database, args A) R {
	key := fmt.Sprintf("%v", args)

	q.mu.Lock()
	if q.inProgress[key] {
		q.mu.Unlock()
		panic(fmt.Sprintf("engine: cyclic tracked query call detected: %s(%s)", q.name, key))
	}
	entry, ok := q.table[args]
	rev := db.currentRevision()
	if ok && entry.verifiedAt == rev {
		q.mu.Unlock()
		db.recordRead(queryDep[A, R]{q: q, args: args})
		return entry.value
	}
	q.mu.Unlock()

	if ok && q.stillValid(db, entry, rev) {
		q.mu.Lock()
		entry.verifiedAt = rev
		q.mu.Unlock()
		db.recordRead(queryDep[A, R]{q: q, args: args})
		return entry.value
	}

	return q.recompute(db, args, key, rev, ok, entry)
}

// stillValid checks whether every dependency recorded for entry is
// still at or before the revision it was recorded at, refreshing
// (recursively recomputing, if necessary) any dependency that is a
// nested tracked query.
func (q *Query[A, R]) stillValid(db *Database, entry *memoEntry[R], rev Revision) bool {
	for _, dep := range entry.deps {
		if dep.refresh(db) > entry.verifiedAt {
			return false
		}
	}
	return true
}

func (q *Query[A, R]) recompute(db *Database, args A, key string, rev Revision, hadPrevious bool, previous *memoEntry[R]) R {
	q.mu.Lock()
	q.inProgress[key] = true
	q.mu.Unlock()

	f, popFrame := db.pushFrame()
	value := q.fn(db, args)
	popFrame()
	db.notifyExecute(q.name)

	changedAt := rev
	if hadPrevious {
		if fp, ok := any(value).(Fingerprint); ok {
			if pfp, ok2 := any(previous.value).(Fingerprint); ok2 && fp.Fingerprint() == pfp.Fingerprint() {
				changedAt = previous.changedAt
			}
		}
	}

	entry := &memoEntry[R]{
		value:      value,
		deps:       f.reads,
		changedAt:  changedAt,
		verifiedAt: rev,
	}

	q.mu.Lock()
	q.table[args] = entry
	delete(q.inProgress, key)
	q.mu.Unlock()

	db.recordRead(queryDep[A, R]{q: q, args: args})
	return value
}

// queryDep is the depHandle implementation for a nested tracked-query
// read: refreshing it means re-running Get, which will itself recompute
// only if necessary, and returns the (possibly cut-off) changedAt of
// that nested result.
type queryDep[A comparable, R any] struct {
	q    *Query[A, R]
	args A
}

func (d queryDep[A, R]) refresh(db *Database) Revision {
	d.q.Get(db, d.args)
	d.q.mu.Lock()
	defer d.q.mu.Unlock()
	return d.q.table[d.args].changedAt
}

func (d queryDep[A, R]) describe() string {
	return fmt.Sprintf("%s(%v)", d.q.name, d.args)
}

// Peek returns the last computed value for args without triggering
// recomputation or dependency tracking, and whether one exists. Useful
// for diagnostics/tracking code outside of a tracked-query context.
func (q *Query[A, R]) Peek(args A) (R, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	entry, ok := q.table[args]
	if !ok {
		var zero R
		return zero, false
	}
	return entry.value, true
}

// Name returns the query's declared name, used by TrackedEngine to
// label execution-log entries.
func (q *Query[A, R]) Name() string { return q.name }
