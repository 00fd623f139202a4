// Package engine implements the demand-driven, memoizing query layer
// described as the Query Engine (C1): typed input cells with per-cell
// revisions, tracked queries that memoize their output and record the
// precise set of inputs/queries they read, and early cutoff so that a
// query whose recomputed output is unchanged does not invalidate its
// dependents.
package engine

import (
	"sync"
)

// Revision is the monotonic counter associated with an input. Advancing
// it invalidates every tracked query whose recorded read-set included
// the input that moved.
type Revision uint64

// Database owns the input cells and provides the dependency-tracking
// primitives tracked queries build on. It is safe for concurrent use:
// Input.Set (through bumpRevision) takes an exclusive lock, Snapshot
// callers hold a shared lock for as long as they need a stable view of
// the current revision.
type Database struct {
	revMu    sync.RWMutex // guards `revision`; write-locked by bumpRevision, read-locked by Snapshot
	revision Revision

	cellsMu sync.RWMutex
	cells   map[uint64]*cell
	nextID  uint64

	stackMu sync.Mutex
	stack   []*frame // active tracked-query call stack, for dependency recording and cycle detection

	onExecute func(name string) // optional hook: called each time a tracked query body actually runs
}

type cell struct {
	value     any
	changedAt Revision
}

// frame accumulates the dependencies read during one tracked-query
// execution so they can be stored alongside its memoized result.
type frame struct {
	reads []depHandle
}

// depHandle is a dependency a tracked query read while computing its
// result: either an input cell or another tracked query's (args) key.
// Refresh ensures the dependency itself is up to date and returns the
// revision at which its value last actually changed.
type depHandle interface {
	refresh(db *Database) Revision
	describe() string
}

// NewDatabase creates an empty, process-local query database. Databases
// are never shared across projects; callers construct one per project.
func NewDatabase() *Database {
	return &Database{cells: make(map[uint64]*cell)}
}

func (db *Database) currentRevision() Revision {
	db.revMu.RLock()
	defer db.revMu.RUnlock()
	return db.revision
}

// bumpRevision advances the database's revision counter. Only Input.Set
// calls this; it is the single source of invalidation in the system.
func (db *Database) bumpRevision() Revision {
	db.revMu.Lock()
	defer db.revMu.Unlock()
	db.revision++
	return db.revision
}

// Snapshot is a read-only handle to the database's current revision.
// Multiple snapshots may be held concurrently; an Input.Set on the owning
// Database blocks until all outstanding snapshots are released, per the
// "snapshotting provides read-only concurrent access" contract in the
// concurrency model.
type Snapshot struct {
	db *Database
}

// Snapshot acquires a read-only view of the database for concurrent
// query evaluation. Call Close when done with it.
func (db *Database) Snapshot() *Snapshot {
	db.revMu.RLock()
	return &Snapshot{db: db}
}

// Close releases the snapshot, allowing a pending Input.Set to proceed.
func (s *Snapshot) Close() {
	s.db.revMu.RUnlock()
}

// DB returns the underlying database for running queries against this
// snapshot's consistent view.
func (s *Snapshot) DB() *Database { return s.db }

// pushFrame begins dependency tracking for a new tracked-query
// execution and returns a function that pops it.
func (db *Database) pushFrame() (*frame, func()) {
	f := &frame{}
	db.stackMu.Lock()
	db.stack = append(db.stack, f)
	db.stackMu.Unlock()
	return f, func() {
		db.stackMu.Lock()
		db.stack = db.stack[:len(db.stack)-1]
		db.stackMu.Unlock()
	}
}

// recordRead appends a dependency to the currently-executing frame, if
// any. Calls made outside of any tracked query (e.g. directly from the
// driver) are simply not tracked, since there is nothing to invalidate.
func (db *Database) recordRead(dep depHandle) {
	db.stackMu.Lock()
	defer db.stackMu.Unlock()
	if len(db.stack) == 0 {
		return
	}
	top := db.stack[len(db.stack)-1]
	top.reads = append(top.reads, dep)
}

// SetOnExecute installs a callback invoked every time a tracked query's
// body actually executes (as opposed to being served from cache). Used
// by TrackedEngine to verify incrementality (property P3).
func (db *Database) SetOnExecute(fn func(name string)) {
	db.onExecute = fn
}

func (db *Database) notifyExecute(name string) {
	if db.onExecute != nil {
		db.onExecute(name)
	}
}
