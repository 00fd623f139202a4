package engine

import "sync"

// QueryLog records every tracked-query execution (cache-served reads are
// not logged; only actual recomputation) in order, so tests can verify
// the engine's incrementality promises (property P3: editing one file's
// content re-executes only the queries downstream of that file).
type QueryLog struct {
	mu      sync.Mutex
	entries []string
}

func newQueryLog() *QueryLog {
	return &QueryLog{}
}

func (l *QueryLog) record(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, name)
}

// Checkpoint returns the current length of the log, to be passed to
// CountSince/ExecutionsSince after performing an edit and a re-query.
func (l *QueryLog) Checkpoint() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// CountSince returns how many tracked-query executions of any kind have
// been recorded since the given checkpoint.
func (l *QueryLog) CountSince(checkpoint int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if checkpoint > len(l.entries) {
		return 0
	}
	return len(l.entries) - checkpoint
}

// ExecutionsSince returns how many times the named query has actually
// executed since the given checkpoint. Used to assert that an edit
// confined to one file does not re-run, say, another file's HIR query.
func (l *QueryLog) ExecutionsSince(checkpoint int, name string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	count := 0
	for i := checkpoint; i < len(l.entries); i++ {
		if l.entries[i] == name {
			count++
		}
	}
	return count
}

// AllCounts returns a snapshot of executions-per-query-name since the
// given checkpoint, for diagnostics and assertions that want the full
// picture rather than one name at a time.
func (l *QueryLog) AllCounts(checkpoint int) map[string]int {
	l.mu.Lock()
	defer l.mu.Unlock()
	counts := make(map[string]int)
	if checkpoint > len(l.entries) {
		checkpoint = len(l.entries)
	}
	for i := checkpoint; i < len(l.entries); i++ {
		counts[l.entries[i]]++
	}
	return counts
}

// Reset discards all recorded entries. Intended for test setup, not for
// use against a live engine mid-session.
func (l *QueryLog) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}

// TrackedEngine wraps a Database with an execution log wired into every
// query's onExecute hook, giving callers (principally tests asserting
// the engine's incrementality properties) a way to observe exactly
// which queries recomputed in response to a given edit.
type TrackedEngine struct {
	DB  *Database
	Log *QueryLog
}

// NewTrackedEngine creates a Database whose tracked-query executions are
// all recorded in the returned QueryLog.
func NewTrackedEngine() *TrackedEngine {
	db := NewDatabase()
	log := newQueryLog()
	db.SetOnExecute(log.record)
	return &TrackedEngine{DB: db, Log: log}
}
