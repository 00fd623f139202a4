package engine

import "strconv"

// Input is a typed, externally-settable value cell with its own
// revision counter. The File Registry (pkg/registry) expresses edits
// as Set calls on these cells; Set does not compare the new value with
// the old, so every call counts as a change for the queries that read
// the cell.
type Input[T any] struct {
	id uint64
	db *Database
}

// NewInput creates a fresh input cell seeded with value.
func NewInput[T any](db *Database, value T) Input[T] {
	db.cellsMu.Lock()
	id := db.nextID
	db.nextID++
	db.cells[id] = &cell{value: value, changedAt: db.currentRevision()}
	db.cellsMu.Unlock()
	return Input[T]{id: id, db: db}
}

// Get reads the current value and records a dependency on this cell in
// the enclosing tracked query, if any.
func (in Input[T]) Get() T {
	in.db.cellsMu.RLock()
	c := in.db.cells[in.id]
	val, _ := c.value.(T)
	in.db.cellsMu.RUnlock()
	in.db.recordRead(inputDep{db: in.db, id: in.id})
	return val
}

// Set assigns a new value and advances the database's revision. Every
// tracked query whose read-set included this cell is invalidated; every
// other tracked query is left exactly as cached.
func (in Input[T]) Set(value T) {
	rev := in.db.bumpRevision()
	in.db.cellsMu.Lock()
	in.db.cells[in.id] = &cell{value: value, changedAt: rev}
	in.db.cellsMu.Unlock()
}

// ID returns an opaque identifier stable for the lifetime of the cell.
// Useful as a map key when many Inputs of the same type are tracked
// (e.g. the File Registry's per-file content cells).
func (in Input[T]) ID() uint64 { return in.id }

// inputDep is the depHandle implementation for Input cells: an input's
// "current" changedAt IS the ground truth, so refresh never recomputes
// anything, it just reads the cell.
type inputDep struct {
	db *Database
	id uint64
}

func (d inputDep) refresh(db *Database) Revision {
	db.cellsMu.RLock()
	defer db.cellsMu.RUnlock()
	return db.cells[d.id].changedAt
}

func (d inputDep) describe() string {
	return "input#" + strconv.FormatUint(d.id, 10)
}
