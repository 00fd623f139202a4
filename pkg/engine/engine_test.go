package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fpInt lets a plain int opt into early-cutoff fingerprinting for tests
// without pulling in a real HIR type.
type fpInt int

func (f fpInt) Fingerprint() string {
	if f%2 == 0 {
		return "even"
	}
	return "odd"
}

func TestQuery_MemoizesUntilInputChanges(t *testing.T) {
	db := NewDatabase()
	calls := 0
	in := NewInput(db, 10)

	double := NewQuery[struct{}, int]("double", func(db *Database, _ struct{}) int {
		calls++
		return in.Get() * 2
	})

	require.Equal(t, 20, double.Get(db, struct{}{}))
	require.Equal(t, 20, double.Get(db, struct{}{}))
	assert.Equal(t, 1, calls, "second Get should be served from cache without recomputing")

	in.Set(11)
	require.Equal(t, 22, double.Get(db, struct{}{}))
	assert.Equal(t, 2, calls, "changing the input must invalidate the memoized result")
}

func TestQuery_PerArgsIsolation(t *testing.T) {
	db := NewDatabase()
	calls := map[int]int{}

	square := NewQuery[int, int]("square", func(db *Database, n int) int {
		calls[n]++
		return n * n
	})

	assert.Equal(t, 4, square.Get(db, 2))
	assert.Equal(t, 9, square.Get(db, 3))
	assert.Equal(t, 4, square.Get(db, 2))
	assert.Equal(t, 1, calls[2])
	assert.Equal(t, 1, calls[3])
}

func TestQuery_EarlyCutoffSuppressesDownstreamRecompute(t *testing.T) {
	db := NewDatabase()
	in := NewInput(db, 4)

	parity := NewQuery[struct{}, fpInt]("parity", func(db *Database, _ struct{}) fpInt {
		return fpInt(in.Get())
	})

	downstreamCalls := 0
	downstream := NewQuery[struct{}, string]("downstream", func(db *Database, args struct{}) string {
		downstreamCalls++
		p := parity.Get(db, args)
		if p%2 == 0 {
			return "even"
		}
		return "odd"
	})

	assert.Equal(t, "even", downstream.Get(db, struct{}{}))
	assert.Equal(t, 1, downstreamCalls)

	// 4 -> 6 changes the underlying input, but fingerprint("even") is
	// unchanged, so downstream must not recompute.
	in.Set(6)
	assert.Equal(t, "even", downstream.Get(db, struct{}{}))
	assert.Equal(t, 1, downstreamCalls, "early cutoff should suppress the downstream recompute")

	// 6 -> 7 actually flips parity, so downstream must recompute.
	in.Set(7)
	assert.Equal(t, "odd", downstream.Get(db, struct{}{}))
	assert.Equal(t, 2, downstreamCalls)
}

func TestQuery_CyclicCallPanics(t *testing.T) {
	db := NewDatabase()
	var cyclic *Query[int, int]
	cyclic = NewQuery[int, int]("cyclic", func(db *Database, n int) int {
		return cyclic.Get(db, n)
	})

	assert.Panics(t, func() {
		cyclic.Get(db, 1)
	})
}

func TestTrackedEngine_CheckpointCountsExecutionsSinceEdit(t *testing.T) {
	te := NewTrackedEngine()
	a := NewInput(te.DB, 1)
	b := NewInput(te.DB, 100)

	fromA := NewQuery[struct{}, int]("fromA", func(db *Database, _ struct{}) int {
		return a.Get() + 1
	})
	fromB := NewQuery[struct{}, int]("fromB", func(db *Database, _ struct{}) int {
		return b.Get() + 1
	})

	fromA.Get(te.DB, struct{}{})
	fromB.Get(te.DB, struct{}{})

	checkpoint := te.Log.Checkpoint()
	a.Set(2)
	fromA.Get(te.DB, struct{}{})
	fromB.Get(te.DB, struct{}{})

	assert.Equal(t, 1, te.Log.ExecutionsSince(checkpoint, "fromA"), "editing `a` should re-run fromA")
	assert.Equal(t, 0, te.Log.ExecutionsSince(checkpoint, "fromB"), "editing `a` must not re-run fromB")
	assert.Equal(t, 1, te.Log.CountSince(checkpoint))
}

func TestSnapshot_ClosePermitsSubsequentWrite(t *testing.T) {
	db := NewDatabase()
	in := NewInput(db, 1)

	snap := db.Snapshot()
	snap.Close()

	in.Set(2)
	assert.Equal(t, 2, in.Get())
}
