package engine

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"
)

// SnapshotGroup runs fn once per item concurrently, every call sharing
// one Snapshot of db taken before the group starts, returning the first
// error and canceling the group's ctx for the rest — the concurrency model's
// "independent readers, one exclusive writer" contract applied to a
// batch of IDE/CLI requests that all want a consistent view of the same
// revision (e.g. validating every document file in a project).
func SnapshotGroup[T any](ctx context.Context, db *Database, items []T, fn func(ctx context.Context, snap *Snapshot, item T) error) error {
	snap := db.Snapshot()
	defer snap.Close()

	g, gctx := errgroup.WithContext(ctx)
	for _, item := range items {
		item := item
		g.Go(func() error {
			return fn(gctx, snap, item)
		})
	}
	return g.Wait()
}

// BoundedRevalidator limits how many tracked-query recomputations run
// concurrently during a batch revalidation (e.g. re-running lint/
// validate across every file touched by a watch-mode change burst),
// so a large edit doesn't spawn one goroutine per file and thrash.
type BoundedRevalidator struct {
	sem *semaphore.Weighted
}

// NewBoundedRevalidator creates a revalidator allowing at most maxConcurrent
// in-flight query recomputations at a time.
func NewBoundedRevalidator(maxConcurrent int64) *BoundedRevalidator {
	return &BoundedRevalidator{sem: semaphore.NewWeighted(maxConcurrent)}
}

// Run blocks until a slot is free (or ctx is cancelled), then calls fn.
func (r *BoundedRevalidator) Run(ctx context.Context, fn func() error) error {
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer r.sem.Release(1)
	return fn()
}

// RequestCoalescer de-duplicates concurrent identical requests for the
// same tracked-query key so that, e.g., two IDE clients asking for
// hover at the same position at the same revision trigger exactly one
// recomputation instead of a redundant race on the same memo entry.
type RequestCoalescer struct {
	group singleflight.Group
}

// NewRequestCoalescer creates an empty coalescer.
func NewRequestCoalescer() *RequestCoalescer {
	return &RequestCoalescer{}
}

// Do runs fn for key, sharing the result (and error) among any other
// Do calls for the same key that arrive while fn is still running.
func (c *RequestCoalescer) Do(key string, fn func() (any, error)) (any, error) {
	v, err, _ := c.group.Do(key, fn)
	return v, err
}
