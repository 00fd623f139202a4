package main

import (
	"context"
	"sync"

	"github.com/graphlang/gqlanalyzer/internal/projectload"
	"github.com/graphlang/gqlanalyzer/pkg/engine"
	"github.com/graphlang/gqlanalyzer/pkg/project"
	"github.com/graphlang/gqlanalyzer/pkg/registry"
)

// fanOutFindings runs run once per document file concurrently, each
// against the same engine.Snapshot — the "batch of IDE/CLI requests
// that all want a consistent view of the same revision" case that
// engine.SnapshotGroup's doc describes.
func fanOutFindings(res *projectload.Result, run func(*project.Project, registry.FileId) []finding) map[string][]finding {
	ids := res.Project.DocumentFileIDs()

	var mu sync.Mutex
	byFile := make(map[string][]finding, len(ids))

	_ = engine.SnapshotGroup(context.Background(), res.Project.DB(), ids, func(_ context.Context, _ *engine.Snapshot, id registry.FileId) error {
		findings := run(res.Project, id)
		if len(findings) == 0 {
			return nil
		}
		path := res.Paths[id]
		mu.Lock()
		byFile[path] = append(byFile[path], findings...)
		mu.Unlock()
		return nil
	})

	return byFile
}
