// Package watch implements the watch-mode filesystem notification
// plumbing spec.md §1 names as an external collaborator: fsnotify
// events, debounced, translated into pkg/registry.Registry edits
// (UpdateContent for an existing file, AddFile/RemoveFile for files
// appearing or disappearing) so a running CLI `--watch` or IDE session
// keeps the engine.Database's Input cells in sync with disk.
package watch

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/graphlang/gqlanalyzer/pkg/registry"
)

// Classifier maps a filesystem path to the Language/DocumentKind a
// newly-appearing file should be registered as, and reports whether
// the path is in scope at all (an include/exclude decision the caller
// — cmd/gqlanalyze's resolved config — already knows how to make).
type Classifier func(path string) (lang registry.Language, kind registry.DocumentKind, inScope bool)

// Watcher wires an fsnotify.Watcher to a Registry, debouncing bursts of
// events for the same path (editors commonly emit write+chmod pairs,
// and `go build`-style tools rewrite files via a temp-file-then-rename
// dance that fsnotify sees as remove+create).
type Watcher struct {
	fsw        *fsnotify.Watcher
	reg        *registry.Registry
	classify   Classifier
	log        *logrus.Logger
	debounce   time.Duration
	mu         sync.Mutex
	pending    map[string]*time.Timer
	pathToFile map[string]registry.FileId

	// OnChange, if set, is invoked after every debounced registry
	// mutation — cmd/gqlanalyze's --watch mode uses it to re-run
	// analysis and reprint the report.
	OnChange func()
}

// New creates a Watcher over reg. debounce of 0 defaults to 150ms.
func New(reg *registry.Registry, classify Classifier, log *logrus.Logger, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = 150 * time.Millisecond
	}
	return &Watcher{
		fsw:        fsw,
		reg:        reg,
		classify:   classify,
		log:        log,
		debounce:   debounce,
		pending:    make(map[string]*time.Timer),
		pathToFile: make(map[string]registry.FileId),
	}, nil
}

// AddRoot recursively watches every directory under root, skipping
// node_modules the way spec.md §6's documents discovery always does.
func (w *Watcher) AddRoot(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "node_modules" || d.Name() == ".git" {
				return filepath.SkipDir
			}
			return w.fsw.Add(path)
		}
		return nil
	})
}

// Track registers an already-loaded file's path->FileId mapping so
// future write events resolve to UpdateContent rather than AddFile.
func (w *Watcher) Track(path string, id registry.FileId) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pathToFile[path] = id
}

// Run processes fsnotify events until stop is closed.
func (w *Watcher) Run(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.schedule(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if w.log != nil {
				w.log.WithFields(logrus.Fields{"error": err}).Warn("watch: fsnotify error")
			}
		}
	}
}

func (w *Watcher) schedule(ev fsnotify.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[ev.Name]; ok {
		t.Stop()
	}
	w.pending[ev.Name] = time.AfterFunc(w.debounce, func() { w.handle(ev) })
}

func (w *Watcher) handle(ev fsnotify.Event) {
	w.mu.Lock()
	delete(w.pending, ev.Name)
	id, tracked := w.pathToFile[ev.Name]
	w.mu.Unlock()

	changed := false
	switch {
	case ev.Op&fsnotify.Remove != 0 || ev.Op&fsnotify.Rename != 0:
		if tracked {
			w.reg.RemoveFile(id)
			w.mu.Lock()
			delete(w.pathToFile, ev.Name)
			w.mu.Unlock()
			changed = true
		}

	case ev.Op&fsnotify.Write != 0 || ev.Op&fsnotify.Create != 0:
		content, err := os.ReadFile(ev.Name)
		if err != nil {
			return // file briefly missing mid-write; next event will catch up
		}
		if tracked {
			w.reg.UpdateContent(id, string(content))
			changed = true
		} else {
			lang, kind, inScope := w.classify(ev.Name)
			if !inScope {
				return
			}
			newID := w.reg.AddFile(registry.FileUri("file://"+ev.Name), string(content), lang, kind)
			w.mu.Lock()
			w.pathToFile[ev.Name] = newID
			w.mu.Unlock()
			changed = true
		}
	}

	if changed && w.OnChange != nil {
		w.OnChange()
	}
}

// Close releases the underlying fsnotify watcher.
func (w *Watcher) Close() error { return w.fsw.Close() }
