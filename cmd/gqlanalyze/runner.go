package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/graphlang/gqlanalyzer/internal/projectload"
	"github.com/graphlang/gqlanalyzer/internal/watch"
	"github.com/graphlang/gqlanalyzer/pkg/config"
	"github.com/graphlang/gqlanalyzer/pkg/engine"
	"github.com/graphlang/gqlanalyzer/pkg/registry"
)

type analyzer func(*config.Config, *projectload.Result) map[string][]finding

// runChecks wires config -> projectload.Load -> analyze, optionally
// looping under --watch, and exits with the analyzer's exit code.
func runChecks(analyze analyzer) error {
	cfg, root, err := resolveConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	cacheDir := os.Getenv("GQLANALYZE_CACHE_DIR")

	res, err := projectload.Load(context.Background(), cfg, root, cacheDir, log)
	if err != nil {
		return err
	}

	code := report(analyze(cfg, res), format)

	if !watch && !cfg.Watch {
		os.Exit(code)
		return nil
	}

	w, err := watchProject(res, log)
	if err != nil {
		return err
	}
	defer w.Close()

	// Each path watch.Watcher tracks debounces on its own timer, so a
	// burst touching several files fires OnChange from several
	// goroutines at once. RequestCoalescer collapses a burst into one
	// in-flight re-analysis (the rest just observe its result instead
	// of racing to recompute the same report); BoundedRevalidator caps
	// how many re-analyses ever run concurrently, the same bound
	// SPEC_FULL.md §4.1a describes for batch revalidation.
	coalescer := engine.NewRequestCoalescer()
	revalidator := engine.NewBoundedRevalidator(1)
	w.OnChange = func() {
		_, _ = coalescer.Do("reanalyze", func() (any, error) {
			return nil, revalidator.Run(context.Background(), func() error {
				report(analyze(cfg, res), format)
				return nil
			})
		})
	}

	stop := make(chan struct{})
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		close(stop)
	}()
	w.Run(stop)
	return nil
}

func watchProject(res *projectload.Result, log *logrus.Logger) (*watch.Watcher, error) {
	w, err := watch.New(res.Registry, classifierForRoot(res.Root), log, 0)
	if err != nil {
		return nil, err
	}
	for id, path := range res.Paths {
		w.Track(path, id)
	}
	if err := w.AddRoot(res.Root); err != nil {
		return nil, err
	}
	return w, nil
}

func classifierForRoot(root string) watch.Classifier {
	return func(path string) (registry.Language, registry.DocumentKind, bool) {
		switch filepath.Ext(path) {
		case ".graphql", ".gql":
			return registry.LanguageGraphQL, registry.DocumentKindExecutable, true
		case ".ts", ".tsx":
			return registry.LanguageTypeScript, registry.DocumentKindExecutable, true
		case ".js", ".jsx", ".mjs", ".cjs":
			return registry.LanguageJavaScript, registry.DocumentKindExecutable, true
		default:
			return registry.LanguageGraphQL, registry.DocumentKindExecutable, false
		}
	}
}
