package projectload

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/graphlang/gqlanalyzer/internal/introspection"
	"github.com/graphlang/gqlanalyzer/pkg/config"
	"github.com/graphlang/gqlanalyzer/pkg/engine"
	"github.com/graphlang/gqlanalyzer/pkg/project"
	"github.com/graphlang/gqlanalyzer/pkg/registry"
)

// Result bundles the loaded project with the registry and root
// directory that produced it, for callers (cmd/gqlanalyze,
// internal/watch) that need to keep editing files after the initial
// load.
type Result struct {
	Registry *registry.Registry
	Project  *project.Project
	Root     string
	// Paths maps every registered FileId (schema and document files) to
	// its on-disk path, or to its schema:// URI for a remotely fetched
	// schema, for internal/watch.Track and for reporting.
	Paths map[registry.FileId]string
}

// Load builds a fresh Registry/Project from cfg, rooted at root (the
// config file's own directory). Remote schema sources are fetched via
// internal/introspection, using cacheDir for the disk cache (empty
// disables caching).
func Load(ctx context.Context, cfg *config.Config, root string, cacheDir string, log *logrus.Logger) (*Result, error) {
	db := engine.NewDatabase()
	reg := registry.New(db)
	paths := make(map[registry.FileId]string)

	if err := loadSchemas(ctx, cfg, root, cacheDir, reg, paths, log); err != nil {
		return nil, err
	}

	docPaths, err := Discover(root, cfg.Documents.Include, cfg.Documents.Exclude)
	if err != nil {
		return nil, fmt.Errorf("discovering document files: %w", err)
	}
	for _, path := range docPaths {
		content, err := os.ReadFile(path)
		if err != nil {
			if log != nil {
				log.WithFields(logrus.Fields{"file": path, "error": err}).Warn("projectload: skipping unreadable document file")
			}
			continue
		}
		lang := languageForPath(path)
		id := reg.AddFile(registry.FileUri("file://"+path), string(content), lang, registry.DocumentKindExecutable)
		paths[id] = path
	}

	proj := project.New(db, reg.ProjectFiles(), cfg.Extensions.ExtractConfig.ToExtractorConfig())
	proj.SetConflictResolver(config.GetConflictResolver(cfg.OnTypeConflict))

	return &Result{Registry: reg, Project: proj, Root: root, Paths: paths}, nil
}

func loadSchemas(ctx context.Context, cfg *config.Config, root, cacheDir string, reg *registry.Registry, paths map[registry.FileId]string, log *logrus.Logger) error {
	var cache *introspection.Cache
	if cacheDir != "" {
		if err := os.MkdirAll(cacheDir, 0755); err == nil {
			c, err := introspection.OpenCache(filepath.Join(cacheDir, "schema-cache.bbolt"))
			if err == nil {
				cache = c
			} else if log != nil {
				log.WithFields(logrus.Fields{"error": err}).Warn("projectload: disk cache unavailable, fetching uncached")
			}
		}
	}
	fetcher := introspection.NewFetcher(cache)

	for _, src := range cfg.Schema {
		switch src.Type {
		case "file":
			path := src.Path
			if !filepath.IsAbs(path) {
				path = filepath.Join(root, path)
			}
			content, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading schema file %s: %w", path, err)
			}
			id := reg.AddFile(registry.FileUri("file://"+path), string(content), registry.LanguageGraphQL, registry.DocumentKindSchema)
			paths[id] = path

		case "url", "introspection":
			timeout, _ := time.ParseDuration(src.Timeout)
			ttl, _ := time.ParseDuration(src.CacheTTL)
			sdl, err := fetcher.Fetch(ctx, introspection.FetchParams{
				Kind:     src.Type,
				URL:      src.URL,
				Headers:  src.Headers,
				Timeout:  timeout,
				Retries:  src.Retries,
				CacheTTL: ttl,
			})
			if err != nil {
				return fmt.Errorf("fetching schema from %s: %w", src.URL, err)
			}
			uri := introspection.VirtualURI(src.URL)
			id := reg.AddFile(registry.FileUri(uri), sdl, registry.LanguageGraphQL, registry.DocumentKindSchema)
			paths[id] = uri

		default:
			return fmt.Errorf("unsupported schema source type %q", src.Type)
		}
	}
	return nil
}

func languageForPath(path string) registry.Language {
	switch filepath.Ext(path) {
	case ".ts", ".tsx":
		return registry.LanguageTypeScript
	case ".js", ".jsx", ".mjs", ".cjs":
		return registry.LanguageJavaScript
	default:
		return registry.LanguageGraphQL
	}
}
