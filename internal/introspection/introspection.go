// Package introspection resolves a config.SchemaSource of type "url" or
// "introspection" into SDL text, registering the result as a virtual
// schema file. Grounded on teacher's
// internal/loader/universal.go (loadFromURL/loadFromIntrospection,
// introspectionToSDL, getIntrospectionQuery, retry/backoff), with a
// go.etcd.io/bbolt disk cache layered on top per SPEC_FULL.md's config
// section — the teacher cached in-memory only, which doesn't survive
// across separate CLI invocations the way an IDE's long-lived process
// would.
package introspection

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.etcd.io/bbolt"
)

var cacheBucket = []byte("schema-introspection")

// Cache wraps a bbolt-backed disk cache keyed by the source's URL plus
// a hash of its headers, so distinct credentials for the same endpoint
// don't collide.
type Cache struct {
	db *bbolt.DB
}

// OpenCache opens (creating if needed) the bbolt cache file at path.
func OpenCache(path string) (*Cache, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening introspection cache: %w", err)
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(cacheBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}
	return &Cache{db: db}, nil
}

func (c *Cache) Close() error { return c.db.Close() }

type cacheEntry struct {
	SDL       string    `json:"sdl"`
	FetchedAt time.Time `json:"fetched_at"`
}

func (c *Cache) get(key string, ttl time.Duration) (string, bool) {
	if c == nil || ttl <= 0 {
		return "", false
	}
	var entry cacheEntry
	found := false
	_ = c.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(cacheBucket).Get([]byte(key))
		if raw == nil {
			return nil
		}
		if err := json.Unmarshal(raw, &entry); err != nil {
			return nil
		}
		found = true
		return nil
	})
	if !found || time.Since(entry.FetchedAt) > ttl {
		return "", false
	}
	return entry.SDL, true
}

func (c *Cache) put(key, sdl string) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(cacheEntry{SDL: sdl, FetchedAt: time.Now()})
	if err != nil {
		return
	}
	_ = c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(cacheBucket).Put([]byte(key), raw)
	})
}

func cacheKey(urlStr string, headers map[string]string) string {
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	h := sha256.New()
	for _, k := range keys {
		h.Write([]byte(k + "\x00" + headers[k] + "\x00"))
	}
	return urlStr + "|" + hex.EncodeToString(h.Sum(nil))
}

// Fetcher fetches and converts remote schemas, optionally through a
// disk Cache.
type Fetcher struct {
	httpClient *http.Client
	cache      *Cache
	retries    int
}

// NewFetcher builds a Fetcher. cache may be nil to disable caching.
func NewFetcher(cache *Cache) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cache:      cache,
		retries:    3,
	}
}

// FetchParams mirrors config.SchemaSource's URL-relevant fields.
type FetchParams struct {
	Kind     string // "url" | "introspection"
	URL      string
	Headers  map[string]string
	Timeout  time.Duration
	Retries  int
	CacheTTL time.Duration
}

// Fetch resolves params into raw SDL text, the content to register at
// "schema://<host>/schema.graphql".
func (f *Fetcher) Fetch(ctx context.Context, p FetchParams) (string, error) {
	key := cacheKey(p.URL, p.Headers)
	if sdl, ok := f.cache.get(key, p.CacheTTL); ok {
		return sdl, nil
	}

	client := f.httpClient
	if p.Timeout > 0 {
		client = &http.Client{Timeout: p.Timeout}
	}
	retries := f.retries
	if p.Retries > 0 {
		retries = p.Retries
	}

	var sdl string
	var err error
	switch p.Kind {
	case "introspection":
		sdl, err = fetchIntrospection(ctx, client, p.URL, p.Headers, retries)
	case "url":
		sdl, err = fetchSDL(ctx, client, p.URL, p.Headers, retries)
	default:
		return "", fmt.Errorf("introspection: unsupported schema source kind %q", p.Kind)
	}
	if err != nil {
		return "", err
	}

	f.cache.put(key, sdl)
	return sdl, nil
}

// VirtualURI is the spec's schema://<host>/schema.graphql naming for a
// remotely-fetched schema registered as a file.
func VirtualURI(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "schema://remote/schema.graphql"
	}
	return "schema://" + u.Host + "/schema.graphql"
}

func fetchSDL(ctx context.Context, client *http.Client, urlStr string, headers map[string]string, retries int) (string, error) {
	var lastErr error
	for attempt := 0; attempt < retries; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(1<<uint(attempt-1)) * time.Second)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
		if err != nil {
			return "", fmt.Errorf("creating request: %w", err)
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		body, err := drain(resp)
		if err != nil {
			lastErr = err
			continue
		}
		return body, nil
	}
	return "", fmt.Errorf("fetching schema from %s: %w", urlStr, lastErr)
}

func fetchIntrospection(ctx context.Context, client *http.Client, urlStr string, headers map[string]string, retries int) (string, error) {
	reqBody, err := json.Marshal(map[string]any{"query": introspectionQuery})
	if err != nil {
		return "", fmt.Errorf("marshaling introspection request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < retries; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(1<<uint(attempt-1)) * time.Second)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, urlStr, bytes.NewReader(reqBody))
		if err != nil {
			return "", fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		body, err := drain(resp)
		if err != nil {
			lastErr = err
			continue
		}

		var result struct {
			Data struct {
				Schema json.RawMessage `json:"__schema"`
			} `json:"data"`
			Errors []struct {
				Message string `json:"message"`
			} `json:"errors"`
		}
		if err := json.Unmarshal([]byte(body), &result); err != nil {
			lastErr = fmt.Errorf("parsing introspection response: %w", err)
			continue
		}
		if len(result.Errors) > 0 {
			msgs := make([]string, len(result.Errors))
			for i, e := range result.Errors {
				msgs[i] = e.Message
			}
			lastErr = fmt.Errorf("introspection returned errors: %s", strings.Join(msgs, "; "))
			continue
		}
		if len(result.Data.Schema) == 0 {
			lastErr = fmt.Errorf("introspection response had no __schema data")
			continue
		}

		return introspectionToSDL(result.Data.Schema)
	}
	return "", fmt.Errorf("introspecting %s: %w", urlStr, lastErr)
}

func drain(resp *http.Response) (string, error) {
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}
