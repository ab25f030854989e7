package dataset

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Cache memoizes Load results by (path, indicator set). Entries are
// immutable once stored; callers must not mutate returned slices.
// Concurrent sessions are safe: lookups take a read lock and
// singleflight collapses duplicate reads of the same key.
type Cache struct {
	loader *Loader
	logger *slog.Logger

	mu      sync.RWMutex
	entries map[string]cacheEntry
	group   singleflight.Group

	hits   atomic.Uint64
	misses atomic.Uint64
}

// cacheEntry remembers the load outcome, including the expected
// no-rows case, so neither result triggers a re-read.
type cacheEntry struct {
	records []Record
	err     error
}

// NewCache creates a cache over loader.
func NewCache(loader *Loader, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		loader:  loader,
		logger:  logger,
		entries: make(map[string]cacheEntry),
	}
}

// Load returns the records for (path, indicators), reading the
// workbook only on the first call for a given key.
func (c *Cache) Load(ctx context.Context, path string, indicators []string) ([]Record, error) {
	key := cacheKey(path, indicators)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
		return entry.records, entry.err
	}

	v, _, _ := c.group.Do(key, func() (interface{}, error) {
		// Re-check: a concurrent caller may have stored the entry
		// between the read lock and Do.
		c.mu.RLock()
		entry, ok := c.entries[key]
		c.mu.RUnlock()
		if ok {
			return entry, nil
		}

		c.misses.Add(1)
		records, err := c.loader.Load(path, indicators)
		entry = cacheEntry{records: records, err: err}

		c.mu.Lock()
		c.entries[key] = entry
		c.mu.Unlock()

		c.logger.DebugContext(ctx, "dataset cached",
			slog.String("path", path),
			slog.Int("records", len(records)))
		return entry, nil
	})

	entry = v.(cacheEntry)
	return entry.records, entry.err
}

// Stats returns the cumulative hit and miss counts.
func (c *Cache) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}

// cacheKey builds a stable key from the absolute path and a sorted
// copy of the indicator set, so neither a relative spelling of the
// path nor indicator order splits the cache.
func cacheKey(path string, indicators []string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	sorted := make([]string, len(indicators))
	copy(sorted, indicators)
	sort.Strings(sorted)
	return path + "\x1f" + strings.Join(sorted, "\x1e")
}
