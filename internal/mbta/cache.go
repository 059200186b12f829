package mbta

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sort"
	"sync"
	"time"

	"mbtaboard.org/internal/metrics"
)

const (
	// DefaultMaxCacheEntries bounds each cache tier independently.
	DefaultMaxCacheEntries = 128

	// DefaultCutoverHour is the local hour at which result-tier entries
	// expire. 03:00 falls inside the MBTA's nightly service gap, so cached
	// results refresh once per service day.
	DefaultCutoverHour = 3
)

// CacheEntry is an origin-tier entry: the raw payload of the last fresh
// response for a key plus the revalidation token the server sent with it.
// Entries are immutable; an update replaces the entry wholesale.
type CacheEntry struct {
	Payload      []byte
	Timestamp    time.Time
	LastModified string
}

// MemoEntry is a result-tier entry: a decoded high-level value and the
// moment it was computed.
type MemoEntry struct {
	Value     any
	Timestamp time.Time
}

// CacheConfig configures a ResponseCache.
type CacheConfig struct {
	MaxEntries    int
	CutoverHour   int
	StatsInterval int
}

// ResponseCache is the dual-tier response cache. The origin tier mirrors
// the upstream server's responses and is only consulted when the server
// answers "not modified" against the stored revalidation token; it has no
// expiry of its own. The result tier memoizes decoded results for one
// service day, expiring at the next cutover hour. Both tiers are bounded
// and evict their oldest entry under capacity pressure.
type ResponseCache struct {
	mu          sync.Mutex
	maxEntries  int
	cutoverHour int
	origin      map[string]CacheEntry
	result      map[string]MemoEntry
	stats       *CacheStats

	// now is swapped out by tests.
	now func() time.Time
}

// NewResponseCache returns a ResponseCache with the given bounds. A nil
// collector disables Prometheus instrumentation but not the log report.
func NewResponseCache(cfg CacheConfig, logger *slog.Logger, collector *metrics.Collector) *ResponseCache {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultMaxCacheEntries
	}
	if cfg.CutoverHour <= 0 {
		cfg.CutoverHour = DefaultCutoverHour
	}
	if cfg.StatsInterval <= 0 {
		cfg.StatsInterval = DefaultStatsInterval
	}
	return &ResponseCache{
		maxEntries:  cfg.MaxEntries,
		cutoverHour: cfg.CutoverHour,
		origin:      make(map[string]CacheEntry),
		result:      make(map[string]MemoEntry),
		stats:       newCacheStats(cfg.MaxEntries, cfg.StatsInterval, logger, collector),
		now:         time.Now,
	}
}

// CacheKey derives a deterministic digest for an endpoint path and its
// query parameters. Parameters are folded in sorted order so parameter
// order never causes a spurious miss.
func CacheKey(path string, params map[string]string) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	h := sha256.New()
	h.Write([]byte(path))
	for _, name := range names {
		h.Write([]byte{0})
		h.Write([]byte(name))
		h.Write([]byte{'='})
		h.Write([]byte(params[name]))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the origin-tier entry for the endpoint and parameter set.
// Origin entries never expire locally; staleness is delegated to the
// upstream server via the revalidation token.
func (c *ResponseCache) Get(path string, params map[string]string) (CacheEntry, bool) {
	key := CacheKey(path, params)

	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.origin[key]
	return entry, ok
}

// Put replaces the origin-tier entry for the endpoint and parameter set
// and returns the entry's timestamp.
func (c *ResponseCache) Put(path string, params map[string]string, payload []byte, lastModified string) time.Time {
	key := CacheKey(path, params)
	timestamp := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.origin[key] = CacheEntry{Payload: payload, Timestamp: timestamp, LastModified: lastModified}
	c.enforceOriginBound()
	c.stats.record(tierOrigin, eventUpdate, len(c.origin))
	return timestamp
}

// RecordOriginHit counts a revalidated ("not modified") origin-tier use.
// The transport calls it when the server confirms the cached payload.
func (c *ResponseCache) RecordOriginHit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.record(tierOrigin, eventHit, len(c.origin))
}

// RecordOriginMiss counts a fetch that required a fresh payload.
func (c *ResponseCache) RecordOriginMiss() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.record(tierOrigin, eventMiss, len(c.origin))
}

// GetResult returns the result-tier value for a logical operation key, if
// present and still valid for the current service day.
func (c *ResponseCache) GetResult(key string) (any, time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.result[key]
	if !ok {
		c.stats.record(tierResult, eventMiss, len(c.result))
		return nil, time.Time{}, false
	}
	if !c.now().Before(c.nextCutover(entry.Timestamp)) {
		delete(c.result, key)
		c.stats.record(tierResult, eventEviction, len(c.result))
		c.stats.record(tierResult, eventMiss, len(c.result))
		return nil, time.Time{}, false
	}
	c.stats.record(tierResult, eventHit, len(c.result))
	return entry.Value, entry.Timestamp, true
}

// PutResult replaces the result-tier entry for a logical operation key.
func (c *ResponseCache) PutResult(key string, value any, timestamp time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.result[key] = MemoEntry{Value: value, Timestamp: timestamp}
	c.enforceResultBound()
	c.stats.record(tierResult, eventUpdate, len(c.result))
}

// Report logs the accumulated cache statistics.
func (c *ResponseCache) Report() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.report()
}

// nextCutover returns the first occurrence of the cutover hour strictly
// after t.
func (c *ResponseCache) nextCutover(t time.Time) time.Time {
	cutover := time.Date(t.Year(), t.Month(), t.Day(), c.cutoverHour, 0, 0, 0, t.Location())
	if !t.Before(cutover) {
		cutover = cutover.AddDate(0, 0, 1)
	}
	return cutover
}

func (c *ResponseCache) enforceOriginBound() {
	for len(c.origin) > c.maxEntries {
		delete(c.origin, oldestKey(c.origin, func(e CacheEntry) time.Time { return e.Timestamp }))
		c.stats.record(tierOrigin, eventEviction, len(c.origin))
	}
}

func (c *ResponseCache) enforceResultBound() {
	for len(c.result) > c.maxEntries {
		delete(c.result, oldestKey(c.result, func(e MemoEntry) time.Time { return e.Timestamp }))
		c.stats.record(tierResult, eventEviction, len(c.result))
	}
}

// oldestKey scans for the entry with the oldest timestamp. O(n), which is
// fine for the bounded sizes these tiers run at.
func oldestKey[E any](entries map[string]E, timestamp func(E) time.Time) string {
	var oldest string
	var oldestAt time.Time
	first := true
	for key, entry := range entries {
		at := timestamp(entry)
		if first || at.Before(oldestAt) {
			oldest = key
			oldestAt = at
			first = false
		}
	}
	return oldest
}
