package mbta

import (
	"fmt"
	"log/slog"
	"strings"

	"mbtaboard.org/internal/metrics"
)

// DefaultStatsInterval is the number of cache accesses between summary
// reports through the logger.
const DefaultStatsInterval = 100

const (
	tierOrigin = "origin"
	tierResult = "result"

	eventHit      = "hit"
	eventMiss     = "miss"
	eventEviction = "eviction"
	eventUpdate   = "update"
)

type tierCounters struct {
	hits      uint64
	misses    uint64
	evictions uint64
	updates   uint64
	entries   int
}

// CacheStats tracks monotonic hit/miss/eviction/update counters per cache
// tier. Counters feed Prometheus when a collector is attached and are
// summarized into a human-readable report every statsInterval accesses.
// Purely observational; callers must hold the cache lock.
type CacheStats struct {
	maxEntries int
	interval   int
	logger     *slog.Logger
	collector  *metrics.Collector

	origin tierCounters
	result tierCounters
}

func newCacheStats(maxEntries, interval int, logger *slog.Logger, collector *metrics.Collector) *CacheStats {
	return &CacheStats{
		maxEntries: maxEntries,
		interval:   interval,
		logger:     logger,
		collector:  collector,
	}
}

func (s *CacheStats) record(tier, event string, size int) {
	counters := &s.origin
	if tier == tierResult {
		counters = &s.result
	}

	switch event {
	case eventHit:
		counters.hits++
	case eventMiss:
		counters.misses++
	case eventEviction:
		counters.evictions++
		counters.entries = size
	case eventUpdate:
		counters.updates++
		counters.entries = size
	}

	if s.collector != nil {
		s.collector.CacheEvents.WithLabelValues(tier, event).Inc()
		s.collector.CacheSize.WithLabelValues(tier).Set(float64(counters.entries))
	}

	if accesses := s.accesses(); accesses > 0 && accesses%uint64(s.interval) == 0 {
		s.report()
	}
}

func (s *CacheStats) accesses() uint64 {
	return s.origin.hits + s.origin.misses + s.result.hits + s.result.misses
}

func (s *CacheStats) report() {
	if s.logger == nil {
		return
	}
	accesses := s.accesses()
	if accesses == 0 {
		return
	}

	hitRate := int((s.origin.hits + s.result.hits) * 100 / accesses)
	originUsage := s.origin.entries * 100 / s.maxEntries
	resultUsage := s.result.entries * 100 / s.maxEntries

	s.logger.Info(fmt.Sprintf("cache stats @%d accesses", accesses),
		slog.String("hit_rate", fmt.Sprintf("%s %d%%", usageBar(hitRate), hitRate)),
		slog.String("origin_usage", fmt.Sprintf("%s %d%% (%d entries, %d evictions)",
			usageBar(originUsage), originUsage, s.origin.entries, s.origin.evictions)),
		slog.String("result_usage", fmt.Sprintf("%s %d%% (%d entries, %d evictions)",
			usageBar(resultUsage), resultUsage, s.result.entries, s.result.evictions)),
		slog.Uint64("origin_hits", s.origin.hits),
		slog.Uint64("origin_misses", s.origin.misses),
		slog.Uint64("result_hits", s.result.hits),
		slog.Uint64("result_misses", s.result.misses),
	)
}

func usageBar(percentage int) string {
	const length = 10
	filled := percentage * length / 100
	if filled < 0 {
		filled = 0
	}
	if filled > length {
		filled = length
	}
	return "|" + strings.Repeat("█", filled) + strings.Repeat("░", length-filled) + "|"
}
