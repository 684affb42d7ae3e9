package search

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/hyperjump/atsume/internal/models"
)

// Stats tracks process-wide search counters. Counters are shared across
// concurrent requests, so increments go through atomics and the histogram
// behind a mutex. Purely observational; never affects ranking.
type Stats struct {
	totalSearches atomic.Int64
	totalTime     atomic.Int64 // nanoseconds

	mu     sync.Mutex
	byType map[models.SearchType]int64
}

// NewStats creates an empty stats collector. Injected once at process
// start; not a package-level singleton.
func NewStats() *Stats {
	return &Stats{byType: make(map[models.SearchType]int64)}
}

// Record adds one completed search of the given type and duration.
func (s *Stats) Record(searchType models.SearchType, elapsed time.Duration) {
	s.totalSearches.Add(1)
	s.totalTime.Add(int64(elapsed))
	s.mu.Lock()
	s.byType[searchType]++
	s.mu.Unlock()
}

// Snapshot returns a consistent copy of the counters.
func (s *Stats) Snapshot() models.SearchStats {
	total := s.totalSearches.Load()
	var avg float64
	if total > 0 {
		avg = time.Duration(s.totalTime.Load() / total).Seconds()
	}
	s.mu.Lock()
	byType := make(map[string]int64, len(s.byType))
	for t, n := range s.byType {
		byType[string(t)] = n
	}
	s.mu.Unlock()
	return models.SearchStats{
		TotalSearches: total,
		AvgSearchTime: avg,
		SearchTypes:   byType,
	}
}
