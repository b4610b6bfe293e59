package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const (
	DEFAULT_MAX_REQUESTS = 5
	DEFAULT_WINDOW       = 60 * time.Second

	// full sweep of idle keys, independent of the per-key lazy pruning
	fullPruneInterval = 5 * time.Minute
)

// Limiter decides whether one more request for key fits into the rolling window.
// Rejected requests are not recorded.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type RateLimitedError struct {
	Key string
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s", e.Key)
}

type MemoryLimiter struct {
	mu            sync.Mutex
	hits          map[string][]time.Time
	maxRequests   int
	window        time.Duration
	now           func() time.Time
	lastFullPrune time.Time
}

func NewMemoryLimiter(maxRequests int, window time.Duration) *MemoryLimiter {
	return NewMemoryLimiterWithClock(maxRequests, window, time.Now)
}

func NewMemoryLimiterWithClock(maxRequests int, window time.Duration, now func() time.Time) *MemoryLimiter {
	if maxRequests <= 0 {
		maxRequests = DEFAULT_MAX_REQUESTS
	}
	if window <= 0 {
		window = DEFAULT_WINDOW
	}
	return &MemoryLimiter{
		hits:          map[string][]time.Time{},
		maxRequests:   maxRequests,
		window:        window,
		now:           now,
		lastFullPrune: now(),
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	if now.Sub(l.lastFullPrune) >= fullPruneInterval {
		for k, ts := range l.hits {
			if len(ts) == 0 || !ts[len(ts)-1].After(cutoff) {
				delete(l.hits, k)
			}
		}
		l.lastFullPrune = now
	}

	recent := pruneBefore(l.hits[key], cutoff)
	if len(recent) >= l.maxRequests {
		l.hits[key] = recent
		return false, nil
	}
	l.hits[key] = append(recent, now)
	return true, nil
}

// Len returns the number of tracked keys.
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.hits)
}

// pruneBefore drops the leading timestamps that are not after cutoff; ts is ordered.
func pruneBefore(ts []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(ts) && !ts[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return ts
	}
	return append([]time.Time(nil), ts[i:]...)
}
