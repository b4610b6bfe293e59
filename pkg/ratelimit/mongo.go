package ratelimit

import (
	"context"
	"time"
)

// HitStore persists accepted requests so several relay instances share one window.
type HitStore interface {
	CountRateLimitHits(ctx context.Context, key string, since time.Time) (int64, error)
	AddRateLimitHit(ctx context.Context, key string, at time.Time, window time.Duration) error
}

// MongoLimiter counts hits in a shared collection. The count and the insert are separate
// operations, so concurrent instances can overshoot the limit by a few requests.
type MongoLimiter struct {
	store       HitStore
	maxRequests int
	window      time.Duration
	now         func() time.Time
}

func NewMongoLimiter(store HitStore, maxRequests int, window time.Duration) *MongoLimiter {
	if maxRequests <= 0 {
		maxRequests = DEFAULT_MAX_REQUESTS
	}
	if window <= 0 {
		window = DEFAULT_WINDOW
	}
	return &MongoLimiter{
		store:       store,
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
	}
}

func (l *MongoLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := l.now()
	count, err := l.store.CountRateLimitHits(ctx, key, now.Add(-l.window))
	if err != nil {
		return false, err
	}
	if count >= int64(l.maxRequests) {
		return false, nil
	}
	if err := l.store.AddRateLimitHit(ctx, key, now, l.window); err != nil {
		return false, err
	}
	return true, nil
}
