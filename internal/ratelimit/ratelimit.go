// Package ratelimit implements a keyed sliding-window counter guarding the
// position-ingestion endpoints. The counter store is an interface so a
// single-process map can be swapped for a shared Redis store when multiple
// instances serve the same fleet.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// CounterStore is a keyed, TTL'd counter. Window buckets are identified by
// their start instant; implementations expire buckets after ttl.
type CounterStore interface {
	// Incr increments the bucket and returns the new count.
	Incr(ctx context.Context, key string, window time.Time, ttl time.Duration) (int64, error)
	// Get returns the bucket count, zero if absent or expired.
	Get(ctx context.Context, key string, window time.Time) (int64, error)
}

// Limiter enforces at most Limit calls per Window per key using two fixed
// buckets weighted by elapsed window fraction. Check-and-increment is O(1).
type Limiter struct {
	store  CounterStore
	limit  int
	window time.Duration
	now    func() time.Time
}

// New builds a limiter over the given store.
func New(store CounterStore, limit int, window time.Duration) *Limiter {
	return &Limiter{store: store, limit: limit, window: window, now: time.Now}
}

// Allow records one call for key and reports whether it is within quota.
// Store failures are treated as allowed so an unavailable counter store never
// blocks ingestion.
func (l *Limiter) Allow(ctx context.Context, key string) bool {
	now := l.now()
	cur := now.Truncate(l.window)
	prev := cur.Add(-l.window)

	count, err := l.store.Incr(ctx, key, cur, 2*l.window)
	if err != nil {
		return true
	}
	prevCount, err := l.store.Get(ctx, key, prev)
	if err != nil {
		prevCount = 0
	}

	elapsed := float64(now.Sub(cur)) / float64(l.window)
	weighted := float64(prevCount)*(1-elapsed) + float64(count)
	return weighted <= float64(l.limit)
}

type bucket struct {
	count     int64
	expiresAt time.Time
}

// MemoryStore is the in-process CounterStore. Expired buckets are dropped
// lazily on access and swept whenever the map grows past a watermark.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{buckets: make(map[string]*bucket), now: time.Now}
}

func bucketKey(key string, window time.Time) string {
	return key + ":" + window.UTC().Format(time.RFC3339)
}

func (s *MemoryStore) Incr(_ context.Context, key string, window time.Time, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if len(s.buckets) > 4096 {
		for k, b := range s.buckets {
			if now.After(b.expiresAt) {
				delete(s.buckets, k)
			}
		}
	}

	bk := bucketKey(key, window)
	b, ok := s.buckets[bk]
	if !ok || now.After(b.expiresAt) {
		b = &bucket{expiresAt: now.Add(ttl)}
		s.buckets[bk] = b
	}
	b.count++
	return b.count, nil
}

func (s *MemoryStore) Get(_ context.Context, key string, window time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[bucketKey(key, window)]
	if !ok || s.now().After(b.expiresAt) {
		return 0, nil
	}
	return b.count, nil
}
