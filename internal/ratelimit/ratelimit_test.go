package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"
)

// fixedClock pins both limiter and store to a controllable instant.
func fixedClock(l *Limiter, s *MemoryStore, at time.Time) func(time.Time) {
	var mu sync.Mutex
	now := at
	fn := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	l.now = fn
	s.now = fn
	return func(t time.Time) {
		mu.Lock()
		now = t
		mu.Unlock()
	}
}

func TestLimiterBoundary(t *testing.T) {
	store := NewMemoryStore()
	l := New(store, 12, time.Minute)
	// Start exactly on a window boundary so no previous-window weight applies.
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	fixedClock(l, store, start)

	ctx := context.Background()
	for i := 1; i <= 12; i++ {
		if !l.Allow(ctx, "app:user-1") {
			t.Fatalf("call %d should be within quota", i)
		}
	}
	if l.Allow(ctx, "app:user-1") {
		t.Error("13th call within the window should be rejected")
	}
}

func TestLimiterKeysIndependent(t *testing.T) {
	store := NewMemoryStore()
	l := New(store, 2, time.Minute)
	fixedClock(l, store, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))

	ctx := context.Background()
	l.Allow(ctx, "app:user-1")
	l.Allow(ctx, "app:user-1")
	if l.Allow(ctx, "app:user-1") {
		t.Error("user-1 should be over quota")
	}
	if !l.Allow(ctx, "device:token-9") {
		t.Error("separate identity must not share the counter")
	}
}

func TestLimiterWindowExpiry(t *testing.T) {
	store := NewMemoryStore()
	l := New(store, 3, time.Minute)
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	advance := fixedClock(l, store, start)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		l.Allow(ctx, "k")
	}
	if l.Allow(ctx, "k") {
		t.Fatal("should be over quota")
	}

	// Two full windows later the old bucket carries no weight.
	advance(start.Add(2 * time.Minute))
	if !l.Allow(ctx, "k") {
		t.Error("quota should reset after the window passes")
	}
}

func TestLimiterSlidingWeight(t *testing.T) {
	store := NewMemoryStore()
	l := New(store, 10, time.Minute)
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	advance := fixedClock(l, store, start)

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		l.Allow(ctx, "k")
	}

	// 3 seconds into the next window, 95% of the previous 10 still counts.
	advance(start.Add(time.Minute + 3*time.Second))
	if l.Allow(ctx, "k") {
		t.Error("previous window weight should still reject early next-window calls")
	}
}

func TestMemoryStoreConcurrent(t *testing.T) {
	store := NewMemoryStore()
	window := time.Now().Truncate(time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.Incr(context.Background(), "k", window, time.Minute)
		}()
	}
	wg.Wait()

	cnt, err := store.Get(context.Background(), "k", window)
	if err != nil {
		t.Fatal(err)
	}
	if cnt != 50 {
		t.Errorf("expected 50 increments, got %d", cnt)
	}
}
