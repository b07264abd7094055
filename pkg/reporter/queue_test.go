package reporter

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fix(trip string, at time.Time) Fix {
	return Fix{TripID: trip, Latitude: 9.0, Longitude: 38.7, SpeedKMH: 60, RecordedAt: at}
}

func TestQueueEvictsOldest(t *testing.T) {
	q := NewQueue(3)
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		q.Push(fix("t1", base.Add(time.Duration(i)*time.Second)))
	}
	if q.Len() != 3 {
		t.Fatalf("expected capacity 3, got %d", q.Len())
	}

	var got []time.Time
	_, err := q.Replay(context.Background(), func(_ context.Context, f Fix) error {
		got = append(got, f.RecordedAt)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	// Only the most recent 3 survive, in order.
	want := []time.Time{base.Add(2 * time.Second), base.Add(3 * time.Second), base.Add(4 * time.Second)}
	if len(got) != len(want) {
		t.Fatalf("expected %d fixes, got %d", len(want), len(got))
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("fix %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestReplayStopsOnError(t *testing.T) {
	q := NewQueue(0)
	base := time.Now()
	for i := 0; i < 4; i++ {
		q.Push(fix("t1", base.Add(time.Duration(i)*time.Second)))
	}

	sendErr := errors.New("network down")
	calls := 0
	sent, err := q.Replay(context.Background(), func(_ context.Context, f Fix) error {
		calls++
		if calls == 3 {
			return sendErr
		}
		return nil
	})
	if !errors.Is(err, sendErr) {
		t.Fatalf("expected send error, got %v", err)
	}
	if sent != 2 {
		t.Errorf("expected 2 consumed, got %d", sent)
	}
	if q.Len() != 2 {
		t.Errorf("expected 2 retained, got %d", q.Len())
	}
}

func TestReplayEmptyQueue(t *testing.T) {
	q := NewQueue(0)
	sent, err := q.Replay(context.Background(), func(_ context.Context, f Fix) error {
		t.Fatal("send should not be called")
		return nil
	})
	if err != nil || sent != 0 {
		t.Errorf("expected clean no-op, got sent=%d err=%v", sent, err)
	}
}

func TestReplayHonorsContext(t *testing.T) {
	q := NewQueue(0)
	q.Push(fix("t1", time.Now()))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sent, err := q.Replay(ctx, func(_ context.Context, f Fix) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
	if sent != 0 || q.Len() != 1 {
		t.Errorf("cancelled replay must retain the queue, sent=%d len=%d", sent, q.Len())
	}
}
