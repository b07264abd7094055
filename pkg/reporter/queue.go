// Package reporter implements the device-side companion of the ingestion
// protocol: a bounded queue that buffers fixes while connectivity is down
// and replays them through the push endpoint once it returns.
//
// Replay safety relies on the server's dedup window: a retried fix is
// absorbed as a successful no-op, so both an accept and a duplicate count
// as consumed here.
package reporter

import (
	"context"
	"sync"
	"time"
)

// DefaultCapacity bounds device storage to the most recent fixes.
const DefaultCapacity = 1000

// Fix is one buffered GPS report, in the push endpoint's units.
type Fix struct {
	TripID     string
	Latitude   float64
	Longitude  float64
	Altitude   *float64
	Accuracy   *float64
	Heading    *float64
	SpeedKMH   float64
	RecordedAt time.Time
}

// SendFunc delivers one fix to the push endpoint. A nil error means the
// server consumed the fix, whether freshly accepted or absorbed as a
// duplicate. A non-nil error means delivery is unknown and the fix must be
// retained for the next replay.
type SendFunc func(ctx context.Context, f Fix) error

// Queue is a bounded FIFO of unsent fixes. When full, the oldest entry is
// dropped so the buffer always holds the most recent capacity fixes.
type Queue struct {
	mu       sync.Mutex
	fixes    []Fix
	capacity int
}

// NewQueue creates a queue with the given capacity; zero or negative uses
// DefaultCapacity.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue{capacity: capacity}
}

// Push appends a fix, evicting the oldest entry when the queue is full.
func (q *Queue) Push(f Fix) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.fixes) >= q.capacity {
		q.fixes = q.fixes[1:]
	}
	q.fixes = append(q.fixes, f)
}

// Len returns the number of buffered fixes.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.fixes)
}

// Replay sends buffered fixes sequentially, oldest first. It stops on the
// first send error or context cancellation, retaining undelivered fixes,
// and returns how many were consumed.
func (q *Queue) Replay(ctx context.Context, send SendFunc) (int, error) {
	sent := 0
	for {
		q.mu.Lock()
		if len(q.fixes) == 0 {
			q.mu.Unlock()
			return sent, nil
		}
		f := q.fixes[0]
		q.mu.Unlock()

		if err := ctx.Err(); err != nil {
			return sent, err
		}
		if err := send(ctx, f); err != nil {
			return sent, err
		}

		q.mu.Lock()
		// Fixes pushed during the send land at the tail, so the head is
		// still the entry just delivered.
		if len(q.fixes) > 0 {
			q.fixes = q.fixes[1:]
		}
		q.mu.Unlock()
		sent++
	}
}
