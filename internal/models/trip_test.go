package models

import (
	"testing"
	"time"
)

func TestTrackingStateAt(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ago := func(d time.Duration) *time.Time {
		at := now.Add(-d)
		return &at
	}

	tests := []struct {
		name string
		trip Trip
		want TrackingState
	}{
		{
			name: "recent fix is live",
			trip: Trip{Status: TripDeparted, TrackingActive: true, LastPositionAt: ago(10 * time.Second)},
			want: TrackingLive,
		},
		{
			name: "fix at the threshold is still live",
			trip: Trip{Status: TripDeparted, TrackingActive: true, LastPositionAt: ago(120 * time.Second)},
			want: TrackingLive,
		},
		{
			name: "old fix is stale",
			trip: Trip{Status: TripDeparted, TrackingActive: true, LastPositionAt: ago(200 * time.Second)},
			want: TrackingStale,
		},
		{
			name: "tracking never started",
			trip: Trip{Status: TripDeparted, TrackingActive: false},
			want: TrackingOff,
		},
		{
			name: "completed trip is off even with a recent fix",
			trip: Trip{Status: TripCompleted, TrackingActive: true, LastPositionAt: ago(10 * time.Second)},
			want: TrackingOff,
		},
		{
			name: "cancelled trip is off",
			trip: Trip{Status: TripCancelled, TrackingActive: true, LastPositionAt: ago(10 * time.Second)},
			want: TrackingOff,
		},
		{
			name: "active flag without any fix is off",
			trip: Trip{Status: TripDeparted, TrackingActive: true},
			want: TrackingOff,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.trip.TrackingStateAt(now); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}
