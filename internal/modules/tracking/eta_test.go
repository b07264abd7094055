package tracking

import (
	"testing"
	"time"

	"fleet-tracking/pkg/geo"
)

func testEstimator() *Estimator {
	return NewEstimator(geo.NewStaticGazetteer(geo.DefaultCities()))
}

func TestEstimateArrivalUsesReportedSpeed(t *testing.T) {
	e := testEstimator()
	trip := departedTrip("t1")
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	// ~42 km straight-line to Adama at 60 km/h: roughly 42 minutes out.
	eta := e.EstimateArrival(trip, 8.8, 39.0, 60, now)
	if eta == nil {
		t.Fatal("expected an estimate for a resolvable destination")
	}
	remaining := eta.Sub(now)
	if remaining < 30*time.Minute || remaining > 55*time.Minute {
		t.Errorf("expected ~42min remaining, got %v", remaining)
	}
}

func TestEstimateArrivalFallbackSpeed(t *testing.T) {
	e := testEstimator()
	trip := departedTrip("t1")
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		speed float64
	}{
		{"zero speed", 0},
		{"crawling", 2},
		{"implausible spike", 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eta := e.EstimateArrival(trip, 8.8, 39.0, tt.speed, now)
			if eta == nil {
				t.Fatal("expected a fallback estimate")
			}
			// Fallback average is 60 km/h over ~42 km.
			remaining := eta.Sub(now)
			if remaining < 30*time.Minute || remaining > 55*time.Minute {
				t.Errorf("fallback estimate off: %v", remaining)
			}
		})
	}
}

func TestEstimateArrivalClampsToRoadSpeed(t *testing.T) {
	e := testEstimator()
	trip := departedTrip("t1")
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	// 145 km/h is within the plausible band but above the road-speed clamp,
	// so the estimate floors at distance / 120 km/h.
	eta := e.EstimateArrival(trip, 8.8, 39.0, 145, now)
	if eta == nil {
		t.Fatal("expected an estimate")
	}
	minRemaining := time.Duration(42.0 / 120.0 * float64(time.Hour))
	if eta.Sub(now) < minRemaining-2*time.Minute {
		t.Errorf("estimate beats the road-speed floor: %v", eta.Sub(now))
	}
}

func TestEstimateArrivalUnknownDestination(t *testing.T) {
	e := testEstimator()
	trip := departedTrip("t1")
	trip.Destination = "Nowhere"

	if eta := e.EstimateArrival(trip, 8.8, 39.0, 60, time.Now()); eta != nil {
		t.Error("unknown destination must yield no estimate")
	}
}

func TestWaypointsSkipUnknownStops(t *testing.T) {
	e := testEstimator()
	trip := departedTrip("t1")
	trip.Stops = []string{"Bishoftu", "Unknown Halt"}

	wps := e.Waypoints(trip)
	if len(wps) != 3 {
		t.Fatalf("expected 3 resolvable waypoints, got %d", len(wps))
	}
	for _, wp := range wps {
		if wp.Name == "Unknown Halt" {
			t.Error("unresolvable stop should be skipped")
		}
	}
}
