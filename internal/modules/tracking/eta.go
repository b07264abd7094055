package tracking

import (
	"time"

	"fleet-tracking/internal/models"
	"fleet-tracking/pkg/geo"
)

// Speed bounds used when deriving travel time from a reported speed. A
// reading outside the plausible band falls back to the historical average,
// and the result is clamped so a spike never produces an arrival earlier
// than the remaining distance allows at highway speed.
const (
	fallbackSpeedKMH     = 60.0
	minPlausibleSpeedKMH = 5.0
	maxPlausibleSpeedKMH = 150.0
	maxRoadSpeedKMH      = 120.0
)

// Estimator derives arrival estimates from the latest fix and the trip's
// route geometry.
type Estimator struct {
	gaz geo.Gazetteer
}

// NewEstimator creates an estimator over the given gazetteer.
func NewEstimator(gaz geo.Gazetteer) *Estimator {
	return &Estimator{gaz: gaz}
}

// EstimateArrival computes estimated arrival from the fix position and
// reported speed. Returns nil when the destination cannot be resolved.
func (e *Estimator) EstimateArrival(trip *models.Trip, lat, lon, speedKMH float64, now time.Time) *time.Time {
	dest, ok := e.gaz.Resolve(trip.Destination)
	if !ok {
		return nil
	}

	remainingKM := geo.HaversineKM(geo.Point{Latitude: lat, Longitude: lon}, dest)

	speed := speedKMH
	if speed < minPlausibleSpeedKMH || speed > maxPlausibleSpeedKMH {
		speed = fallbackSpeedKMH
	}

	hours := remainingKM / speed
	if floor := remainingKM / maxRoadSpeedKMH; hours < floor {
		hours = floor
	}

	eta := now.Add(time.Duration(hours * float64(time.Hour)))
	return &eta
}

// Waypoints resolves the trip's route (origin, intermediate stops,
// destination) to coordinates, skipping names the gazetteer does not know.
func (e *Estimator) Waypoints(trip *models.Trip) []models.Waypoint {
	names := make([]string, 0, len(trip.Stops)+2)
	names = append(names, trip.Origin)
	names = append(names, trip.Stops...)
	names = append(names, trip.Destination)

	var wps []models.Waypoint
	for _, name := range names {
		if p, ok := e.gaz.Resolve(name); ok {
			wps = append(wps, models.Waypoint{Name: name, Latitude: p.Latitude, Longitude: p.Longitude})
		}
	}
	return wps
}
