// Package models defines the data structures shared across the tracking
// subsystem: trips, position records, fleet views, and request/response DTOs.
package models

import "time"

// TripStatus is the lifecycle state of a trip. Positions are accepted only
// while the trip is DEPARTED.
type TripStatus string

const (
	TripScheduled TripStatus = "SCHEDULED"
	TripBoarding  TripStatus = "BOARDING"
	TripDeparted  TripStatus = "DEPARTED"
	TripCompleted TripStatus = "COMPLETED"
	TripCancelled TripStatus = "CANCELLED"
)

// Trip carries the fields the tracking pipeline needs. Booking, seating and
// pricing attributes live elsewhere in the platform and are not loaded here.
type Trip struct {
	ID          string     `json:"id"`
	CompanyID   string     `json:"company_id"`
	VehicleID   string     `json:"vehicle_id"`
	DriverID    string     `json:"driver_id,omitempty"`
	ConductorID string     `json:"conductor_id,omitempty"`
	Origin      string     `json:"origin"`
	Destination string     `json:"destination"`
	Stops       []string   `json:"stops,omitempty"`
	Status      TripStatus `json:"status"`

	// TrackingToken authenticates the GPS-logger protocol. Nil until first
	// issuance; never serialized to passengers.
	TrackingToken  *string `json:"-"`
	TrackingActive bool    `json:"tracking_active"`

	// Last-known-position projection. All nil until the first accepted fix.
	LastLatitude     *float64   `json:"last_latitude,omitempty"`
	LastLongitude    *float64   `json:"last_longitude,omitempty"`
	LastSpeedKMH     *float64   `json:"last_speed_kmh,omitempty"`
	LastHeading      *float64   `json:"last_heading,omitempty"`
	LastPositionAt   *time.Time `json:"last_position_at,omitempty"`
	EstimatedArrival *time.Time `json:"estimated_arrival,omitempty"`
}

// TrackingState is the consumer-facing classification of a trip's tracking.
type TrackingState string

const (
	TrackingLive  TrackingState = "live"
	TrackingStale TrackingState = "stale"
	TrackingOff   TrackingState = "off"
)

// StalenessThreshold separates live from stale tracking.
const StalenessThreshold = 120 * time.Second

// TrackingStateAt derives the live/stale/off classification at the given
// instant. Derived on read, never stored.
func (t *Trip) TrackingStateAt(now time.Time) TrackingState {
	if t.Status != TripDeparted || !t.TrackingActive || t.LastPositionAt == nil {
		return TrackingOff
	}
	if now.Sub(*t.LastPositionAt) <= StalenessThreshold {
		return TrackingLive
	}
	return TrackingStale
}

// TrackingTokenResponse is returned by the token issuance and rotate endpoints.
type TrackingTokenResponse struct {
	Token       string `json:"token"`
	TrackingURL string `json:"tracking_url"`
	Existing    bool   `json:"existing"`
}
