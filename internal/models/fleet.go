package models

// Waypoint is a resolved stop on a trip's route, in travel order.
type Waypoint struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// TripTrackingView is the per-trip read model: the projection plus the
// derived classification and resolved route geometry.
type TripTrackingView struct {
	Trip      *Trip         `json:"trip"`
	State     TrackingState `json:"state"`
	Waypoints []Waypoint    `json:"waypoints,omitempty"`
}

// FleetTrip is one row of the company fleet view.
type FleetTrip struct {
	Trip  *Trip         `json:"trip"`
	State TrackingState `json:"state"`
}

// FleetView is the company-scoped aggregation over all DEPARTED trips.
type FleetView struct {
	Trips         []FleetTrip `json:"trips"`
	TotalDeparted int         `json:"total_departed"`
	TotalTracking int         `json:"total_tracking"`
}
