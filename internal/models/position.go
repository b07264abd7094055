package models

import "time"

// PositionRecord is one accepted GPS fix. Immutable once written; the
// append-only log is keyed by trip and recorded_at.
type PositionRecord struct {
	ID         string    `json:"id"`
	TripID     string    `json:"trip_id"`
	VehicleID  string    `json:"vehicle_id"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Altitude   *float64  `json:"altitude,omitempty"`
	Accuracy   *float64  `json:"accuracy,omitempty"`
	Heading    *float64  `json:"heading,omitempty"`
	SpeedKMH   float64   `json:"speed_kmh"`
	RecordedAt time.Time `json:"recorded_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// PositionReport is the single internal ingestion contract both protocol
// adapters normalize into. Speed is km/h; adapters convert device units
// before building one of these.
type PositionReport struct {
	TripID     string    `json:"trip_id" validate:"required"`
	Latitude   float64   `json:"latitude" validate:"min=-90,max=90"`
	Longitude  float64   `json:"longitude" validate:"min=-180,max=180"`
	Altitude   *float64  `json:"altitude,omitempty"`
	Accuracy   *float64  `json:"accuracy,omitempty" validate:"omitempty,min=0"`
	Heading    *float64  `json:"heading,omitempty" validate:"omitempty,min=0,max=360"`
	SpeedKMH   float64   `json:"speed_kmh" validate:"min=0"`
	RecordedAt time.Time `json:"recorded_at"`
}

// PushPositionRequest is the body of the authenticated push endpoint.
type PushPositionRequest struct {
	Latitude   float64    `json:"latitude" validate:"min=-90,max=90"`
	Longitude  float64    `json:"longitude" validate:"min=-180,max=180"`
	Altitude   *float64   `json:"altitude,omitempty"`
	Accuracy   *float64   `json:"accuracy,omitempty" validate:"omitempty,min=0"`
	Heading    *float64   `json:"heading,omitempty" validate:"omitempty,min=0,max=360"`
	SpeedKMH   *float64   `json:"speed_kmh,omitempty" validate:"omitempty,min=0"`
	RecordedAt *time.Time `json:"recorded_at,omitempty"`
}

// PushPositionResponse is returned on a successful (or duplicate-absorbed)
// push report.
type PushPositionResponse struct {
	Success          bool       `json:"success"`
	EstimatedArrival *time.Time `json:"estimated_arrival,omitempty"`
}
