package models

import "errors"

var (
	// ErrNotFound is returned when a requested resource is not found.
	ErrNotFound = errors.New("resource not found")

	// ErrTripNotActive is returned when a position report arrives for a trip
	// that is not currently DEPARTED. Expected and frequent near trip-lifecycle
	// boundaries, so callers should not log it as a failure.
	ErrTripNotActive = errors.New("trip is not departed")

	// ErrInvalidToken is returned when a tracking token does not match any trip.
	ErrInvalidToken = errors.New("invalid tracking token")

	// ErrForbidden is returned when the caller is not the trip's driver,
	// conductor, or an admin of the owning company.
	ErrForbidden = errors.New("not authorized for this trip")

	// ErrRateLimited is returned when an identity exceeds its reporting quota.
	ErrRateLimited = errors.New("too many position reports")

	// ErrValidation is returned when a position report fails field validation.
	ErrValidation = errors.New("invalid position report")
)

// ErrorResponse is the generic JSON error body returned by the API.
type ErrorResponse struct {
	Message string `json:"message"`
}
