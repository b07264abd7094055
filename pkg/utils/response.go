package utils

import (
	"errors"
	"net/http"

	"fleet-tracking/internal/models"

	"github.com/labstack/echo/v4"
)

// RespondWithJSON writes a JSON payload with the given status.
func RespondWithJSON(c echo.Context, status int, payload interface{}) error {
	return c.JSON(status, payload)
}

// RespondWithError writes a JSON error body with the given status.
func RespondWithError(c echo.Context, status int, message string) error {
	return c.JSON(status, models.ErrorResponse{Message: message})
}

// HandleServiceError maps service-layer sentinel errors to HTTP responses.
// Unknown errors are logged and surfaced generically.
func HandleServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return RespondWithError(c, http.StatusNotFound, "resource not found")
	case errors.Is(err, models.ErrTripNotActive):
		return RespondWithError(c, http.StatusBadRequest, "trip is not departed")
	case errors.Is(err, models.ErrForbidden):
		return RespondWithError(c, http.StatusForbidden, "not authorized for this trip")
	case errors.Is(err, models.ErrInvalidToken):
		return RespondWithError(c, http.StatusForbidden, "invalid tracking token")
	case errors.Is(err, models.ErrRateLimited):
		return RespondWithError(c, http.StatusTooManyRequests, "too many position reports")
	case errors.Is(err, models.ErrValidation):
		return RespondWithError(c, http.StatusBadRequest, "invalid position report")
	default:
		c.Logger().Errorf("internal error: %v", err)
		return RespondWithError(c, http.StatusInternalServerError, "internal server error")
	}
}

// ExtractUserInfo pulls the authenticated identity placed into the context by
// the JWT middleware.
func ExtractUserInfo(c echo.Context) (userID, role, companyID string, err error) {
	userID, _ = c.Get("userID").(string)
	role, _ = c.Get("userRole").(string)
	companyID, _ = c.Get("companyID").(string)
	if userID == "" {
		return "", "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
	}
	return userID, role, companyID, nil
}
