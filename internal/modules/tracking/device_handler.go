package tracking

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"fleet-tracking/internal/models"

	"github.com/labstack/echo/v4"
)

// Device protocol response bodies. Third-party GPS loggers treat any non-200
// status as a delivery failure and retry aggressively, so this endpoint
// answers HTTP 200 for every outcome and reports detail in the body text.
const (
	deviceOK            = "OK"
	deviceInvalidToken  = "INVALID_TOKEN"
	deviceTripNotActive = "TRIP_NOT_ACTIVE"
	deviceRateLimited   = "RATE_LIMITED"
	deviceInvalidParams = "INVALID_PARAMS"
	deviceError         = "ERROR"
)

// hdop to meters is a rough conversion; typical consumer GPS has ~5m base
// error per unit of dilution.
const metersPerHDOP = 5.0

// DeviceHandler is the protocol adapter for pull-style GPS loggers. It only
// parses, converts units, and shapes responses; the pipeline itself is the
// same one the push adapter calls.
type DeviceHandler struct {
	svc ServiceInterface
}

// NewDeviceHandler constructs the adapter.
func NewDeviceHandler(svc ServiceInterface) *DeviceHandler {
	return &DeviceHandler{svc: svc}
}

// parseDeviceReport coerces the logger's query parameters into the internal
// report contract. Speed arrives in m/s and is converted to km/h.
func parseDeviceReport(c echo.Context) (models.PositionReport, bool) {
	var report models.PositionReport

	lat, errLat := strconv.ParseFloat(c.QueryParam("lat"), 64)
	lon, errLon := strconv.ParseFloat(c.QueryParam("lon"), 64)
	if errLat != nil || errLon != nil {
		return report, false
	}
	report.Latitude = lat
	report.Longitude = lon

	if v := c.QueryParam("speed"); v != "" {
		ms, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return report, false
		}
		report.SpeedKMH = ms * 3.6
	}
	if v := c.QueryParam("bearing"); v != "" {
		b, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return report, false
		}
		report.Heading = &b
	}
	if v := c.QueryParam("altitude"); v != "" {
		alt, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return report, false
		}
		report.Altitude = &alt
	}
	if v := c.QueryParam("hdop"); v != "" {
		hdop, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return report, false
		}
		acc := hdop * metersPerHDOP
		report.Accuracy = &acc
	}
	if v := c.QueryParam("timestamp"); v != "" {
		if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
			report.RecordedAt = time.Unix(secs, 0).UTC()
		} else if ts, err := time.Parse(time.RFC3339, v); err == nil {
			report.RecordedAt = ts.UTC()
		} else {
			return report, false
		}
	}
	return report, true
}

// Report handles GET /device/gps. Always HTTP 200; see the constants above
// for the body contract.
func (h *DeviceHandler) Report(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return c.String(http.StatusOK, deviceInvalidToken)
	}

	report, ok := parseDeviceReport(c)
	if !ok {
		return c.String(http.StatusOK, deviceInvalidParams)
	}

	err := h.svc.ReportDevice(c.Request().Context(), token, report)
	switch {
	case err == nil:
		return c.String(http.StatusOK, deviceOK)
	case errors.Is(err, models.ErrInvalidToken):
		return c.String(http.StatusOK, deviceInvalidToken)
	case errors.Is(err, models.ErrTripNotActive):
		return c.String(http.StatusOK, deviceTripNotActive)
	case errors.Is(err, models.ErrRateLimited):
		return c.String(http.StatusOK, deviceRateLimited)
	case errors.Is(err, models.ErrValidation):
		return c.String(http.StatusOK, deviceInvalidParams)
	default:
		c.Logger().Errorf("device report failed: %v", err)
		return c.String(http.StatusOK, deviceError)
	}
}
