package tracking

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"fleet-tracking/internal/models"

	"github.com/labstack/echo/v4"
)

// stubService lets each test force a pipeline outcome.
type stubService struct {
	deviceErr  error
	lastReport models.PositionReport
	pushResp   *models.PushPositionResponse
	pushErr    error
}

func (s *stubService) ReportPush(context.Context, Identity, string, models.PushPositionRequest) (*models.PushPositionResponse, error) {
	return s.pushResp, s.pushErr
}

func (s *stubService) ReportDevice(_ context.Context, _ string, report models.PositionReport) error {
	s.lastReport = report
	return s.deviceErr
}

func (s *stubService) IssueToken(context.Context, Identity, string) (*models.TrackingTokenResponse, error) {
	return nil, errors.New("not used")
}

func (s *stubService) RotateToken(context.Context, Identity, string) (*models.TrackingTokenResponse, error) {
	return nil, errors.New("not used")
}

func (s *stubService) GetTripTracking(context.Context, string) (*models.TripTrackingView, error) {
	return nil, errors.New("not used")
}

func (s *stubService) ListPositions(context.Context, string, int) ([]*models.PositionRecord, error) {
	return nil, errors.New("not used")
}

func (s *stubService) GetFleet(context.Context, Identity, string) (*models.FleetView, error) {
	return nil, errors.New("not used")
}

func deviceRequest(t *testing.T, svc ServiceInterface, query string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/device/gps?"+query, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := NewDeviceHandler(svc)
	if err := h.Report(c); err != nil {
		t.Fatalf("device handler must never return an error: %v", err)
	}
	return rec
}

// The GPS-logger protocol requires HTTP 200 for every outcome; error detail
// travels in the body text only.
func TestDeviceReportAlwaysRespondsOK(t *testing.T) {
	goodQuery := "token=abc&lat=8.8&lon=39.0&speed=15&bearing=120&timestamp=1767225600"

	tests := []struct {
		name     string
		query    string
		svcErr   error
		wantBody string
	}{
		{"accepted", goodQuery, nil, "OK"},
		{"missing token", "lat=8.8&lon=39.0", nil, "INVALID_TOKEN"},
		{"unknown token", goodQuery, models.ErrInvalidToken, "INVALID_TOKEN"},
		{"inactive trip", goodQuery, models.ErrTripNotActive, "TRIP_NOT_ACTIVE"},
		{"rate limited", goodQuery, models.ErrRateLimited, "RATE_LIMITED"},
		{"validation failure", goodQuery, models.ErrValidation, "INVALID_PARAMS"},
		{"unparseable lat", "token=abc&lat=north&lon=39.0", nil, "INVALID_PARAMS"},
		{"missing coordinates", "token=abc", nil, "INVALID_PARAMS"},
		{"bad timestamp", "token=abc&lat=8.8&lon=39.0&timestamp=yesterday", nil, "INVALID_PARAMS"},
		{"store failure", goodQuery, errors.New("connection refused"), "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := deviceRequest(t, &stubService{deviceErr: tt.svcErr}, tt.query)
			if rec.Code != http.StatusOK {
				t.Errorf("status must always be 200, got %d", rec.Code)
			}
			if got := rec.Body.String(); got != tt.wantBody {
				t.Errorf("expected body %q, got %q", tt.wantBody, got)
			}
		})
	}
}

func TestDeviceReportUnitConversions(t *testing.T) {
	svc := &stubService{}
	deviceRequest(t, svc, "token=abc&lat=8.8&lon=39.0&speed=15&hdop=2&bearing=90&altitude=1800&timestamp=1767225600")

	r := svc.lastReport
	if r.Latitude != 8.8 || r.Longitude != 39.0 {
		t.Errorf("coordinates not passed through: %+v", r)
	}
	// 15 m/s == 54 km/h.
	if r.SpeedKMH < 53.9 || r.SpeedKMH > 54.1 {
		t.Errorf("speed not converted to km/h: %f", r.SpeedKMH)
	}
	if r.Accuracy == nil || *r.Accuracy != 10 {
		t.Errorf("hdop 2 should map to ~10m accuracy: %v", r.Accuracy)
	}
	if r.Heading == nil || *r.Heading != 90 {
		t.Errorf("bearing not mapped: %v", r.Heading)
	}
	if r.Altitude == nil || *r.Altitude != 1800 {
		t.Errorf("altitude not mapped: %v", r.Altitude)
	}
	if r.RecordedAt.Unix() != 1767225600 {
		t.Errorf("timestamp not parsed: %v", r.RecordedAt)
	}
}
