// Package tracking implements the real-time fleet position pipeline: two
// protocol adapters normalize device input into one internal report, which
// flows through rate limiting, the trip status gate, duplicate absorption,
// the append-only position store, and the arrival estimator.
package tracking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fleet-tracking/internal/metrics"
	"fleet-tracking/internal/models"
	"fleet-tracking/internal/ratelimit"
	"fleet-tracking/pkg/utils"
)

// DedupWindow is the lookback used to absorb retried fixes. Asymmetric on
// purpose: only fixes recorded in the preceding window absorb the incoming
// one, so rapid legitimate consecutive fixes pass while retries of the same
// fix are no-ops.
const DedupWindow = 5 * time.Second

// Identity is the authenticated caller of the push protocol.
type Identity struct {
	UserID    string
	Role      string
	CompanyID string
}

// EventPublisher fans accepted fixes out to downstream consumers. A nil
// publisher disables fan-out.
type EventPublisher interface {
	PublishPosition(rec *models.PositionRecord)
}

// ServiceInterface defines the tracking pipeline's business operations.
type ServiceInterface interface {
	// ReportPush ingests a fix from the authenticated mobile reporter.
	ReportPush(ctx context.Context, ident Identity, tripID string, req models.PushPositionRequest) (*models.PushPositionResponse, error)
	// ReportDevice ingests a fix from the token-authenticated GPS logger.
	// The report's speed is already converted to km/h by the adapter.
	ReportDevice(ctx context.Context, token string, report models.PositionReport) error
	// IssueToken mints (idempotently) the trip's tracking token.
	IssueToken(ctx context.Context, ident Identity, tripID string) (*models.TrackingTokenResponse, error)
	// RotateToken replaces the trip's tracking token, invalidating the old one.
	RotateToken(ctx context.Context, ident Identity, tripID string) (*models.TrackingTokenResponse, error)
	// GetTripTracking returns the projection, classification and waypoints.
	GetTripTracking(ctx context.Context, tripID string) (*models.TripTrackingView, error)
	// ListPositions returns the trip's position history.
	ListPositions(ctx context.Context, tripID string, limit int) ([]*models.PositionRecord, error)
	// GetFleet aggregates all DEPARTED trips for a company.
	GetFleet(ctx context.Context, ident Identity, companyID string) (*models.FleetView, error)
}

// Service implements ServiceInterface.
type Service struct {
	repo      RepositoryInterface
	limiter   *ratelimit.Limiter
	estimator *Estimator
	collector *metrics.Collector
	publisher EventPublisher
	baseURL   string
	now       func() time.Time
}

// NewService wires the pipeline. publisher may be nil.
func NewService(repo RepositoryInterface, limiter *ratelimit.Limiter, estimator *Estimator, collector *metrics.Collector, publisher EventPublisher, baseURL string) *Service {
	return &Service{
		repo:      repo,
		limiter:   limiter,
		estimator: estimator,
		collector: collector,
		publisher: publisher,
		baseURL:   baseURL,
		now:       time.Now,
	}
}

// authorizeTrip checks that the caller may report for or manage the trip:
// its assigned driver or conductor, an admin of the owning company, or a
// super admin.
func authorizeTrip(ident Identity, trip *models.Trip) error {
	switch {
	case ident.Role == models.RoleSuperAdmin:
		return nil
	case ident.Role == models.RoleCompanyAdmin && ident.CompanyID == trip.CompanyID:
		return nil
	case ident.UserID != "" && (ident.UserID == trip.DriverID || ident.UserID == trip.ConductorID):
		return nil
	}
	return models.ErrForbidden
}

func (s *Service) ReportPush(ctx context.Context, ident Identity, tripID string, req models.PushPositionRequest) (*models.PushPositionResponse, error) {
	if !s.limiter.Allow(ctx, "app:"+ident.UserID) {
		s.collector.PositionsRejected.WithLabelValues("rate_limited").Inc()
		return nil, models.ErrRateLimited
	}

	trip, err := s.repo.FindTripByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if err := authorizeTrip(ident, trip); err != nil {
		s.collector.PositionsRejected.WithLabelValues("unauthorized").Inc()
		return nil, err
	}

	report := models.PositionReport{
		TripID:    tripID,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Altitude:  req.Altitude,
		Accuracy:  req.Accuracy,
		Heading:   req.Heading,
	}
	if req.SpeedKMH != nil {
		report.SpeedKMH = *req.SpeedKMH
	}
	if req.RecordedAt != nil {
		report.RecordedAt = *req.RecordedAt
	}

	eta, err := s.ingest(ctx, trip, report)
	if err != nil {
		return nil, err
	}
	return &models.PushPositionResponse{Success: true, EstimatedArrival: eta}, nil
}

func (s *Service) ReportDevice(ctx context.Context, token string, report models.PositionReport) error {
	if !s.limiter.Allow(ctx, "device:"+token) {
		s.collector.PositionsRejected.WithLabelValues("rate_limited").Inc()
		return models.ErrRateLimited
	}

	trip, err := s.repo.FindTripByToken(ctx, token)
	if err != nil {
		if errors.Is(err, models.ErrInvalidToken) {
			s.collector.PositionsRejected.WithLabelValues("unauthorized").Inc()
		}
		return err
	}

	report.TripID = trip.ID
	_, err = s.ingest(ctx, trip, report)
	return err
}

// ingest runs the shared pipeline tail: status gate, validation, dedup,
// ETA, append + projection, fan-out. The rate limiter has already run on
// the adapter-specific identity.
func (s *Service) ingest(ctx context.Context, trip *models.Trip, report models.PositionReport) (*time.Time, error) {
	started := s.now()

	if trip.Status != models.TripDeparted {
		s.collector.PositionsRejected.WithLabelValues("not_active").Inc()
		return nil, models.ErrTripNotActive
	}

	if err := utils.GetValidator().Validate(report); err != nil {
		s.collector.PositionsRejected.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}
	if report.RecordedAt.IsZero() {
		report.RecordedAt = s.now().UTC()
	}

	dup, err := s.repo.HasRecentPosition(ctx, trip.ID, report.RecordedAt, DedupWindow)
	if err != nil {
		return nil, err
	}
	if dup {
		// Retry absorption: the client already delivered this fix, so the
		// call succeeds without touching the store.
		s.collector.PositionsDuplicate.Inc()
		return trip.EstimatedArrival, nil
	}

	eta := s.estimator.EstimateArrival(trip, report.Latitude, report.Longitude, report.SpeedKMH, s.now())

	rec := &models.PositionRecord{
		TripID:     trip.ID,
		VehicleID:  trip.VehicleID,
		Latitude:   report.Latitude,
		Longitude:  report.Longitude,
		Altitude:   report.Altitude,
		Accuracy:   report.Accuracy,
		Heading:    report.Heading,
		SpeedKMH:   report.SpeedKMH,
		RecordedAt: report.RecordedAt,
	}
	if err := s.repo.SavePosition(ctx, rec, eta); err != nil {
		return nil, err
	}

	s.collector.PositionsAccepted.Inc()
	s.collector.ObserveIngest(s.now().Sub(started))
	if s.publisher != nil {
		s.publisher.PublishPosition(rec)
	}
	return eta, nil
}

// trackingURL builds the URL a GPS logger substitutes its readings into.
func (s *Service) trackingURL(token string) string {
	return s.baseURL + "/api/device/gps?token=" + token +
		"&lat={LAT}&lon={LON}&timestamp={TIMESTAMP}&speed={SPEED}&bearing={BEARING}&altitude={ALT}&hdop={HDOP}"
}

func (s *Service) IssueToken(ctx context.Context, ident Identity, tripID string) (*models.TrackingTokenResponse, error) {
	trip, err := s.repo.FindTripByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if err := authorizeTrip(ident, trip); err != nil {
		return nil, err
	}
	if trip.Status != models.TripDeparted {
		return nil, models.ErrTripNotActive
	}
	if trip.TrackingToken != nil {
		return &models.TrackingTokenResponse{
			Token:       *trip.TrackingToken,
			TrackingURL: s.trackingURL(*trip.TrackingToken),
			Existing:    true,
		}, nil
	}

	token, err := utils.GenerateSecureToken(16)
	if err != nil {
		return nil, fmt.Errorf("service.IssueToken: %w", err)
	}
	if err := s.repo.SetTrackingToken(ctx, tripID, token); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// Lost a race with a concurrent issuance; the stored token wins.
			if trip, err = s.repo.FindTripByID(ctx, tripID); err == nil && trip.TrackingToken != nil {
				return &models.TrackingTokenResponse{
					Token:       *trip.TrackingToken,
					TrackingURL: s.trackingURL(*trip.TrackingToken),
					Existing:    true,
				}, nil
			}
		}
		return nil, err
	}
	return &models.TrackingTokenResponse{Token: token, TrackingURL: s.trackingURL(token)}, nil
}

func (s *Service) RotateToken(ctx context.Context, ident Identity, tripID string) (*models.TrackingTokenResponse, error) {
	trip, err := s.repo.FindTripByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if err := authorizeTrip(ident, trip); err != nil {
		return nil, err
	}
	if trip.Status != models.TripDeparted {
		return nil, models.ErrTripNotActive
	}

	token, err := utils.GenerateSecureToken(16)
	if err != nil {
		return nil, fmt.Errorf("service.RotateToken: %w", err)
	}
	if err := s.repo.ReplaceTrackingToken(ctx, tripID, token); err != nil {
		return nil, err
	}
	return &models.TrackingTokenResponse{Token: token, TrackingURL: s.trackingURL(token)}, nil
}

func (s *Service) GetTripTracking(ctx context.Context, tripID string) (*models.TripTrackingView, error) {
	trip, err := s.repo.FindTripByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	return &models.TripTrackingView{
		Trip:      trip,
		State:     trip.TrackingStateAt(s.now()),
		Waypoints: s.estimator.Waypoints(trip),
	}, nil
}

func (s *Service) ListPositions(ctx context.Context, tripID string, limit int) ([]*models.PositionRecord, error) {
	if _, err := s.repo.FindTripByID(ctx, tripID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 1000 {
		limit = 1000
	}
	return s.repo.ListPositions(ctx, tripID, limit)
}

func (s *Service) GetFleet(ctx context.Context, ident Identity, companyID string) (*models.FleetView, error) {
	switch ident.Role {
	case models.RoleSuperAdmin:
	case models.RoleCompanyAdmin:
		if ident.CompanyID != companyID {
			return nil, models.ErrForbidden
		}
	default:
		return nil, models.ErrForbidden
	}

	trips, err := s.repo.ListDepartedTripsByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	view := &models.FleetView{Trips: make([]models.FleetTrip, 0, len(trips))}
	for _, trip := range trips {
		state := trip.TrackingStateAt(now)
		view.Trips = append(view.Trips, models.FleetTrip{Trip: trip, State: state})
		view.TotalDeparted++
		if state == models.TrackingLive {
			view.TotalTracking++
		}
	}
	return view, nil
}
