package tracking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fleet-tracking/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface declares the storage operations the tracking pipeline
// needs: trip lookup, the append-only position log, the last-known-position
// projection, and tracking-token persistence.
type RepositoryInterface interface {
	// FindTripByID returns the tracking-relevant fields of a trip.
	FindTripByID(ctx context.Context, tripID string) (*models.Trip, error)
	// FindTripByToken resolves a tracking token to its trip.
	FindTripByToken(ctx context.Context, token string) (*models.Trip, error)
	// HasRecentPosition reports whether the trip already has a fix recorded
	// within the lookback window ending at recordedAt.
	HasRecentPosition(ctx context.Context, tripID string, recordedAt time.Time, window time.Duration) (bool, error)
	// SavePosition appends the fix and updates the trip's projection in one
	// transaction. The projection only advances: it is left untouched when
	// the trip already holds a newer recorded_at.
	SavePosition(ctx context.Context, rec *models.PositionRecord, estimatedArrival *time.Time) error
	// ListPositions returns the trip's fixes ordered by recorded_at ascending.
	ListPositions(ctx context.Context, tripID string, limit int) ([]*models.PositionRecord, error)
	// SetTrackingToken stores a token for a trip that has none yet.
	SetTrackingToken(ctx context.Context, tripID, token string) error
	// ReplaceTrackingToken unconditionally swaps the trip's token.
	ReplaceTrackingToken(ctx context.Context, tripID, token string) error
	// ListDepartedTripsByCompany returns all currently DEPARTED trips for a
	// company with their projections.
	ListDepartedTripsByCompany(ctx context.Context, companyID string) ([]*models.Trip, error)
}

// Repository implements RepositoryInterface using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a Repository instance.
func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

const tripColumns = `
        id, company_id, vehicle_id, COALESCE(driver_id, ''), COALESCE(conductor_id, ''),
        origin, destination, COALESCE(stops, '{}'), status, tracking_token, tracking_active,
        last_latitude, last_longitude, last_speed_kmh, last_heading,
        last_position_at, estimated_arrival`

func scanTrip(row pgx.Row) (*models.Trip, error) {
	t := &models.Trip{}
	err := row.Scan(
		&t.ID, &t.CompanyID, &t.VehicleID, &t.DriverID, &t.ConductorID,
		&t.Origin, &t.Destination, &t.Stops, &t.Status, &t.TrackingToken, &t.TrackingActive,
		&t.LastLatitude, &t.LastLongitude, &t.LastSpeedKMH, &t.LastHeading,
		&t.LastPositionAt, &t.EstimatedArrival,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *Repository) FindTripByID(ctx context.Context, tripID string) (*models.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`
	trip, err := scanTrip(r.db.QueryRow(ctx, query, tripID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindTripByID: %w", err)
	}
	return trip, nil
}

func (r *Repository) FindTripByToken(ctx context.Context, token string) (*models.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE tracking_token = $1`
	trip, err := scanTrip(r.db.QueryRow(ctx, query, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrInvalidToken
		}
		return nil, fmt.Errorf("repository.FindTripByToken: %w", err)
	}
	return trip, nil
}

func (r *Repository) HasRecentPosition(ctx context.Context, tripID string, recordedAt time.Time, window time.Duration) (bool, error) {
	// Lookback only: fixes newer than the incoming one never absorb it.
	query := `
        SELECT EXISTS (
            SELECT 1 FROM trip_positions
            WHERE trip_id = $1 AND recorded_at > $2 AND recorded_at <= $3
        )`
	var exists bool
	err := r.db.QueryRow(ctx, query, tripID, recordedAt.Add(-window), recordedAt).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("repository.HasRecentPosition: %w", err)
	}
	return exists, nil
}

func (r *Repository) SavePosition(ctx context.Context, rec *models.PositionRecord, estimatedArrival *time.Time) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository.SavePosition begin: %w", err)
	}
	defer tx.Rollback(ctx)

	insert := `
        INSERT INTO trip_positions
            (trip_id, vehicle_id, latitude, longitude, altitude, accuracy, heading, speed_kmh, recorded_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id, created_at`
	err = tx.QueryRow(ctx, insert,
		rec.TripID, rec.VehicleID, rec.Latitude, rec.Longitude,
		rec.Altitude, rec.Accuracy, rec.Heading, rec.SpeedKMH, rec.RecordedAt,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("repository.SavePosition insert: %w", err)
	}

	// The projection never rolls back to an older fix.
	update := `
        UPDATE trips
        SET last_latitude = $2, last_longitude = $3, last_speed_kmh = $4,
            last_heading = $5, last_position_at = $6, estimated_arrival = $7,
            tracking_active = TRUE
        WHERE id = $1 AND (last_position_at IS NULL OR last_position_at < $6)`
	if _, err := tx.Exec(ctx, update,
		rec.TripID, rec.Latitude, rec.Longitude, rec.SpeedKMH,
		rec.Heading, rec.RecordedAt, estimatedArrival,
	); err != nil {
		return fmt.Errorf("repository.SavePosition project: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repository.SavePosition commit: %w", err)
	}
	return nil
}

func (r *Repository) ListPositions(ctx context.Context, tripID string, limit int) ([]*models.PositionRecord, error) {
	query := `
        SELECT id, trip_id, vehicle_id, latitude, longitude, altitude, accuracy,
               heading, speed_kmh, recorded_at, created_at
        FROM trip_positions
        WHERE trip_id = $1
        ORDER BY recorded_at
        LIMIT $2`
	rows, err := r.db.Query(ctx, query, tripID, limit)
	if err != nil {
		return nil, fmt.Errorf("repository.ListPositions: %w", err)
	}
	defer rows.Close()

	var records []*models.PositionRecord
	for rows.Next() {
		rec := &models.PositionRecord{}
		if err := rows.Scan(
			&rec.ID, &rec.TripID, &rec.VehicleID, &rec.Latitude, &rec.Longitude,
			&rec.Altitude, &rec.Accuracy, &rec.Heading, &rec.SpeedKMH,
			&rec.RecordedAt, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("repository.ListPositions scan: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository.ListPositions rows: %w", err)
	}
	return records, nil
}

func (r *Repository) SetTrackingToken(ctx context.Context, tripID, token string) error {
	query := `UPDATE trips SET tracking_token = $2 WHERE id = $1 AND tracking_token IS NULL`
	cmd, err := r.db.Exec(ctx, query, tripID, token)
	if err != nil {
		return fmt.Errorf("repository.SetTrackingToken: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *Repository) ReplaceTrackingToken(ctx context.Context, tripID, token string) error {
	query := `UPDATE trips SET tracking_token = $2 WHERE id = $1`
	cmd, err := r.db.Exec(ctx, query, tripID, token)
	if err != nil {
		return fmt.Errorf("repository.ReplaceTrackingToken: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *Repository) ListDepartedTripsByCompany(ctx context.Context, companyID string) ([]*models.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE company_id = $1 AND status = 'DEPARTED' ORDER BY id`
	rows, err := r.db.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("repository.ListDepartedTripsByCompany: %w", err)
	}
	defer rows.Close()

	var trips []*models.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("repository.ListDepartedTripsByCompany scan: %w", err)
		}
		trips = append(trips, trip)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository.ListDepartedTripsByCompany rows: %w", err)
	}
	return trips, nil
}
