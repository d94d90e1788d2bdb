package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

// RideRepository is a PostgreSQL implementation of repository.RideRepository.
type RideRepository struct {
	db *sql.DB
	q  Querier
}

// NewRideRepository creates a new PostgreSQL ride repository.
func NewRideRepository(db *sql.DB) *RideRepository {
	return &RideRepository{db: db, q: db}
}

// NewRideRepositoryWithTx creates a ride repository using a transaction.
func NewRideRepositoryWithTx(tx *sql.Tx) *RideRepository {
	return &RideRepository{q: tx}
}

const rideColumns = `id, driver_id, origin, destination, origin_lat, origin_lng, dest_lat, dest_lng,
	departure_at, total_seats, available_seats, price_per_seat, note, status, created_at, cancelled_at`

// Create persists a new ride.
func (r *RideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	query := `
		INSERT INTO rides (` + rideColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	originLat, originLng := coordArgs(ride.OriginCoord)
	destLat, destLng := coordArgs(ride.DestCoord)

	_, err := r.q.ExecContext(ctx, query,
		ride.ID,
		ride.DriverID,
		ride.Origin,
		ride.Destination,
		originLat,
		originLng,
		destLat,
		destLng,
		ride.DepartureAt,
		ride.TotalSeats,
		ride.AvailableSeats,
		ride.PricePerSeat,
		ride.Note,
		ride.Status,
		ride.CreatedAt,
		nullTime(ride.CancelledAt),
	)
	return mapError(err)
}

// GetByID retrieves a ride by ID.
func (r *RideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1`

	ride, err := scanRide(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	return ride, nil
}

// ListActive returns active rides matching the filter, full ones included.
func (r *RideRepository) ListActive(ctx context.Context, filter repository.RideFilter) ([]*domain.Ride, error) {
	conds := []string{"status = $1"}
	args := []any{domain.RideStatusActive}

	if filter.MaxPrice != nil {
		args = append(args, *filter.MaxPrice)
		conds = append(conds, fmt.Sprintf("price_per_seat <= $%d", len(args)))
	}
	if !filter.DepartureFrom.IsZero() {
		args = append(args, filter.DepartureFrom)
		conds = append(conds, fmt.Sprintf("departure_at >= $%d", len(args)))
	}
	if !filter.DepartureTo.IsZero() {
		args = append(args, filter.DepartureTo)
		conds = append(conds, fmt.Sprintf("departure_at <= $%d", len(args)))
	}

	query := `SELECT ` + rideColumns + ` FROM rides WHERE ` + strings.Join(conds, " AND ") + ` ORDER BY departure_at, id`
	return r.list(ctx, query, args...)
}

// ListByDriver returns the rides published by a driver, newest first.
func (r *RideRepository) ListByDriver(ctx context.Context, driverID string) ([]*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE driver_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, driverID)
}

// Cancel marks an active ride cancelled and cancels its live reservations.
// Seats are not restored: the ride row is locked first, matching the lock
// order used by reservation operations.
func (r *RideRepository) Cancel(ctx context.Context, rideID string, at time.Time) ([]*domain.Reservation, error) {
	var cancelled []*domain.Reservation

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		txRides := NewRideRepositoryWithTx(tx)
		if err := txRides.transition(ctx, rideID, domain.RideStatusCancelled, at); err != nil {
			return err
		}

		txReservations := NewReservationRepositoryWithTx(tx)
		var err error
		cancelled, err = txReservations.cancelAllForRide(ctx, rideID, at)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

// Complete marks an active ride completed.
func (r *RideRepository) Complete(ctx context.Context, rideID string) error {
	return r.transition(ctx, rideID, domain.RideStatusCompleted, time.Time{})
}

// transition moves an active ride to a terminal status.
func (r *RideRepository) transition(ctx context.Context, rideID string, status domain.RideStatus, at time.Time) error {
	query := `
		UPDATE rides SET status = $1, cancelled_at = COALESCE($2::timestamptz, cancelled_at)
		WHERE id = $3 AND status = $4
	`

	result, err := r.q.ExecContext(ctx, query, status, nullTime(at), rideID, domain.RideStatusActive)
	if err != nil {
		return mapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return r.inactiveOrMissing(ctx, rideID)
	}
	return nil
}

// decrementSeats atomically takes seats from an active ride.
// The conditional UPDATE holds the row lock until the transaction ends.
func (r *RideRepository) decrementSeats(ctx context.Context, rideID string, seats int) (int, error) {
	query := `
		UPDATE rides SET available_seats = available_seats - $1
		WHERE id = $2 AND status = $3 AND available_seats >= $1
		RETURNING available_seats
	`

	var available int
	err := r.q.QueryRowContext(ctx, query, seats, rideID, domain.RideStatusActive).Scan(&available)
	if err == sql.ErrNoRows {
		ride, getErr := r.GetByID(ctx, rideID)
		if getErr != nil {
			return 0, getErr
		}
		if !ride.IsActive() {
			return 0, repository.ErrRideInactive
		}
		return 0, repository.ErrInsufficientSeats
	}
	if err != nil {
		return 0, mapError(err)
	}
	return available, nil
}

// restoreSeats gives seats back to a ride unless it has been cancelled.
func (r *RideRepository) restoreSeats(ctx context.Context, rideID string, seats int) error {
	query := `
		UPDATE rides SET available_seats = available_seats + $1
		WHERE id = $2 AND status <> $3
	`
	_, err := r.q.ExecContext(ctx, query, seats, rideID, domain.RideStatusCancelled)
	return mapError(err)
}

// lockStatus takes the ride row lock and returns the ride status.
func (r *RideRepository) lockStatus(ctx context.Context, rideID string) (domain.RideStatus, error) {
	var status domain.RideStatus
	err := r.q.QueryRowContext(ctx, `SELECT status FROM rides WHERE id = $1 FOR UPDATE`, rideID).Scan(&status)
	if err != nil {
		return "", mapError(err)
	}
	return status, nil
}

func (r *RideRepository) inactiveOrMissing(ctx context.Context, rideID string) error {
	if _, err := r.GetByID(ctx, rideID); err != nil {
		return err
	}
	return repository.ErrRideInactive
}

func (r *RideRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Ride, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var rides []*domain.Ride
	for rows.Next() {
		ride, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		rides = append(rides, ride)
	}
	return rides, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRide(row rowScanner) (*domain.Ride, error) {
	var ride domain.Ride
	var originLat, originLng, destLat, destLng sql.NullFloat64
	var note sql.NullString
	var cancelledAt sql.NullTime

	if err := row.Scan(
		&ride.ID,
		&ride.DriverID,
		&ride.Origin,
		&ride.Destination,
		&originLat,
		&originLng,
		&destLat,
		&destLng,
		&ride.DepartureAt,
		&ride.TotalSeats,
		&ride.AvailableSeats,
		&ride.PricePerSeat,
		&note,
		&ride.Status,
		&ride.CreatedAt,
		&cancelledAt,
	); err != nil {
		return nil, err
	}

	ride.OriginCoord = coordFromNull(originLat, originLng)
	ride.DestCoord = coordFromNull(destLat, destLng)
	if note.Valid {
		ride.Note = note.String
	}
	if cancelledAt.Valid {
		ride.CancelledAt = cancelledAt.Time
	}
	return &ride, nil
}

func coordArgs(c *domain.Coordinate) (sql.NullFloat64, sql.NullFloat64) {
	if c == nil {
		return sql.NullFloat64{}, sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: c.Lat, Valid: true}, sql.NullFloat64{Float64: c.Lng, Valid: true}
}

func coordFromNull(lat, lng sql.NullFloat64) *domain.Coordinate {
	if !lat.Valid || !lng.Valid {
		return nil
	}
	return &domain.Coordinate{Lat: lat.Float64, Lng: lng.Float64}
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

// Ensure RideRepository implements repository.RideRepository.
var _ repository.RideRepository = (*RideRepository)(nil)
