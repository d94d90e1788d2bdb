package postgres

import (
	"context"
	"database/sql"
	"time"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

// ReservationRepository is a PostgreSQL implementation of repository.ReservationRepository.
type ReservationRepository struct {
	db *sql.DB
	q  Querier
}

// NewReservationRepository creates a new PostgreSQL reservation repository.
func NewReservationRepository(db *sql.DB) *ReservationRepository {
	return &ReservationRepository{db: db, q: db}
}

// NewReservationRepositoryWithTx creates a reservation repository using a transaction.
func NewReservationRepositoryWithTx(tx *sql.Tx) *ReservationRepository {
	return &ReservationRepository{q: tx}
}

const reservationColumns = `id, ride_id, passenger_id, seats, status, created_at, cancelled_at`

// CreateConfirmed takes the seats from the ride and stores the reservation
// in a single transaction.
func (r *ReservationRepository) CreateConfirmed(ctx context.Context, res *domain.Reservation) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := NewRideRepositoryWithTx(tx).decrementSeats(ctx, res.RideID, res.Seats); err != nil {
			return err
		}

		query := `INSERT INTO reservations (` + reservationColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`
		_, err := tx.ExecContext(ctx, query,
			res.ID,
			res.RideID,
			res.PassengerID,
			res.Seats,
			domain.ReservationStatusConfirmed,
			res.CreatedAt,
			nullTime(res.CancelledAt),
		)
		if err != nil {
			return err
		}
		res.Status = domain.ReservationStatusConfirmed
		return nil
	})
}

// GetByID retrieves a reservation by ID.
func (r *ReservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`

	res, err := scanReservation(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	return res, nil
}

// Cancel marks the reservation cancelled and restores its seats unless the
// ride is cancelled. The ride row is locked before the reservation row.
func (r *ReservationRepository) Cancel(ctx context.Context, id string, at time.Time) (bool, error) {
	var changed bool

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var rideID string
		if err := tx.QueryRowContext(ctx, `SELECT ride_id FROM reservations WHERE id = $1`, id).Scan(&rideID); err != nil {
			return err
		}

		rides := NewRideRepositoryWithTx(tx)
		if _, err := rides.lockStatus(ctx, rideID); err != nil {
			return err
		}

		var seats int
		var status domain.ReservationStatus
		err := tx.QueryRowContext(ctx,
			`SELECT seats, status FROM reservations WHERE id = $1 FOR UPDATE`, id,
		).Scan(&seats, &status)
		if err != nil {
			return err
		}
		if status == domain.ReservationStatusCancelled {
			return nil
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE reservations SET status = $1, cancelled_at = $2 WHERE id = $3`,
			domain.ReservationStatusCancelled, at, id,
		)
		if err != nil {
			return err
		}
		if err := rides.restoreSeats(ctx, rideID, seats); err != nil {
			return err
		}

		changed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return changed, nil
}

// ListByPassenger returns the passenger's live reservations in creation order.
func (r *ReservationRepository) ListByPassenger(ctx context.Context, passengerID string) ([]*domain.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + ` FROM reservations
		WHERE passenger_id = $1 AND status <> $2
		ORDER BY created_at, id
	`
	return r.list(ctx, query, passengerID, domain.ReservationStatusCancelled)
}

// ListByRide returns the ride's live reservations in creation order.
func (r *ReservationRepository) ListByRide(ctx context.Context, rideID string) ([]*domain.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + ` FROM reservations
		WHERE ride_id = $1 AND status <> $2
		ORDER BY created_at, id
	`
	return r.list(ctx, query, rideID, domain.ReservationStatusCancelled)
}

// cancelAllForRide cancels every live reservation of a ride without touching seat counts.
func (r *ReservationRepository) cancelAllForRide(ctx context.Context, rideID string, at time.Time) ([]*domain.Reservation, error) {
	query := `
		UPDATE reservations SET status = $1, cancelled_at = $2
		WHERE ride_id = $3 AND status <> $1
		RETURNING ` + reservationColumns

	return r.list(ctx, query, domain.ReservationStatusCancelled, at, rideID)
}

func (r *ReservationRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Reservation, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var reservations []*domain.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, res)
	}
	return reservations, rows.Err()
}

func scanReservation(row rowScanner) (*domain.Reservation, error) {
	var res domain.Reservation
	var cancelledAt sql.NullTime

	if err := row.Scan(
		&res.ID,
		&res.RideID,
		&res.PassengerID,
		&res.Seats,
		&res.Status,
		&res.CreatedAt,
		&cancelledAt,
	); err != nil {
		return nil, err
	}
	if cancelledAt.Valid {
		res.CancelledAt = cancelledAt.Time
	}
	return &res, nil
}

// Ensure ReservationRepository implements repository.ReservationRepository.
var _ repository.ReservationRepository = (*ReservationRepository)(nil)
