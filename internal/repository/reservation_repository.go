package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/rentloop/rentloop-api/internal/models"
)

// ReservationRepository persists reservations. Rows are append-and-update
// only; cancellation is a status change, never a delete.
type ReservationRepository struct {
	db *sqlx.DB
}

// NewReservationRepository constructs a reservation repository.
func NewReservationRepository(db *sqlx.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

const reservationColumns = `id, resource_id, renter_id, lessor_id, start_date, end_date,
pickup_time, return_time, total_cents, deposit_cents, status,
cancellation_reason, cancellation_date, actual_return_date, notes, created_at, updated_at`

// GetByID fetches a reservation, nil when absent.
func (r *ReservationRepository) GetByID(ctx context.Context, id string) (*models.Reservation, error) {
	query := fmt.Sprintf("SELECT %s FROM reservations WHERE id = $1", reservationColumns)
	var reservation models.Reservation
	if err := r.db.GetContext(ctx, &reservation, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reservation %s: %w", id, err)
	}
	return &reservation, nil
}

// ListOverlapping returns reservations for the resource that overlap the
// inclusive range and hold one of the given statuses.
func (r *ReservationRepository) ListOverlapping(ctx context.Context, resourceID string, from, to time.Time, statuses ...models.ReservationStatus) ([]models.Reservation, error) {
	if len(statuses) == 0 {
		statuses = []models.ReservationStatus{models.ReservationConfirmed, models.ReservationActive}
	}
	raw := make([]string, len(statuses))
	for i, s := range statuses {
		raw[i] = string(s)
	}
	query := fmt.Sprintf(`SELECT %s FROM reservations
WHERE resource_id = $1 AND status = ANY($2)
AND start_date <= $4 AND end_date >= $3
ORDER BY start_date ASC`, reservationColumns)
	var reservations []models.Reservation
	if err := r.db.SelectContext(ctx, &reservations, query, resourceID, pq.Array(raw), from, to); err != nil {
		return nil, fmt.Errorf("list overlapping reservations for %s: %w", resourceID, err)
	}
	return reservations, nil
}

// Create inserts a reservation.
func (r *ReservationRepository) Create(ctx context.Context, reservation *models.Reservation) error {
	if reservation.ID == "" {
		reservation.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if reservation.CreatedAt.IsZero() {
		reservation.CreatedAt = now
	}
	reservation.UpdatedAt = now
	query := `INSERT INTO reservations (id, resource_id, renter_id, lessor_id, start_date, end_date,
pickup_time, return_time, total_cents, deposit_cents, status,
cancellation_reason, cancellation_date, actual_return_date, notes, created_at, updated_at)
VALUES (:id, :resource_id, :renter_id, :lessor_id, :start_date, :end_date,
:pickup_time, :return_time, :total_cents, :deposit_cents, :status,
:cancellation_reason, :cancellation_date, :actual_return_date, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, reservation); err != nil {
		return fmt.Errorf("create reservation: %w", err)
	}
	return nil
}

// UpdateReservationStatusParams carries a status change plus the bookkeeping
// fields stamped or cleared by the transition.
type UpdateReservationStatusParams struct {
	ID                 string
	Status             models.ReservationStatus
	CancellationReason *string
	CancellationDate   *time.Time
	ActualReturnDate   *time.Time
	Notes              *string
}

// UpdateStatus applies the transition in one statement. Callers pass nil
// cancellation fields to clear them (reactivation) and non-nil to stamp them.
func (r *ReservationRepository) UpdateStatus(ctx context.Context, params UpdateReservationStatusParams) error {
	const query = `UPDATE reservations SET status = $2,
cancellation_reason = $3, cancellation_date = $4, actual_return_date = $5,
notes = COALESCE($6, notes), updated_at = $7
WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query,
		params.ID, params.Status,
		params.CancellationReason, params.CancellationDate, params.ActualReturnDate,
		params.Notes, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update reservation status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update reservation status: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
