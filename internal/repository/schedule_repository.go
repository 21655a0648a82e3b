package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/rentloop/rentloop-api/internal/models"
)

// ScheduleRepository persists the owner-defined weekly patterns and
// date-specific exceptions. Pure data retrieval and upserts; conflict
// interpretation belongs to the resolver.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository constructs a schedule repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// GetWeeklyPattern returns the recurring rows for a resource, at most one per
// day of week, ordered Sunday first.
func (r *ScheduleRepository) GetWeeklyPattern(ctx context.Context, resourceID string) ([]models.WeeklyAvailability, error) {
	const query = `SELECT id, resource_id, day_of_week, available,
slot1_start, slot1_end, slot2_start, slot2_end, slot3_start, slot3_end,
created_at, updated_at
FROM weekly_availability WHERE resource_id = $1 ORDER BY day_of_week ASC`
	var rows []models.WeeklyAvailability
	if err := r.db.SelectContext(ctx, &rows, query, resourceID); err != nil {
		return nil, fmt.Errorf("get weekly pattern for %s: %w", resourceID, err)
	}
	return rows, nil
}

// GetExceptions returns date exceptions overlapping the inclusive range.
func (r *ScheduleRepository) GetExceptions(ctx context.Context, resourceID string, from, to time.Time) ([]models.AvailabilityException, error) {
	const query = `SELECT id, resource_id, date, morning, afternoon, evening,
morning_start, morning_end, afternoon_start, afternoon_end, evening_start, evening_end,
created_at, updated_at
FROM availability_exceptions WHERE resource_id = $1 AND date >= $2 AND date <= $3 ORDER BY date ASC`
	var rows []models.AvailabilityException
	if err := r.db.SelectContext(ctx, &rows, query, resourceID, from, to); err != nil {
		return nil, fmt.Errorf("get exceptions for %s: %w", resourceID, err)
	}
	return rows, nil
}

// UpsertWeekly inserts or replaces the row keyed by (resource, day-of-week).
func (r *ScheduleRepository) UpsertWeekly(ctx context.Context, row *models.WeeklyAvailability) error {
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now
	const query = `INSERT INTO weekly_availability (id, resource_id, day_of_week, available,
slot1_start, slot1_end, slot2_start, slot2_end, slot3_start, slot3_end, created_at, updated_at)
VALUES (:id, :resource_id, :day_of_week, :available,
:slot1_start, :slot1_end, :slot2_start, :slot2_end, :slot3_start, :slot3_end, :created_at, :updated_at)
ON CONFLICT (resource_id, day_of_week) DO UPDATE SET
available = EXCLUDED.available,
slot1_start = EXCLUDED.slot1_start, slot1_end = EXCLUDED.slot1_end,
slot2_start = EXCLUDED.slot2_start, slot2_end = EXCLUDED.slot2_end,
slot3_start = EXCLUDED.slot3_start, slot3_end = EXCLUDED.slot3_end,
updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("upsert weekly availability: %w", err)
	}
	return nil
}

// UpsertException inserts or replaces the row keyed by (resource, date).
func (r *ScheduleRepository) UpsertException(ctx context.Context, row *models.AvailabilityException) error {
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now
	const query = `INSERT INTO availability_exceptions (id, resource_id, date, morning, afternoon, evening,
morning_start, morning_end, afternoon_start, afternoon_end, evening_start, evening_end, created_at, updated_at)
VALUES (:id, :resource_id, :date, :morning, :afternoon, :evening,
:morning_start, :morning_end, :afternoon_start, :afternoon_end, :evening_start, :evening_end, :created_at, :updated_at)
ON CONFLICT (resource_id, date) DO UPDATE SET
morning = EXCLUDED.morning, afternoon = EXCLUDED.afternoon, evening = EXCLUDED.evening,
morning_start = EXCLUDED.morning_start, morning_end = EXCLUDED.morning_end,
afternoon_start = EXCLUDED.afternoon_start, afternoon_end = EXCLUDED.afternoon_end,
evening_start = EXCLUDED.evening_start, evening_end = EXCLUDED.evening_end,
updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("upsert availability exception: %w", err)
	}
	return nil
}

// DeleteException removes the exception for one exact date.
func (r *ScheduleRepository) DeleteException(ctx context.Context, resourceID string, date time.Time) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM availability_exceptions WHERE resource_id = $1 AND date = $2", resourceID, date); err != nil {
		return fmt.Errorf("delete availability exception: %w", err)
	}
	return nil
}
