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

// ErrOverlap is returned by CreateHoldTx when a concurrent hold or occupying
// reservation landed between the caller's availability check and the insert.
var ErrOverlap = errors.New("overlapping occupancy")

// BlockRepository persists blocked periods: manual blocks, temporary payment
// holds, and confirmed-reservation shadows. Classification lives in the Kind
// column; this layer does no merging.
type BlockRepository struct {
	db *sqlx.DB
}

// NewBlockRepository constructs a block repository.
func NewBlockRepository(db *sqlx.DB) *BlockRepository {
	return &BlockRepository{db: db}
}

const blockColumns = `id, resource_id, owner_id, start_date, end_date, kind,
hold_token, reservation_id, reason, all_day, morning, afternoon, evening, created_at, updated_at`

// ListOverlapping returns the union of resource-scoped blocks for resourceID
// and owner-wide blocks for ownerID that overlap the inclusive range.
func (r *BlockRepository) ListOverlapping(ctx context.Context, resourceID, ownerID string, from, to time.Time) ([]models.BlockedPeriod, error) {
	query := fmt.Sprintf(`SELECT %s FROM blocked_periods
WHERE (resource_id = $1 OR (resource_id IS NULL AND owner_id = $2))
AND start_date <= $4 AND end_date >= $3
ORDER BY start_date ASC`, blockColumns)
	var blocks []models.BlockedPeriod
	if err := r.db.SelectContext(ctx, &blocks, query, resourceID, ownerID, from, to); err != nil {
		return nil, fmt.Errorf("list overlapping blocks for %s: %w", resourceID, err)
	}
	return blocks, nil
}

// Create inserts a blocked period.
func (r *BlockRepository) Create(ctx context.Context, block *models.BlockedPeriod) error {
	prepareBlock(block)
	if _, err := r.db.NamedExecContext(ctx, insertBlockQuery, block); err != nil {
		return fmt.Errorf("create blocked period: %w", err)
	}
	return nil
}

// Delete removes blocked periods by ID.
func (r *BlockRepository) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, "DELETE FROM blocked_periods WHERE id = ANY($1)", pq.Array(ids)); err != nil {
		return fmt.Errorf("delete blocked periods: %w", err)
	}
	return nil
}

// GetByID fetches a blocked period, nil when absent.
func (r *BlockRepository) GetByID(ctx context.Context, id string) (*models.BlockedPeriod, error) {
	query := fmt.Sprintf("SELECT %s FROM blocked_periods WHERE id = $1", blockColumns)
	var block models.BlockedPeriod
	if err := r.db.GetContext(ctx, &block, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get blocked period %s: %w", id, err)
	}
	return &block, nil
}

// FindByHoldToken locates a temporary hold by its payment token, nil when no
// hold matches. Payment callbacks only know the token, never the block ID.
func (r *BlockRepository) FindByHoldToken(ctx context.Context, token string) (*models.BlockedPeriod, error) {
	query := fmt.Sprintf(`SELECT %s FROM blocked_periods
WHERE kind = $1 AND hold_token = $2`, blockColumns)
	var block models.BlockedPeriod
	if err := r.db.GetContext(ctx, &block, query, models.BlockKindTemporaryHold, token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find hold by token: %w", err)
	}
	return &block, nil
}

// DeleteStaleHolds removes temporary holds created before the cutoff and
// reports how many were swept. Other block kinds are never touched.
func (r *BlockRepository) DeleteStaleHolds(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM blocked_periods WHERE kind = $1 AND created_at < $2",
		models.BlockKindTemporaryHold, olderThan)
	if err != nil {
		return 0, fmt.Errorf("sweep stale holds: %w", err)
	}
	swept, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sweep stale holds: %w", err)
	}
	return swept, nil
}

// DeleteShadowForReservation removes the confirmed-shadow block mirroring a
// reservation, if one was written.
func (r *BlockRepository) DeleteShadowForReservation(ctx context.Context, reservationID string) error {
	if _, err := r.db.ExecContext(ctx,
		"DELETE FROM blocked_periods WHERE kind = $1 AND reservation_id = $2",
		models.BlockKindConfirmedShadow, reservationID); err != nil {
		return fmt.Errorf("delete shadow block for reservation %s: %w", reservationID, err)
	}
	return nil
}

// CreateHoldTx inserts a temporary hold after re-checking, inside one
// transaction, that no hold, block, or occupying reservation overlaps the
// range. This narrows the window between the resolver's read and the hold
// write; a conflict surfaces as ErrOverlap.
func (r *BlockRepository) CreateHoldTx(ctx context.Context, hold *models.BlockedPeriod) error {
	if hold.ResourceID == nil {
		return errors.New("hold must be resource-scoped")
	}
	prepareBlock(hold)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin hold tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// The part predicate mirrors BlockedPeriod.BlocksPart: an all-day hold
	// conflicts with any overlapping block, a part-scoped hold only with
	// blocks touching one of its parts.
	var blocked int
	if err := tx.GetContext(ctx, &blocked, `SELECT COUNT(*) FROM blocked_periods
WHERE (resource_id = $1 OR (resource_id IS NULL AND owner_id = $2))
AND start_date <= $4 AND end_date >= $3
AND ($5 OR all_day OR (morning AND $6) OR (afternoon AND $7) OR (evening AND $8))`,
		*hold.ResourceID, hold.OwnerID, hold.StartDate, hold.EndDate,
		hold.AllDay, hold.Morning, hold.Afternoon, hold.Evening); err != nil {
		return fmt.Errorf("hold conflict check (blocks): %w", err)
	}

	var occupied int
	if err := tx.GetContext(ctx, &occupied, `SELECT COUNT(*) FROM reservations
WHERE resource_id = $1 AND status = ANY($2)
AND start_date <= $4 AND end_date >= $3`,
		*hold.ResourceID,
		pq.Array([]string{string(models.ReservationConfirmed), string(models.ReservationActive)}),
		hold.StartDate, hold.EndDate); err != nil {
		return fmt.Errorf("hold conflict check (reservations): %w", err)
	}

	if blocked > 0 || occupied > 0 {
		return ErrOverlap
	}

	if _, err := tx.NamedExecContext(ctx, insertBlockQuery, hold); err != nil {
		return fmt.Errorf("insert hold: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit hold tx: %w", err)
	}
	return nil
}

const insertBlockQuery = `INSERT INTO blocked_periods (id, resource_id, owner_id, start_date, end_date, kind,
hold_token, reservation_id, reason, all_day, morning, afternoon, evening, created_at, updated_at)
VALUES (:id, :resource_id, :owner_id, :start_date, :end_date, :kind,
:hold_token, :reservation_id, :reason, :all_day, :morning, :afternoon, :evening, :created_at, :updated_at)`

func prepareBlock(block *models.BlockedPeriod) {
	if block.ID == "" {
		block.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if block.CreatedAt.IsZero() {
		block.CreatedAt = now
	}
	block.UpdatedAt = now
}
