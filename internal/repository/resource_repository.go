package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/rentloop/rentloop-api/internal/models"
)

// ResourceRepository reads rentable resources. The engine never mutates
// resources; ownership changes go through the catalog service.
type ResourceRepository struct {
	db *sqlx.DB
}

// NewResourceRepository constructs a resource repository.
func NewResourceRepository(db *sqlx.DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

// GetByID fetches a resource, returning nil when it does not exist.
func (r *ResourceRepository) GetByID(ctx context.Context, id string) (*models.Resource, error) {
	const query = `SELECT id, owner_id, title, active, created_at, updated_at
FROM resources WHERE id = $1`
	var resource models.Resource
	if err := r.db.GetContext(ctx, &resource, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get resource %s: %w", id, err)
	}
	return &resource, nil
}

// ListByOwner returns all active resources owned by the given actor.
func (r *ResourceRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Resource, error) {
	const query = `SELECT id, owner_id, title, active, created_at, updated_at
FROM resources WHERE owner_id = $1 AND active = TRUE ORDER BY created_at ASC`
	var resources []models.Resource
	if err := r.db.SelectContext(ctx, &resources, query, ownerID); err != nil {
		return nil, fmt.Errorf("list resources for owner %s: %w", ownerID, err)
	}
	return resources, nil
}
