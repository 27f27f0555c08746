// Package star implements the dataset star repository.
package star

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/uzdatahub/datahub-backend/internal/adapter/postgres"
	"github.com/uzdatahub/datahub-backend/internal/domain"
)

// Repo provides dataset star persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new star repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const insertSQL = `
INSERT INTO dataset_stars (dataset_id, user_id)
VALUES ($1, $2)
RETURNING id, dataset_id, user_id, created_at`

const deleteSQL = `
DELETE FROM dataset_stars
WHERE dataset_id = $1 AND user_id = $2`

const existsSQL = `
SELECT EXISTS (SELECT 1 FROM dataset_stars WHERE dataset_id = $1 AND user_id = $2)`

const listByUserSQL = `
SELECT id, dataset_id, user_id, created_at
FROM dataset_stars
WHERE user_id = $1
ORDER BY created_at DESC`

// Create records a star. Starring an already-starred dataset returns
// domain.ErrAlreadyExists so the caller can skip the counter bump.
func (r *Repo) Create(ctx context.Context, datasetID, userID uuid.UUID) (*domain.DatasetStar, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var s domain.DatasetStar
	err := q.QueryRow(ctx, insertSQL, datasetID, userID).Scan(
		&s.ID, &s.DatasetID, &s.UserID, &s.CreatedAt,
	)
	if err != nil {
		return nil, mapError(err, "dataset_star", datasetID)
	}
	return &s, nil
}

// Delete removes a star. Returns domain.ErrNotFound if the user had not
// starred the dataset, so the caller can skip the counter decrement.
func (r *Repo) Delete(ctx context.Context, datasetID, userID uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, deleteSQL, datasetID, userID)
	if err != nil {
		return mapError(err, "dataset_star", datasetID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("dataset_star %s: %w", datasetID, domain.ErrNotFound)
	}
	return nil
}

// Exists reports whether the user has starred the dataset.
func (r *Repo) Exists(ctx context.Context, datasetID, userID uuid.UUID) (bool, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var exists bool
	if err := q.QueryRow(ctx, existsSQL, datasetID, userID).Scan(&exists); err != nil {
		return false, mapError(err, "dataset_star", datasetID)
	}
	return exists, nil
}

// ListByUser returns the user's stars, newest first.
func (r *Repo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.DatasetStar, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, listByUserSQL, userID)
	if err != nil {
		return nil, mapError(err, "dataset_star", userID)
	}
	defer rows.Close()

	var stars []domain.DatasetStar
	for rows.Next() {
		var s domain.DatasetStar
		if err := rows.Scan(&s.ID, &s.DatasetID, &s.UserID, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan star: %w", err)
		}
		stars = append(stars, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stars: %w", err)
	}

	return stars, nil
}

// mapError converts pgx/pgconn errors into domain errors.
func mapError(err error, entity string, id uuid.UUID) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s %s: %w", entity, id, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%s %s: %w", entity, id, domain.ErrAlreadyExists)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
		case "23514": // check_violation
			return fmt.Errorf("%s %s: %w", entity, id, domain.ErrValidation)
		}
	}

	return fmt.Errorf("%s %s: %w", entity, id, err)
}
