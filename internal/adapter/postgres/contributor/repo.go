// Package contributor implements the dataset contributor repository.
package contributor

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

// Repo provides dataset contributor persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new contributor repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const upsertSQL = `
INSERT INTO dataset_contributors (dataset_id, user_id, contribution_count)
VALUES ($1, $2, $3)
ON CONFLICT (dataset_id, user_id) DO UPDATE SET
    contribution_count   = dataset_contributors.contribution_count + EXCLUDED.contribution_count,
    last_contribution_at = now()
RETURNING id, dataset_id, user_id, contribution_count, first_contribution_at, last_contribution_at`

const listByDatasetSQL = `
SELECT id, dataset_id, user_id, contribution_count, first_contribution_at, last_contribution_at
FROM dataset_contributors
WHERE dataset_id = $1
ORDER BY last_contribution_at DESC`

// Record upserts a contribution: the first entry a user adds to a foreign
// dataset creates the row, later ones bump the count and timestamp.
func (r *Repo) Record(ctx context.Context, datasetID, userID uuid.UUID, count int) (*domain.DatasetContributor, error) {
	if count <= 0 {
		return nil, fmt.Errorf("contribution count %d: %w", count, domain.ErrValidation)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)

	var c domain.DatasetContributor
	err := q.QueryRow(ctx, upsertSQL, datasetID, userID, count).Scan(
		&c.ID, &c.DatasetID, &c.UserID, &c.ContributionCount,
		&c.FirstContributionAt, &c.LastContributionAt,
	)
	if err != nil {
		return nil, mapError(err, "dataset_contributor", datasetID)
	}
	return &c, nil
}

// ListByDataset returns a dataset's contributors, most recently active first.
func (r *Repo) ListByDataset(ctx context.Context, datasetID uuid.UUID) ([]domain.DatasetContributor, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, listByDatasetSQL, datasetID)
	if err != nil {
		return nil, mapError(err, "dataset_contributor", datasetID)
	}
	defer rows.Close()

	var contributors []domain.DatasetContributor
	for rows.Next() {
		var c domain.DatasetContributor
		err := rows.Scan(
			&c.ID, &c.DatasetID, &c.UserID, &c.ContributionCount,
			&c.FirstContributionAt, &c.LastContributionAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan contributor: %w", err)
		}
		contributors = append(contributors, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contributors: %w", err)
	}

	return contributors, nil
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
