// Package meta implements the dataset meta repository: aggregate counters,
// documentation fields, and the stored dataset size.
package meta

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

// Repo provides dataset meta persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new dataset meta repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const metaColumns = `dataset_id, stars_count, downloads_count, views_count, size_bytes,
	readme, description, license_type, license_text, last_updated_user_id, created_at, updated_at`

const getSQL = `
SELECT ` + metaColumns + `
FROM dataset_meta
WHERE dataset_id = $1`

const upsertSQL = `
INSERT INTO dataset_meta (dataset_id, readme, description, license_type, license_text, last_updated_user_id)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (dataset_id) DO UPDATE SET
    readme               = COALESCE(EXCLUDED.readme, dataset_meta.readme),
    description          = COALESCE(EXCLUDED.description, dataset_meta.description),
    license_type         = COALESCE(EXCLUDED.license_type, dataset_meta.license_type),
    license_text         = COALESCE(EXCLUDED.license_text, dataset_meta.license_text),
    last_updated_user_id = EXCLUDED.last_updated_user_id,
    updated_at           = now()
RETURNING ` + metaColumns

const recalcSizeSQL = `
INSERT INTO dataset_meta (dataset_id, size_bytes)
SELECT $1, COALESCE(SUM(LENGTH(content::text)), 0)
FROM data_entries
WHERE dataset_id = $1
ON CONFLICT (dataset_id) DO UPDATE SET
    size_bytes = EXCLUDED.size_bytes,
    updated_at = now()
RETURNING size_bytes`

// Get returns the meta row for a dataset, or domain.ErrNotFound if the
// dataset has never had a counter-affecting operation.
func (r *Repo) Get(ctx context.Context, datasetID uuid.UUID) (*domain.DatasetMeta, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	m, err := scanMeta(q.QueryRow(ctx, getSQL, datasetID))
	if err != nil {
		return nil, mapError(err, "dataset_meta", datasetID)
	}
	return m, nil
}

// Increment atomically adds one to a counter, creating the meta row on
// first use. The single upsert statement makes concurrent first-touch
// increments safe: exactly one insert wins and the rest update it.
func (r *Repo) Increment(ctx context.Context, datasetID uuid.UUID, counter domain.Counter) (int, error) {
	if !counter.Valid() {
		return 0, fmt.Errorf("counter %q: %w", counter, domain.ErrValidation)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)

	// counter is validated above, so interpolating the column is safe.
	sql := fmt.Sprintf(`
		INSERT INTO dataset_meta (dataset_id, %[1]s)
		VALUES ($1, 1)
		ON CONFLICT (dataset_id) DO UPDATE SET
		    %[1]s = dataset_meta.%[1]s + 1,
		    updated_at = now()
		RETURNING %[1]s`, counter)

	var value int
	if err := q.QueryRow(ctx, sql, datasetID).Scan(&value); err != nil {
		return 0, mapError(err, "dataset_meta", datasetID)
	}
	return value, nil
}

// Decrement atomically subtracts one from a counter, clamping at zero.
// A decrement on a dataset with no meta row creates the row at zero
// rather than failing.
func (r *Repo) Decrement(ctx context.Context, datasetID uuid.UUID, counter domain.Counter) (int, error) {
	if !counter.Valid() {
		return 0, fmt.Errorf("counter %q: %w", counter, domain.ErrValidation)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql := fmt.Sprintf(`
		INSERT INTO dataset_meta (dataset_id, %[1]s)
		VALUES ($1, 0)
		ON CONFLICT (dataset_id) DO UPDATE SET
		    %[1]s = GREATEST(dataset_meta.%[1]s - 1, 0),
		    updated_at = now()
		RETURNING %[1]s`, counter)

	var value int
	if err := q.QueryRow(ctx, sql, datasetID).Scan(&value); err != nil {
		return 0, mapError(err, "dataset_meta", datasetID)
	}
	return value, nil
}

// Upsert creates or updates the documentation fields of a meta row.
// Nil fields keep their stored values.
func (r *Repo) Upsert(ctx context.Context, m domain.DatasetMeta) (*domain.DatasetMeta, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	row := q.QueryRow(ctx, upsertSQL,
		m.DatasetID, m.Readme, m.Description, m.LicenseType, m.LicenseText, m.LastUpdatedUserID,
	)

	upserted, err := scanMeta(row)
	if err != nil {
		return nil, mapError(err, "dataset_meta", m.DatasetID)
	}
	return upserted, nil
}

// RecalcSize recomputes the stored dataset size from the serialized
// length of its entries and returns the new value in bytes.
func (r *Repo) RecalcSize(ctx context.Context, datasetID uuid.UUID) (int64, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var size int64
	if err := q.QueryRow(ctx, recalcSizeSQL, datasetID).Scan(&size); err != nil {
		return 0, mapError(err, "dataset_meta", datasetID)
	}
	return size, nil
}

func scanMeta(row pgx.Row) (*domain.DatasetMeta, error) {
	var m domain.DatasetMeta
	err := row.Scan(
		&m.DatasetID, &m.StarsCount, &m.DownloadsCount, &m.ViewsCount, &m.SizeBytes,
		&m.Readme, &m.Description, &m.LicenseType, &m.LicenseText,
		&m.LastUpdatedUserID, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
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
