// Package dataset implements the dataset repository using PostgreSQL.
package dataset

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/uzdatahub/datahub-backend/internal/adapter/postgres"
	"github.com/uzdatahub/datahub-backend/internal/domain"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Repo provides dataset persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new dataset repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const datasetColumns = `id, name, type, description, is_public, creator_id, created_at, updated_at`

const insertSQL = `
INSERT INTO datasets (id, name, type, description, is_public, creator_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + datasetColumns

const getByIDSQL = `
SELECT d.id, d.name, d.type, d.description, d.is_public, d.creator_id, d.created_at, d.updated_at,
       (SELECT count(*) FROM data_entries e WHERE e.dataset_id = d.id) AS entry_count
FROM datasets d
WHERE d.id = $1`

const updateSQL = `
UPDATE datasets
SET name = COALESCE($1, name),
    description = COALESCE($2, description),
    is_public = COALESCE($3, is_public),
    updated_at = now()
WHERE id = $4
RETURNING ` + datasetColumns

const deleteSQL = `
DELETE FROM datasets
WHERE id = $1`

// Create inserts a new dataset.
func (r *Repo) Create(ctx context.Context, d domain.Dataset) (*domain.Dataset, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	row := q.QueryRow(ctx, insertSQL,
		d.ID, d.Name, d.Type, d.Description, d.IsPublic,
		d.CreatorID, d.CreatedAt, d.UpdatedAt,
	)

	created, err := scanDataset(row)
	if err != nil {
		return nil, mapError(err, "dataset", d.ID)
	}
	return created, nil
}

// GetByID returns a dataset with its live entry count.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Dataset, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var d domain.Dataset
	err := q.QueryRow(ctx, getByIDSQL, id).Scan(
		&d.ID, &d.Name, &d.Type, &d.Description, &d.IsPublic,
		&d.CreatorID, &d.CreatedAt, &d.UpdatedAt, &d.EntryCount,
	)
	if err != nil {
		return nil, mapError(err, "dataset", id)
	}
	return &d, nil
}

// Update applies a partial update; nil fields keep their stored values.
func (r *Repo) Update(ctx context.Context, id uuid.UUID, upd domain.DatasetUpdate) (*domain.Dataset, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	row := q.QueryRow(ctx, updateSQL, upd.Name, upd.Description, upd.IsPublic, id)

	updated, err := scanDataset(row)
	if err != nil {
		return nil, mapError(err, "dataset", id)
	}
	return updated, nil
}

// Delete removes a dataset. Entries, meta, stars, and contributor rows go
// with it via ON DELETE CASCADE.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, deleteSQL, id)
	if err != nil {
		return mapError(err, "dataset", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("dataset %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// List returns a page of datasets matching the filter plus the total count.
// Entry counts are resolved in the same query via a lateral subselect.
func (r *Repo) List(ctx context.Context, f Filter) ([]domain.Dataset, int, error) {
	f.normalize()

	q := postgres.QuerierFromCtx(ctx, r.pool)

	countQuery := psql.Select("count(*)").From("datasets d")
	listQuery := psql.Select(
		"d.id", "d.name", "d.type", "d.description", "d.is_public",
		"d.creator_id", "d.created_at", "d.updated_at",
		"(SELECT count(*) FROM data_entries e WHERE e.dataset_id = d.id) AS entry_count",
	).From("datasets d")

	for _, cond := range f.conditions() {
		countQuery = countQuery.Where(cond)
		listQuery = listQuery.Where(cond)
	}

	countSQL, countArgs, err := countQuery.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	var total int
	if err := q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count datasets: %w", err)
	}

	listSQL, listArgs, err := listQuery.
		OrderBy("d.created_at DESC").
		Limit(uint64(f.Limit)).
		Offset(uint64(f.Offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list query: %w", err)
	}

	rows, err := q.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list datasets: %w", err)
	}
	defer rows.Close()

	var datasets []domain.Dataset
	for rows.Next() {
		var d domain.Dataset
		err := rows.Scan(
			&d.ID, &d.Name, &d.Type, &d.Description, &d.IsPublic,
			&d.CreatorID, &d.CreatedAt, &d.UpdatedAt, &d.EntryCount,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan dataset: %w", err)
		}
		datasets = append(datasets, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate datasets: %w", err)
	}

	return datasets, total, nil
}

func scanDataset(row pgx.Row) (*domain.Dataset, error) {
	var d domain.Dataset
	err := row.Scan(
		&d.ID, &d.Name, &d.Type, &d.Description, &d.IsPublic,
		&d.CreatorID, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
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
