// Package entry implements the data entry repository using PostgreSQL.
// Simple queries use raw SQL constants; dynamic queries are built with squirrel.
package entry

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

// hashKeyConstraint is the unique constraint backing system-wide
// fingerprint deduplication (see migrations/00003_datasets.sql).
const hashKeyConstraint = "uq_data_entries_hash_key"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Repo provides data entry persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new entry repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const entryColumns = `id, dataset_id, content, metadata, hash_key, creator_id, created_at, updated_at`

const insertSQL = `
INSERT INTO data_entries (id, dataset_id, content, metadata, hash_key, creator_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + entryColumns

const getByIDSQL = `
SELECT ` + entryColumns + `
FROM data_entries
WHERE id = $1`

const updateContentSQL = `
UPDATE data_entries
SET content = $1, metadata = COALESCE($2, metadata), hash_key = $3, updated_at = now()
WHERE id = $4 AND creator_id = $5
RETURNING ` + entryColumns

const deleteSQL = `
DELETE FROM data_entries
WHERE id = $1 AND creator_id = $2`

const countByDatasetSQL = `
SELECT count(*) FROM data_entries WHERE dataset_id = $1`

// Create inserts a single entry. A hash_key collision (a race lost against a
// concurrent identical insert) surfaces as domain.ErrDuplicateEntry, not a
// generic failure.
func (r *Repo) Create(ctx context.Context, e domain.DataEntry) (*domain.DataEntry, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	row := q.QueryRow(ctx, insertSQL,
		e.ID, e.DatasetID, jsonbValue(e.Content), jsonbValue(e.Metadata),
		e.HashKey, e.CreatorID, e.CreatedAt, e.UpdatedAt,
	)

	created, err := scanEntry(row)
	if err != nil {
		if postgres.IsUniqueViolation(err, hashKeyConstraint) {
			return nil, fmt.Errorf("entry %s: %w", e.HashKey, domain.ErrDuplicateEntry)
		}
		return nil, mapError(err, "data_entry", e.ID)
	}

	return created, nil
}

// GetByID returns an entry by its id.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.DataEntry, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	e, err := scanEntry(q.QueryRow(ctx, getByIDSQL, id))
	if err != nil {
		return nil, mapError(err, "data_entry", id)
	}
	return e, nil
}

// UpdateContent replaces an entry's content (and hash key) and optionally its
// metadata. Only the creator may update; a mismatch reports not found so
// callers cannot probe foreign entry ids.
func (r *Repo) UpdateContent(ctx context.Context, id, creatorID uuid.UUID, content domain.Payload, metadata domain.Payload, hashKey string) (*domain.DataEntry, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	row := q.QueryRow(ctx, updateContentSQL,
		jsonbValue(content), jsonbValue(metadata), hashKey, id, creatorID,
	)

	updated, err := scanEntry(row)
	if err != nil {
		if postgres.IsUniqueViolation(err, hashKeyConstraint) {
			return nil, fmt.Errorf("entry %s: %w", hashKey, domain.ErrDuplicateEntry)
		}
		return nil, mapError(err, "data_entry", id)
	}

	return updated, nil
}

// Delete removes an entry owned by creatorID.
// Returns domain.ErrNotFound if the row does not exist or is not theirs.
func (r *Repo) Delete(ctx context.Context, id, creatorID uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, deleteSQL, id, creatorID)
	if err != nil {
		return mapError(err, "data_entry", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("data_entry %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// DeleteMany removes the given entries owned by creatorID and returns
// (deleted count, dataset ids touched) for cache invalidation.
func (r *Repo) DeleteMany(ctx context.Context, ids []uuid.UUID, creatorID uuid.UUID) (int, []uuid.UUID, error) {
	if len(ids) == 0 {
		return 0, nil, nil
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx,
		`DELETE FROM data_entries WHERE id = ANY($1) AND creator_id = $2 RETURNING dataset_id`,
		ids, creatorID,
	)
	if err != nil {
		return 0, nil, mapError(err, "data_entry", uuid.Nil)
	}
	defer rows.Close()

	var deleted int
	seen := make(map[uuid.UUID]struct{})
	var datasetIDs []uuid.UUID
	for rows.Next() {
		var dsID uuid.UUID
		if err := rows.Scan(&dsID); err != nil {
			return 0, nil, fmt.Errorf("scan deleted entry: %w", err)
		}
		deleted++
		if _, ok := seen[dsID]; !ok {
			seen[dsID] = struct{}{}
			datasetIDs = append(datasetIDs, dsID)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, nil, fmt.Errorf("iterate deleted entries: %w", err)
	}

	return deleted, datasetIDs, nil
}

// CountByDataset returns the number of entries in a dataset.
func (r *Repo) CountByDataset(ctx context.Context, datasetID uuid.UUID) (int, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var count int
	if err := q.QueryRow(ctx, countByDatasetSQL, datasetID).Scan(&count); err != nil {
		return 0, mapError(err, "data_entry", datasetID)
	}
	return count, nil
}

// List returns a page of entries matching the filter plus the total count.
func (r *Repo) List(ctx context.Context, f Filter) ([]domain.DataEntry, int, error) {
	f.normalize()

	q := postgres.QuerierFromCtx(ctx, r.pool)

	countQuery := psql.Select("count(*)").From("data_entries e")
	listQuery := psql.Select(
		"e.id", "e.dataset_id", "e.content", "e.metadata",
		"e.hash_key", "e.creator_id", "e.created_at", "e.updated_at",
	).From("data_entries e")

	if f.DatasetType != nil {
		countQuery = countQuery.Join("datasets d ON d.id = e.dataset_id")
		listQuery = listQuery.Join("datasets d ON d.id = e.dataset_id")
	}
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
		return nil, 0, fmt.Errorf("count entries: %w", err)
	}

	listSQL, listArgs, err := listQuery.
		OrderBy("e.created_at DESC").
		Limit(uint64(f.Limit)).
		Offset(uint64(f.Offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list query: %w", err)
	}

	rows, err := q.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.DataEntry
	for rows.Next() {
		e, err := scanEntryRow(rows)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate entries: %w", err)
	}

	return entries, total, nil
}

// ---------------------------------------------------------------------------
// Scan helpers
// ---------------------------------------------------------------------------

func scanEntry(row pgx.Row) (*domain.DataEntry, error) {
	var e domain.DataEntry
	err := row.Scan(
		&e.ID, &e.DatasetID, &e.Content, &e.Metadata,
		&e.HashKey, &e.CreatorID, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func scanEntryRow(rows pgx.Rows) (*domain.DataEntry, error) {
	e, err := scanEntry(rows)
	if err != nil {
		return nil, fmt.Errorf("scan entry: %w", err)
	}
	return e, nil
}

// jsonbValue converts a payload to a jsonb parameter, keeping a nil payload
// as SQL NULL rather than jsonb 'null'.
func jsonbValue(p domain.Payload) any {
	if p == nil {
		return nil
	}
	return map[string]any(p)
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
