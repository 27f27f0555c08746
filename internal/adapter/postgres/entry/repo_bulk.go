package entry

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	postgres "github.com/uzdatahub/datahub-backend/internal/adapter/postgres"
	"github.com/uzdatahub/datahub-backend/internal/domain"
)

// InsertMany inserts a batch of entries in a single multi-row statement.
// Rows whose hash_key already exists anywhere in the table are skipped via
// ON CONFLICT DO NOTHING; duplicates inside the batch itself collapse the
// same way. Returns the number of actually inserted rows.
func (r *Repo) InsertMany(ctx context.Context, entries []domain.DataEntry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)

	ins := psql.Insert("data_entries").
		Columns("id", "dataset_id", "content", "metadata", "hash_key", "creator_id", "created_at", "updated_at")

	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		// Postgres rejects a multi-row insert that conflicts with itself,
		// so intra-batch duplicates are dropped before the statement runs.
		if _, ok := seen[e.HashKey]; ok {
			continue
		}
		seen[e.HashKey] = struct{}{}

		ins = ins.Values(
			e.ID, e.DatasetID, jsonbValue(e.Content), jsonbValue(e.Metadata),
			e.HashKey, e.CreatorID, e.CreatedAt, e.UpdatedAt,
		)
	}

	sql, args, err := ins.Suffix("ON CONFLICT (hash_key) DO NOTHING").ToSql()
	if err != nil {
		return 0, fmt.Errorf("build bulk insert: %w", err)
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return 0, mapError(err, "data_entry", uuid.Nil)
	}

	return int(tag.RowsAffected()), nil
}

// ExistingHashKeys returns which of the given hash keys are already stored.
// The ingest service uses it to rebuild the duplicate gate after a cache miss.
func (r *Repo) ExistingHashKeys(ctx context.Context, hashKeys []string) (map[string]struct{}, error) {
	if len(hashKeys) == 0 {
		return map[string]struct{}{}, nil
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx,
		`SELECT hash_key FROM data_entries WHERE hash_key = ANY($1)`,
		hashKeys,
	)
	if err != nil {
		return nil, mapError(err, "data_entry", uuid.Nil)
	}
	defer rows.Close()

	existing := make(map[string]struct{})
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan hash key: %w", err)
		}
		existing[key] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hash keys: %w", err)
	}

	return existing, nil
}
