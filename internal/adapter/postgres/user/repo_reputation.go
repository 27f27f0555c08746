package user

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	postgres "github.com/uzdatahub/datahub-backend/internal/adapter/postgres"
	"github.com/uzdatahub/datahub-backend/internal/domain"
)

const contributionCountsSQL = `
SELECT
    (SELECT count(*) FROM dataset_stars s
       JOIN datasets d ON d.id = s.dataset_id
      WHERE d.creator_id = $1)                                        AS stars_received,
    (SELECT count(*) FROM post_likes l
       JOIN posts p ON p.id = l.post_id
      WHERE p.owner_id = $1)                                          AS likes_received,
    (SELECT count(*) FROM terms t
      WHERE t.creator_id = $1 AND t.deleted_at IS NULL)               AS terms_authored,
    (SELECT count(*) FROM data_entries e WHERE e.creator_id = $1)     AS entries_authored,
    (SELECT count(*) FROM posts p
      WHERE p.owner_id = $1 AND p.type = 'article')                   AS articles,
    (SELECT count(*) FROM posts p
      WHERE p.owner_id = $1 AND p.type = 'discussion')                AS discussions,
    (SELECT count(*) FROM datasets d WHERE d.creator_id = $1)         AS datasets`

const ownedDatasetSizesSQL = `
SELECT count(e.id)
FROM datasets d
LEFT JOIN data_entries e ON e.dataset_id = d.id
WHERE d.creator_id = $1
GROUP BY d.id`

// Rank counts users strictly ahead of the target: a higher cached score,
// or an equal score with an earlier registration. Ties therefore resolve
// deterministically in favor of the older account.
const rankSQL = `
SELECT 1 + count(*)
FROM user_meta um
JOIN users u ON u.id = um.user_id
WHERE um.user_id <> $1
  AND (um.score > $2 OR (um.score = $2 AND u.created_at < $3))`

const leaderboardSQL = `
SELECT u.id, u.email, u.full_name, u.created_at, um.score
FROM user_meta um
JOIN users u ON u.id = um.user_id
WHERE u.is_active
ORDER BY um.score DESC, u.created_at ASC
LIMIT $1`

// ContributionCounts gathers everything the reputation score is computed
// from, in one round trip plus the per-dataset sizes query.
func (r *Repo) ContributionCounts(ctx context.Context, userID uuid.UUID) (*domain.ContributionCounts, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var c domain.ContributionCounts
	err := q.QueryRow(ctx, contributionCountsSQL, userID).Scan(
		&c.StarsReceived, &c.LikesReceived, &c.TermsAuthored, &c.EntriesAuthored,
		&c.Articles, &c.Discussions, &c.Datasets,
	)
	if err != nil {
		return nil, mapError(err, "user", userID)
	}

	rows, err := q.Query(ctx, ownedDatasetSizesSQL, userID)
	if err != nil {
		return nil, mapError(err, "user", userID)
	}
	defer rows.Close()

	for rows.Next() {
		var size int
		if err := rows.Scan(&size); err != nil {
			return nil, fmt.Errorf("scan dataset size: %w", err)
		}
		c.OwnedDatasetSizes = append(c.OwnedDatasetSizes, size)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dataset sizes: %w", err)
	}

	return &c, nil
}

// Rank returns the user's 1-based position against the cached scores.
func (r *Repo) Rank(ctx context.Context, u domain.User, score int) (int, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var rank int
	if err := q.QueryRow(ctx, rankSQL, u.ID, score, u.CreatedAt).Scan(&rank); err != nil {
		return 0, mapError(err, "user", u.ID)
	}
	return rank, nil
}

// Leaderboard returns the top active users by cached score.
func (r *Repo) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardRow, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, leaderboardSQL, limit)
	if err != nil {
		return nil, mapError(err, "user", uuid.Nil)
	}
	defer rows.Close()

	var board []domain.LeaderboardRow
	for rows.Next() {
		var row domain.LeaderboardRow
		err := rows.Scan(&row.UserID, &row.Email, &row.FullName, &row.RegisteredAt, &row.Score)
		if err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		board = append(board, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leaderboard: %w", err)
	}

	return board, nil
}
