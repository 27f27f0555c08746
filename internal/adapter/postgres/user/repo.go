// Package user implements the user and user meta repository.
package user

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

// Repo provides user persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new user repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const userColumns = `id, email, password_hash, full_name, role, is_active, created_at, updated_at`

const insertSQL = `
INSERT INTO users (id, email, password_hash, full_name, role, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + userColumns

const getByIDSQL = `
SELECT ` + userColumns + `
FROM users
WHERE id = $1`

const getByEmailSQL = `
SELECT ` + userColumns + `
FROM users
WHERE email = $1`

const getMetaSQL = `
SELECT id, user_id, nickname, bio, github_url, telegram_url, website_url, score, created_at, updated_at
FROM user_meta
WHERE user_id = $1`

const upsertScoreSQL = `
INSERT INTO user_meta (user_id, score)
VALUES ($1, $2)
ON CONFLICT (user_id) DO UPDATE SET
    score      = EXCLUDED.score,
    updated_at = now()`

// Create inserts a new user. A duplicate email maps to domain.ErrAlreadyExists.
func (r *Repo) Create(ctx context.Context, u domain.User) (*domain.User, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	row := q.QueryRow(ctx, insertSQL,
		u.ID, u.Email, u.PasswordHash, u.FullName, u.Role, u.IsActive,
		u.CreatedAt, u.UpdatedAt,
	)

	created, err := scanUser(row)
	if err != nil {
		return nil, mapError(err, "user", u.ID)
	}
	return created, nil
}

// GetByID returns a user by id.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	u, err := scanUser(q.QueryRow(ctx, getByIDSQL, id))
	if err != nil {
		return nil, mapError(err, "user", id)
	}
	return u, nil
}

// GetByEmail returns a user by email.
func (r *Repo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	u, err := scanUser(q.QueryRow(ctx, getByEmailSQL, email))
	if err != nil {
		return nil, mapError(err, "user", uuid.Nil)
	}
	return u, nil
}

// GetMeta returns the extended profile, or domain.ErrNotFound if the user
// has no meta row yet.
func (r *Repo) GetMeta(ctx context.Context, userID uuid.UUID) (*domain.UserMeta, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var m domain.UserMeta
	err := q.QueryRow(ctx, getMetaSQL, userID).Scan(
		&m.ID, &m.UserID, &m.Nickname, &m.Bio, &m.GithubURL,
		&m.TelegramURL, &m.WebsiteURL, &m.Score, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err, "user_meta", userID)
	}
	return &m, nil
}

// UpsertScore stores the freshly computed reputation score, creating the
// meta row if the user has none.
func (r *Repo) UpsertScore(ctx context.Context, userID uuid.UUID, score int) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	if _, err := q.Exec(ctx, upsertScoreSQL, userID, score); err != nil {
		return mapError(err, "user_meta", userID)
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FullName,
		&u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
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
