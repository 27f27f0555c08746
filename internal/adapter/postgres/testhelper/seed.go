package testhelper

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/uzdatahub/datahub-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedUser creates a user with an empty user_meta row.
// Returns a filled domain.User.
func SeedUser(t *testing.T, pool *pgxpool.Pool) domain.User {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	fullName := "Test User " + suffix
	user := domain.User{
		ID:           uuid.New(),
		Email:        "testuser-" + suffix + "@example.com",
		PasswordHash: "$2a$10$test-hash-" + suffix,
		FullName:     &fullName,
		Role:         domain.RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, full_name, role, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		user.ID, user.Email, user.PasswordHash, user.FullName, string(user.Role), user.IsActive, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedUser insert user: %v", err)
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO user_meta (user_id, score) VALUES ($1, 0)`,
		user.ID,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedUser insert user_meta: %v", err)
	}

	return user
}

// SeedUserAt creates a user registered at the given time. Used by rank tests
// that need a deterministic registration order.
func SeedUserAt(t *testing.T, pool *pgxpool.Pool, createdAt time.Time) domain.User {
	t.Helper()
	ctx := context.Background()

	user := SeedUser(t, pool)
	user.CreatedAt = createdAt.UTC().Truncate(time.Microsecond)

	_, err := pool.Exec(ctx,
		`UPDATE users SET created_at = $1 WHERE id = $2`,
		user.CreatedAt, user.ID,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedUserAt update created_at: %v", err)
	}

	return user
}

// SeedDataset creates a public dataset owned by creatorID.
// Returns a filled domain.Dataset (EntryCount zero).
func SeedDataset(t *testing.T, pool *pgxpool.Pool, creatorID uuid.UUID) domain.Dataset {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	ds := domain.Dataset{
		ID:        uuid.New(),
		Name:      "Test Dataset " + suffix,
		Type:      "tabular",
		IsPublic:  true,
		CreatorID: creatorID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO datasets (id, name, type, description, is_public, creator_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		ds.ID, ds.Name, ds.Type, ds.Description, ds.IsPublic, ds.CreatorID, ds.CreatedAt, ds.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedDataset insert dataset: %v", err)
	}

	return ds
}

// SeedEntry creates one entry in the dataset with a unique generated payload
// and its real fingerprint. Returns a filled domain.DataEntry.
func SeedEntry(t *testing.T, pool *pgxpool.Pool, datasetID, creatorID uuid.UUID) domain.DataEntry {
	t.Helper()

	payload := domain.Payload{"field": "value-" + uniqueSuffix()}
	return SeedEntryWithContent(t, pool, datasetID, creatorID, payload)
}

// SeedEntryWithContent creates one entry with the given payload and its real
// fingerprint, so duplicate-detection tests exercise actual hash keys.
func SeedEntryWithContent(t *testing.T, pool *pgxpool.Pool, datasetID, creatorID uuid.UUID, content domain.Payload) domain.DataEntry {
	t.Helper()
	ctx := context.Background()

	hashKey, err := domain.Fingerprint(datasetID, content)
	if err != nil {
		t.Fatalf("testhelper: SeedEntryWithContent fingerprint: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	e := domain.DataEntry{
		ID:        uuid.New(),
		DatasetID: datasetID,
		Content:   content,
		HashKey:   hashKey,
		CreatorID: creatorID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	contentJSON, err := json.Marshal(map[string]any(content))
	if err != nil {
		t.Fatalf("testhelper: SeedEntryWithContent marshal content: %v", err)
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO data_entries (id, dataset_id, content, metadata, hash_key, creator_id, created_at, updated_at)
		 VALUES ($1, $2, $3, NULL, $4, $5, $6, $7)`,
		e.ID, e.DatasetID, contentJSON, e.HashKey, e.CreatorID, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedEntryWithContent insert entry: %v", err)
	}

	return e
}

// SeedEntries creates n entries in the dataset with distinct payloads.
func SeedEntries(t *testing.T, pool *pgxpool.Pool, datasetID, creatorID uuid.UUID, n int) []domain.DataEntry {
	t.Helper()

	entries := make([]domain.DataEntry, 0, n)
	for i := 0; i < n; i++ {
		payload := domain.Payload{"row": fmt.Sprintf("%s-%d", uniqueSuffix(), i)}
		entries = append(entries, SeedEntryWithContent(t, pool, datasetID, creatorID, payload))
	}
	return entries
}

// SeedTerm creates one term authored by creatorID. Pass deleted=true to
// create it already soft-deleted.
func SeedTerm(t *testing.T, pool *pgxpool.Pool, creatorID uuid.UUID, deleted bool) domain.Term {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	term := domain.Term{
		ID:        uuid.New(),
		Text:      "term-" + suffix,
		CreatorID: creatorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if deleted {
		term.DeletedAt = &now
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO terms (id, text, definition, creator_id, deleted_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		term.ID, term.Text, term.Definition, term.CreatorID, term.DeletedAt, term.CreatedAt, term.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedTerm insert term: %v", err)
	}

	return term
}

// SeedPost creates a post of the given type owned by ownerID.
func SeedPost(t *testing.T, pool *pgxpool.Pool, ownerID uuid.UUID, postType domain.PostType) domain.Post {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	post := domain.Post{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Type:      postType,
		Title:     "Post " + suffix,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO posts (id, owner_id, type, title, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		post.ID, post.OwnerID, string(post.Type), post.Title, post.CreatedAt, post.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedPost insert post: %v", err)
	}

	return post
}

// SeedPostLike records that userID liked postID.
func SeedPostLike(t *testing.T, pool *pgxpool.Pool, postID, userID uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	_, err := pool.Exec(ctx,
		`INSERT INTO post_likes (post_id, user_id) VALUES ($1, $2)`,
		postID, userID,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedPostLike insert like: %v", err)
	}
}

// SeedStar records that userID starred datasetID (star row only; the
// stars_count counter is the meta repo's concern).
func SeedStar(t *testing.T, pool *pgxpool.Pool, datasetID, userID uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	_, err := pool.Exec(ctx,
		`INSERT INTO dataset_stars (dataset_id, user_id) VALUES ($1, $2)`,
		datasetID, userID,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedStar insert star: %v", err)
	}
}

// SetScore writes a cached score for the user, creating the meta row if needed.
func SetScore(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID, score int) {
	t.Helper()
	ctx := context.Background()

	_, err := pool.Exec(ctx,
		`INSERT INTO user_meta (user_id, score) VALUES ($1, $2)
		 ON CONFLICT (user_id) DO UPDATE SET score = EXCLUDED.score`,
		userID, score,
	)
	if err != nil {
		t.Fatalf("testhelper: SetScore upsert score: %v", err)
	}
}
