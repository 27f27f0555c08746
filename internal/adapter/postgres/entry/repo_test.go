package entry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/uzdatahub/datahub-backend/internal/adapter/postgres/entry"
	"github.com/uzdatahub/datahub-backend/internal/adapter/postgres/testhelper"
	"github.com/uzdatahub/datahub-backend/internal/domain"
)

func newRepo(t *testing.T) (*entry.Repo, *pgxpool.Pool) {
	t.Helper()
	pool := testhelper.SetupTestDB(t)
	return entry.New(pool), pool
}

// buildEntry creates a domain.DataEntry with a real fingerprint for content.
func buildEntry(t *testing.T, datasetID, creatorID uuid.UUID, content domain.Payload) domain.DataEntry {
	t.Helper()

	hashKey, err := domain.Fingerprint(datasetID, content)
	if err != nil {
		t.Fatalf("fingerprint: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	return domain.DataEntry{
		ID:        uuid.New(),
		DatasetID: datasetID,
		Content:   content,
		HashKey:   hashKey,
		CreatorID: creatorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestRepo_Create_And_GetByID(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	user := testhelper.SeedUser(t, pool)
	ds := testhelper.SeedDataset(t, pool, user.ID)

	e := buildEntry(t, ds.ID, user.ID, domain.Payload{"city": "Tashkent", "pop": float64(2900000)})

	created, err := repo.Create(ctx, e)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.HashKey != e.HashKey {
		t.Errorf("expected hash key %s, got %s", e.HashKey, created.HashKey)
	}

	got, err := repo.GetByID(ctx, e.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Content["city"] != "Tashkent" {
		t.Errorf("expected content to round-trip, got %v", got.Content)
	}
	if got.Metadata != nil {
		t.Errorf("expected nil metadata, got %v", got.Metadata)
	}
}

func TestRepo_Create_Duplicate(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	user := testhelper.SeedUser(t, pool)
	ds := testhelper.SeedDataset(t, pool, user.ID)

	content := domain.Payload{"k": "duplicate-race"}
	if _, err := repo.Create(ctx, buildEntry(t, ds.ID, user.ID, content)); err != nil {
		t.Fatalf("first Create: %v", err)
	}

	_, err := repo.Create(ctx, buildEntry(t, ds.ID, user.ID, content))
	if !errors.Is(err, domain.ErrDuplicateEntry) {
		t.Fatalf("expected ErrDuplicateEntry, got %v", err)
	}
}

func TestRepo_InsertMany_Basic(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	user := testhelper.SeedUser(t, pool)
	ds := testhelper.SeedDataset(t, pool, user.ID)

	entries := []domain.DataEntry{
		buildEntry(t, ds.ID, user.ID, domain.Payload{"row": "bulk-1"}),
		buildEntry(t, ds.ID, user.ID, domain.Payload{"row": "bulk-2"}),
		buildEntry(t, ds.ID, user.ID, domain.Payload{"row": "bulk-3"}),
	}

	created, err := repo.InsertMany(ctx, entries)
	if err != nil {
		t.Fatalf("InsertMany: %v", err)
	}
	if created != 3 {
		t.Errorf("expected 3 created, got %d", created)
	}
}

func TestRepo_InsertMany_SkipsExisting(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	user := testhelper.SeedUser(t, pool)
	ds := testhelper.SeedDataset(t, pool, user.ID)

	existing := testhelper.SeedEntryWithContent(t, pool, ds.ID, user.ID, domain.Payload{"row": "already-there"})

	batch := []domain.DataEntry{
		buildEntry(t, ds.ID, user.ID, domain.Payload{"row": "already-there"}),
		buildEntry(t, ds.ID, user.ID, domain.Payload{"row": "fresh-1"}),
		buildEntry(t, ds.ID, user.ID, domain.Payload{"row": "fresh-2"}),
	}
	if batch[0].HashKey != existing.HashKey {
		t.Fatalf("test setup: hash keys must collide")
	}

	created, err := repo.InsertMany(ctx, batch)
	if err != nil {
		t.Fatalf("InsertMany: %v", err)
	}
	if created != 2 {
		t.Errorf("expected 2 created (1 skipped), got %d", created)
	}
}

func TestRepo_InsertMany_IntraBatchDuplicates(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	user := testhelper.SeedUser(t, pool)
	ds := testhelper.SeedDataset(t, pool, user.ID)

	// Same payload twice in one batch must collapse, not break the statement.
	batch := []domain.DataEntry{
		buildEntry(t, ds.ID, user.ID, domain.Payload{"row": "twice"}),
		buildEntry(t, ds.ID, user.ID, domain.Payload{"row": "twice"}),
		buildEntry(t, ds.ID, user.ID, domain.Payload{"row": "once"}),
	}

	created, err := repo.InsertMany(ctx, batch)
	if err != nil {
		t.Fatalf("InsertMany: %v", err)
	}
	if created != 2 {
		t.Errorf("expected 2 created, got %d", created)
	}
}

func TestRepo_InsertMany_Empty(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)
	ctx := context.Background()

	created, err := repo.InsertMany(ctx, nil)
	if err != nil {
		t.Fatalf("InsertMany empty: %v", err)
	}
	if created != 0 {
		t.Errorf("expected 0, got %d", created)
	}
}

func TestRepo_ExistingHashKeys(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	user := testhelper.SeedUser(t, pool)
	ds := testhelper.SeedDataset(t, pool, user.ID)
	stored := testhelper.SeedEntry(t, pool, ds.ID, user.ID)

	missing := buildEntry(t, ds.ID, user.ID, domain.Payload{"row": "never-stored"})

	existing, err := repo.ExistingHashKeys(ctx, []string{stored.HashKey, missing.HashKey})
	if err != nil {
		t.Fatalf("ExistingHashKeys: %v", err)
	}
	if _, ok := existing[stored.HashKey]; !ok {
		t.Errorf("expected %s to be reported as existing", stored.HashKey)
	}
	if _, ok := existing[missing.HashKey]; ok {
		t.Errorf("did not expect %s to be reported as existing", missing.HashKey)
	}
}

func TestRepo_UpdateContent_CreatorOnly(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	owner := testhelper.SeedUser(t, pool)
	stranger := testhelper.SeedUser(t, pool)
	ds := testhelper.SeedDataset(t, pool, owner.ID)
	e := testhelper.SeedEntry(t, pool, ds.ID, owner.ID)

	newContent := domain.Payload{"field": "rewritten"}
	newHash, err := domain.Fingerprint(ds.ID, newContent)
	if err != nil {
		t.Fatalf("fingerprint: %v", err)
	}

	_, err = repo.UpdateContent(ctx, e.ID, stranger.ID, newContent, nil, newHash)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign entry, got %v", err)
	}

	updated, err := repo.UpdateContent(ctx, e.ID, owner.ID, newContent, nil, newHash)
	if err != nil {
		t.Fatalf("UpdateContent: %v", err)
	}
	if updated.HashKey != newHash {
		t.Errorf("expected hash key to follow content, got %s", updated.HashKey)
	}
}

func TestRepo_Delete(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	owner := testhelper.SeedUser(t, pool)
	stranger := testhelper.SeedUser(t, pool)
	ds := testhelper.SeedDataset(t, pool, owner.ID)
	e := testhelper.SeedEntry(t, pool, ds.ID, owner.ID)

	if err := repo.Delete(ctx, e.ID, stranger.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign delete, got %v", err)
	}

	if err := repo.Delete(ctx, e.ID, owner.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := repo.GetByID(ctx, e.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestRepo_DeleteMany(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	owner := testhelper.SeedUser(t, pool)
	ds1 := testhelper.SeedDataset(t, pool, owner.ID)
	ds2 := testhelper.SeedDataset(t, pool, owner.ID)

	e1 := testhelper.SeedEntry(t, pool, ds1.ID, owner.ID)
	e2 := testhelper.SeedEntry(t, pool, ds1.ID, owner.ID)
	e3 := testhelper.SeedEntry(t, pool, ds2.ID, owner.ID)

	deleted, datasetIDs, err := repo.DeleteMany(ctx, []uuid.UUID{e1.ID, e2.ID, e3.ID}, owner.ID)
	if err != nil {
		t.Fatalf("DeleteMany: %v", err)
	}
	if deleted != 3 {
		t.Errorf("expected 3 deleted, got %d", deleted)
	}
	if len(datasetIDs) != 2 {
		t.Errorf("expected 2 touched datasets, got %d", len(datasetIDs))
	}
}

func TestRepo_List_ByDataset(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	user := testhelper.SeedUser(t, pool)
	ds := testhelper.SeedDataset(t, pool, user.ID)
	other := testhelper.SeedDataset(t, pool, user.ID)

	testhelper.SeedEntries(t, pool, ds.ID, user.ID, 3)
	testhelper.SeedEntries(t, pool, other.ID, user.ID, 1)

	entries, total, err := repo.List(ctx, entry.Filter{DatasetID: &ds.ID})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 3 {
		t.Errorf("expected total 3, got %d", total)
	}
	if len(entries) != 3 {
		t.Errorf("expected 3 entries, got %d", len(entries))
	}
	for _, e := range entries {
		if e.DatasetID != ds.ID {
			t.Errorf("entry %s belongs to wrong dataset %s", e.ID, e.DatasetID)
		}
	}
}

func TestRepo_CountByDataset(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	user := testhelper.SeedUser(t, pool)
	ds := testhelper.SeedDataset(t, pool, user.ID)
	testhelper.SeedEntries(t, pool, ds.ID, user.ID, 2)

	count, err := repo.CountByDataset(ctx, ds.ID)
	if err != nil {
		t.Fatalf("CountByDataset: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2, got %d", count)
	}
}
