package star_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/uzdatahub/datahub-backend/internal/adapter/postgres/star"
	"github.com/uzdatahub/datahub-backend/internal/adapter/postgres/testhelper"
	"github.com/uzdatahub/datahub-backend/internal/domain"
)

func newRepo(t *testing.T) (*star.Repo, *pgxpool.Pool) {
	t.Helper()
	pool := testhelper.SetupTestDB(t)
	return star.New(pool), pool
}

func TestRepo_Create_Twice(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	owner := testhelper.SeedUser(t, pool)
	fan := testhelper.SeedUser(t, pool)
	ds := testhelper.SeedDataset(t, pool, owner.ID)

	if _, err := repo.Create(ctx, ds.ID, fan.ID); err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err := repo.Create(ctx, ds.ID, fan.ID)
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists on second star, got %v", err)
	}
}

func TestRepo_Delete_NotStarred(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	owner := testhelper.SeedUser(t, pool)
	fan := testhelper.SeedUser(t, pool)
	ds := testhelper.SeedDataset(t, pool, owner.ID)

	err := repo.Delete(ctx, ds.ID, fan.ID)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRepo_Exists_And_ListByUser(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	owner := testhelper.SeedUser(t, pool)
	fan := testhelper.SeedUser(t, pool)
	ds1 := testhelper.SeedDataset(t, pool, owner.ID)
	ds2 := testhelper.SeedDataset(t, pool, owner.ID)

	if _, err := repo.Create(ctx, ds1.ID, fan.ID); err != nil {
		t.Fatalf("Create ds1: %v", err)
	}
	if _, err := repo.Create(ctx, ds2.ID, fan.ID); err != nil {
		t.Fatalf("Create ds2: %v", err)
	}

	exists, err := repo.Exists(ctx, ds1.ID, fan.ID)
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if !exists {
		t.Error("expected star to exist")
	}

	stars, err := repo.ListByUser(ctx, fan.ID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(stars) != 2 {
		t.Errorf("expected 2 stars, got %d", len(stars))
	}

	if err := repo.Delete(ctx, ds1.ID, fan.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	exists, err = repo.Exists(ctx, ds1.ID, fan.ID)
	if err != nil {
		t.Fatalf("Exists after delete: %v", err)
	}
	if exists {
		t.Error("expected star gone after delete")
	}
}
