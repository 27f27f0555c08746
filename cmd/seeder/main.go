// Command seeder populates a development database with demo users,
// datasets, and entries. It is intended for local environments only and
// refuses to run unless --yes is passed.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/uzdatahub/datahub-backend/internal/adapter/postgres"
	datasetrepo "github.com/uzdatahub/datahub-backend/internal/adapter/postgres/dataset"
	entryrepo "github.com/uzdatahub/datahub-backend/internal/adapter/postgres/entry"
	userrepo "github.com/uzdatahub/datahub-backend/internal/adapter/postgres/user"
	"github.com/uzdatahub/datahub-backend/internal/app"
	"github.com/uzdatahub/datahub-backend/internal/auth"
	"github.com/uzdatahub/datahub-backend/internal/config"
	"github.com/uzdatahub/datahub-backend/internal/domain"
)

func main() {
	yes := flag.Bool("yes", false, "confirm seeding (writes demo data)")
	users := flag.Int("users", 3, "number of demo users")
	datasets := flag.Int("datasets", 2, "number of datasets per user")
	entries := flag.Int("entries", 50, "number of entries per dataset")
	flag.Parse()

	if !*yes {
		fmt.Fprintln(os.Stderr, "seeder writes demo data; pass --yes to confirm")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	if err := seed(ctx, logger, pool, *users, *datasets, *entries); err != nil {
		logger.Error("seeding failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("seeding completed")
}

func seed(ctx context.Context, logger *slog.Logger, pool *pgxpool.Pool, nUsers, nDatasets, nEntries int) error {
	userRepo := userrepo.New(pool)
	datasetRepo := datasetrepo.New(pool)
	entryRepo := entryrepo.New(pool)

	hash, err := auth.HashPassword("demo-password")
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}

	for u := 0; u < nUsers; u++ {
		now := time.Now().UTC()
		user, err := userRepo.Create(ctx, domain.User{
			ID:           uuid.New(),
			Email:        fmt.Sprintf("demo%d@example.com", u+1),
			PasswordHash: hash,
			Role:         domain.RoleUser,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			return fmt.Errorf("create user %d: %w", u+1, err)
		}

		for d := 0; d < nDatasets; d++ {
			ds, err := datasetRepo.Create(ctx, domain.Dataset{
				ID:        uuid.New(),
				Name:      fmt.Sprintf("demo-dataset-%d-%d", u+1, d+1),
				Type:      "tabular",
				IsPublic:  true,
				CreatorID: user.ID,
				CreatedAt: now,
				UpdatedAt: now,
			})
			if err != nil {
				return fmt.Errorf("create dataset %d/%d: %w", u+1, d+1, err)
			}

			batch := make([]domain.DataEntry, 0, nEntries)
			for e := 0; e < nEntries; e++ {
				content := domain.Payload{
					"row":   e,
					"value": fmt.Sprintf("sample-%d", e),
				}
				hashKey, err := domain.Fingerprint(ds.ID, content)
				if err != nil {
					return fmt.Errorf("fingerprint: %w", err)
				}
				batch = append(batch, domain.DataEntry{
					ID:        uuid.New(),
					DatasetID: ds.ID,
					Content:   content,
					HashKey:   hashKey,
					CreatorID: user.ID,
					CreatedAt: now,
					UpdatedAt: now,
				})
			}

			created, err := entryRepo.InsertMany(ctx, batch)
			if err != nil {
				return fmt.Errorf("insert entries for %s: %w", ds.Name, err)
			}

			logger.Info("dataset seeded",
				slog.String("dataset", ds.Name),
				slog.Int("entries", created),
			)
		}
	}

	return nil
}
