// Package app wires configuration, storage, services, and the HTTP
// server into a running application.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/uzdatahub/datahub-backend/internal/adapter/postgres"
	contributorrepo "github.com/uzdatahub/datahub-backend/internal/adapter/postgres/contributor"
	datasetrepo "github.com/uzdatahub/datahub-backend/internal/adapter/postgres/dataset"
	entryrepo "github.com/uzdatahub/datahub-backend/internal/adapter/postgres/entry"
	metarepo "github.com/uzdatahub/datahub-backend/internal/adapter/postgres/meta"
	starrepo "github.com/uzdatahub/datahub-backend/internal/adapter/postgres/star"
	userrepo "github.com/uzdatahub/datahub-backend/internal/adapter/postgres/user"
	"github.com/uzdatahub/datahub-backend/internal/adapter/redis"
	"github.com/uzdatahub/datahub-backend/internal/auth"
	"github.com/uzdatahub/datahub-backend/internal/config"
	authsvc "github.com/uzdatahub/datahub-backend/internal/service/auth"
	datasetsvc "github.com/uzdatahub/datahub-backend/internal/service/dataset"
	"github.com/uzdatahub/datahub-backend/internal/service/ingest"
	"github.com/uzdatahub/datahub-backend/internal/service/reputation"
	"github.com/uzdatahub/datahub-backend/internal/transport/middleware"
	"github.com/uzdatahub/datahub-backend/internal/transport/rest"
)

// Run is the application entry point. It loads configuration, connects to
// PostgreSQL and Redis, wires repositories, services, and HTTP handlers,
// and serves until ctx is cancelled.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	rdb, err := redis.NewClient(redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer rdb.Close() //nolint:errcheck

	cache := redis.NewCache(rdb)
	queue := redis.NewQueue(rdb, cfg.Redis.NotifyQueue)

	// Repositories.
	users := userrepo.New(pool)
	datasets := datasetrepo.New(pool)
	entries := entryrepo.New(pool)
	meta := metarepo.New(pool)
	stars := starrepo.New(pool)
	contributors := contributorrepo.New(pool)

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)

	// Services.
	authService := authsvc.NewService(logger, users, jwtManager)
	ingestService := ingest.NewService(logger, entries, datasets, contributors, cache, queue)
	datasetService := datasetsvc.NewService(logger, datasets, entries, meta, stars, contributors, cache)
	reputationService := reputation.NewService(logger, users)

	// HTTP.
	handlers := rest.Handlers{
		Auth:       rest.NewAuthHandler(authService, logger),
		Dataset:    rest.NewDatasetHandler(datasetService, logger),
		Entry:      rest.NewEntryHandler(ingestService, logger),
		Reputation: rest.NewReputationHandler(reputationService, logger),
		Admin:      rest.NewAdminHandler(queue, logger),
		Health:     rest.NewHealthHandler(pool, redis.NewPinger(rdb), BuildVersion()),
	}

	rl := middleware.NewRateLimiter(5 * time.Minute)
	defer rl.Stop()

	chain := middleware.Chain(
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.Recovery(logger),
		middleware.CORS(cfg.CORS),
		rl.Limit(600),
		middleware.Auth(authService),
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      chain(rest.NewRouter(handlers)),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	logger.Info("stopped cleanly")
	return nil
}
