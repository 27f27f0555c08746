// Package ingest implements deduplicating entry ingestion: single and bulk
// inserts guarded by a cache-backed duplicate gate, with the database unique
// constraint as the final authority.
package ingest

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/uzdatahub/datahub-backend/internal/domain"
)

const (
	// MaxBatchSize caps one bulk request.
	MaxBatchSize = 1000

	// GateTTL bounds how long a fingerprint stays in the duplicate gate.
	// An expired gate entry only costs one extra database round trip; the
	// unique constraint still rejects the duplicate.
	GateTTL = time.Hour

	gateKeyPrefix    = "hash:"
	listingKeyPrefix = "entries:"
)

type entryRepo interface {
	Create(ctx context.Context, e domain.DataEntry) (*domain.DataEntry, error)
	InsertMany(ctx context.Context, entries []domain.DataEntry) (int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.DataEntry, error)
	UpdateContent(ctx context.Context, id, creatorID uuid.UUID, content, metadata domain.Payload, hashKey string) (*domain.DataEntry, error)
	Delete(ctx context.Context, id, creatorID uuid.UUID) error
	DeleteMany(ctx context.Context, ids []uuid.UUID, creatorID uuid.UUID) (int, []uuid.UUID, error)
}

type datasetRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Dataset, error)
}

type contributorRepo interface {
	Record(ctx context.Context, datasetID, userID uuid.UUID, count int) (*domain.DatasetContributor, error)
}

type cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeletePattern(ctx context.Context, pattern string) error
}

type taskQueue interface {
	EnqueueNotify(ctx context.Context, kind string, payload map[string]any) error
}

// Service provides deduplicating entry ingestion.
type Service struct {
	entries      entryRepo
	datasets     datasetRepo
	contributors contributorRepo
	cache        cache
	queue        taskQueue
	log          *slog.Logger
}

// NewService creates a new Ingest service.
func NewService(
	log *slog.Logger,
	entries entryRepo,
	datasets datasetRepo,
	contributors contributorRepo,
	cache cache,
	queue taskQueue,
) *Service {
	return &Service{
		entries:      entries,
		datasets:     datasets,
		contributors: contributors,
		cache:        cache,
		queue:        queue,
		log:          log.With("service", "ingest"),
	}
}

// checkDatasetAccess loads the dataset and verifies the user may add entries:
// the creator always can, everyone else only when the dataset is public.
func (s *Service) checkDatasetAccess(ctx context.Context, datasetID, userID uuid.UUID) (*domain.Dataset, error) {
	ds, err := s.datasets.GetByID(ctx, datasetID)
	if err != nil {
		return nil, err
	}
	if !ds.IsPublic && ds.CreatorID != userID {
		return nil, domain.ErrForbidden
	}
	return ds, nil
}

// gateKey is the cache key guarding one fingerprint.
func gateKey(hashKey string) string {
	return gateKeyPrefix + hashKey
}

// inGate reports whether the fingerprint is already marked as stored.
// Cache failures degrade to a miss: the database stays the authority.
func (s *Service) inGate(ctx context.Context, hashKey string) bool {
	_, err := s.cache.Get(ctx, gateKey(hashKey))
	if err == nil {
		return true
	}
	if !errors.Is(err, domain.ErrNotFound) {
		s.log.WarnContext(ctx, "duplicate gate unavailable, falling through to database",
			slog.String("error", err.Error()),
		)
	}
	return false
}

// markGate records a stored fingerprint. Best effort: a failed mark only
// means the next duplicate reaches the database.
func (s *Service) markGate(ctx context.Context, hashKey string) {
	if err := s.cache.SetTTL(ctx, gateKey(hashKey), []byte("1"), GateTTL); err != nil {
		s.log.WarnContext(ctx, "failed to mark duplicate gate",
			slog.String("error", err.Error()),
		)
	}
}

// invalidateListing drops every cached entry listing for the dataset.
func (s *Service) invalidateListing(ctx context.Context, datasetID uuid.UUID) {
	pattern := listingKeyPrefix + datasetID.String() + ":*"
	if err := s.cache.DeletePattern(ctx, pattern); err != nil {
		s.log.WarnContext(ctx, "failed to invalidate listing cache",
			slog.String("dataset_id", datasetID.String()),
			slog.String("error", err.Error()),
		)
	}
}

// recordContribution upserts the contributor row when a non-owner ingested
// entries. Failures are logged, not returned: the entries are already stored.
func (s *Service) recordContribution(ctx context.Context, ds *domain.Dataset, userID uuid.UUID, count int) {
	if userID == ds.CreatorID || count == 0 {
		return
	}
	if _, err := s.contributors.Record(ctx, ds.ID, userID, count); err != nil {
		s.log.ErrorContext(ctx, "failed to record contribution",
			slog.String("dataset_id", ds.ID.String()),
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()),
		)
	}
}

// notify enqueues a background notification task. Fire-and-forget.
func (s *Service) notify(ctx context.Context, kind string, payload map[string]any) {
	if err := s.queue.EnqueueNotify(ctx, kind, payload); err != nil {
		s.log.WarnContext(ctx, "failed to enqueue notification",
			slog.String("kind", kind),
			slog.String("error", err.Error()),
		)
	}
}
