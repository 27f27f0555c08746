// Package dataset implements dataset management: CRUD, star/unstar,
// view/download counters, and cached entry listings.
package dataset

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	dsrepo "github.com/uzdatahub/datahub-backend/internal/adapter/postgres/dataset"
	entryrepo "github.com/uzdatahub/datahub-backend/internal/adapter/postgres/entry"
	"github.com/uzdatahub/datahub-backend/internal/domain"
)

const (
	// ListingTTL bounds how long a cached entry listing may be served.
	ListingTTL = 5 * time.Minute

	listingKeyPrefix = "entries:"
)

type datasetRepo interface {
	Create(ctx context.Context, d domain.Dataset) (*domain.Dataset, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Dataset, error)
	Update(ctx context.Context, id uuid.UUID, upd domain.DatasetUpdate) (*domain.Dataset, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f Filter) ([]domain.Dataset, int, error)
}

type entryRepo interface {
	List(ctx context.Context, f entryrepo.Filter) ([]domain.DataEntry, int, error)
}

type metaRepo interface {
	Get(ctx context.Context, datasetID uuid.UUID) (*domain.DatasetMeta, error)
	Increment(ctx context.Context, datasetID uuid.UUID, counter domain.Counter) (int, error)
	Decrement(ctx context.Context, datasetID uuid.UUID, counter domain.Counter) (int, error)
	Upsert(ctx context.Context, m domain.DatasetMeta) (*domain.DatasetMeta, error)
	RecalcSize(ctx context.Context, datasetID uuid.UUID) (int64, error)
}

type starRepo interface {
	Create(ctx context.Context, datasetID, userID uuid.UUID) (*domain.DatasetStar, error)
	Delete(ctx context.Context, datasetID, userID uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.DatasetStar, error)
}

type contributorRepo interface {
	ListByDataset(ctx context.Context, datasetID uuid.UUID) ([]domain.DatasetContributor, error)
}

type cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeletePattern(ctx context.Context, pattern string) error
}

// Filter re-exports the repository listing filter.
type Filter = dsrepo.Filter

// Service provides dataset management operations.
type Service struct {
	datasets     datasetRepo
	entries      entryRepo
	meta         metaRepo
	stars        starRepo
	contributors contributorRepo
	cache        cache
	log          *slog.Logger
}

// NewService creates a new Dataset service.
func NewService(
	log *slog.Logger,
	datasets datasetRepo,
	entries entryRepo,
	meta metaRepo,
	stars starRepo,
	contributors contributorRepo,
	cache cache,
) *Service {
	return &Service{
		datasets:     datasets,
		entries:      entries,
		meta:         meta,
		stars:        stars,
		contributors: contributors,
		cache:        cache,
		log:          log.With("service", "dataset"),
	}
}

// visibleTo reports whether the user may read the dataset.
func visibleTo(ds *domain.Dataset, userID uuid.UUID) bool {
	return ds.IsPublic || ds.CreatorID == userID
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
