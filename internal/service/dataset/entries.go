package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	entryrepo "github.com/uzdatahub/datahub-backend/internal/adapter/postgres/entry"
	"github.com/uzdatahub/datahub-backend/internal/domain"
	"github.com/uzdatahub/datahub-backend/pkg/ctxutil"
)

// EntryPage is a cached page of entries.
type EntryPage struct {
	Entries []domain.DataEntry `json:"entries"`
	Total   int                `json:"total"`
}

// listingKey builds the cache key for one page of a dataset's entries.
// All keys for a dataset share the prefix the invalidation pattern matches.
func listingKey(datasetID uuid.UUID, limit, offset int) string {
	return fmt.Sprintf("%s%s:l%d:o%d", listingKeyPrefix, datasetID, limit, offset)
}

// ListEntries returns one page of a dataset's entries, serving from the
// cache when a fresh page exists. Ingest and deletes invalidate the
// dataset's pages, so staleness is bounded by ListingTTL only for
// modifications that bypass this process.
func (s *Service) ListEntries(ctx context.Context, datasetID uuid.UUID, limit, offset int) (*EntryPage, error) {
	userID, _ := ctxutil.UserIDFromCtx(ctx)

	ds, err := s.datasets.GetByID(ctx, datasetID)
	if err != nil {
		return nil, err
	}
	if !visibleTo(ds, userID) {
		return nil, fmt.Errorf("dataset %s: %w", datasetID, domain.ErrNotFound)
	}

	key := listingKey(datasetID, limit, offset)

	if raw, err := s.cache.Get(ctx, key); err == nil {
		var page EntryPage
		if err := json.Unmarshal(raw, &page); err == nil {
			return &page, nil
		}
		// Corrupt cache entry: fall through and overwrite it.
		s.log.WarnContext(ctx, "discarding corrupt listing cache entry", slog.String("key", key))
	} else if !isNotFound(err) {
		s.log.WarnContext(ctx, "listing cache unavailable", slog.String("error", err.Error()))
	}

	entries, total, err := s.entries.List(ctx, entryrepo.Filter{
		DatasetID: &datasetID,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		return nil, fmt.Errorf("list entries of dataset %s: %w", datasetID, err)
	}

	page := &EntryPage{Entries: entries, Total: total}

	if raw, err := json.Marshal(page); err == nil {
		if err := s.cache.SetTTL(ctx, key, raw, ListingTTL); err != nil {
			s.log.WarnContext(ctx, "failed to cache listing", slog.String("error", err.Error()))
		}
	}

	return page, nil
}
