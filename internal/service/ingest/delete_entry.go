package ingest

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/uzdatahub/datahub-backend/internal/domain"
	"github.com/uzdatahub/datahub-backend/pkg/ctxutil"
)

// DeleteEntry removes an entry the current user created. The gate entry for
// its fingerprint is left to expire: a stale positive only costs one extra
// database round trip on re-ingest.
func (s *Service) DeleteEntry(ctx context.Context, entryID uuid.UUID) error {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}

	e, err := s.entries.GetByID(ctx, entryID)
	if err != nil {
		return err
	}

	if err := s.entries.Delete(ctx, entryID, userID); err != nil {
		return err
	}

	s.invalidateListing(ctx, e.DatasetID)

	s.log.InfoContext(ctx, "entry deleted",
		slog.String("entry_id", entryID.String()),
		slog.String("dataset_id", e.DatasetID.String()),
	)
	return nil
}

// DeleteEntries removes a batch of the current user's entries and returns
// the number actually deleted. Foreign or missing ids are skipped.
func (s *Service) DeleteEntries(ctx context.Context, ids []uuid.UUID) (int, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return 0, domain.ErrUnauthorized
	}

	if len(ids) == 0 {
		return 0, domain.NewValidationError("ids", "at least one entry id is required")
	}
	if len(ids) > MaxBatchSize {
		return 0, domain.NewValidationError("ids", "too many entry ids")
	}

	deleted, datasetIDs, err := s.entries.DeleteMany(ctx, ids, userID)
	if err != nil {
		return 0, err
	}

	for _, dsID := range datasetIDs {
		s.invalidateListing(ctx, dsID)
	}

	s.log.InfoContext(ctx, "entries deleted",
		slog.Int("requested", len(ids)),
		slog.Int("deleted", deleted),
		slog.String("user_id", userID.String()),
	)
	return deleted, nil
}
