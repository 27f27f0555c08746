package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/uzdatahub/datahub-backend/internal/domain"
	"github.com/uzdatahub/datahub-backend/pkg/ctxutil"
)

// BulkIngest stores a batch of records with insert-or-skip semantics.
// The whole batch goes to the store as one multi-row statement; rows whose
// fingerprint already exists (in the store or earlier in the same batch)
// are skipped, never errored. Created + Skipped + Failed == Total.
func (s *Service) BulkIngest(ctx context.Context, input BulkInput) (*domain.BulkResult, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	ds, err := s.checkDatasetAccess(ctx, input.DatasetID, userID)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", input.DatasetID, err)
	}

	result := &domain.BulkResult{Total: len(input.Entries)}

	now := time.Now().UTC()
	var candidates []domain.DataEntry
	var fingerprints []string

	for i, in := range input.Entries {
		if err := in.Validate(); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("entry %d: %v", i, err))
			continue
		}

		hashKey, err := domain.Fingerprint(ds.ID, in.Content)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("entry %d: %v", i, err))
			continue
		}

		fingerprints = append(fingerprints, hashKey)

		// Gate hits skip the store entirely; they fall out as skipped
		// when created is subtracted below.
		if s.inGate(ctx, hashKey) {
			continue
		}

		candidates = append(candidates, domain.DataEntry{
			ID:        uuid.New(),
			DatasetID: ds.ID,
			Content:   in.Content,
			Metadata:  in.Metadata,
			HashKey:   hashKey,
			CreatorID: userID,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	if len(candidates) > 0 {
		created, err := s.entries.InsertMany(ctx, candidates)
		if err != nil {
			return nil, fmt.Errorf("bulk insert into dataset %s: %w", ds.ID, err)
		}
		result.Created = created
	}

	result.Skipped = result.Total - result.Failed - result.Created

	if result.Created > 0 {
		for _, hashKey := range fingerprints {
			s.markGate(ctx, hashKey)
		}
		s.invalidateListing(ctx, ds.ID)
		s.recordContribution(ctx, ds, userID, result.Created)
		s.notify(ctx, "entries.bulk_created", map[string]any{
			"dataset_id": ds.ID.String(),
			"user_id":    userID.String(),
			"created":    result.Created,
		})
	}

	s.log.InfoContext(ctx, "bulk ingest finished",
		slog.String("dataset_id", ds.ID.String()),
		slog.String("user_id", userID.String()),
		slog.Int("total", result.Total),
		slog.Int("created", result.Created),
		slog.Int("skipped", result.Skipped),
		slog.Int("failed", result.Failed),
	)

	return result, nil
}
