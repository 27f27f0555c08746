package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/uzdatahub/datahub-backend/internal/domain"
	"github.com/uzdatahub/datahub-backend/pkg/ctxutil"
)

// Ingest stores one record. The duplicate gate answers the fast path; the
// unique constraint decides races. A duplicate, whether caught by the gate
// or by the store, surfaces as domain.ErrDuplicateEntry.
func (s *Service) Ingest(ctx context.Context, input SingleInput) (*SingleResult, error) {
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

	hashKey, err := domain.Fingerprint(ds.ID, input.Entry.Content)
	if err != nil {
		return nil, domain.NewValidationError("content", err.Error())
	}

	if s.inGate(ctx, hashKey) {
		return nil, fmt.Errorf("entry %s: %w", hashKey, domain.ErrDuplicateEntry)
	}

	now := time.Now().UTC()
	created, err := s.entries.Create(ctx, domain.DataEntry{
		ID:        uuid.New(),
		DatasetID: ds.ID,
		Content:   input.Entry.Content,
		Metadata:  input.Entry.Metadata,
		HashKey:   hashKey,
		CreatorID: userID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEntry) {
			// Lost the race: the row exists, so the gate can be marked.
			s.markGate(ctx, hashKey)
		}
		return nil, err
	}

	s.markGate(ctx, hashKey)
	s.invalidateListing(ctx, ds.ID)
	s.recordContribution(ctx, ds, userID, 1)
	s.notify(ctx, "entry.created", map[string]any{
		"dataset_id": ds.ID.String(),
		"entry_id":   created.ID.String(),
		"user_id":    userID.String(),
	})

	s.log.InfoContext(ctx, "entry ingested",
		slog.String("dataset_id", ds.ID.String()),
		slog.String("entry_id", created.ID.String()),
		slog.String("user_id", userID.String()),
	)

	return &SingleResult{Entry: created, Created: true}, nil
}
