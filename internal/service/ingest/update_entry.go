package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/uzdatahub/datahub-backend/internal/domain"
	"github.com/uzdatahub/datahub-backend/pkg/ctxutil"
)

// UpdateInput is the input for UpdateEntry.
type UpdateInput struct {
	EntryID  uuid.UUID
	Content  domain.Payload
	Metadata domain.Payload
}

// Validate checks the update input.
func (in UpdateInput) Validate() error {
	if in.EntryID == uuid.Nil {
		return domain.NewValidationError("entry_id", "entry id is required")
	}
	if len(in.Content) == 0 {
		return domain.NewValidationError("content", "content must not be empty")
	}
	return nil
}

// UpdateEntry replaces an entry's content. Creator only. The new content
// gets a fresh fingerprint; if that fingerprint already exists elsewhere
// the update is rejected as a duplicate, same as an ingest would be.
func (s *Service) UpdateEntry(ctx context.Context, input UpdateInput) (*domain.DataEntry, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	current, err := s.entries.GetByID(ctx, input.EntryID)
	if err != nil {
		return nil, err
	}

	hashKey, err := domain.Fingerprint(current.DatasetID, input.Content)
	if err != nil {
		return nil, domain.NewValidationError("content", err.Error())
	}

	if hashKey != current.HashKey && s.inGate(ctx, hashKey) {
		return nil, fmt.Errorf("entry %s: %w", hashKey, domain.ErrDuplicateEntry)
	}

	updated, err := s.entries.UpdateContent(ctx, input.EntryID, userID, input.Content, input.Metadata, hashKey)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEntry) {
			s.markGate(ctx, hashKey)
		}
		return nil, err
	}

	s.markGate(ctx, hashKey)
	s.invalidateListing(ctx, updated.DatasetID)

	s.log.InfoContext(ctx, "entry updated",
		slog.String("entry_id", updated.ID.String()),
		slog.String("dataset_id", updated.DatasetID.String()),
	)

	return updated, nil
}
