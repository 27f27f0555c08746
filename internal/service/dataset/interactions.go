package dataset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/uzdatahub/datahub-backend/internal/domain"
	"github.com/uzdatahub/datahub-backend/pkg/ctxutil"
)

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

// Star marks the dataset as starred by the current user and bumps the
// stars counter. Starring twice is a no-op for the counter.
func (s *Service) Star(ctx context.Context, datasetID uuid.UUID) error {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}

	ds, err := s.datasets.GetByID(ctx, datasetID)
	if err != nil {
		return err
	}
	if !visibleTo(ds, userID) {
		return fmt.Errorf("dataset %s: %w", datasetID, domain.ErrNotFound)
	}

	if _, err := s.stars.Create(ctx, datasetID, userID); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil
		}
		return fmt.Errorf("star dataset %s: %w", datasetID, err)
	}

	if _, err := s.meta.Increment(ctx, datasetID, domain.CounterStars); err != nil {
		return fmt.Errorf("count star for dataset %s: %w", datasetID, err)
	}

	s.log.InfoContext(ctx, "dataset starred",
		slog.String("dataset_id", datasetID.String()),
		slog.String("user_id", userID.String()),
	)
	return nil
}

// Unstar removes the current user's star and decrements the counter.
// Unstarring a dataset that was never starred is a no-op.
func (s *Service) Unstar(ctx context.Context, datasetID uuid.UUID) error {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}

	if err := s.stars.Delete(ctx, datasetID, userID); err != nil {
		if isNotFound(err) {
			return nil
		}
		return fmt.Errorf("unstar dataset %s: %w", datasetID, err)
	}

	if _, err := s.meta.Decrement(ctx, datasetID, domain.CounterStars); err != nil {
		return fmt.Errorf("uncount star for dataset %s: %w", datasetID, err)
	}

	s.log.InfoContext(ctx, "dataset unstarred",
		slog.String("dataset_id", datasetID.String()),
		slog.String("user_id", userID.String()),
	)
	return nil
}

// StarredByUser returns the current user's stars, newest first.
func (s *Service) StarredByUser(ctx context.Context) ([]domain.DatasetStar, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return s.stars.ListByUser(ctx, userID)
}

// Contributors returns the dataset's contributors, most recently active first.
func (s *Service) Contributors(ctx context.Context, datasetID uuid.UUID) ([]domain.DatasetContributor, error) {
	userID, _ := ctxutil.UserIDFromCtx(ctx)

	ds, err := s.datasets.GetByID(ctx, datasetID)
	if err != nil {
		return nil, err
	}
	if !visibleTo(ds, userID) {
		return nil, fmt.Errorf("dataset %s: %w", datasetID, domain.ErrNotFound)
	}

	return s.contributors.ListByDataset(ctx, datasetID)
}

// RegisterDownload counts one download of the dataset.
func (s *Service) RegisterDownload(ctx context.Context, datasetID uuid.UUID) error {
	userID, _ := ctxutil.UserIDFromCtx(ctx)

	ds, err := s.datasets.GetByID(ctx, datasetID)
	if err != nil {
		return err
	}
	if !visibleTo(ds, userID) {
		return fmt.Errorf("dataset %s: %w", datasetID, domain.ErrNotFound)
	}

	if _, err := s.meta.Increment(ctx, datasetID, domain.CounterDownloads); err != nil {
		return fmt.Errorf("count download for dataset %s: %w", datasetID, err)
	}
	return nil
}

// UpdateMeta stores documentation fields (readme, license) on the meta row.
// Creator only.
func (s *Service) UpdateMeta(ctx context.Context, m domain.DatasetMeta) (*domain.DatasetMeta, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	ds, err := s.datasets.GetByID(ctx, m.DatasetID)
	if err != nil {
		return nil, err
	}
	if ds.CreatorID != userID {
		return nil, domain.ErrForbidden
	}

	m.LastUpdatedUserID = &userID
	return s.meta.Upsert(ctx, m)
}

// RecalcSize recomputes the stored dataset size. Creator only.
func (s *Service) RecalcSize(ctx context.Context, datasetID uuid.UUID) (int64, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return 0, domain.ErrUnauthorized
	}

	ds, err := s.datasets.GetByID(ctx, datasetID)
	if err != nil {
		return 0, err
	}
	if ds.CreatorID != userID {
		return 0, domain.ErrForbidden
	}

	size, err := s.meta.RecalcSize(ctx, datasetID)
	if err != nil {
		return 0, fmt.Errorf("recalc size of dataset %s: %w", datasetID, err)
	}

	s.log.InfoContext(ctx, "dataset size recalculated",
		slog.String("dataset_id", datasetID.String()),
		slog.Int64("size_bytes", size),
	)
	return size, nil
}
