package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/uzdatahub/datahub-backend/internal/domain"
	"github.com/uzdatahub/datahub-backend/pkg/ctxutil"
)

// CreateInput is the input for Create.
type CreateInput struct {
	Name        string
	Type        string
	Description *string
	IsPublic    bool
}

// Validate checks the create input.
func (in CreateInput) Validate() error {
	var errs []domain.FieldError
	if strings.TrimSpace(in.Name) == "" {
		errs = append(errs, domain.FieldError{Field: "name", Message: "name is required"})
	}
	if strings.TrimSpace(in.Type) == "" {
		errs = append(errs, domain.FieldError{Field: "type", Message: "type is required"})
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// Create creates a dataset owned by the current user.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Dataset, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	ds, err := s.datasets.Create(ctx, domain.Dataset{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(input.Name),
		Type:        strings.TrimSpace(input.Type),
		Description: input.Description,
		IsPublic:    input.IsPublic,
		CreatorID:   userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, fmt.Errorf("create dataset: %w", err)
	}

	s.log.InfoContext(ctx, "dataset created",
		slog.String("dataset_id", ds.ID.String()),
		slog.String("user_id", userID.String()),
	)

	return ds, nil
}

// Get returns a dataset visible to the current user and counts the view.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Dataset, error) {
	userID, _ := ctxutil.UserIDFromCtx(ctx)

	ds, err := s.datasets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visibleTo(ds, userID) {
		// Hide private datasets instead of acknowledging them.
		return nil, fmt.Errorf("dataset %s: %w", id, domain.ErrNotFound)
	}

	if _, err := s.meta.Increment(ctx, ds.ID, domain.CounterViews); err != nil {
		s.log.WarnContext(ctx, "failed to count view",
			slog.String("dataset_id", ds.ID.String()),
			slog.String("error", err.Error()),
		)
	}

	return ds, nil
}

// GetMeta returns the aggregate counters and documentation for a dataset.
// A dataset that never had a counter-affecting operation reports zeros.
func (s *Service) GetMeta(ctx context.Context, id uuid.UUID) (*domain.DatasetMeta, error) {
	userID, _ := ctxutil.UserIDFromCtx(ctx)

	ds, err := s.datasets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visibleTo(ds, userID) {
		return nil, fmt.Errorf("dataset %s: %w", id, domain.ErrNotFound)
	}

	m, err := s.meta.Get(ctx, ds.ID)
	if err != nil {
		if isNotFound(err) {
			return &domain.DatasetMeta{DatasetID: ds.ID}, nil
		}
		return nil, err
	}
	return m, nil
}

// Update applies a partial update. Creator only.
func (s *Service) Update(ctx context.Context, id uuid.UUID, upd domain.DatasetUpdate) (*domain.Dataset, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	ds, err := s.datasets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ds.CreatorID != userID {
		return nil, domain.ErrForbidden
	}

	updated, err := s.datasets.Update(ctx, id, upd)
	if err != nil {
		return nil, fmt.Errorf("update dataset %s: %w", id, err)
	}

	s.log.InfoContext(ctx, "dataset updated", slog.String("dataset_id", id.String()))
	return updated, nil
}

// Delete removes a dataset and everything under it. Creator only.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}

	ds, err := s.datasets.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if ds.CreatorID != userID {
		return domain.ErrForbidden
	}

	if err := s.datasets.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete dataset %s: %w", id, err)
	}

	s.invalidateListing(ctx, id)

	s.log.InfoContext(ctx, "dataset deleted",
		slog.String("dataset_id", id.String()),
		slog.String("user_id", userID.String()),
	)
	return nil
}

// List returns datasets matching the filter. Anonymous and foreign users
// only see public datasets; the creator filter lifts that when it matches
// the caller.
func (s *Service) List(ctx context.Context, f Filter) ([]domain.Dataset, int, error) {
	userID, _ := ctxutil.UserIDFromCtx(ctx)

	if f.CreatorID == nil || *f.CreatorID != userID {
		public := true
		f.IsPublic = &public
	}

	return s.datasets.List(ctx, f)
}
