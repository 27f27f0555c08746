// Package reputation implements the reputation engine: score recomputation
// from live contribution counts, cached-score persistence, global rank, and
// the leaderboard.
package reputation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/uzdatahub/datahub-backend/internal/domain"
)

const (
	// DefaultLeaderboardSize is used when the caller asks for no specific size.
	DefaultLeaderboardSize = 20
	// MaxLeaderboardSize caps one leaderboard request.
	MaxLeaderboardSize = 100
)

type userRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	ContributionCounts(ctx context.Context, userID uuid.UUID) (*domain.ContributionCounts, error)
	UpsertScore(ctx context.Context, userID uuid.UUID, score int) error
	Rank(ctx context.Context, u domain.User, score int) (int, error)
	Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardRow, error)
}

// Service provides reputation reads.
type Service struct {
	users userRepo
	log   *slog.Logger
}

// NewService creates a new Reputation service.
func NewService(log *slog.Logger, users userRepo) *Service {
	return &Service{
		users: users,
		log:   log.With("service", "reputation"),
	}
}

// Profile recomputes the user's score from live contribution counts,
// persists it as the cached score, and resolves the global rank against
// the cached scores of everyone else. The stored score is an optimization
// only; this read-through keeps it honest.
func (s *Service) Profile(ctx context.Context, userID uuid.UUID) (*domain.ReputationProfile, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	counts, err := s.users.ContributionCounts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("contribution counts for user %s: %w", userID, err)
	}

	score := counts.Score()

	if err := s.users.UpsertScore(ctx, userID, score); err != nil {
		// The profile is still correct; only the cached copy is stale.
		s.log.WarnContext(ctx, "failed to persist cached score",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()),
		)
	}

	rank, err := s.users.Rank(ctx, *u, score)
	if err != nil {
		return nil, fmt.Errorf("rank for user %s: %w", userID, err)
	}

	return &domain.ReputationProfile{
		UserID: userID,
		Score:  score,
		Rank:   rank,
		Counts: *counts,
	}, nil
}

// Leaderboard returns the top users by cached score. Scores on the board
// may lag behind live counts until each user's profile is next read.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardRow, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardSize
	}
	if limit > MaxLeaderboardSize {
		limit = MaxLeaderboardSize
	}
	return s.users.Leaderboard(ctx, limit)
}
