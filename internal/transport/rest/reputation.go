package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/uzdatahub/datahub-backend/internal/domain"
)

// reputationService defines the minimal interface needed by ReputationHandler.
type reputationService interface {
	Profile(ctx context.Context, userID uuid.UUID) (*domain.ReputationProfile, error)
	Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardRow, error)
}

// ReputationHandler serves reputation REST endpoints.
type ReputationHandler struct {
	svc reputationService
	log *slog.Logger
}

// NewReputationHandler creates a ReputationHandler.
func NewReputationHandler(svc reputationService, logger *slog.Logger) *ReputationHandler {
	return &ReputationHandler{svc: svc, log: logger.With("handler", "reputation")}
}

type profileResponse struct {
	UserID string         `json:"userId"`
	Score  int            `json:"score"`
	Rank   int            `json:"rank"`
	Counts countsResponse `json:"counts"`
}

type countsResponse struct {
	StarsReceived   int `json:"starsReceived"`
	LikesReceived   int `json:"likesReceived"`
	TermsAuthored   int `json:"termsAuthored"`
	EntriesAuthored int `json:"entriesAuthored"`
	Articles        int `json:"articles"`
	Discussions     int `json:"discussions"`
	Datasets        int `json:"datasets"`
}

type leaderboardRowResponse struct {
	UserID       string    `json:"userId"`
	Email        string    `json:"email"`
	FullName     *string   `json:"fullName,omitempty"`
	RegisteredAt time.Time `json:"registeredAt"`
	Score        int       `json:"score"`
}

// Profile handles GET /users/{id}/reputation.
func (h *ReputationHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	profile, err := h.svc.Profile(r.Context(), userID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{
		UserID: profile.UserID.String(),
		Score:  profile.Score,
		Rank:   profile.Rank,
		Counts: countsResponse{
			StarsReceived:   profile.Counts.StarsReceived,
			LikesReceived:   profile.Counts.LikesReceived,
			TermsAuthored:   profile.Counts.TermsAuthored,
			EntriesAuthored: profile.Counts.EntriesAuthored,
			Articles:        profile.Counts.Articles,
			Discussions:     profile.Counts.Discussions,
			Datasets:        profile.Counts.Datasets,
		},
	})
}

// Leaderboard handles GET /leaderboard.
func (h *ReputationHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r.URL.Query().Get("limit"), 0)

	rows, err := h.svc.Leaderboard(r.Context(), limit)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	resp := make([]leaderboardRowResponse, len(rows))
	for i, row := range rows {
		resp[i] = leaderboardRowResponse{
			UserID:       row.UserID.String(),
			Email:        row.Email,
			FullName:     row.FullName,
			RegisteredAt: row.RegisteredAt,
			Score:        row.Score,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *ReputationHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "user not found")
	default:
		h.log.ErrorContext(r.Context(), "internal error", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
