package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/uzdatahub/datahub-backend/internal/domain"
	"github.com/uzdatahub/datahub-backend/internal/service/dataset"
)

// datasetService defines the minimal interface needed by DatasetHandler.
type datasetService interface {
	Create(ctx context.Context, input dataset.CreateInput) (*domain.Dataset, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Dataset, error)
	List(ctx context.Context, f dataset.Filter) ([]domain.Dataset, int, error)
	Update(ctx context.Context, id uuid.UUID, upd domain.DatasetUpdate) (*domain.Dataset, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListEntries(ctx context.Context, datasetID uuid.UUID, limit, offset int) (*dataset.EntryPage, error)
	GetMeta(ctx context.Context, id uuid.UUID) (*domain.DatasetMeta, error)
	UpdateMeta(ctx context.Context, m domain.DatasetMeta) (*domain.DatasetMeta, error)
	Star(ctx context.Context, datasetID uuid.UUID) error
	Unstar(ctx context.Context, datasetID uuid.UUID) error
	StarredByUser(ctx context.Context) ([]domain.DatasetStar, error)
	Contributors(ctx context.Context, datasetID uuid.UUID) ([]domain.DatasetContributor, error)
	RegisterDownload(ctx context.Context, datasetID uuid.UUID) error
	RecalcSize(ctx context.Context, datasetID uuid.UUID) (int64, error)
}

// DatasetHandler serves dataset REST endpoints.
type DatasetHandler struct {
	svc datasetService
	log *slog.Logger
}

// NewDatasetHandler creates a DatasetHandler.
func NewDatasetHandler(svc datasetService, logger *slog.Logger) *DatasetHandler {
	return &DatasetHandler{svc: svc, log: logger.With("handler", "dataset")}
}

type createDatasetRequest struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Description *string `json:"description,omitempty"`
	IsPublic    bool    `json:"isPublic"`
}

type updateDatasetRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	IsPublic    *bool   `json:"isPublic,omitempty"`
}

type updateMetaRequest struct {
	Readme      *string `json:"readme,omitempty"`
	Description *string `json:"description,omitempty"`
	LicenseType *string `json:"licenseType,omitempty"`
	LicenseText *string `json:"licenseText,omitempty"`
}

type datasetResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Description *string   `json:"description,omitempty"`
	IsPublic    bool      `json:"isPublic"`
	CreatorID   string    `json:"creatorId"`
	EntryCount  int       `json:"entryCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type datasetListResponse struct {
	Datasets []datasetResponse `json:"datasets"`
	Total    int               `json:"total"`
}

type metaResponse struct {
	DatasetID      string  `json:"datasetId"`
	StarsCount     int     `json:"starsCount"`
	DownloadsCount int     `json:"downloadsCount"`
	ViewsCount     int     `json:"viewsCount"`
	SizeBytes      int64   `json:"sizeBytes"`
	Readme         *string `json:"readme,omitempty"`
	Description    *string `json:"description,omitempty"`
	LicenseType    *string `json:"licenseType,omitempty"`
	LicenseText    *string `json:"licenseText,omitempty"`
}

// Create handles POST /datasets.
func (h *DatasetHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createDatasetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ds, err := h.svc.Create(r.Context(), dataset.CreateInput{
		Name:        req.Name,
		Type:        req.Type,
		Description: req.Description,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toDatasetResponse(ds))
}

// Get handles GET /datasets/{id}.
func (h *DatasetHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	ds, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toDatasetResponse(ds))
}

// List handles GET /datasets.
// Query params: type, creator_id, search, limit, offset.
func (h *DatasetHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var f dataset.Filter
	if v := q.Get("type"); v != "" {
		f.Type = &v
	}
	if v := q.Get("search"); v != "" {
		f.Search = &v
	}
	if v := q.Get("creator_id"); v != "" {
		creatorID, err := uuid.Parse(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid creator_id")
			return
		}
		f.CreatorID = &creatorID
	}
	f.Limit = queryInt(q.Get("limit"), 0)
	f.Offset = queryInt(q.Get("offset"), 0)

	datasets, total, err := h.svc.List(r.Context(), f)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	resp := datasetListResponse{
		Datasets: make([]datasetResponse, len(datasets)),
		Total:    total,
	}
	for i := range datasets {
		resp.Datasets[i] = toDatasetResponse(&datasets[i])
	}

	writeJSON(w, http.StatusOK, resp)
}

// Update handles PATCH /datasets/{id}.
func (h *DatasetHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req updateDatasetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ds, err := h.svc.Update(r.Context(), id, domain.DatasetUpdate{
		Name:        req.Name,
		Description: req.Description,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toDatasetResponse(ds))
}

// Delete handles DELETE /datasets/{id}.
func (h *DatasetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Entries handles GET /datasets/{id}/entries.
func (h *DatasetHandler) Entries(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	limit := queryInt(r.URL.Query().Get("limit"), 0)
	offset := queryInt(r.URL.Query().Get("offset"), 0)

	page, err := h.svc.ListEntries(r.Context(), id, limit, offset)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// Meta handles GET /datasets/{id}/meta.
func (h *DatasetHandler) Meta(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	meta, err := h.svc.GetMeta(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toMetaResponse(meta))
}

// UpdateMeta handles PATCH /datasets/{id}/meta.
func (h *DatasetHandler) UpdateMeta(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req updateMetaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	meta, err := h.svc.UpdateMeta(r.Context(), domain.DatasetMeta{
		DatasetID:   id,
		Readme:      req.Readme,
		Description: req.Description,
		LicenseType: req.LicenseType,
		LicenseText: req.LicenseText,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toMetaResponse(meta))
}

// Star handles POST /datasets/{id}/star.
func (h *DatasetHandler) Star(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.svc.Star(r.Context(), id); err != nil {
		h.handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Unstar handles DELETE /datasets/{id}/star.
func (h *DatasetHandler) Unstar(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.svc.Unstar(r.Context(), id); err != nil {
		h.handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Starred handles GET /me/stars.
func (h *DatasetHandler) Starred(w http.ResponseWriter, r *http.Request) {
	stars, err := h.svc.StarredByUser(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	type starResponse struct {
		DatasetID string    `json:"datasetId"`
		StarredAt time.Time `json:"starredAt"`
	}
	resp := make([]starResponse, len(stars))
	for i, s := range stars {
		resp[i] = starResponse{DatasetID: s.DatasetID.String(), StarredAt: s.CreatedAt}
	}

	writeJSON(w, http.StatusOK, resp)
}

// Contributors handles GET /datasets/{id}/contributors.
func (h *DatasetHandler) Contributors(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	contributors, err := h.svc.Contributors(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	type contributorResponse struct {
		UserID              string    `json:"userId"`
		ContributionCount   int       `json:"contributionCount"`
		FirstContributionAt time.Time `json:"firstContributionAt"`
		LastContributionAt  time.Time `json:"lastContributionAt"`
	}
	resp := make([]contributorResponse, len(contributors))
	for i, c := range contributors {
		resp[i] = contributorResponse{
			UserID:              c.UserID.String(),
			ContributionCount:   c.ContributionCount,
			FirstContributionAt: c.FirstContributionAt,
			LastContributionAt:  c.LastContributionAt,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// Download handles POST /datasets/{id}/download.
func (h *DatasetHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.svc.RegisterDownload(r.Context(), id); err != nil {
		h.handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RecalcSize handles POST /datasets/{id}/recalc-size.
func (h *DatasetHandler) RecalcSize(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	size, err := h.svc.RecalcSize(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"sizeBytes": size})
}

func (h *DatasetHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "already exists")
	default:
		h.log.ErrorContext(r.Context(), "internal error", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func toDatasetResponse(ds *domain.Dataset) datasetResponse {
	return datasetResponse{
		ID:          ds.ID.String(),
		Name:        ds.Name,
		Type:        ds.Type,
		Description: ds.Description,
		IsPublic:    ds.IsPublic,
		CreatorID:   ds.CreatorID.String(),
		EntryCount:  ds.EntryCount,
		CreatedAt:   ds.CreatedAt,
		UpdatedAt:   ds.UpdatedAt,
	}
}

func toMetaResponse(m *domain.DatasetMeta) metaResponse {
	return metaResponse{
		DatasetID:      m.DatasetID.String(),
		StarsCount:     m.StarsCount,
		DownloadsCount: m.DownloadsCount,
		ViewsCount:     m.ViewsCount,
		SizeBytes:      m.SizeBytes,
		Readme:         m.Readme,
		Description:    m.Description,
		LicenseType:    m.LicenseType,
		LicenseText:    m.LicenseText,
	}
}

// queryInt parses a query parameter as int, falling back to def.
func queryInt(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
