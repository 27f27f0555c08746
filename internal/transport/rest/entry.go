package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/uzdatahub/datahub-backend/internal/domain"
	"github.com/uzdatahub/datahub-backend/internal/service/ingest"
)

// ingestService defines the minimal interface needed by EntryHandler.
type ingestService interface {
	Ingest(ctx context.Context, input ingest.SingleInput) (*ingest.SingleResult, error)
	BulkIngest(ctx context.Context, input ingest.BulkInput) (*domain.BulkResult, error)
	UpdateEntry(ctx context.Context, input ingest.UpdateInput) (*domain.DataEntry, error)
	DeleteEntry(ctx context.Context, entryID uuid.UUID) error
	DeleteEntries(ctx context.Context, ids []uuid.UUID) (int, error)
}

// EntryHandler serves data entry REST endpoints.
type EntryHandler struct {
	svc ingestService
	log *slog.Logger
}

// NewEntryHandler creates an EntryHandler.
func NewEntryHandler(svc ingestService, logger *slog.Logger) *EntryHandler {
	return &EntryHandler{svc: svc, log: logger.With("handler", "entry")}
}

type entryRequest struct {
	Content  domain.Payload `json:"content"`
	Metadata domain.Payload `json:"metadata,omitempty"`
}

type bulkIngestRequest struct {
	Entries []entryRequest `json:"entries"`
}

type bulkDeleteRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

type entryResponse struct {
	ID        string         `json:"id"`
	DatasetID string         `json:"datasetId"`
	Content   domain.Payload `json:"content"`
	Metadata  domain.Payload `json:"metadata,omitempty"`
	HashKey   string         `json:"hashKey"`
	CreatorID string         `json:"creatorId"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

type bulkResultResponse struct {
	Total   int      `json:"total"`
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

// Ingest handles POST /datasets/{id}/entries.
func (h *EntryHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	datasetID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.Ingest(r.Context(), ingest.SingleInput{
		DatasetID: datasetID,
		Entry: ingest.EntryInput{
			Content:  req.Content,
			Metadata: req.Metadata,
		},
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toEntryResponse(result.Entry))
}

// BulkIngest handles POST /datasets/{id}/entries/bulk.
func (h *EntryHandler) BulkIngest(w http.ResponseWriter, r *http.Request) {
	datasetID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req bulkIngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entries := make([]ingest.EntryInput, len(req.Entries))
	for i, e := range req.Entries {
		entries[i] = ingest.EntryInput{Content: e.Content, Metadata: e.Metadata}
	}

	result, err := h.svc.BulkIngest(r.Context(), ingest.BulkInput{
		DatasetID: datasetID,
		Entries:   entries,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, bulkResultResponse{
		Total:   result.Total,
		Created: result.Created,
		Skipped: result.Skipped,
		Failed:  result.Failed,
		Errors:  result.Errors,
	})
}

// Update handles PATCH /entries/{id}.
func (h *EntryHandler) Update(w http.ResponseWriter, r *http.Request) {
	entryID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.svc.UpdateEntry(r.Context(), ingest.UpdateInput{
		EntryID:  entryID,
		Content:  req.Content,
		Metadata: req.Metadata,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toEntryResponse(entry))
}

// Delete handles DELETE /entries/{id}.
func (h *EntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	entryID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteEntry(r.Context(), entryID); err != nil {
		h.handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// BulkDelete handles POST /entries/delete.
func (h *EntryHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var req bulkDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	deleted, err := h.svc.DeleteEntries(r.Context(), req.IDs)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"deleted": deleted})
}

func (h *EntryHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, domain.ErrDuplicateEntry):
		writeError(w, http.StatusConflict, "duplicate entry")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		h.log.ErrorContext(r.Context(), "internal error", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func toEntryResponse(e *domain.DataEntry) entryResponse {
	return entryResponse{
		ID:        e.ID.String(),
		DatasetID: e.DatasetID.String(),
		Content:   e.Content,
		Metadata:  e.Metadata,
		HashKey:   e.HashKey,
		CreatorID: e.CreatorID.String(),
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

// pathUUID parses a UUID path segment, writing a 400 response on failure.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
