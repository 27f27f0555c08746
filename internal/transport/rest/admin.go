package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/uzdatahub/datahub-backend/pkg/ctxutil"
)

// queueStats defines the minimal queue interface needed by AdminHandler.
type queueStats interface {
	Len(ctx context.Context) (int64, error)
}

// AdminHandler serves admin REST endpoints.
type AdminHandler struct {
	queue queueStats
	log   *slog.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(queue queueStats, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		queue: queue,
		log:   logger.With("handler", "admin"),
	}
}

// QueueStats returns the depth of the background notification queue.
// GET /admin/queue/stats
func (h *AdminHandler) QueueStats(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	depth, err := h.queue.Len(r.Context())
	if err != nil {
		h.log.ErrorContext(r.Context(), "queue stats", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"pending": depth})
}

func (h *AdminHandler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if !ctxutil.IsAdminCtx(r.Context()) {
		writeError(w, http.StatusForbidden, "admin access required")
		return false
	}
	return true
}
