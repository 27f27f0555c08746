package rest

import (
	"net/http"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth       *AuthHandler
	Dataset    *DatasetHandler
	Entry      *EntryHandler
	Reputation *ReputationHandler
	Admin      *AdminHandler
	Health     *HealthHandler
}

// NewRouter builds the routing table. The middleware chain (request id,
// logging, panic recovery, CORS, auth) is applied by the caller around
// the returned mux; authentication itself is resolved globally and each
// service decides per operation whether an anonymous caller is acceptable.
func NewRouter(h Handlers) *http.ServeMux {
	mux := http.NewServeMux()

	// Probes.
	mux.HandleFunc("GET /live", h.Health.Live)
	mux.HandleFunc("GET /ready", h.Health.Ready)
	mux.HandleFunc("GET /health", h.Health.Health)

	// Auth.
	mux.HandleFunc("POST /api/v1/auth/register", h.Auth.Register)
	mux.HandleFunc("POST /api/v1/auth/login", h.Auth.Login)

	// Datasets.
	mux.HandleFunc("POST /api/v1/datasets", h.Dataset.Create)
	mux.HandleFunc("GET /api/v1/datasets", h.Dataset.List)
	mux.HandleFunc("GET /api/v1/datasets/{id}", h.Dataset.Get)
	mux.HandleFunc("PATCH /api/v1/datasets/{id}", h.Dataset.Update)
	mux.HandleFunc("DELETE /api/v1/datasets/{id}", h.Dataset.Delete)
	mux.HandleFunc("GET /api/v1/datasets/{id}/entries", h.Dataset.Entries)
	mux.HandleFunc("GET /api/v1/datasets/{id}/meta", h.Dataset.Meta)
	mux.HandleFunc("PATCH /api/v1/datasets/{id}/meta", h.Dataset.UpdateMeta)
	mux.HandleFunc("POST /api/v1/datasets/{id}/star", h.Dataset.Star)
	mux.HandleFunc("DELETE /api/v1/datasets/{id}/star", h.Dataset.Unstar)
	mux.HandleFunc("GET /api/v1/datasets/{id}/contributors", h.Dataset.Contributors)
	mux.HandleFunc("POST /api/v1/datasets/{id}/download", h.Dataset.Download)
	mux.HandleFunc("POST /api/v1/datasets/{id}/recalc-size", h.Dataset.RecalcSize)
	mux.HandleFunc("GET /api/v1/me/stars", h.Dataset.Starred)

	// Ingestion.
	mux.HandleFunc("POST /api/v1/datasets/{id}/entries", h.Entry.Ingest)
	mux.HandleFunc("POST /api/v1/datasets/{id}/entries/bulk", h.Entry.BulkIngest)
	mux.HandleFunc("PATCH /api/v1/entries/{id}", h.Entry.Update)
	mux.HandleFunc("DELETE /api/v1/entries/{id}", h.Entry.Delete)
	mux.HandleFunc("POST /api/v1/entries/delete", h.Entry.BulkDelete)

	// Reputation.
	mux.HandleFunc("GET /api/v1/users/{id}/reputation", h.Reputation.Profile)
	mux.HandleFunc("GET /api/v1/leaderboard", h.Reputation.Leaderboard)

	// Admin.
	mux.HandleFunc("GET /api/v1/admin/queue/stats", h.Admin.QueueStats)

	return mux
}
