package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/moling/userservice/internal/storage"
)

const healthCheckTimeout = 5 * time.Second

// HealthHandler reports process liveness plus reachability of the database
// and the configured storage backend.
type HealthHandler struct {
	db      *sql.DB
	objects *storage.Storage
}

func NewHealthHandler(db *sql.DB, objects *storage.Storage) *HealthHandler {
	return &HealthHandler{db: db, objects: objects}
}

type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	checks := map[string]string{
		"database": "ok",
		"storage":  "ok",
	}
	healthy := true

	if err := h.db.PingContext(ctx); err != nil {
		checks["database"] = "unreachable"
		healthy = false
	}
	if err := h.objects.EnsureBucket(ctx); err != nil {
		checks["storage"] = "unreachable"
		healthy = false
	}

	status := http.StatusOK
	resp := HealthResponse{Status: "ok", Checks: checks}
	if !healthy {
		status = http.StatusServiceUnavailable
		resp.Status = "degraded"
	}
	writeJSON(w, status, resp)
}
