package handlers

import (
	"context"
	"net/http"
	"time"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		logger.Error("health check failed", "error", err)
		errorResponse(w, r, http.StatusServiceUnavailable, "database unavailable")
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"status": "ok"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
