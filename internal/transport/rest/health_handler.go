package rest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mockshop/mockshop/pkg/web"
)

// HealthHandler serves the liveness endpoint.
type HealthHandler struct {
	logger  *slog.Logger
	started time.Time
}

// NewHealthHandler creates a HealthHandler anchored at process start.
func NewHealthHandler(logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		logger:  logger.With("component", "rest"),
		started: time.Now(),
	}
}

// RegisterRoutes registers the health route on the given router.
func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.Health)
}

// Health reports service status, current time and uptime.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	web.RespondJSON(w, h.logger, http.StatusOK, map[string]any{
		"status":         "ok",
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
	})
}
