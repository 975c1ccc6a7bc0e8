package handler

import (
	"log/slog"
	"net/http"
	"time"
)

// HealthHandler serves the liveness probe. It checks no dependencies.
type HealthHandler struct {
	service string
	logger  *slog.Logger
}

// NewHealthHandler creates a HealthHandler reporting the given service name.
func NewHealthHandler(service string, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{service: service, logger: logger}
}

// HealthCheck responds with a static liveness payload.
// GET /health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"service": h.service,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}
