package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"
)

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	version  string
	provider SummaryProvider
	logger   *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string, provider SummaryProvider, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		version:  version,
		provider: provider,
		logger:   logger.With(slog.String("handler", "health")),
	}
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Version   string    `json:"version"`
	RunDone   bool      `json:"run_done"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthCheck handles GET /health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:    "ok",
		Version:   h.version,
		Timestamp: time.Now().UTC(),
	}
	if h.provider != nil {
		resp.RunDone = h.provider.Snapshot().Done
	}
	render.JSON(w, r, resp)
}
