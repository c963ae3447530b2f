package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/render"

	"s38cli/internal/dataprocessing"
	apperrors "s38cli/internal/errors"
	"s38cli/pkg/contracts/domain"
)

// SummaryProvider exposes the live summary of a decode run.
type SummaryProvider interface {
	Snapshot() dataprocessing.RunSummary
}

// SummaryHandler serves the run summary.
type SummaryHandler struct {
	provider SummaryProvider
	logger   *slog.Logger
}

// NewSummaryHandler creates a new summary handler
func NewSummaryHandler(provider SummaryProvider, logger *slog.Logger) *SummaryHandler {
	return &SummaryHandler{
		provider: provider,
		logger:   logger.With(slog.String("handler", "summary")),
	}
}

// SummaryResponse is the body of GET /api/summary.
type SummaryResponse struct {
	dataprocessing.RunSummary
	RejectRatio float64              `json:"reject_ratio"`
	TopReasons  []domain.ReasonCount `json:"top_reasons"`
}

// GetSummary handles GET /api/summary. The optional top query parameter
// limits the number of reasons listed (default 10, 0 lists all).
func (h *SummaryHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	if h.provider == nil {
		apperrors.WriteError(w, apperrors.ErrServiceUnavailable)
		return
	}

	top := 10
	if q := r.URL.Query().Get("top"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 0 {
			h.logger.DebugContext(r.Context(), "Invalid top parameter", slog.String("top", q))
			apperrors.WriteError(w, apperrors.NewWithDetails(http.StatusBadRequest,
				"INVALID_PARAMETER", "top must be a non-negative integer", q))
			return
		}
		top = n
	}

	snap := h.provider.Snapshot()
	render.JSON(w, r, SummaryResponse{
		RunSummary:  snap,
		RejectRatio: snap.RejectRatio(),
		TopReasons:  snap.TopReasons(top),
	})
}
