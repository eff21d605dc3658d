// Package insightshttp exposes the dashboard JSON API.
package insightshttp

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/oswork-erp/oswork-erp/internal/insights"
	"github.com/oswork-erp/oswork-erp/internal/platform/httpx"
)

// Handler wires HTTP endpoints for dashboard aggregates.
type Handler struct {
	logger  *slog.Logger
	service *insights.Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *insights.Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the dashboard endpoint under the given router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/dashboard", h.handleDashboard)
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.service.Dashboard(r.Context())
	if err != nil {
		h.logger.Error("build dashboard", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal server error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, dashboard)
}
