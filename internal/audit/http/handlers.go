// Package audithttp exposes the audit timeline JSON API.
package audithttp

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/oswork-erp/oswork-erp/internal/audit"
	"github.com/oswork-erp/oswork-erp/internal/platform/httpx"
)

// Handler wires HTTP endpoints for the audit timeline.
type Handler struct {
	logger  *slog.Logger
	service *audit.Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *audit.Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the audit endpoints under the given router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/audit", h.handleTimeline)
}

func (h *Handler) handleTimeline(w http.ResponseWriter, r *http.Request) {
	filters := audit.TimelineFilters{
		Action: strings.TrimSpace(r.URL.Query().Get("action")),
	}
	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			httpx.Problem(w, http.StatusBadRequest, "Invalid page", "page must be a positive integer")
			return
		}
		filters.Page = page
	}
	if raw := r.URL.Query().Get("pageSize"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 {
			httpx.Problem(w, http.StatusBadRequest, "Invalid page size", "pageSize must be a positive integer")
			return
		}
		filters.PageSize = size
	}

	result, err := h.service.Timeline(r.Context(), filters)
	if err != nil {
		h.logger.Error("load audit timeline", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal server error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}
