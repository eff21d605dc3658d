// Package settingshttp exposes the global settings JSON API.
package settingshttp

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/oswork-erp/oswork-erp/internal/platform/httpx"
	"github.com/oswork-erp/oswork-erp/internal/settings"
)

// Handler wires HTTP endpoints for settings.
type Handler struct {
	logger  *slog.Logger
	service *settings.Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *settings.Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the settings endpoints under the given router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/settings", func(r chi.Router) {
		r.Get("/", h.handleGet)
		r.Put("/", h.handleUpdate)
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	current, err := h.service.Get(r.Context())
	if err != nil {
		h.serverError(w, "get settings", err)
		return
	}
	httpx.JSON(w, http.StatusOK, current)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var in settings.UpdateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := in.Validate(); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}
	updated, err := h.service.Update(r.Context(), in)
	if err != nil {
		h.serverError(w, "update settings", err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) serverError(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op, slog.Any("error", err))
	httpx.Problem(w, http.StatusInternalServerError, "Internal server error", "")
}
