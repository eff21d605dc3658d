// Package brandshttp exposes the brand catalog JSON API.
package brandshttp

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/oswork-erp/oswork-erp/internal/brands"
	"github.com/oswork-erp/oswork-erp/internal/platform/httpx"
)

// Handler wires HTTP endpoints for brand management.
type Handler struct {
	logger    *slog.Logger
	service   *brands.Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *brands.Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
}

// MountRoutes registers the brand endpoints under the given router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/brands", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Delete("/{id}", h.handleDelete)
	})
}

type createBrandRequest struct {
	Name string `json:"name" validate:"required"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.serverError(w, "list brands", err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createBrandRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}
	brand, err := h.service.Create(r.Context(), req.Name)
	if err != nil {
		h.respondError(w, "create brand", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, brand)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid brand id", err.Error())
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, "delete brand", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, brands.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Brand not found", err.Error())
	case errors.Is(err, brands.ErrDuplicateName):
		httpx.Problem(w, http.StatusConflict, "Brand name already exists", err.Error())
	case errors.Is(err, brands.ErrInUse):
		httpx.Problem(w, http.StatusConflict, "Brand is referenced by orders", err.Error())
	case errors.Is(err, brands.ErrEmptyName):
		httpx.Problem(w, http.StatusBadRequest, "Validation failed", err.Error())
	default:
		h.serverError(w, op, err)
	}
}

func (h *Handler) serverError(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op, slog.Any("error", err))
	httpx.Problem(w, http.StatusInternalServerError, "Internal server error", "")
}
