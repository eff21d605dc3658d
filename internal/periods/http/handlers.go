// Package periodshttp exposes the commission period JSON API.
package periodshttp

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/oswork-erp/oswork-erp/internal/periods"
	"github.com/oswork-erp/oswork-erp/internal/platform/httpx"
)

// Handler wires HTTP endpoints for period management.
type Handler struct {
	logger    *slog.Logger
	service   *periods.Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *periods.Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
}

type createPeriodRequest struct {
	StartDate string `json:"startDate" validate:"required"`
	EndDate   string `json:"endDate" validate:"required"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.serverError(w, "list periods", err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	period, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, "get period", err)
		return
	}
	httpx.JSON(w, http.StatusOK, period)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createPeriodRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid start date", err.Error())
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid end date", err.Error())
		return
	}

	period, err := h.service.Create(r.Context(), periods.CreatePeriodInput{
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		h.respondError(w, "create period", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, period)
}

func (h *Handler) handlePay(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.Pay(r.Context(), id); err != nil {
		h.respondError(w, "pay period", err)
		return
	}
	period, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, "get period", err)
		return
	}
	httpx.JSON(w, http.StatusOK, period)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, "delete period", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRecompute(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	totals, err := h.service.Recompute(r.Context(), id)
	if err != nil {
		h.respondError(w, "recompute period", err)
		return
	}
	httpx.JSON(w, http.StatusOK, totals)
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(pathID(r))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid period id", err.Error())
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, periods.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Period not found", err.Error())
	case errors.Is(err, periods.ErrAlreadyPaid):
		httpx.Problem(w, http.StatusConflict, "Period already paid", err.Error())
	case errors.Is(err, periods.ErrOverlap):
		httpx.Problem(w, http.StatusConflict, "Period range overlaps", err.Error())
	case errors.Is(err, periods.ErrInvalidInput):
		httpx.Problem(w, http.StatusBadRequest, "Validation failed", err.Error())
	default:
		h.serverError(w, op, err)
	}
}

func (h *Handler) serverError(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op, slog.Any("error", err))
	httpx.Problem(w, http.StatusInternalServerError, "Internal server error", "")
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}
