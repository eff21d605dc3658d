// Package ordershttp exposes the service order JSON API.
package ordershttp

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/oswork-erp/oswork-erp/internal/brands"
	"github.com/oswork-erp/oswork-erp/internal/orders"
	"github.com/oswork-erp/oswork-erp/internal/periods"
	"github.com/oswork-erp/oswork-erp/internal/platform/httpx"
	"github.com/shopspring/decimal"
)

// Handler wires HTTP endpoints for order management.
type Handler struct {
	logger    *slog.Logger
	service   *orders.Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *orders.Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
}

type createOrderRequest struct {
	OSNumber      int64           `json:"osNumber" validate:"required,gt=0"`
	EntryDate     string          `json:"entryDate" validate:"required"`
	CustomerName  string          `json:"customerName" validate:"required"`
	Brand         string          `json:"brand" validate:"required"`
	ServiceValue  decimal.Decimal `json:"serviceValue"`
	PaymentMethod *string         `json:"paymentMethod"`
	Description   *string         `json:"description"`
}

type updateOrderRequest struct {
	OSNumber      *int64           `json:"osNumber"`
	EntryDate     *string          `json:"entryDate"`
	CustomerName  *string          `json:"customerName"`
	Brand         *string          `json:"brand"`
	ServiceValue  *decimal.Decimal `json:"serviceValue"`
	PaymentMethod *string          `json:"paymentMethod"`
	Description   *string          `json:"description"`
	Status        *string          `json:"status"`
}

type duplicateOrderRequest struct {
	OSNumber int64 `json:"osNumber" validate:"required,gt=0"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.serverError(w, "list orders", err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	order, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, "get order", err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}
	entryDate, err := parseDate(req.EntryDate)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid entry date", err.Error())
		return
	}

	order, err := h.service.Create(r.Context(), orders.CreateOrderInput{
		OSNumber:      req.OSNumber,
		EntryDate:     entryDate,
		CustomerName:  req.CustomerName,
		BrandRef:      req.Brand,
		ServiceValue:  req.ServiceValue,
		PaymentMethod: req.PaymentMethod,
		Description:   req.Description,
	})
	if err != nil {
		h.respondError(w, "create order", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, order)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req updateOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	patch := orders.UpdateOrderInput{
		OSNumber:      req.OSNumber,
		CustomerName:  req.CustomerName,
		BrandRef:      req.Brand,
		ServiceValue:  req.ServiceValue,
		PaymentMethod: req.PaymentMethod,
		Description:   req.Description,
	}
	if req.EntryDate != nil {
		entryDate, err := parseDate(*req.EntryDate)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid entry date", err.Error())
			return
		}
		patch.EntryDate = &entryDate
	}
	if req.Status != nil {
		status := orders.Status(*req.Status)
		if status != orders.StatusPending && status != orders.StatusPaid {
			httpx.Problem(w, http.StatusBadRequest, "Invalid status", "status must be PENDING or PAID")
			return
		}
		patch.Status = &status
	}

	order, err := h.service.Update(r.Context(), id, patch)
	if err != nil {
		h.respondError(w, "update order", err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, "delete order", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleDuplicate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req duplicateOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}
	order, err := h.service.Duplicate(r.Context(), id, req.OSNumber)
	if err != nil {
		h.respondError(w, "duplicate order", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, order)
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(pathID(r))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid order id", err.Error())
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, orders.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Order not found", err.Error())
	case errors.Is(err, orders.ErrImmutable):
		httpx.Problem(w, http.StatusConflict, "Order is settled", err.Error())
	case errors.Is(err, orders.ErrDuplicateOSNumber):
		httpx.Problem(w, http.StatusConflict, "OS number already exists", err.Error())
	case errors.Is(err, periods.ErrLocked):
		httpx.Problem(w, http.StatusConflict, "Period is paid and locked", err.Error())
	case errors.Is(err, brands.ErrEmptyName):
		httpx.Problem(w, http.StatusBadRequest, "Invalid brand", err.Error())
	case errors.Is(err, orders.ErrInvalidInput):
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
