// Package orders implements the service order lifecycle: creation into a
// commission period, guarded edits, deletion, and the commission computation
// that fixes the rate at write time.
package orders

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the settlement state of an order.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusPaid    Status = "PAID"
)

// Order is one billable service event.
type Order struct {
	ID              uuid.UUID       `json:"id"`
	OSNumber        int64           `json:"osNumber"`
	EntryDate       time.Time       `json:"entryDate"`
	CustomerName    string          `json:"customerName"`
	BrandID         uuid.UUID       `json:"brandId"`
	BrandName       string          `json:"brand,omitempty"`
	ServiceValue    decimal.Decimal `json:"serviceValue"`
	CommissionValue decimal.Decimal `json:"commissionValue"`
	Status          Status          `json:"status"`
	PaymentMethod   *string         `json:"paymentMethod,omitempty"`
	Description     *string         `json:"description,omitempty"`
	PeriodID        *uuid.UUID      `json:"periodId,omitempty"`
	PaidAt          *time.Time      `json:"paidAt,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// CreateOrderInput carries the fields needed to create an order. BrandRef
// may be an identifier or a display name; resolution is the engine's job.
type CreateOrderInput struct {
	OSNumber      int64
	EntryDate     time.Time
	CustomerName  string
	BrandRef      string
	ServiceValue  decimal.Decimal
	PaymentMethod *string
	Description   *string
}

// Validate rejects malformed input before any storage work happens.
func (in CreateOrderInput) Validate() error {
	if in.OSNumber <= 0 {
		return fmt.Errorf("%w: os number must be positive", ErrInvalidInput)
	}
	if in.EntryDate.IsZero() {
		return fmt.Errorf("%w: entry date required", ErrInvalidInput)
	}
	if in.CustomerName == "" {
		return fmt.Errorf("%w: customer name required", ErrInvalidInput)
	}
	if in.BrandRef == "" {
		return fmt.Errorf("%w: brand reference required", ErrInvalidInput)
	}
	if !in.ServiceValue.IsPositive() {
		return fmt.Errorf("%w: service value must be positive", ErrInvalidInput)
	}
	return nil
}

// UpdateOrderInput is a partial patch; nil fields are left untouched.
type UpdateOrderInput struct {
	OSNumber      *int64
	EntryDate     *time.Time
	CustomerName  *string
	BrandRef      *string
	ServiceValue  *decimal.Decimal
	PaymentMethod *string
	Description   *string
	Status        *Status
}

// ErrInvalidInput wraps input validation failures.
var ErrInvalidInput = errors.New("orders: invalid input")

// ErrNotFound is returned when the referenced order does not exist.
var ErrNotFound = errors.New("orders: order not found")

// ErrImmutable is returned when editing or deleting an order that is PAID or
// whose period is paid. Any edit to a settled order is rejected, even one
// not touching the settled fields.
var ErrImmutable = errors.New("orders: order is settled and cannot change")

// ErrDuplicateOSNumber is returned when the sequence number already exists.
var ErrDuplicateOSNumber = errors.New("orders: os number already exists")
