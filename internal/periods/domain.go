// Package periods implements commission period accounting: deterministic
// date bucketing, lazily created period rows, cached totals, and the atomic
// close operation that settles every order in a period.
package periods

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Strategy selects how calendar dates are bucketed into periods.
type Strategy string

const (
	// StrategyBiweekly splits each month into [1,15] and [16,last day].
	StrategyBiweekly Strategy = "BIWEEKLY"
	// StrategyMonthly treats the whole month as one bucket.
	StrategyMonthly Strategy = "MONTHLY"
)

// Period is a contiguous date bucket used for commission settlement. Totals
// are a materialized view over member orders, never a source of truth.
type Period struct {
	ID                uuid.UUID       `json:"id"`
	StartDate         time.Time       `json:"startDate"`
	EndDate           time.Time       `json:"endDate"`
	Paid              bool            `json:"paid"`
	PaidAt            *time.Time      `json:"paidAt,omitempty"`
	TotalOrders       int             `json:"totalOrders"`
	TotalServiceValue decimal.Decimal `json:"totalServiceValue"`
	TotalCommission   decimal.Decimal `json:"totalCommission"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// Totals is the aggregate over a period's member orders.
type Totals struct {
	Orders       int
	ServiceValue decimal.Decimal
	Commission   decimal.Decimal
}

// CreatePeriodInput carries the manual period creation parameters that
// bypass the resolver.
type CreatePeriodInput struct {
	StartDate time.Time
	EndDate   time.Time
}

// Validate ensures the manual input is coherent.
func (in CreatePeriodInput) Validate() error {
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return fmt.Errorf("%w: start and end date required", ErrInvalidInput)
	}
	if in.StartDate.After(in.EndDate) {
		return fmt.Errorf("%w: start date cannot be after end date", ErrInvalidInput)
	}
	return nil
}

// ErrInvalidInput wraps input validation failures.
var ErrInvalidInput = errors.New("periods: invalid input")

// ErrNotFound is returned when the referenced period does not exist.
var ErrNotFound = errors.New("periods: period not found")

// ErrAlreadyPaid is returned when re-closing a closed period.
var ErrAlreadyPaid = errors.New("periods: period already paid")

// ErrLocked is returned when creating or moving an order into a paid period.
var ErrLocked = errors.New("periods: period is paid and locked")

// ErrOverlap indicates the requested range conflicts with an existing period.
var ErrOverlap = errors.New("periods: range overlaps existing period")

// ErrDuplicateRange signals the storage-level uniqueness constraint on
// [start, end]; callers treat it as "someone else created it, re-fetch".
var ErrDuplicateRange = errors.New("periods: range already exists")
