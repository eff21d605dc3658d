// Package settings holds the single global configuration row, most
// importantly the commission rate applied to new computations.
package settings

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultCommissionRate applies when no settings row has been created yet.
var DefaultCommissionRate = decimal.NewFromInt(10)

// Settings is the global configuration row. The commission rate is read at
// computation time and never stored by reference, so later changes do not
// retroactively alter existing orders.
type Settings struct {
	ID             uuid.UUID       `json:"id"`
	CommissionRate decimal.Decimal `json:"fixedCommissionPercentage"`
	CompanyName    string          `json:"companyName"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// UpdateInput carries a partial settings update.
type UpdateInput struct {
	CommissionRate *decimal.Decimal `json:"fixedCommissionPercentage,omitempty"`
	CompanyName    *string          `json:"companyName,omitempty"`
}

// Validate rejects nonsensical rates before they reach storage.
func (in UpdateInput) Validate() error {
	if in.CommissionRate != nil && in.CommissionRate.IsNegative() {
		return errors.New("settings: commission rate cannot be negative")
	}
	return nil
}

// ErrNotFound is returned when no settings row exists.
var ErrNotFound = errors.New("settings: not found")
