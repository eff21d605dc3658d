// Package insights serves the dashboard aggregates: monthly commission
// movement and the brand/customer rankings.
package insights

import "github.com/shopspring/decimal"

// MonthTotals summarizes commission for one calendar month.
type MonthTotals struct {
	Total   decimal.Decimal `json:"total"`
	Paid    decimal.Decimal `json:"paid"`
	Pending decimal.Decimal `json:"pending"`
}

// RankedEntry is one row of a top-N ranking.
type RankedEntry struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

// Dashboard is the full dashboard payload.
type Dashboard struct {
	MonthlyStats struct {
		CurrentMonth MonthTotals `json:"currentMonth"`
		PrevMonth    struct {
			Total decimal.Decimal `json:"total"`
		} `json:"prevMonth"`
		Growth float64 `json:"growth"`
	} `json:"monthlyStats"`
	Rankings struct {
		TopBrands    []RankedEntry `json:"topBrands"`
		TopCustomers []RankedEntry `json:"topCustomers"`
	} `json:"rankings"`
}
