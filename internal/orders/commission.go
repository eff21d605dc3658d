package orders

import "github.com/shopspring/decimal"

// currencyScale is the number of decimal places stored for monetary values.
const currencyScale = 2

var hundred = decimal.NewFromInt(100)

// Commission computes serviceValue × rate / 100 rounded to currency
// precision. Pure; the caller supplies the rate it fetched, so the global
// setting never leaks in as hidden state.
func Commission(serviceValue, rate decimal.Decimal) decimal.Decimal {
	return serviceValue.Mul(rate).Div(hundred).Round(currencyScale)
}
