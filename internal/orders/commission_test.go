package orders

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCommission(t *testing.T) {
	cases := []struct {
		service string
		rate    string
		want    string
	}{
		{"200", "10", "20"},
		{"150.50", "10", "15.05"},
		{"99.99", "10", "10"},
		{"100", "12.5", "12.5"},
		{"33.33", "10", "3.33"},
		{"0.01", "10", "0"},
		{"1000", "0", "0"},
	}
	for _, tc := range cases {
		got := Commission(decimal.RequireFromString(tc.service), decimal.RequireFromString(tc.rate))
		assert.True(t, got.Equal(decimal.RequireFromString(tc.want)),
			"commission(%s, %s) = %s, want %s", tc.service, tc.rate, got, tc.want)
	}
}

func TestCommissionIsDeterministic(t *testing.T) {
	service := decimal.RequireFromString("123.45")
	rate := decimal.RequireFromString("7.5")
	first := Commission(service, rate)
	second := Commission(service, rate)
	assert.True(t, first.Equal(second))
}
