package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMoney_String(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		want   string
	}{
		{"zero", "0", "DOP 0.00"},
		{"hundreds", "999.5", "DOP 999.50"},
		{"thousands", "21000", "DOP 21,000.00"},
		{"millions", "1234567.891", "DOP 1,234,567.89"},
		{"negative", "-35235.585", "DOP -35,235.59"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Pesos(decimal.RequireFromString(tt.amount)).String())
		})
	}
}

func TestRoundCents_HalfUp(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1258.4137641628", "1258.41"},
		{"35235.585", "35235.59"},
		{"173661.0994", "173661.10"},
		{"0.005", "0.01"},
		{"0.004", "0.00"},
		{"-0.005", "-0.01"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := RoundCents(decimal.RequireFromString(tt.in))
			assert.Equal(t, tt.want, got.StringFixed(CentPlaces))
		})
	}
}
