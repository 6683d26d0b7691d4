package testutil

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// AssertDecimalEqual compares decimals by value, so "40000" equals "40000.00".
func AssertDecimalEqual(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) bool {
	t.Helper()
	expected := decimal.RequireFromString(want)
	if expected.Equal(got) {
		return true
	}
	return assert.Fail(t, "decimals differ: expected "+expected.String()+", got "+got.String(), msgAndArgs...)
}
