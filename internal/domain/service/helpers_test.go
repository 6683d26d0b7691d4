package service_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/riskcore/internal/domain/valueobject"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func credit(t *testing.T, date, amount, desc string) valueobject.Transaction {
	t.Helper()
	tx, err := valueobject.NewTransaction(day(t, date), desc, dec(amount), valueobject.DirectionCredit, decimal.Zero, "")
	require.NoError(t, err)
	return tx
}

func debit(t *testing.T, date, amount, desc string) valueobject.Transaction {
	t.Helper()
	tx, err := valueobject.NewTransaction(day(t, date), desc, dec(amount), valueobject.DirectionDebit, decimal.Zero, "")
	require.NoError(t, err)
	return tx
}

func withBalance(t *testing.T, date, amount, balance string, dir valueobject.Direction) valueobject.Transaction {
	t.Helper()
	tx, err := valueobject.NewTransaction(day(t, date), "", dec(amount), dir, dec(balance), "")
	require.NoError(t, err)
	return tx
}
