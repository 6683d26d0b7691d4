package valueobject

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Direction states whether money entered (CREDIT) or left (DEBIT) the account.
type Direction struct {
	value string
}

var (
	DirectionCredit = Direction{value: "CREDIT"}
	DirectionDebit  = Direction{value: "DEBIT"}
)

// DirectionFromString reconstructs a Direction from its string representation.
func DirectionFromString(s string) (Direction, error) {
	switch s {
	case "CREDIT":
		return DirectionCredit, nil
	case "DEBIT":
		return DirectionDebit, nil
	default:
		return Direction{}, fmt.Errorf("invalid transaction direction: %s", s)
	}
}

// String returns the string representation.
func (d Direction) String() string {
	return d.value
}

// IsZero returns true if the Direction has not been set.
func (d Direction) IsZero() bool {
	return d.value == ""
}

// Transaction is a single parsed bank-statement line. It is immutable once
// constructed; amounts keep their sign as printed on the statement.
type Transaction struct {
	date        time.Time
	description string
	amount      decimal.Decimal
	direction   Direction
	balance     decimal.Decimal
	category    string
}

// NewTransaction validates and constructs a Transaction. The date is
// truncated to its calendar day in UTC.
func NewTransaction(
	date time.Time,
	description string,
	amount decimal.Decimal,
	direction Direction,
	balance decimal.Decimal,
	category string,
) (Transaction, error) {
	if date.IsZero() {
		return Transaction{}, fmt.Errorf("transaction date is required")
	}
	if direction.IsZero() {
		return Transaction{}, fmt.Errorf("transaction direction is required")
	}

	return Transaction{
		date:        CalendarDay(date),
		description: description,
		amount:      amount,
		direction:   direction,
		balance:     balance,
		category:    category,
	}, nil
}

// CalendarDay strips the clock from t and returns midnight UTC of the same
// calendar date.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Accessors

func (t Transaction) Date() time.Time          { return t.date }
func (t Transaction) Description() string      { return t.description }
func (t Transaction) Amount() decimal.Decimal  { return t.amount }
func (t Transaction) Direction() Direction     { return t.direction }
func (t Transaction) Balance() decimal.Decimal { return t.balance }
func (t Transaction) Category() string         { return t.category }

// IsCredit reports whether the transaction is an inflow.
func (t Transaction) IsCredit() bool { return t.direction == DirectionCredit }

// IsDebit reports whether the transaction is an outflow.
func (t Transaction) IsDebit() bool { return t.direction == DirectionDebit }
