// Package money formats and rounds Dominican peso amounts.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DOP is the ISO 4217 code of the lending currency.
const DOP = "DOP"

// CentPlaces is the number of decimal places money is settled in.
const CentPlaces = 2

// Money is an immutable peso amount.
type Money struct {
	amount decimal.Decimal
}

// Pesos wraps a DOP amount.
func Pesos(amount decimal.Decimal) Money {
	return Money{amount: amount}
}

// String formats the amount as "DOP <amount>" rounded to cents with
// thousands separators, for example "DOP 21,000.00".
func (m Money) String() string {
	return DOP + " " + groupThousands(RoundCents(m.amount).StringFixed(CentPlaces))
}

// RoundCents rounds half-up (away from zero) to two decimal places.
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(CentPlaces)
}

func groupThousands(fixed string) string {
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return sign + b.String()
}
