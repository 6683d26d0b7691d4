package model

import (
	"github.com/shopspring/decimal"

	"github.com/bibbank/riskcore/internal/domain/valueobject"
)

// RiskFlag is a piece of behavioural evidence raised by statement analysis.
// Kind drives rule matching; Display is the citation shown to underwriters.
type RiskFlag struct {
	Kind    valueobject.EvidenceKind `json:"kind"`
	Display string                   `json:"display"`
}

// DetectedPatterns is the combined output of one pattern-detection run.
type DetectedPatterns struct {
	FastWithdrawalDates    []string        `json:"fast_withdrawal_dates"`
	InformalLenderDetected bool            `json:"informal_lender_detected"`
	NSFCount               int             `json:"nsf_count"`
	SalaryInconsistent     bool            `json:"salary_inconsistent"`
	SalaryVariancePct      decimal.Decimal `json:"salary_variance_pct"`
	HiddenAccountsDetected bool            `json:"hidden_accounts_detected"`
	Flags                  []RiskFlag      `json:"flags"`
}

// HasFlag reports whether a flag of the given kind was raised.
func (p DetectedPatterns) HasFlag(kind valueobject.EvidenceKind) bool {
	for _, f := range p.Flags {
		if f.Kind.Equal(kind) {
			return true
		}
	}
	return false
}

// TransactionSummary aggregates a transaction set. It is always recomputed
// from the transactions and never updated in place.
type TransactionSummary struct {
	TotalCredits   decimal.Decimal   `json:"total_credits"`
	TotalDebits    decimal.Decimal   `json:"total_debits"`
	AverageBalance decimal.Decimal   `json:"average_balance"`
	SalaryDeposits []decimal.Decimal `json:"salary_deposits"`
	PayrollDay     *int              `json:"payroll_day,omitempty"`
}

// DetectedSalary returns the first recurring salary amount, if any.
func (s TransactionSummary) DetectedSalary() (decimal.Decimal, bool) {
	if len(s.SalaryDeposits) == 0 {
		return decimal.Zero, false
	}
	return s.SalaryDeposits[0], true
}
