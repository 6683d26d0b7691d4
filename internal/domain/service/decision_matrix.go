package service

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bibbank/riskcore/internal/domain/valueobject"
	"github.com/bibbank/riskcore/pkg/money"
)

var (
	// HighAmountThreshold sends any larger loan to manual review.
	HighAmountThreshold      = decimal.NewFromInt(50000)
	autoApproveConfidence    = decimal.NewFromFloat(0.85)
	suggestedAmountFactor    = decimal.NewFromFloat(0.8)
	capacitySalaryShare      = decimal.NewFromFloat(0.30)
	capacityPerDependentCost = decimal.NewFromInt(2000)
)

// Decision flags explaining why an application is not a clean approval.
const (
	FlagHighAmount    = "HIGH_AMOUNT"
	FlagLowConfidence = "LOW_CONFIDENCE"
	FlagMediumRisk    = "MEDIUM_RISK"
	FlagCriticalRisk  = "CRITICAL_RISK"
)

// ---------------------------------------------------------------------------
// DecisionMatrix – final underwriting decision
// ---------------------------------------------------------------------------

// DecisionMatrix maps (IRS score, confidence, loan amount) to a decision.
// It is the only producer of valueobject.Decision.
type DecisionMatrix struct{}

// NewDecisionMatrix creates a new DecisionMatrix.
func NewDecisionMatrix() *DecisionMatrix {
	return &DecisionMatrix{}
}

// MakeDecision applies the matrix. The high-amount override is checked first
// and wins over any score or confidence.
func (m *DecisionMatrix) MakeDecision(irsScore int, confidence, loanAmount decimal.Decimal) valueobject.Decision {
	switch {
	case loanAmount.GreaterThan(HighAmountThreshold):
		return valueobject.DecisionManualReview
	case irsScore < valueobject.HighRiskMinScore:
		return valueobject.DecisionRejected
	case irsScore < valueobject.LowRiskMinScore:
		return valueobject.DecisionManualReview
	case confidence.GreaterThanOrEqual(autoApproveConfidence):
		return valueobject.DecisionApproved
	default:
		return valueobject.DecisionApprovedPendingReview
	}
}

// SuggestedAmount proposes a counter-offer for medium-risk applicants
// (60 ≤ score < 85): 80% of what the monthly payment capacity repays over
// the term. It is returned even when it exceeds the requested amount.
// Outside that band it returns nil.
func (m *DecisionMatrix) SuggestedAmount(irsScore int, paymentCapacity decimal.Decimal, termMonths int) *decimal.Decimal {
	if irsScore < valueobject.HighRiskMinScore || irsScore >= valueobject.LowRiskMinScore {
		return nil
	}
	amount := money.RoundCents(paymentCapacity.
		Mul(decimal.NewFromInt(int64(termMonths))).
		Mul(suggestedAmountFactor))
	return &amount
}

// DecisionFlags lists the conditions that kept an application away from a
// clean approval. Each entry is "<FLAG>: <explanation>" with the amounts and
// thresholds involved; FlagCode recovers the bare flag.
func (m *DecisionMatrix) DecisionFlags(irsScore int, confidence, loanAmount decimal.Decimal) []string {
	flags := make([]string, 0)
	if loanAmount.GreaterThan(HighAmountThreshold) {
		flags = append(flags, fmt.Sprintf("%s: Loan amount %s exceeds threshold (%s), requires senior approval",
			FlagHighAmount, money.Pesos(loanAmount), money.Pesos(HighAmountThreshold)))
	}
	if confidence.LessThan(autoApproveConfidence) {
		flags = append(flags, fmt.Sprintf("%s: Confidence %s%% below threshold (%s%%), requires verification",
			FlagLowConfidence, confidence.Mul(hundred).StringFixed(1), autoApproveConfidence.Mul(hundred).StringFixed(0)))
	}
	switch {
	case irsScore < valueobject.HighRiskMinScore:
		flags = append(flags, fmt.Sprintf("%s: IRS score %d below acceptable threshold", FlagCriticalRisk, irsScore))
	case irsScore < valueobject.LowRiskMinScore:
		flags = append(flags, fmt.Sprintf("%s: IRS score %d indicates medium risk profile", FlagMediumRisk, irsScore))
	}
	return flags
}

// FlagCode returns the flag name of a DecisionFlags entry.
func FlagCode(flag string) string {
	code, _, _ := strings.Cut(flag, ":")
	return code
}

// PaymentCapacity estimates the monthly amount an applicant can put toward a
// loan: 30% of salary less 2,000 per dependent, never below zero.
func PaymentCapacity(salary decimal.Decimal, dependents int) decimal.Decimal {
	capacity := salary.Mul(capacitySalaryShare).
		Sub(capacityPerDependentCost.Mul(decimal.NewFromInt(int64(dependents))))
	return decimal.Max(decimal.Zero, capacity)
}
