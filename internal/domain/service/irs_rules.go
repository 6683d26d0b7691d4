package service

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/riskcore/internal/domain/model"
	"github.com/bibbank/riskcore/internal/domain/valueobject"
	"github.com/bibbank/riskcore/pkg/money"
)

var (
	expenseEstimateRate  = decimal.NewFromFloat(0.40)
	criticalCashFlow     = decimal.NewFromFloat(0.10)
	tightCashFlow        = decimal.NewFromFloat(0.20)
	lowIncomeMultiplier  = decimal.NewFromFloat(1.10)
	dependencySalaryCap  = decimal.NewFromInt(35000)
	minGuaranteeCoverage = decimal.NewFromFloat(0.20)
)

const (
	poorCreditThreshold  = 600
	fairCreditThreshold  = 700
	maxDependents        = 3
	probationMonths      = 3
	shortTenureMonths    = 12
	exclusionCredit      = "credit_score"
	exclusionCashFlow    = "cash_flow"
	exclusionTenure      = "tenure"
	invalidStartEvidence = "Employment start date missing or invalid"
)

// employmentDateLayouts are the accepted formats for the employment start date.
var employmentDateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"}

// ruleInput is what every rule predicate sees.
type ruleInput struct {
	applicant model.ApplicantContext
	severance *decimal.Decimal
}

// RuleDefinition describes one IRS deduction rule.
type RuleDefinition struct {
	ID       string
	Name     string
	Variable valueobject.Variable
	Points   int
	Flag     string
	// ExclusionGroup names the set of rules of which at most one may fire;
	// the first matching rule in catalogue order wins.
	ExclusionGroup string
	// Reserved rules are catalogued but have no predicate yet.
	Reserved bool
}

type irsRule struct {
	RuleDefinition
	match func(in ruleInput) (evidence string, ok bool)
}

// variableRules is the ordered rule list for one scoring variable.
type variableRules struct {
	variable valueobject.Variable
	// applies gates the whole variable on the data it needs.
	applies func(in ruleInput) bool
	rules   []irsRule
}

func irsCatalogue() []variableRules {
	return []variableRules{
		{
			variable: valueobject.VariableCreditHistory,
			applies: func(in ruleInput) bool {
				_, ok := in.applicant.CreditScore()
				return ok
			},
			rules: []irsRule{
				{
					RuleDefinition: def("A-01", "Poor credit history", valueobject.VariableCreditHistory, 15, "POOR_CREDIT_HISTORY", exclusionCredit),
					match: func(in ruleInput) (string, bool) {
						score, _ := in.applicant.CreditScore()
						return fmt.Sprintf("Bureau score %d (< %d)", score, poorCreditThreshold), score < poorCreditThreshold
					},
				},
				{
					RuleDefinition: def("A-02", "Fair credit history", valueobject.VariableCreditHistory, 7, "FAIR_CREDIT_HISTORY", exclusionCredit),
					match: func(in ruleInput) (string, bool) {
						score, _ := in.applicant.CreditScore()
						return fmt.Sprintf("Bureau score %d (< %d)", score, fairCreditThreshold), score < fairCreditThreshold
					},
				},
				reserved("A-03", "Excessive recent inquiries", valueobject.VariableCreditHistory, 5, "EXCESSIVE_INQUIRIES"),
				reserved("A-04", "Active delinquency", valueobject.VariableCreditHistory, 10, "ACTIVE_DELINQUENCY"),
				reserved("A-05", "Rising debt trend", valueobject.VariableCreditHistory, 3, "RISING_DEBT"),
			},
		},
		{
			variable: valueobject.VariablePaymentCapacity,
			applies: func(in ruleInput) bool {
				return in.applicant.Salary().IsPositive()
			},
			rules: []irsRule{
				{
					RuleDefinition: def("B-01", "Critical cash flow", valueobject.VariablePaymentCapacity, 20, "CRITICAL_CASH_FLOW", exclusionCashFlow),
					match: func(in ruleInput) (string, bool) {
						ratio := CashFlowRatio(in.applicant)
						return cashFlowEvidence(ratio, criticalCashFlow), ratio.LessThan(criticalCashFlow)
					},
				},
				{
					RuleDefinition: def("B-02", "Tight cash flow", valueobject.VariablePaymentCapacity, 10, "TIGHT_CASH_FLOW", exclusionCashFlow),
					match: func(in ruleInput) (string, bool) {
						ratio := CashFlowRatio(in.applicant)
						return cashFlowEvidence(ratio, tightCashFlow), ratio.LessThan(tightCashFlow)
					},
				},
				{
					RuleDefinition: def("B-03", "Low income", valueobject.VariablePaymentCapacity, 5, "LOW_INCOME", ""),
					match: func(in ruleInput) (string, bool) {
						salary := in.applicant.Salary()
						floor := in.applicant.MinimumWage().Mul(lowIncomeMultiplier)
						return fmt.Sprintf("Salary %s below 110%% of minimum wage %s",
							money.Pesos(salary), money.Pesos(in.applicant.MinimumWage())), salary.LessThan(floor)
					},
				},
				{
					RuleDefinition: def("B-04", "High dependency ratio", valueobject.VariablePaymentCapacity, 10, "HIGH_DEPENDENCY_RATIO", ""),
					match: func(in ruleInput) (string, bool) {
						deps := in.applicant.Dependents()
						salary := in.applicant.Salary()
						return fmt.Sprintf("%d dependents on a salary of %s", deps, money.Pesos(salary)),
							deps > maxDependents && salary.LessThan(dependencySalaryCap)
					},
				},
			},
		},
		{
			variable: valueobject.VariableStability,
			applies: func(in ruleInput) bool {
				return in.applicant.EmploymentStartDate() != ""
			},
			rules: []irsRule{
				{
					RuleDefinition: def("C-01", "Probation period", valueobject.VariableStability, 10, "PROBATION_PERIOD", exclusionTenure),
					match: func(in ruleInput) (string, bool) {
						months, ok := MonthsEmployed(in.applicant.EmploymentStartDate(), in.applicant.AsOf())
						if !ok {
							return "", false
						}
						return fmt.Sprintf("%d months employed (< %d)", months, probationMonths), months < probationMonths
					},
				},
				{
					RuleDefinition: def("C-02", "Short tenure", valueobject.VariableStability, 5, "SHORT_TENURE", exclusionTenure),
					match: func(in ruleInput) (string, bool) {
						months, ok := MonthsEmployed(in.applicant.EmploymentStartDate(), in.applicant.AsOf())
						if !ok {
							return invalidStartEvidence, true
						}
						return fmt.Sprintf("%d months employed (< %d)", months, shortTenureMonths), months < shortTenureMonths
					},
				},
				reserved("C-03", "Recent change of address", valueobject.VariableStability, 5, "RECENT_MOVE"),
				reserved("C-04", "Address inconsistency", valueobject.VariableStability, 5, "ADDRESS_INCONSISTENCY"),
			},
		},
		{
			variable: valueobject.VariableCollateral,
			rules: []irsRule{
				{
					RuleDefinition: def("D-01", "No declared assets", valueobject.VariableCollateral, 3, "NO_ASSETS", ""),
					match: func(in ruleInput) (string, bool) {
						return "No vehicle or property declared", !in.applicant.HasVehicle() && !in.applicant.HasProperty()
					},
				},
				{
					RuleDefinition: def("D-02", "Insufficient guarantee", valueobject.VariableCollateral, 5, "INSUFFICIENT_GUARANTEE", ""),
					match: func(in ruleInput) (string, bool) {
						if in.severance == nil {
							return "", false
						}
						ratio := SeveranceCoverage(*in.severance, in.applicant.RequestedAmount())
						return fmt.Sprintf("Severance %s covers %s%% of the loan (< 20%%)",
							money.Pesos(*in.severance), ratio.Mul(hundred).StringFixed(1)), ratio.LessThan(minGuaranteeCoverage)
					},
				},
			},
		},
		{
			variable: valueobject.VariablePaymentMorality,
			rules: []irsRule{
				{
					RuleDefinition: def("E-01", "Fast withdrawal", valueobject.VariablePaymentMorality, 5, "FAST_WITHDRAWAL", ""),
					match: func(in ruleInput) (string, bool) {
						return firstFlag(in.applicant.RiskFlags(), valueobject.EvidenceFastWithdrawal)
					},
				},
				{
					RuleDefinition: def("E-02", "Informal lender", valueobject.VariablePaymentMorality, 15, "INFORMAL_LENDER_DETECTED", ""),
					match: func(in ruleInput) (string, bool) {
						return firstFlag(in.applicant.RiskFlags(), valueobject.EvidenceInformalLender)
					},
				},
				reserved("E-03", "Data inconsistency", valueobject.VariablePaymentMorality, 10, "DATA_INCONSISTENCY"),
				reserved("E-04", "Location mismatch", valueobject.VariablePaymentMorality, 10, "LOCATION_MISMATCH"),
			},
		},
	}
}

func def(id, name string, v valueobject.Variable, points int, flag, group string) RuleDefinition {
	return RuleDefinition{ID: id, Name: name, Variable: v, Points: points, Flag: flag, ExclusionGroup: group}
}

func reserved(id, name string, v valueobject.Variable, points int, flag string) irsRule {
	d := def(id, name, v, points, flag, "")
	d.Reserved = true
	return irsRule{RuleDefinition: d}
}

// CashFlowRatio is the share of salary left after the fixed expense estimate,
// bureau debt and the proposed loan payment. Bureau debt is not yet sourced
// and counts as zero.
func CashFlowRatio(applicant model.ApplicantContext) decimal.Decimal {
	salary := applicant.Salary()
	if !salary.IsPositive() {
		return decimal.Zero
	}
	bureauDebt := decimal.Zero
	disposable := salary.
		Sub(salary.Mul(expenseEstimateRate)).
		Sub(bureauDebt).
		Sub(applicant.ProposedPayment())
	return disposable.Div(salary)
}

// SeveranceCoverage is severance divided by the loan amount, or zero for a
// zero loan.
func SeveranceCoverage(severance, loanAmount decimal.Decimal) decimal.Decimal {
	if !loanAmount.IsPositive() {
		return decimal.Zero
	}
	return severance.Div(loanAmount)
}

// ParseEmploymentDate accepts a plain date or an RFC 3339 timestamp.
func ParseEmploymentDate(s string) (time.Time, bool) {
	for _, layout := range employmentDateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// MonthsEmployed counts calendar months between the start date and asOf,
// ignoring the day of month. ok is false when the date cannot be parsed.
func MonthsEmployed(startDate string, asOf time.Time) (months int, ok bool) {
	start, ok := ParseEmploymentDate(startDate)
	if !ok {
		return 0, false
	}
	return (asOf.Year()-start.Year())*12 + int(asOf.Month()) - int(start.Month()), true
}

func cashFlowEvidence(ratio, threshold decimal.Decimal) string {
	return fmt.Sprintf("Cash flow %s%% of salary (< %s%%)",
		ratio.Mul(hundred).StringFixed(1), threshold.Mul(hundred).String())
}

func firstFlag(flags []model.RiskFlag, kind valueobject.EvidenceKind) (string, bool) {
	for _, f := range flags {
		if f.Kind.Equal(kind) {
			return f.Display, true
		}
	}
	return "", false
}
