package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultMinimumWage is the monthly minimum wage used for the low-income
// check when the employer's company size is unknown.
var DefaultMinimumWage = decimal.NewFromInt(21000)

// ApplicantInput carries the raw, already-collected facts about an applicant
// and the requested loan. It is validated into an ApplicantContext.
type ApplicantInput struct {
	CreditScore         *int
	BureauFlags         []string
	DeclaredSalary      decimal.Decimal
	DetectedSalary      decimal.Decimal
	RequestedAmount     decimal.Decimal
	TermMonths          int
	Dependents          int
	EmploymentStartDate string
	HasVehicle          bool
	HasProperty         bool
	RiskFlags           []RiskFlag
	MinimumWage         decimal.Decimal
	AsOf                time.Time
}

// ApplicantContext is the immutable scoring context for a single applicant.
type ApplicantContext struct {
	creditScore         *int
	bureauFlags         []string
	declaredSalary      decimal.Decimal
	detectedSalary      decimal.Decimal
	requestedAmount     decimal.Decimal
	termMonths          int
	dependents          int
	employmentStartDate string
	hasVehicle          bool
	hasProperty         bool
	riskFlags           []RiskFlag
	minimumWage         decimal.Decimal
	asOf                time.Time
}

// NewApplicantContext validates the input and returns a context that the
// scoring engine can rely on without further checks.
func NewApplicantContext(in ApplicantInput) (ApplicantContext, error) {
	if in.CreditScore != nil && (*in.CreditScore < 300 || *in.CreditScore > 850) {
		return ApplicantContext{}, fmt.Errorf("credit score must be between 300 and 850, got %d", *in.CreditScore)
	}
	if in.DeclaredSalary.IsNegative() {
		return ApplicantContext{}, fmt.Errorf("declared salary cannot be negative")
	}
	if in.DetectedSalary.IsNegative() {
		return ApplicantContext{}, fmt.Errorf("detected salary cannot be negative")
	}
	if in.RequestedAmount.IsNegative() {
		return ApplicantContext{}, fmt.Errorf("requested amount cannot be negative")
	}
	if in.TermMonths <= 0 {
		return ApplicantContext{}, fmt.Errorf("term months must be positive")
	}
	if in.Dependents < 0 {
		return ApplicantContext{}, fmt.Errorf("dependents cannot be negative")
	}
	if in.AsOf.IsZero() {
		return ApplicantContext{}, fmt.Errorf("evaluation date is required")
	}

	minWage := in.MinimumWage
	if !minWage.IsPositive() {
		minWage = DefaultMinimumWage
	}

	var score *int
	if in.CreditScore != nil {
		s := *in.CreditScore
		score = &s
	}

	return ApplicantContext{
		creditScore:         score,
		bureauFlags:         append([]string(nil), in.BureauFlags...),
		declaredSalary:      in.DeclaredSalary,
		detectedSalary:      in.DetectedSalary,
		requestedAmount:     in.RequestedAmount,
		termMonths:          in.TermMonths,
		dependents:          in.Dependents,
		employmentStartDate: in.EmploymentStartDate,
		hasVehicle:          in.HasVehicle,
		hasProperty:         in.HasProperty,
		riskFlags:           append([]RiskFlag(nil), in.RiskFlags...),
		minimumWage:         minWage,
		asOf:                in.AsOf,
	}, nil
}

// CreditScore returns the bureau score and whether one was supplied.
func (c ApplicantContext) CreditScore() (int, bool) {
	if c.creditScore == nil {
		return 0, false
	}
	return *c.creditScore, true
}

// Salary returns the salary used for capacity checks: the salary detected
// on the bank statement when available, otherwise the declared one.
func (c ApplicantContext) Salary() decimal.Decimal {
	if c.detectedSalary.IsPositive() {
		return c.detectedSalary
	}
	return c.declaredSalary
}

// ProposedPayment is the requested amount spread evenly over the term.
func (c ApplicantContext) ProposedPayment() decimal.Decimal {
	return c.requestedAmount.Div(decimal.NewFromInt(int64(c.termMonths)))
}

func (c ApplicantContext) BureauFlags() []string            { return append([]string(nil), c.bureauFlags...) }
func (c ApplicantContext) DeclaredSalary() decimal.Decimal  { return c.declaredSalary }
func (c ApplicantContext) DetectedSalary() decimal.Decimal  { return c.detectedSalary }
func (c ApplicantContext) RequestedAmount() decimal.Decimal { return c.requestedAmount }
func (c ApplicantContext) TermMonths() int                  { return c.termMonths }
func (c ApplicantContext) Dependents() int                  { return c.dependents }
func (c ApplicantContext) EmploymentStartDate() string      { return c.employmentStartDate }
func (c ApplicantContext) HasVehicle() bool                 { return c.hasVehicle }
func (c ApplicantContext) HasProperty() bool                { return c.hasProperty }
func (c ApplicantContext) RiskFlags() []RiskFlag            { return append([]RiskFlag(nil), c.riskFlags...) }
func (c ApplicantContext) MinimumWage() decimal.Decimal     { return c.minimumWage }
func (c ApplicantContext) AsOf() time.Time                  { return c.asOf }
