package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// TimeWorked is an inclusive years/months/days employment duration.
type TimeWorked struct {
	Years  int `json:"years"`
	Months int `json:"months"`
	Days   int `json:"days"`
}

// TotalMonths returns the duration in whole months.
func (t TimeWorked) TotalMonths() int {
	return t.Years*12 + t.Months
}

// String renders the duration the way it is printed on benefit statements.
func (t TimeWorked) String() string {
	return fmt.Sprintf("%d años, %d meses, %d días", t.Years, t.Months, t.Days)
}

// BenefitLine is a day-count based entitlement (notice or severance).
type BenefitLine struct {
	Days   int             `json:"days"`
	Amount decimal.Decimal `json:"amount"`
}

// ChristmasSalary is the proportional thirteenth-month salary.
type ChristmasSalary struct {
	Amount decimal.Decimal `json:"amount"`
	Notes  string          `json:"notes"`
}

// LaborBenefitResult is the full statutory severance computation for one
// employment period.
type LaborBenefitResult struct {
	MonthlySalary   decimal.Decimal `json:"monthly_salary"`
	AvgDailySalary  decimal.Decimal `json:"avg_daily_salary"`
	TimeWorked      TimeWorked      `json:"time_worked"`
	Notice          BenefitLine     `json:"notice"`
	Severance       BenefitLine     `json:"severance"`
	ChristmasSalary ChristmasSalary `json:"christmas_salary"`
	TotalReceived   decimal.Decimal `json:"total_received"`
}

// Collateral is the notice plus severance an employee would collect if
// dismissed at the end of the period. Christmas salary is owed regardless of
// dismissal and is not counted.
func (r LaborBenefitResult) Collateral() decimal.Decimal {
	return r.Notice.Amount.Add(r.Severance.Amount)
}
