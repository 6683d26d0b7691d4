package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/riskcore/internal/domain/model"
	"github.com/bibbank/riskcore/internal/domain/valueobject"
	"github.com/bibbank/riskcore/pkg/money"
)

var (
	ErrEndBeforeStart = errors.New("end date cannot be before start date")
	ErrNegativeSalary = errors.New("monthly salary cannot be negative")
)

var (
	// dailySalaryDivisor converts a monthly salary into the statutory average
	// daily salary.
	dailySalaryDivisor = decimal.RequireFromString("23.83")
	daysPerYear        = decimal.NewFromInt(365)
)

const (
	fullChristmasYearDays = 360
)

// LaborOptions selects which entitlements are included in the total.
type LaborOptions struct {
	IncludeNotice          bool
	IncludeSeverance       bool
	IncludeChristmasSalary bool
}

// DefaultLaborOptions includes every entitlement.
func DefaultLaborOptions() LaborOptions {
	return LaborOptions{
		IncludeNotice:          true,
		IncludeSeverance:       true,
		IncludeChristmasSalary: true,
	}
}

// ---------------------------------------------------------------------------
// LaborCalculator – statutory notice, severance and Christmas salary
// ---------------------------------------------------------------------------

// LaborCalculator computes Dominican labor-code entitlements for an
// employment period. It is a pure function of its inputs.
type LaborCalculator struct{}

// NewLaborCalculator creates a new LaborCalculator.
func NewLaborCalculator() *LaborCalculator {
	return &LaborCalculator{}
}

// Calculate returns notice, severance and Christmas salary for an employment
// running from start to end (both inclusive) at the given monthly salary.
// Every monetary output is rounded half-up to two decimal places.
func (c *LaborCalculator) Calculate(
	start, end time.Time,
	monthlySalary decimal.Decimal,
	opts LaborOptions,
) (model.LaborBenefitResult, error) {
	start, end = valueobject.CalendarDay(start), valueobject.CalendarDay(end)
	if end.Before(start) {
		return model.LaborBenefitResult{}, fmt.Errorf("%w: start %s, end %s",
			ErrEndBeforeStart, start.Format(dateLayout), end.Format(dateLayout))
	}
	if monthlySalary.IsNegative() {
		return model.LaborBenefitResult{}, fmt.Errorf("%w: %s", ErrNegativeSalary, monthlySalary)
	}

	daily := monthlySalary.Div(dailySalaryDivisor)
	worked := InclusiveDuration(start, end)

	noticeDays := 0
	if opts.IncludeNotice {
		noticeDays = noticeDaysFor(worked)
	}
	severanceDays := 0
	if opts.IncludeSeverance {
		severanceDays = severanceDaysFor(worked)
	}

	notice := money.RoundCents(daily.Mul(decimal.NewFromInt(int64(noticeDays))))
	severance := money.RoundCents(daily.Mul(decimal.NewFromInt(int64(severanceDays))))

	christmas := model.ChristmasSalary{Amount: money.RoundCents(decimal.Zero), Notes: "0 Días"}
	if opts.IncludeChristmasSalary {
		christmas = christmasSalary(start, end, monthlySalary)
	}

	return model.LaborBenefitResult{
		MonthlySalary:   monthlySalary,
		AvgDailySalary:  money.RoundCents(daily),
		TimeWorked:      worked,
		Notice:          model.BenefitLine{Days: noticeDays, Amount: notice},
		Severance:       model.BenefitLine{Days: severanceDays, Amount: severance},
		ChristmasSalary: christmas,
		TotalReceived:   money.RoundCents(notice.Add(severance).Add(christmas.Amount)),
	}, nil
}

// CollateralSeverance is the notice plus severance an employee would collect
// if dismissed on end.
func (c *LaborCalculator) CollateralSeverance(start, end time.Time, monthlySalary decimal.Decimal) (decimal.Decimal, error) {
	result, err := c.Calculate(start, end, monthlySalary, LaborOptions{
		IncludeNotice:    true,
		IncludeSeverance: true,
	})
	if err != nil {
		return decimal.Zero, err
	}
	return result.Collateral(), nil
}

// InclusiveDuration measures the employment period counting both the first
// and the last day, so a full calendar year is exactly one year. Borrowed
// months are counted as 30 days.
func InclusiveDuration(start, end time.Time) model.TimeWorked {
	target := end.AddDate(0, 0, 1)

	years := target.Year() - start.Year()
	months := int(target.Month()) - int(start.Month())
	days := target.Day() - start.Day()

	if days < 0 {
		months--
		days += 30
	}
	if months < 0 {
		years--
		months += 12
	}

	return model.TimeWorked{Years: years, Months: months, Days: days}
}

func noticeDaysFor(w model.TimeWorked) int {
	switch {
	case w.Years >= 1:
		return 28
	case w.Months >= 6:
		return 14
	case w.Months >= 3:
		return 7
	default:
		return 0
	}
}

func severanceDaysFor(w model.TimeWorked) int {
	days := 0
	switch {
	case w.Years >= 5:
		days = w.Years * 23
	case w.Years >= 1:
		days = w.Years * 21
	case w.Months >= 6:
		days = 13
	case w.Months >= 3:
		days = 6
	}

	if w.Years >= 1 {
		switch {
		case w.Months >= 6:
			days += 13
		case w.Months >= 3:
			days += 6
		}
	}
	return days
}

// christmasSalary prorates the thirteenth-month salary over the days worked
// in the final calendar year.
func christmasSalary(start, end time.Time, monthlySalary decimal.Decimal) model.ChristmasSalary {
	effectiveStart := time.Date(end.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	if start.After(effectiveStart) {
		effectiveStart = start
	}

	daysInYear := absDays(end, effectiveStart) + 1
	if daysInYear >= fullChristmasYearDays {
		return model.ChristmasSalary{Amount: money.RoundCents(monthlySalary), Notes: "1 Año"}
	}

	amount := monthlySalary.Mul(decimal.NewFromInt(int64(daysInYear))).Div(daysPerYear)
	return model.ChristmasSalary{
		Amount: money.RoundCents(amount),
		Notes:  fmt.Sprintf("%d Días", daysInYear),
	}
}
