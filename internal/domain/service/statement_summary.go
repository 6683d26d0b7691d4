package service

import (
	"github.com/shopspring/decimal"

	"github.com/bibbank/riskcore/internal/domain/model"
	"github.com/bibbank/riskcore/internal/domain/valueobject"
	"github.com/bibbank/riskcore/pkg/money"
)

var salaryClusterTolerance = decimal.NewFromFloat(0.10)

const (
	salaryMinOccurrences = 2

	behaviorBaseScore     = 70
	behaviorNoDataScore   = 50
	behaviorFastPenalty   = 20
	behaviorLenderPenalty = 30
	behaviorNSFPenalty    = 10
	behaviorSalaryPenalty = 15
	behaviorBonus         = 10
)

// Summarize aggregates a transaction set: totals, average balance, the
// recurring salary amounts and the most likely payroll day.
func Summarize(txns []valueobject.Transaction) model.TransactionSummary {
	summary := model.TransactionSummary{
		TotalCredits:   decimal.Zero,
		TotalDebits:    decimal.Zero,
		AverageBalance: decimal.Zero,
		SalaryDeposits: make([]decimal.Decimal, 0),
	}
	if len(txns) == 0 {
		return summary
	}

	balanceSum := decimal.Zero
	for _, t := range txns {
		switch {
		case t.IsCredit():
			summary.TotalCredits = summary.TotalCredits.Add(t.Amount())
		case t.IsDebit():
			summary.TotalDebits = summary.TotalDebits.Add(t.Amount().Abs())
		}
		balanceSum = balanceSum.Add(t.Balance())
	}
	summary.AverageBalance = money.RoundCents(balanceSum.Div(decimal.NewFromInt(int64(len(txns)))))
	summary.SalaryDeposits = DetectSalaryDeposits(txns)
	summary.PayrollDay = detectPayrollDay(summary.SalaryDeposits, txns)

	return summary
}

// DetectSalaryDeposits clusters credits whose amounts are within 10% of an
// earlier cluster's first amount and returns the first amount of every
// cluster seen at least twice.
func DetectSalaryDeposits(txns []valueobject.Transaction) []decimal.Decimal {
	type cluster struct {
		amount decimal.Decimal
		count  int
	}

	var clusters []*cluster
	for _, t := range txns {
		if !t.IsCredit() {
			continue
		}
		var matched *cluster
		for _, c := range clusters {
			if withinTolerance(t.Amount(), c.amount) {
				matched = c
				break
			}
		}
		if matched == nil {
			clusters = append(clusters, &cluster{amount: t.Amount(), count: 1})
			continue
		}
		matched.count++
	}

	salaries := make([]decimal.Decimal, 0)
	for _, c := range clusters {
		if c.count >= salaryMinOccurrences {
			salaries = append(salaries, c.amount)
		}
	}
	return salaries
}

// detectPayrollDay returns the most frequent day of month among credits that
// match a salary amount. Ties go to the day seen first.
func detectPayrollDay(salaries []decimal.Decimal, txns []valueobject.Transaction) *int {
	if len(salaries) == 0 {
		return nil
	}

	counts := make(map[int]int)
	var order []int
	for _, t := range txns {
		if !t.IsCredit() {
			continue
		}
		for _, s := range salaries {
			if withinTolerance(t.Amount(), s) {
				day := t.Date().Day()
				if counts[day] == 0 {
					order = append(order, day)
				}
				counts[day]++
				break
			}
		}
	}
	if len(order) == 0 {
		return nil
	}

	best := order[0]
	for _, day := range order[1:] {
		if counts[day] > counts[best] {
			best = day
		}
	}
	return &best
}

func withinTolerance(amount, reference decimal.Decimal) bool {
	if !reference.IsPositive() {
		return false
	}
	return amount.Sub(reference).Abs().Div(reference).LessThanOrEqual(salaryClusterTolerance)
}

// BehaviorScore condenses detected patterns into a 0–100 financial behaviour
// score. Without bank data the score is a neutral 50.
func BehaviorScore(patterns *model.DetectedPatterns) int {
	if patterns == nil {
		return behaviorNoDataScore
	}

	score := behaviorBaseScore
	if len(patterns.FastWithdrawalDates) > 0 {
		score -= behaviorFastPenalty
	}
	if patterns.InformalLenderDetected {
		score -= behaviorLenderPenalty
	}
	score -= patterns.NSFCount * behaviorNSFPenalty
	if patterns.SalaryInconsistent {
		score -= behaviorSalaryPenalty
	} else {
		score += behaviorBonus
	}
	if len(patterns.Flags) == 0 {
		score += behaviorBonus
	}

	return max(0, min(100, score))
}
