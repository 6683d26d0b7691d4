package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bibbank/riskcore/internal/domain/model"
	"github.com/bibbank/riskcore/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// IRSEngine – Internal Risk Score deduction model
// ---------------------------------------------------------------------------

// IRSEngine scores an applicant by deducting points from a base of 100
// across five capped variables. Rules are evaluated in catalogue order; at
// most one rule per exclusion group fires within a variable.
type IRSEngine struct {
	catalogue []variableRules
}

// NewIRSEngine creates an IRSEngine with the standard rule catalogue.
func NewIRSEngine() *IRSEngine {
	return &IRSEngine{catalogue: irsCatalogue()}
}

// Rules lists every catalogued rule, reserved ones included, in evaluation order.
func (e *IRSEngine) Rules() []RuleDefinition {
	var defs []RuleDefinition
	for _, vr := range e.catalogue {
		for _, r := range vr.rules {
			defs = append(defs, r.RuleDefinition)
		}
	}
	return defs
}

// Calculate scores the applicant. severance is the optional collateral
// severance amount used by rule D-02. The result depends only on the
// arguments.
func (e *IRSEngine) Calculate(applicant model.ApplicantContext, severance *decimal.Decimal) (model.IRSCalculationResult, error) {
	in := ruleInput{applicant: applicant, severance: severance}

	deductions := make([]model.DeductionRecord, 0)
	perVariable := make(map[valueobject.Variable]int, len(e.catalogue))

	for _, vr := range e.catalogue {
		perVariable[vr.variable] = 0
		if vr.applies != nil && !vr.applies(in) {
			continue
		}

		firedGroups := make(map[string]bool)
		for _, rule := range vr.rules {
			if rule.Reserved || rule.match == nil {
				continue
			}
			if rule.ExclusionGroup != "" && firedGroups[rule.ExclusionGroup] {
				continue
			}

			evidence, ok := rule.match(in)
			if !ok {
				continue
			}
			if rule.ExclusionGroup != "" {
				firedGroups[rule.ExclusionGroup] = true
			}

			perVariable[vr.variable] += rule.Points
			deductions = append(deductions, model.DeductionRecord{
				Variable:       vr.variable,
				RuleID:         rule.ID,
				RuleName:       rule.Name,
				PointsDeducted: rule.Points,
				Evidence:       evidence,
				Flag:           rule.Flag,
			})
		}
	}

	total := 0
	flags := make([]string, 0, len(deductions))
	for _, d := range deductions {
		total += d.PointsDeducted
		flags = append(flags, d.Flag)
	}

	breakdown := make(map[valueobject.Variable]int, len(perVariable))
	for v, deducted := range perVariable {
		breakdown[v] = max(0, v.Allocation()-deducted)
	}

	final := max(0, model.BaseIRSScore-total)
	level, err := valueobject.RiskLevelFromScore(final)
	if err != nil {
		return model.IRSCalculationResult{}, fmt.Errorf("classify irs score: %w", err)
	}

	return model.IRSCalculationResult{
		FinalScore:      final,
		BaseScore:       model.BaseIRSScore,
		TotalDeductions: total,
		Breakdown:       breakdown,
		Deductions:      deductions,
		Flags:           flags,
		RiskLevel:       level,
	}, nil
}
