package model

import (
	"github.com/bibbank/riskcore/internal/domain/valueobject"
)

// BaseIRSScore is the score every applicant starts from before deductions.
const BaseIRSScore = 100

// DeductionRecord is one applied IRS rule with its evidence.
type DeductionRecord struct {
	Variable       valueobject.Variable `json:"variable"`
	RuleID         string               `json:"rule_id"`
	RuleName       string               `json:"rule_name"`
	PointsDeducted int                  `json:"points_deducted"`
	Evidence       string               `json:"evidence"`
	Flag           string               `json:"flag"`
}

// IRSCalculationResult is the output of one IRS scoring pass.
type IRSCalculationResult struct {
	FinalScore      int                          `json:"final_score"`
	BaseScore       int                          `json:"base_score"`
	TotalDeductions int                          `json:"total_deductions"`
	Breakdown       map[valueobject.Variable]int `json:"breakdown"`
	Deductions      []DeductionRecord            `json:"deductions"`
	Flags           []string                     `json:"flags"`
	RiskLevel       valueobject.RiskLevel        `json:"risk_level"`
}

// DeductionsFor returns the deductions applied to a single variable, in
// evaluation order.
func (r IRSCalculationResult) DeductionsFor(v valueobject.Variable) []DeductionRecord {
	var out []DeductionRecord
	for _, d := range r.Deductions {
		if d.Variable.Equal(v) {
			out = append(out, d)
		}
	}
	return out
}

// HasRule reports whether the given rule fired.
func (r IRSCalculationResult) HasRule(ruleID string) bool {
	for _, d := range r.Deductions {
		if d.RuleID == ruleID {
			return true
		}
	}
	return false
}
