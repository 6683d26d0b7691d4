package model

import "github.com/shopspring/decimal"

// ConfidenceBreakdown holds the five normalized confidence factors together
// with the weights actually applied to them.
type ConfidenceBreakdown struct {
	DocumentQuality  decimal.Decimal   `json:"document_quality"`
	DataCompleteness decimal.Decimal   `json:"data_completeness"`
	CrossValidation  decimal.Decimal   `json:"cross_validation"`
	OSINTCoverage    decimal.Decimal   `json:"osint_coverage"`
	IRSDeductions    decimal.Decimal   `json:"irs_deductions"`
	Weights          ConfidenceWeights `json:"weights"`
	Confidence       decimal.Decimal   `json:"confidence"`
}

// ConfidenceWeights is the weight applied to each factor.
type ConfidenceWeights struct {
	DocumentQuality  decimal.Decimal `json:"document_quality"`
	DataCompleteness decimal.Decimal `json:"data_completeness"`
	CrossValidation  decimal.Decimal `json:"cross_validation"`
	OSINTCoverage    decimal.Decimal `json:"osint_coverage"`
	IRSDeductions    decimal.Decimal `json:"irs_deductions"`
}
