package service_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/bibbank/riskcore/internal/domain/model"
	"github.com/bibbank/riskcore/internal/domain/service"
)

func fullConfidenceInput() service.ConfidenceInput {
	return service.ConfidenceInput{
		DocumentsUploaded:     3,
		DocumentsProcessed:    3,
		SalaryDetected:        true,
		CreditScorePresent:    true,
		BankAccountVerified:   true,
		EmploymentDatePresent: true,
		DeclaredSalary:        dec("30000"),
		DetectedSalary:        dec("30000"),
		EmployerName:          "Grupo Ramos S.A.",
		IRS:                   &model.IRSCalculationResult{FinalScore: 100},
	}
}

func TestConfidenceCalculator_FullData(t *testing.T) {
	calc := service.NewConfidenceCalculator()

	b := calc.Breakdown(fullConfidenceInput())

	assert.True(t, b.DocumentQuality.Equal(dec("1")))
	assert.True(t, b.DataCompleteness.Equal(dec("1")))
	assert.True(t, b.CrossValidation.Equal(dec("1")))
	assert.True(t, b.OSINTCoverage.Equal(dec("0.8")))
	assert.True(t, b.IRSDeductions.Equal(dec("1")))
	// 0.30 + 0.25 + 0.20 + 0.15*0.8 + 0.10
	assert.Equal(t, "0.97", b.Confidence.StringFixed(2))
	assert.True(t, calc.Calculate(fullConfidenceInput()).Equal(b.Confidence))
}

func TestConfidenceCalculator_FloorAndCeiling(t *testing.T) {
	calc := service.NewConfidenceCalculator()

	empty := calc.Calculate(service.ConfidenceInput{})
	// 0.25*0 + 0.20*0.5 + 0.15*0.3 + 0.10*0.5 = 0.195, floored.
	assert.True(t, empty.Equal(service.MinConfidence), "got %s", empty)

	in := fullConfidenceInput()
	in.SkipOSINT = true
	skipped := calc.Calculate(in)
	assert.True(t, skipped.LessThanOrEqual(dec("1")))
	assert.True(t, skipped.GreaterThan(dec("0.9999")))
}

func TestConfidenceCalculator_SkipOSINTRedistributes(t *testing.T) {
	calc := service.NewConfidenceCalculator()
	in := fullConfidenceInput()
	in.SkipOSINT = true

	b := calc.Breakdown(in)

	assert.True(t, b.Weights.OSINTCoverage.IsZero())
	assert.True(t, b.OSINTCoverage.IsZero())
	assert.Equal(t, "0.3529", b.Weights.DocumentQuality.StringFixed(4))
	assert.Equal(t, "0.2941", b.Weights.DataCompleteness.StringFixed(4))
	assert.Equal(t, "0.2353", b.Weights.CrossValidation.StringFixed(4))
	assert.Equal(t, "0.1176", b.Weights.IRSDeductions.StringFixed(4))
}

func TestDocumentQualityScore(t *testing.T) {
	tests := []struct {
		name                     string
		uploaded, processed, err int
		want                     string
	}{
		{"no documents", 0, 0, 0, "0"},
		{"all processed", 4, 4, 0, "1"},
		{"partial", 4, 3, 0, "0.75"},
		{"errors cap at 80 percent of ratio", 4, 4, 1, "0.8"},
		{"errors never below one half", 4, 1, 2, "0.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := service.DocumentQualityScore(tt.uploaded, tt.processed, tt.err)
			assert.True(t, got.Equal(dec(tt.want)), "got %s", got)
		})
	}
}

func TestCrossValidationScore(t *testing.T) {
	tests := []struct {
		name               string
		declared, detected string
		want               string
	}{
		{"missing detected", "30000", "0", "0.5"},
		{"missing declared", "0", "30000", "0.5"},
		{"within 5 percent", "30000", "28500", "1"},
		{"within 20 percent", "30000", "24000", "0.8"},
		{"within 50 percent", "30000", "15000", "0.4"},
		{"beyond 50 percent", "30000", "10000", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := service.CrossValidationScore(dec(tt.declared), dec(tt.detected))
			assert.True(t, got.Equal(dec(tt.want)), "got %s", got)
		})
	}
}

func TestOSINTCoverageScore(t *testing.T) {
	tests := []struct {
		name     string
		employer string
		ran      bool
		dvs      string
		want     string
	}{
		{"formal employer", "Banco Popular", false, "0", "0.8"},
		{"self employed with osint", "Trabajador Independiente", true, "0.65", "0.65"},
		{"freelance without osint", "Freelance design", false, "0", "0.3"},
		{"no employer uses osint", "", true, "0.9", "0.9"},
		{"no employer without osint", "", false, "0", "0.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := service.OSINTCoverageScore(tt.employer, tt.ran, dec(tt.dvs))
			assert.True(t, got.Equal(dec(tt.want)), "got %s", got)
		})
	}
}

func TestConfidenceCalculator_DeductionCountBands(t *testing.T) {
	calc := service.NewConfidenceCalculator()

	tests := []struct {
		deductions int
		want       string
	}{
		{0, "1"},
		{1, "0.9"},
		{3, "0.9"},
		{4, "0.7"},
		{7, "0.5"},
		{10, "0.3"},
	}

	for _, tt := range tests {
		in := fullConfidenceInput()
		in.IRS = &model.IRSCalculationResult{Deductions: make([]model.DeductionRecord, tt.deductions)}
		got := calc.Breakdown(in).IRSDeductions
		assert.True(t, got.Equal(dec(tt.want)), "%d deductions: got %s", tt.deductions, got)
	}

	in := fullConfidenceInput()
	in.IRS = nil
	b := calc.Breakdown(in)
	assert.True(t, b.IRSDeductions.Equal(dec("0.5")))
	assert.True(t, b.DataCompleteness.Equal(dec("0.8")))
}

func TestConfidenceCalculator_AlwaysWithinBounds(t *testing.T) {
	calc := service.NewConfidenceCalculator()
	for _, uploaded := range []int{0, 1, 5} {
		for _, errs := range []int{0, 2} {
			for _, skip := range []bool{false, true} {
				for _, detected := range []string{"0", "15000", "30000"} {
					in := service.ConfidenceInput{
						DocumentsUploaded:    uploaded,
						DocumentsProcessed:   uploaded,
						DocumentErrors:       errs,
						DeclaredSalary:       dec("30000"),
						DetectedSalary:       dec(detected),
						SkipOSINT:            skip,
						OSINTRan:             true,
						DigitalVeracityScore: decimal.NewFromInt(1),
					}
					c := calc.Calculate(in)
					assert.True(t, c.GreaterThanOrEqual(service.MinConfidence))
					assert.True(t, c.LessThanOrEqual(decimal.NewFromInt(1)))
				}
			}
		}
	}
}
