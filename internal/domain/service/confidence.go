package service

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bibbank/riskcore/internal/domain/model"
)

var (
	weightDocumentQuality  = decimal.NewFromFloat(0.30)
	weightDataCompleteness = decimal.NewFromFloat(0.25)
	weightCrossValidation  = decimal.NewFromFloat(0.20)
	weightOSINTCoverage    = decimal.NewFromFloat(0.15)
	weightIRSDeductions    = decimal.NewFromFloat(0.10)

	// MinConfidence is the business floor applied to every confidence score.
	MinConfidence = decimal.NewFromFloat(0.30)
	maxConfidence = decimal.NewFromInt(1)

	neutralScore           = decimal.NewFromFloat(0.5)
	docErrorPenalty        = decimal.NewFromFloat(0.8)
	formalEmploymentScore  = decimal.NewFromFloat(0.8)
	osintNotRunScore       = decimal.NewFromFloat(0.3)
	manyDeductionsScore    = decimal.NewFromFloat(0.3)
	completenessFactsCount = decimal.NewFromInt(5)

	selfEmploymentKeywords = []string{"independiente", "cuenta propia", "freelance"}
)

// crossValidationBands maps salary variance upper bounds to scores.
var crossValidationBands = []struct {
	maxVariance decimal.Decimal
	score       decimal.Decimal
}{
	{decimal.NewFromFloat(0.05), decimal.NewFromInt(1)},
	{decimal.NewFromFloat(0.20), decimal.NewFromFloat(0.8)},
	{decimal.NewFromFloat(0.50), decimal.NewFromFloat(0.4)},
}

// deductionCountBands maps the number of IRS deductions to scores.
var deductionCountBands = []struct {
	maxCount int
	score    decimal.Decimal
}{
	{0, decimal.NewFromInt(1)},
	{3, decimal.NewFromFloat(0.9)},
	{6, decimal.NewFromFloat(0.7)},
	{9, decimal.NewFromFloat(0.5)},
}

// ConfidenceInput gathers what is known about the quality of the data
// behind an assessment.
type ConfidenceInput struct {
	DocumentsUploaded  int
	DocumentsProcessed int
	DocumentErrors     int

	SalaryDetected        bool
	CreditScorePresent    bool
	BankAccountVerified   bool
	EmploymentDatePresent bool

	DeclaredSalary decimal.Decimal
	DetectedSalary decimal.Decimal

	EmployerName         string
	OSINTRan             bool
	DigitalVeracityScore decimal.Decimal
	// SkipOSINT removes OSINT from the weighting entirely.
	SkipOSINT bool

	// IRS is nil when scoring never completed.
	IRS *model.IRSCalculationResult
}

// ---------------------------------------------------------------------------
// ConfidenceCalculator – how much to trust the assessment
// ---------------------------------------------------------------------------

// ConfidenceCalculator combines five data-quality factors into a single
// confidence in [0.30, 1.0].
type ConfidenceCalculator struct{}

// NewConfidenceCalculator creates a new ConfidenceCalculator.
func NewConfidenceCalculator() *ConfidenceCalculator {
	return &ConfidenceCalculator{}
}

// Calculate returns the overall confidence.
func (c *ConfidenceCalculator) Calculate(in ConfidenceInput) decimal.Decimal {
	return c.Breakdown(in).Confidence
}

// Breakdown returns each factor, the weights applied and the resulting
// confidence.
func (c *ConfidenceCalculator) Breakdown(in ConfidenceInput) model.ConfidenceBreakdown {
	weights := confidenceWeights(in.SkipOSINT)

	b := model.ConfidenceBreakdown{
		DocumentQuality:  DocumentQualityScore(in.DocumentsUploaded, in.DocumentsProcessed, in.DocumentErrors),
		DataCompleteness: completenessScore(in),
		CrossValidation:  CrossValidationScore(in.DeclaredSalary, in.DetectedSalary),
		OSINTCoverage:    decimal.Zero,
		IRSDeductions:    deductionCountScore(in.IRS),
		Weights:          weights,
	}
	if !in.SkipOSINT {
		b.OSINTCoverage = OSINTCoverageScore(in.EmployerName, in.OSINTRan, in.DigitalVeracityScore)
	}

	total := b.DocumentQuality.Mul(weights.DocumentQuality).
		Add(b.DataCompleteness.Mul(weights.DataCompleteness)).
		Add(b.CrossValidation.Mul(weights.CrossValidation)).
		Add(b.OSINTCoverage.Mul(weights.OSINTCoverage)).
		Add(b.IRSDeductions.Mul(weights.IRSDeductions))

	b.Confidence = decimal.Min(maxConfidence, decimal.Max(MinConfidence, total))
	return b
}

// confidenceWeights returns the factor weights. When OSINT is skipped its
// weight is spread proportionally over the remaining four.
func confidenceWeights(skipOSINT bool) model.ConfidenceWeights {
	if !skipOSINT {
		return model.ConfidenceWeights{
			DocumentQuality:  weightDocumentQuality,
			DataCompleteness: weightDataCompleteness,
			CrossValidation:  weightCrossValidation,
			OSINTCoverage:    weightOSINTCoverage,
			IRSDeductions:    weightIRSDeductions,
		}
	}

	remaining := decimal.NewFromInt(1).Sub(weightOSINTCoverage)
	return model.ConfidenceWeights{
		DocumentQuality:  weightDocumentQuality.Div(remaining),
		DataCompleteness: weightDataCompleteness.Div(remaining),
		CrossValidation:  weightCrossValidation.Div(remaining),
		OSINTCoverage:    decimal.Zero,
		IRSDeductions:    weightIRSDeductions.Div(remaining),
	}
}

// DocumentQualityScore rates how many uploaded documents were processed.
func DocumentQualityScore(uploaded, processed, errs int) decimal.Decimal {
	if uploaded <= 0 {
		return decimal.Zero
	}
	ratio := decimal.NewFromInt(int64(processed)).Div(decimal.NewFromInt(int64(uploaded)))
	switch {
	case errs > 0:
		return decimal.Max(neutralScore, ratio.Mul(docErrorPenalty))
	case processed >= uploaded:
		return decimal.NewFromInt(1)
	default:
		return ratio
	}
}

func completenessScore(in ConfidenceInput) decimal.Decimal {
	present := 0
	for _, fact := range []bool{
		in.SalaryDetected,
		in.CreditScorePresent,
		in.BankAccountVerified,
		in.EmploymentDatePresent,
		in.IRS != nil,
	} {
		if fact {
			present++
		}
	}
	return decimal.NewFromInt(int64(present)).Div(completenessFactsCount)
}

// CrossValidationScore rates how well the declared salary matches the one
// found on the bank statement. Either salary missing yields a neutral 0.5.
func CrossValidationScore(declared, detected decimal.Decimal) decimal.Decimal {
	if !declared.IsPositive() || !detected.IsPositive() {
		return neutralScore
	}
	variance := declared.Sub(detected).Abs().Div(declared)
	for _, band := range crossValidationBands {
		if variance.LessThanOrEqual(band.maxVariance) {
			return band.score
		}
	}
	return decimal.Zero
}

// OSINTCoverageScore treats a named, non-self-employed employer as formal
// employment, where OSINT matters little. Otherwise the digital veracity
// score is used when OSINT ran.
func OSINTCoverageScore(employer string, osintRan bool, dvs decimal.Decimal) decimal.Decimal {
	name := strings.ToLower(strings.TrimSpace(employer))
	if name != "" && !containsAny(name, selfEmploymentKeywords) {
		return formalEmploymentScore
	}
	if osintRan {
		return decimal.Min(maxConfidence, decimal.Max(decimal.Zero, dvs))
	}
	return osintNotRunScore
}

func deductionCountScore(irs *model.IRSCalculationResult) decimal.Decimal {
	if irs == nil {
		return neutralScore
	}
	n := len(irs.Deductions)
	for _, band := range deductionCountBands {
		if n <= band.maxCount {
			return band.score
		}
	}
	return manyDeductionsScore
}
