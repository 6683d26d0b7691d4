package service_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/riskcore/internal/domain/service"
	"github.com/bibbank/riskcore/internal/domain/valueobject"
)

func TestDecisionMatrix_MakeDecision(t *testing.T) {
	matrix := service.NewDecisionMatrix()

	tests := []struct {
		name       string
		score      int
		confidence string
		amount     string
		want       valueobject.Decision
	}{
		{"low risk high confidence", 90, "0.90", "40000", valueobject.DecisionApproved},
		{"high amount overrides everything", 90, "0.90", "75000", valueobject.DecisionManualReview},
		{"high amount overrides rejection", 10, "0.30", "50000.01", valueobject.DecisionManualReview},
		{"threshold amount is not high", 90, "0.90", "50000", valueobject.DecisionApproved},
		{"low risk low confidence", 85, "0.84", "10000", valueobject.DecisionApprovedPendingReview},
		{"confidence boundary approves", 85, "0.85", "10000", valueobject.DecisionApproved},
		{"medium risk", 84, "0.99", "10000", valueobject.DecisionManualReview},
		{"high band lower bound", 60, "0.99", "10000", valueobject.DecisionManualReview},
		{"critical", 59, "0.99", "10000", valueobject.DecisionRejected},
		{"zero score", 0, "1", "0", valueobject.DecisionRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matrix.MakeDecision(tt.score, dec(tt.confidence), dec(tt.amount))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecisionMatrix_HighAmountAlwaysManualReview(t *testing.T) {
	matrix := service.NewDecisionMatrix()
	for score := 0; score <= 100; score += 5 {
		for _, c := range []string{"0.30", "0.60", "0.85", "1"} {
			got := matrix.MakeDecision(score, dec(c), dec("50001"))
			assert.Equal(t, valueobject.DecisionManualReview, got, "score %d confidence %s", score, c)
		}
	}
}

func TestDecisionMatrix_SuggestedAmount(t *testing.T) {
	matrix := service.NewDecisionMatrix()

	got := matrix.SuggestedAmount(75, dec("2000"), 24)
	require.NotNil(t, got)
	assert.True(t, got.Equal(dec("38400")), "got %s", got)

	tests := []struct {
		name  string
		score int
		nilOK bool
	}{
		{"low risk has no suggestion", 85, true},
		{"critical has no suggestion", 59, true},
		{"lower bound suggests", 60, false},
		{"upper bound suggests", 84, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := matrix.SuggestedAmount(tt.score, dec("1000"), 12)
			assert.Equal(t, tt.nilOK, s == nil)
		})
	}
}

func TestDecisionMatrix_DecisionFlags(t *testing.T) {
	matrix := service.NewDecisionMatrix()

	tests := []struct {
		name       string
		score      int
		confidence string
		amount     string
		want       []string
	}{
		{"clean", 95, "0.95", "10000", []string{}},
		{"everything", 40, "0.725", "90000", []string{
			"HIGH_AMOUNT: Loan amount DOP 90,000.00 exceeds threshold (DOP 50,000.00), requires senior approval",
			"LOW_CONFIDENCE: Confidence 72.5% below threshold (85%), requires verification",
			"CRITICAL_RISK: IRS score 40 below acceptable threshold",
		}},
		{"medium risk only", 70, "0.90", "10000", []string{
			"MEDIUM_RISK: IRS score 70 indicates medium risk profile",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matrix.DecisionFlags(tt.score, dec(tt.confidence), dec(tt.amount)))
		})
	}
}

func TestFlagCode(t *testing.T) {
	matrix := service.NewDecisionMatrix()
	flags := matrix.DecisionFlags(40, dec("0.50"), dec("90000"))

	codes := make([]string, len(flags))
	for i, f := range flags {
		codes[i] = service.FlagCode(f)
	}
	assert.Equal(t, []string{service.FlagHighAmount, service.FlagLowConfidence, service.FlagCriticalRisk}, codes)
	assert.Equal(t, "MODERATE_IRS", service.FlagCode("MODERATE_IRS"))
}

func TestPaymentCapacity(t *testing.T) {
	tests := []struct {
		salary     string
		dependents int
		want       string
	}{
		{"30000", 0, "9000"},
		{"30000", 2, "5000"},
		{"10000", 2, "0"},
		{"0", 0, "0"},
	}

	for _, tt := range tests {
		got := service.PaymentCapacity(dec(tt.salary), tt.dependents)
		assert.True(t, got.Equal(dec(tt.want)), "salary %s deps %d: got %s", tt.salary, tt.dependents, got)
	}
	assert.False(t, service.PaymentCapacity(decimal.NewFromInt(1000), 5).IsNegative())
}
