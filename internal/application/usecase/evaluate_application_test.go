package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/riskcore/internal/application/dto"
	"github.com/bibbank/riskcore/internal/application/usecase"
	"github.com/bibbank/riskcore/internal/domain/event"
	"github.com/bibbank/riskcore/internal/domain/model"
	"github.com/bibbank/riskcore/internal/domain/port"
	"github.com/bibbank/riskcore/internal/domain/service"
)

var evaluationTime = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func intPtr(i int) *int { return &i }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	repo     *mockAssessmentRepository
	bureau   *mockCreditBureauClient
	recorder *mockDecisionRecorder
	uc       *usecase.EvaluateApplicationUseCase
}

func newFixture() *fixture {
	f := &fixture{
		repo:     &mockAssessmentRepository{},
		bureau:   &mockCreditBureauClient{},
		recorder: &mockDecisionRecorder{},
	}
	f.uc = usecase.NewEvaluateApplicationUseCase(
		f.repo, f.bureau, f.recorder, discardLogger(), decimal.Zero,
	).WithClock(func() time.Time { return evaluationTime })
	return f
}

func payrollStatement(salary string) []dto.TransactionInput {
	amount := decimal.RequireFromString(salary)
	return []dto.TransactionInput{
		{Date: "2025-04-30", Description: "NOMINA GRUPO RAMOS", Amount: amount, Type: "credit", Balance: decimal.NewFromInt(72000)},
		{Date: "2025-05-07", Description: "SUPERMERCADO NACIONAL", Amount: decimal.RequireFromString("-4350.25"), Type: "debit", Balance: decimal.NewFromInt(67650)},
		{Date: "2025-05-30", Description: "NOMINA GRUPO RAMOS", Amount: amount, Type: "credit", Balance: decimal.NewFromInt(127650)},
		{Date: "2025-06-06", Description: "FARMACIA CAROL", Amount: decimal.RequireFromString("-1875.40"), Type: "debit", Balance: decimal.NewFromInt(125775)},
	}
}

func cleanRequest() dto.EvaluateApplicationRequest {
	return dto.EvaluateApplicationRequest{
		TenantID:            uuid.NewString(),
		ApplicantID:         "applicant-001",
		RequestedAmount:     decimal.NewFromInt(40000),
		TermMonths:          24,
		DeclaredSalary:      decimal.NewFromInt(60000),
		CreditScore:         intPtr(780),
		EmployerName:        "Grupo Ramos S.A.",
		EmploymentStartDate: "2020-01-15",
		HasVehicle:          true,
		Transactions:        payrollStatement("60000"),
		Documents: dto.DocumentStats{
			Uploaded:            3,
			Processed:           3,
			BankAccountVerified: true,
		},
	}
}

func TestEvaluateApplication_Execute(t *testing.T) {
	t.Run("approves a clean applicant", func(t *testing.T) {
		f := newFixture()

		resp, err := f.uc.Execute(context.Background(), cleanRequest())
		require.NoError(t, err)

		assert.Equal(t, "APPROVED", resp.Decision)
		assert.False(t, resp.RequiresReview)
		require.NotNil(t, resp.IRSScore)
		assert.Equal(t, 100, *resp.IRSScore)
		assert.Equal(t, "LOW", resp.RiskLevel)
		assert.Empty(t, resp.Deductions)
		assert.Empty(t, resp.DecisionFlags)
		assert.Nil(t, resp.SuggestedAmount)
		assert.Equal(t, "0.97", resp.Confidence.StringFixed(2))
		assert.Equal(t, 15, resp.Breakdown["stability"])

		require.NotNil(t, resp.Statement)
		require.Len(t, resp.Statement.SalaryDeposits, 1)
		assert.True(t, resp.Statement.SalaryDeposits[0].Equal(decimal.NewFromInt(60000)))
		assert.True(t, resp.Statement.SalaryConsistent)
		require.NotNil(t, resp.Statement.BehaviorScore)
		assert.Equal(t, 90, *resp.Statement.BehaviorScore)

		require.NotNil(t, resp.Benefits)
		assert.Equal(t, 5, resp.Benefits.Years)
		assert.Equal(t, 28, resp.Benefits.NoticeDays)

		require.Len(t, f.repo.saved, 1)
		require.Len(t, f.repo.events, 1)
		assert.Equal(t, event.EventTypeAssessmentCompleted, f.repo.events[0].EventType())
		assert.Empty(t, f.repo.saved[0].Events(), "events are handed over once saved")
		assert.Equal(t, []recordedAssessment{{decision: "APPROVED", irsScore: 100}}, f.recorder.records)
		assert.Zero(t, f.bureau.calls, "bureau is not called when a score is supplied")
	})

	t.Run("high amount goes to manual review", func(t *testing.T) {
		f := newFixture()
		req := cleanRequest()
		req.RequestedAmount = decimal.NewFromInt(75000)

		resp, err := f.uc.Execute(context.Background(), req)
		require.NoError(t, err)

		assert.Equal(t, "MANUAL_REVIEW", resp.Decision)
		assert.True(t, resp.RequiresReview)
		require.NotEmpty(t, resp.DecisionFlags)
		assert.Equal(t, service.FlagHighAmount, service.FlagCode(resp.DecisionFlags[0]))
		assert.Contains(t, resp.DecisionFlags[0], "DOP 75,000.00")
		require.Len(t, f.repo.events, 2)
		assert.Equal(t, event.EventTypeReviewRequired, f.repo.events[1].EventType())
	})

	t.Run("medium risk receives a suggested amount", func(t *testing.T) {
		f := newFixture()
		req := dto.EvaluateApplicationRequest{
			TenantID:            uuid.NewString(),
			ApplicantID:         "applicant-002",
			RequestedAmount:     decimal.NewFromInt(20000),
			TermMonths:          12,
			DeclaredSalary:      decimal.NewFromInt(30000),
			CreditScore:         intPtr(650),
			Dependents:          4,
			EmploymentStartDate: "2025-01-10",
		}

		resp, err := f.uc.Execute(context.Background(), req)
		require.NoError(t, err)

		require.NotNil(t, resp.IRSScore)
		assert.Equal(t, 75, *resp.IRSScore)
		assert.Equal(t, "MEDIUM", resp.RiskLevel)
		assert.Equal(t, "MANUAL_REVIEW", resp.Decision)
		assert.Equal(t, []string{"FAIR_CREDIT_HISTORY", "HIGH_DEPENDENCY_RATIO", "SHORT_TENURE", "NO_ASSETS"}, resp.Flags)
		require.NotNil(t, resp.SuggestedAmount)
		// (30000 × 0.30 − 4 × 2000) × 12 × 0.8
		assert.Equal(t, "9600.00", resp.SuggestedAmount.StringFixed(2))
		assert.Nil(t, resp.Statement)
	})

	t.Run("fetches the bureau score when none is supplied", func(t *testing.T) {
		f := newFixture()
		f.bureau.getCreditReportFunc = func(_ context.Context, nationalID string) (port.CreditReport, error) {
			assert.Equal(t, "001-1234567-8", nationalID)
			return port.CreditReport{Score: 550, Flags: []string{"LATE_PAYMENTS"}}, nil
		}
		req := cleanRequest()
		req.CreditScore = nil
		req.NationalID = "001-1234567-8"

		resp, err := f.uc.Execute(context.Background(), req)
		require.NoError(t, err)

		assert.Equal(t, 1, f.bureau.calls)
		require.NotNil(t, resp.IRSScore)
		assert.Equal(t, 85, *resp.IRSScore)
		require.Len(t, resp.Deductions, 1)
		assert.Equal(t, "A-01", resp.Deductions[0].RuleID)
		assert.Equal(t, "Bureau score 550 (< 600)", resp.Deductions[0].Evidence)
	})

	t.Run("scores without bureau data when the bureau fails", func(t *testing.T) {
		f := newFixture()
		f.bureau.getCreditReportFunc = func(_ context.Context, _ string) (port.CreditReport, error) {
			return port.CreditReport{}, fmt.Errorf("bureau unavailable")
		}
		req := cleanRequest()
		req.CreditScore = nil
		req.NationalID = "001-1234567-8"

		resp, err := f.uc.Execute(context.Background(), req)
		require.NoError(t, err)

		require.NotNil(t, resp.IRSScore)
		assert.Equal(t, 100, *resp.IRSScore)
		require.NotNil(t, resp.ConfidenceParts)
		assert.True(t, resp.ConfidenceParts.DataCompleteness.Equal(decimal.NewFromFloat(0.8)))
	})

	t.Run("zero declared salary still scores a payroll statement", func(t *testing.T) {
		f := newFixture()
		req := cleanRequest()
		req.DeclaredSalary = decimal.Zero

		resp, err := f.uc.Execute(context.Background(), req)
		require.NoError(t, err)

		require.NotNil(t, resp.IRSScore)
		assert.Equal(t, 100, *resp.IRSScore)
		assert.NotContains(t, resp.Reasons, model.ReasonInsufficientData)
		require.NotNil(t, resp.Statement)
		assert.False(t, resp.Statement.SalaryConsistent, "nothing declared to verify against")
		require.NotNil(t, resp.Benefits, "severance uses the detected payroll")
		require.Len(t, f.recorder.records, 1)
		assert.False(t, f.recorder.records[0].forced)
	})

	t.Run("no salary at all skips collateral severance", func(t *testing.T) {
		f := newFixture()
		req := cleanRequest()
		req.DeclaredSalary = decimal.Zero
		req.Transactions = nil
		req.EmploymentStartDate = "2015-06-01"

		resp, err := f.uc.Execute(context.Background(), req)
		require.NoError(t, err)

		assert.Nil(t, resp.Benefits)
		require.NotNil(t, resp.IRSScore)
		for _, d := range resp.Deductions {
			assert.NotEqual(t, "D-02", d.RuleID, "severance rule needs a severance amount")
		}
	})

	t.Run("pipeline failure forces manual review", func(t *testing.T) {
		f := newFixture()
		f.uc.WithLaborCalculator(func(time.Time, time.Time, decimal.Decimal, service.LaborOptions) (model.LaborBenefitResult, error) {
			return model.LaborBenefitResult{}, errors.New("labor tables unavailable")
		})

		resp, err := f.uc.Execute(context.Background(), cleanRequest())
		require.NoError(t, err)

		assert.Equal(t, "MANUAL_REVIEW", resp.Decision)
		assert.Nil(t, resp.IRSScore)
		assert.Nil(t, resp.SuggestedAmount)
		assert.Contains(t, resp.Reasons, model.ReasonInsufficientData)
		require.NotNil(t, resp.Statement, "partial results are kept")
		assert.Len(t, f.repo.saved, 1)
		assert.Len(t, f.repo.events, 2)
		require.Len(t, f.recorder.records, 1)
		assert.True(t, f.recorder.records[0].forced)
	})

	t.Run("rejects invalid input without saving", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func(*dto.EvaluateApplicationRequest)
		}{
			{"missing tenant", func(r *dto.EvaluateApplicationRequest) { r.TenantID = "" }},
			{"missing applicant", func(r *dto.EvaluateApplicationRequest) { r.ApplicantID = "" }},
			{"zero term", func(r *dto.EvaluateApplicationRequest) { r.TermMonths = 0 }},
			{"score out of range", func(r *dto.EvaluateApplicationRequest) { r.CreditScore = intPtr(900) }},
			{"bad transaction date", func(r *dto.EvaluateApplicationRequest) { r.Transactions[0].Date = "yesterday" }},
			{"bad transaction type", func(r *dto.EvaluateApplicationRequest) { r.Transactions[0].Type = "refund" }},
			{"unknown company size", func(r *dto.EvaluateApplicationRequest) { r.CompanySize = "huge" }},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := newFixture()
				req := cleanRequest()
				tt.mutate(&req)

				_, err := f.uc.Execute(context.Background(), req)
				require.Error(t, err)
				assert.True(t, errors.Is(err, usecase.ErrInvalidInput), "got %v", err)
				assert.Empty(t, f.repo.saved)
				assert.Empty(t, f.repo.events)
			})
		}
	})

	t.Run("fails when repository save fails", func(t *testing.T) {
		f := newFixture()
		f.repo.saveFunc = func(_ context.Context, _ *model.RiskAssessment) error {
			return fmt.Errorf("database unavailable")
		}

		_, err := f.uc.Execute(context.Background(), cleanRequest())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "save assessment")
		assert.Empty(t, f.repo.events)
		assert.Empty(t, f.recorder.records)
	})
}

func TestEvaluateApplication_SameInputSameOutcome(t *testing.T) {
	req := cleanRequest()
	req.CreditScore = intPtr(640)
	req.Dependents = 5
	req.DeclaredSalary = decimal.NewFromInt(52000)

	first, err := newFixture().uc.Execute(context.Background(), req)
	require.NoError(t, err)
	second, err := newFixture().uc.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.IRSScore, second.IRSScore)
	assert.Equal(t, first.Flags, second.Flags)
	assert.Equal(t, first.Decision, second.Decision)
	assert.True(t, first.Confidence.Equal(second.Confidence))
}
