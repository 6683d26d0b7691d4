package usecase

import (
	"github.com/bibbank/riskcore/internal/application/dto"
	"github.com/bibbank/riskcore/internal/domain/model"
	"github.com/bibbank/riskcore/pkg/money"
)

func toAssessmentResponse(a *model.RiskAssessment) dto.AssessmentResponse {
	out := a.Outcome()
	resp := dto.AssessmentResponse{
		ID:              a.ID().String(),
		TenantID:        a.TenantID().String(),
		ApplicantID:     a.ApplicantID(),
		RequestedAmount: a.RequestedAmount(),
		TermMonths:      a.TermMonths(),
		Decision:        out.Decision.String(),
		RequiresReview:  out.Decision.RequiresHumanReview(),
		Deductions:      make([]dto.DeductionResponse, 0),
		Flags:           make([]string, 0),
		DecisionFlags:   nonNil(out.DecisionFlags),
		Confidence:      out.Confidence,
		SuggestedAmount: out.SuggestedAmount,
		Reasons:         out.Reasons,
		AssessedAt:      a.AssessedAt(),
		CreatedAt:       a.CreatedAt(),
	}

	if out.IRS != nil {
		score := out.IRS.FinalScore
		resp.IRSScore = &score
		resp.RiskLevel = out.IRS.RiskLevel.String()
		resp.Flags = nonNil(out.IRS.Flags)
		resp.Breakdown = make(map[string]int, len(out.IRS.Breakdown))
		for v, points := range out.IRS.Breakdown {
			resp.Breakdown[v.String()] = points
		}
		for _, d := range out.IRS.Deductions {
			resp.Deductions = append(resp.Deductions, dto.DeductionResponse{
				RuleID:   d.RuleID,
				RuleName: d.RuleName,
				Variable: d.Variable.String(),
				Points:   d.PointsDeducted,
				Flag:     d.Flag,
				Evidence: d.Evidence,
			})
		}
	}

	if b := out.Breakdown; b != nil {
		resp.ConfidenceParts = &dto.ConfidenceResponse{
			DocumentQuality:  b.DocumentQuality,
			DataCompleteness: b.DataCompleteness,
			CrossValidation:  b.CrossValidation,
			OSINTCoverage:    b.OSINTCoverage,
			IRSDeductions:    b.IRSDeductions,
			Confidence:       b.Confidence,
		}
	}

	if out.Summary != nil || out.Patterns != nil {
		resp.Statement = toStatementResponse(out)
	}

	if out.Benefits != nil {
		b := toBenefitsResponse(*out.Benefits)
		resp.Benefits = &b
	}

	return resp
}

func toStatementResponse(out model.AssessmentOutcome) *dto.StatementResponse {
	s := &dto.StatementResponse{
		RiskFlags:        make([]string, 0),
		FastWithdrawals:  make([]string, 0),
		BehaviorScore:    out.BehaviorScore,
		SalaryConsistent: true,
	}
	if sum := out.Summary; sum != nil {
		s.TotalCredits = sum.TotalCredits
		s.TotalDebits = sum.TotalDebits
		s.AverageBalance = sum.AverageBalance
		s.SalaryDeposits = sum.SalaryDeposits
		s.PayrollDay = sum.PayrollDay
	}
	if p := out.Patterns; p != nil {
		for _, f := range p.Flags {
			s.RiskFlags = append(s.RiskFlags, f.Display)
		}
		s.FastWithdrawals = nonNil(p.FastWithdrawalDates)
		s.NSFCount = p.NSFCount
		s.InformalLender = p.InformalLenderDetected
		s.HiddenAccounts = p.HiddenAccountsDetected
		s.SalaryVariance = p.SalaryVariancePct
		s.SalaryConsistent = !p.SalaryInconsistent
	}
	return s
}

func toBenefitsResponse(r model.LaborBenefitResult) dto.BenefitsResponse {
	return dto.BenefitsResponse{
		MonthlySalary:   r.MonthlySalary,
		AvgDailySalary:  r.AvgDailySalary,
		TimeWorked:      r.TimeWorked.String(),
		Years:           r.TimeWorked.Years,
		Months:          r.TimeWorked.Months,
		Days:            r.TimeWorked.Days,
		NoticeDays:      r.Notice.Days,
		NoticeAmount:    r.Notice.Amount,
		SeveranceDays:   r.Severance.Days,
		SeveranceAmount: r.Severance.Amount,
		ChristmasSalary: r.ChristmasSalary.Amount,
		ChristmasNotes:  r.ChristmasSalary.Notes,
		TotalReceived:   r.TotalReceived,
		TotalFormatted:  money.Pesos(r.TotalReceived).String(),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return make([]string, 0)
	}
	return s
}
