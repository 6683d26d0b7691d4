package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Request DTOs
// ---------------------------------------------------------------------------

// TransactionInput is one bank-statement line as received from the caller.
type TransactionInput struct {
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Balance     decimal.Decimal `json:"balance"`
	Category    string          `json:"category,omitempty"`
}

// DocumentStats describes how the supporting documents were handled upstream.
type DocumentStats struct {
	Uploaded            int  `json:"uploaded"`
	Processed           int  `json:"processed"`
	Errors              int  `json:"errors"`
	BankAccountVerified bool `json:"bank_account_verified"`
}

// OSINTResult is the outcome of the digital footprint check, when one ran.
type OSINTResult struct {
	Ran                  bool            `json:"ran"`
	Skip                 bool            `json:"skip"`
	DigitalVeracityScore decimal.Decimal `json:"digital_veracity_score"`
}

// EvaluateApplicationRequest carries everything known about an applicant and
// the requested loan.
type EvaluateApplicationRequest struct {
	TenantID            string             `json:"tenant_id"`
	ApplicantID         string             `json:"applicant_id"`
	NationalID          string             `json:"national_id,omitempty"`
	RequestedAmount     decimal.Decimal    `json:"requested_amount"`
	TermMonths          int                `json:"term_months"`
	DeclaredSalary      decimal.Decimal    `json:"declared_salary"`
	CreditScore         *int               `json:"credit_score,omitempty"`
	BureauFlags         []string           `json:"bureau_flags,omitempty"`
	Dependents          int                `json:"dependents"`
	EmployerName        string             `json:"employer_name,omitempty"`
	EmploymentStartDate string             `json:"employment_start_date,omitempty"`
	CompanyEmployees    *int               `json:"company_employees,omitempty"`
	CompanySize         string             `json:"company_size,omitempty"`
	HasVehicle          bool               `json:"has_vehicle"`
	HasProperty         bool               `json:"has_property"`
	Transactions        []TransactionInput `json:"transactions,omitempty"`
	Documents           DocumentStats      `json:"documents"`
	OSINT               OSINTResult        `json:"osint"`
}

// GetAssessmentRequest identifies an assessment to retrieve.
type GetAssessmentRequest struct {
	TenantID     string `json:"tenant_id"`
	AssessmentID string `json:"assessment_id"`
}

// ListAssessmentsRequest selects an applicant's assessment history.
type ListAssessmentsRequest struct {
	TenantID    string `json:"tenant_id"`
	ApplicantID string `json:"applicant_id"`
}

// CalculateBenefitsRequest asks for the statutory entitlements of one
// employment period. Nil include flags default to true.
type CalculateBenefitsRequest struct {
	StartDate              string          `json:"start_date"`
	EndDate                string          `json:"end_date"`
	MonthlySalary          decimal.Decimal `json:"monthly_salary"`
	IncludeNotice          *bool           `json:"include_notice,omitempty"`
	IncludeSeverance       *bool           `json:"include_severance,omitempty"`
	IncludeChristmasSalary *bool           `json:"include_christmas_salary,omitempty"`
}

// ---------------------------------------------------------------------------
// Response DTOs
// ---------------------------------------------------------------------------

// DeductionResponse is one applied IRS rule.
type DeductionResponse struct {
	RuleID   string `json:"rule_id"`
	RuleName string `json:"rule_name"`
	Variable string `json:"variable"`
	Points   int    `json:"points"`
	Flag     string `json:"flag"`
	Evidence string `json:"evidence"`
}

// ConfidenceResponse exposes each confidence factor next to the total.
type ConfidenceResponse struct {
	DocumentQuality  decimal.Decimal `json:"document_quality"`
	DataCompleteness decimal.Decimal `json:"data_completeness"`
	CrossValidation  decimal.Decimal `json:"cross_validation"`
	OSINTCoverage    decimal.Decimal `json:"osint_coverage"`
	IRSDeductions    decimal.Decimal `json:"irs_deductions"`
	Confidence       decimal.Decimal `json:"confidence"`
}

// StatementResponse summarizes what the bank statement revealed.
type StatementResponse struct {
	TotalCredits     decimal.Decimal   `json:"total_credits"`
	TotalDebits      decimal.Decimal   `json:"total_debits"`
	AverageBalance   decimal.Decimal   `json:"average_balance"`
	SalaryDeposits   []decimal.Decimal `json:"salary_deposits"`
	PayrollDay       *int              `json:"payroll_day,omitempty"`
	RiskFlags        []string          `json:"risk_flags"`
	FastWithdrawals  []string          `json:"fast_withdrawal_dates"`
	NSFCount         int               `json:"nsf_count"`
	InformalLender   bool              `json:"informal_lender"`
	HiddenAccounts   bool              `json:"hidden_accounts"`
	SalaryVariance   decimal.Decimal   `json:"salary_variance_pct"`
	BehaviorScore    *int              `json:"behavior_score,omitempty"`
	SalaryConsistent bool              `json:"salary_consistent"`
}

// AssessmentResponse is the external representation of a risk assessment.
type AssessmentResponse struct {
	ID              string              `json:"id"`
	TenantID        string              `json:"tenant_id"`
	ApplicantID     string              `json:"applicant_id"`
	RequestedAmount decimal.Decimal     `json:"requested_amount"`
	TermMonths      int                 `json:"term_months"`
	Decision        string              `json:"decision"`
	RequiresReview  bool                `json:"requires_review"`
	IRSScore        *int                `json:"irs_score,omitempty"`
	RiskLevel       string              `json:"risk_level,omitempty"`
	Breakdown       map[string]int      `json:"breakdown,omitempty"`
	Deductions      []DeductionResponse `json:"deductions"`
	Flags           []string            `json:"flags"`
	DecisionFlags   []string            `json:"decision_flags"`
	Confidence      decimal.Decimal     `json:"confidence"`
	ConfidenceParts *ConfidenceResponse `json:"confidence_breakdown,omitempty"`
	SuggestedAmount *decimal.Decimal    `json:"suggested_amount,omitempty"`
	Statement       *StatementResponse  `json:"statement,omitempty"`
	Benefits        *BenefitsResponse   `json:"benefits,omitempty"`
	Reasons         []string            `json:"reasons,omitempty"`
	AssessedAt      time.Time           `json:"assessed_at"`
	CreatedAt       time.Time           `json:"created_at"`
}

// ListAssessmentsResponse holds an applicant's assessments, newest first.
type ListAssessmentsResponse struct {
	Assessments []AssessmentResponse `json:"assessments"`
}

// BenefitsResponse is the external representation of a labor benefit
// computation.
type BenefitsResponse struct {
	MonthlySalary   decimal.Decimal `json:"monthly_salary"`
	AvgDailySalary  decimal.Decimal `json:"avg_daily_salary"`
	TimeWorked      string          `json:"time_worked"`
	Years           int             `json:"years"`
	Months          int             `json:"months"`
	Days            int             `json:"days"`
	NoticeDays      int             `json:"notice_days"`
	NoticeAmount    decimal.Decimal `json:"notice_amount"`
	SeveranceDays   int             `json:"severance_days"`
	SeveranceAmount decimal.Decimal `json:"severance_amount"`
	ChristmasSalary decimal.Decimal `json:"christmas_salary"`
	ChristmasNotes  string          `json:"christmas_notes"`
	TotalReceived   decimal.Decimal `json:"total_received"`
	TotalFormatted  string          `json:"total_formatted"`
}
