package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bibbank/riskcore/internal/domain/event"
	"github.com/bibbank/riskcore/internal/domain/valueobject"
	"github.com/bibbank/riskcore/pkg/events"
)

// ReasonInsufficientData marks an assessment whose scoring pipeline could not
// complete and was routed to manual review.
const ReasonInsufficientData = "INSUFFICIENT_DATA"

// AssessmentOutcome is everything the scoring pipeline produced for one
// application. Components that did not run are left nil.
type AssessmentOutcome struct {
	Decision        valueobject.Decision  `json:"decision"`
	Confidence      decimal.Decimal       `json:"confidence"`
	SuggestedAmount *decimal.Decimal      `json:"suggested_amount,omitempty"`
	DecisionFlags   []string              `json:"decision_flags"`
	IRS             *IRSCalculationResult `json:"irs,omitempty"`
	Breakdown       *ConfidenceBreakdown  `json:"confidence_breakdown,omitempty"`
	Summary         *TransactionSummary   `json:"summary,omitempty"`
	Patterns        *DetectedPatterns     `json:"patterns,omitempty"`
	Benefits        *LaborBenefitResult   `json:"benefits,omitempty"`
	BehaviorScore   *int                  `json:"behavior_score,omitempty"`
	Reasons         []string              `json:"reasons,omitempty"`
}

// RiskAssessment is the aggregate root for one underwriting evaluation.
type RiskAssessment struct {
	events.EventCollector

	assessedAt      time.Time
	createdAt       time.Time
	outcome         AssessmentOutcome
	requestedAmount decimal.Decimal
	applicantID     string
	termMonths      int
	version         int
	tenantID        uuid.UUID
	id              uuid.UUID
}

// NewRiskAssessment opens an assessment for a loan request. It carries no
// decision until Complete or ForceManualReview is called.
func NewRiskAssessment(
	tenantID uuid.UUID,
	applicantID string,
	requestedAmount decimal.Decimal,
	termMonths int,
	now time.Time,
) (*RiskAssessment, error) {
	if tenantID == uuid.Nil {
		return nil, fmt.Errorf("tenant ID is required")
	}
	if applicantID == "" {
		return nil, fmt.Errorf("applicant ID is required")
	}
	if requestedAmount.IsNegative() {
		return nil, fmt.Errorf("requested amount cannot be negative")
	}
	if termMonths <= 0 {
		return nil, fmt.Errorf("term months must be positive")
	}

	return &RiskAssessment{
		id:              uuid.New(),
		tenantID:        tenantID,
		applicantID:     applicantID,
		requestedAmount: requestedAmount,
		termMonths:      termMonths,
		version:         1,
		createdAt:       now.UTC(),
	}, nil
}

// Complete records a scored outcome and raises the corresponding events.
func (a *RiskAssessment) Complete(outcome AssessmentOutcome, at time.Time) error {
	if !a.outcome.Decision.IsZero() {
		return fmt.Errorf("assessment %s already decided", a.id)
	}
	if outcome.Decision.IsZero() {
		return fmt.Errorf("decision is required")
	}

	a.outcome = outcome
	a.assessedAt = at.UTC()
	a.version++

	var (
		irsScore  int
		riskLevel string
		flags     []string
	)
	if outcome.IRS != nil {
		irsScore = outcome.IRS.FinalScore
		riskLevel = outcome.IRS.RiskLevel.String()
		flags = outcome.IRS.Flags
	}

	a.Record(event.NewAssessmentCompleted(
		a.id.String(), a.tenantID.String(), a.applicantID,
		a.requestedAmount, irsScore, riskLevel,
		outcome.Confidence, outcome.Decision.String(),
		outcome.SuggestedAmount, flags, a.assessedAt,
	))

	if outcome.Decision.RequiresHumanReview() {
		reasons := append([]string(nil), outcome.DecisionFlags...)
		reasons = append(reasons, outcome.Reasons...)
		a.Record(event.NewReviewRequired(
			a.id.String(), a.tenantID.String(), a.applicantID,
			outcome.Decision.String(), reasons, a.assessedAt,
		))
	}

	return nil
}

// ForceManualReview closes the assessment with MANUAL_REVIEW when the
// pipeline failed. Whatever partial results exist are kept for the reviewer.
func (a *RiskAssessment) ForceManualReview(partial AssessmentOutcome, cause error, at time.Time) error {
	partial.Decision = valueobject.DecisionManualReview
	partial.SuggestedAmount = nil
	partial.Reasons = append(partial.Reasons, ReasonInsufficientData)
	if cause != nil {
		partial.Reasons = append(partial.Reasons, cause.Error())
	}
	return a.Complete(partial, at)
}

// ReconstructRiskAssessment rebuilds an assessment from persisted data (no
// validation, no events).
func ReconstructRiskAssessment(
	id, tenantID uuid.UUID,
	applicantID string,
	requestedAmount decimal.Decimal,
	termMonths int,
	outcome AssessmentOutcome,
	assessedAt time.Time,
	version int,
	createdAt time.Time,
) *RiskAssessment {
	return &RiskAssessment{
		id:              id,
		tenantID:        tenantID,
		applicantID:     applicantID,
		requestedAmount: requestedAmount,
		termMonths:      termMonths,
		outcome:         outcome,
		assessedAt:      assessedAt,
		version:         version,
		createdAt:       createdAt,
	}
}

// --- Accessors ---

func (a *RiskAssessment) ID() uuid.UUID                    { return a.id }
func (a *RiskAssessment) TenantID() uuid.UUID              { return a.tenantID }
func (a *RiskAssessment) ApplicantID() string              { return a.applicantID }
func (a *RiskAssessment) RequestedAmount() decimal.Decimal { return a.requestedAmount }
func (a *RiskAssessment) TermMonths() int                  { return a.termMonths }
func (a *RiskAssessment) Outcome() AssessmentOutcome       { return a.outcome }
func (a *RiskAssessment) Decision() valueobject.Decision   { return a.outcome.Decision }
func (a *RiskAssessment) AssessedAt() time.Time            { return a.assessedAt }
func (a *RiskAssessment) Version() int                     { return a.version }
func (a *RiskAssessment) CreatedAt() time.Time             { return a.createdAt }

// IRSScore returns the final IRS score, or -1 when scoring never completed.
func (a *RiskAssessment) IRSScore() int {
	if a.outcome.IRS == nil {
		return -1
	}
	return a.outcome.IRS.FinalScore
}

// DomainEvents returns all accumulated domain events and clears them.
func (a *RiskAssessment) DomainEvents() []events.DomainEvent {
	return a.ClearEvents()
}
