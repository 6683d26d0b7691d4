package event

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/riskcore/pkg/events"
)

// DomainEvent is an alias for the shared pkg/events.DomainEvent interface.
type DomainEvent = events.DomainEvent

const (
	EventTypeAssessmentCompleted = "riskcore.assessment.completed"
	EventTypeReviewRequired      = "riskcore.assessment.review_required"

	aggregateType = "RiskAssessment"
)

// AssessmentCompleted is raised every time an application has been scored
// and a decision reached.
type AssessmentCompleted struct {
	events.BaseEvent
	ApplicantID     string           `json:"applicant_id"`
	RequestedAmount decimal.Decimal  `json:"requested_amount"`
	IRSScore        int              `json:"irs_score"`
	RiskLevel       string           `json:"risk_level"`
	Confidence      decimal.Decimal  `json:"confidence"`
	Decision        string           `json:"decision"`
	SuggestedAmount *decimal.Decimal `json:"suggested_amount,omitempty"`
	Flags           []string         `json:"flags"`
}

func NewAssessmentCompleted(
	assessmentID, tenantID, applicantID string,
	requested decimal.Decimal,
	irsScore int, riskLevel string,
	confidence decimal.Decimal,
	decision string,
	suggested *decimal.Decimal,
	flags []string,
	at time.Time,
) AssessmentCompleted {
	return AssessmentCompleted{
		BaseEvent:       events.NewBaseEvent(EventTypeAssessmentCompleted, assessmentID, aggregateType, tenantID, at),
		ApplicantID:     applicantID,
		RequestedAmount: requested,
		IRSScore:        irsScore,
		RiskLevel:       riskLevel,
		Confidence:      confidence,
		Decision:        decision,
		SuggestedAmount: suggested,
		Flags:           flags,
	}
}

// ReviewRequired is raised when the decision routes the application to an
// underwriter queue.
type ReviewRequired struct {
	events.BaseEvent
	ApplicantID string   `json:"applicant_id"`
	Decision    string   `json:"decision"`
	Reasons     []string `json:"reasons"`
}

func NewReviewRequired(assessmentID, tenantID, applicantID, decision string, reasons []string, at time.Time) ReviewRequired {
	return ReviewRequired{
		BaseEvent:   events.NewBaseEvent(EventTypeReviewRequired, assessmentID, aggregateType, tenantID, at),
		ApplicantID: applicantID,
		Decision:    decision,
		Reasons:     reasons,
	}
}
