package port

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/bibbank/riskcore/internal/domain/model"
)

// ErrNotFound is returned by repositories when no row matches.
var ErrNotFound = errors.New("not found")

// ---------------------------------------------------------------------------
// Repository ports (driven/secondary adapters)
// ---------------------------------------------------------------------------

// AssessmentRepository persists and retrieves risk assessments. Save stores
// the aggregate's pending domain events atomically with it; delivering them
// is the repository's concern, not the caller's.
type AssessmentRepository interface {
	Save(ctx context.Context, assessment *model.RiskAssessment) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.RiskAssessment, error)
	FindByApplicantID(ctx context.Context, tenantID uuid.UUID, applicantID string) ([]*model.RiskAssessment, error)
}

// ---------------------------------------------------------------------------
// External service ports
// ---------------------------------------------------------------------------

// CreditReport is the part of a bureau report the scoring engine uses.
type CreditReport struct {
	Score int
	Flags []string
}

// CreditBureauClient fetches credit reports from an external bureau.
type CreditBureauClient interface {
	GetCreditReport(ctx context.Context, nationalID string) (CreditReport, error)
}

// DecisionRecorder receives one observation per completed assessment.
type DecisionRecorder interface {
	RecordAssessment(ctx context.Context, decision string, irsScore int, confidence float64, forced bool)
}
