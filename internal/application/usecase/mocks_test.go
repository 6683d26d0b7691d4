package usecase_test

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/bibbank/riskcore/internal/domain/event"
	"github.com/bibbank/riskcore/internal/domain/model"
	"github.com/bibbank/riskcore/internal/domain/port"
)

// --- Mock implementations ---

type mockAssessmentRepository struct {
	saveFunc      func(ctx context.Context, a *model.RiskAssessment) error
	findByIDFunc  func(ctx context.Context, tenantID, id uuid.UUID) (*model.RiskAssessment, error)
	findByAppFunc func(ctx context.Context, tenantID uuid.UUID, applicantID string) ([]*model.RiskAssessment, error)
	saved         []*model.RiskAssessment
	events        []event.DomainEvent
}

func (m *mockAssessmentRepository) Save(ctx context.Context, a *model.RiskAssessment) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, a)
	}
	m.saved = append(m.saved, a)
	m.events = append(m.events, a.Events()...)
	return nil
}

func (m *mockAssessmentRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.RiskAssessment, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, tenantID, id)
	}
	return nil, fmt.Errorf("assessment %s: %w", id, port.ErrNotFound)
}

func (m *mockAssessmentRepository) FindByApplicantID(ctx context.Context, tenantID uuid.UUID, applicantID string) ([]*model.RiskAssessment, error) {
	if m.findByAppFunc != nil {
		return m.findByAppFunc(ctx, tenantID, applicantID)
	}
	return nil, nil
}

type mockCreditBureauClient struct {
	getCreditReportFunc func(ctx context.Context, nationalID string) (port.CreditReport, error)
	calls               int
}

func (m *mockCreditBureauClient) GetCreditReport(ctx context.Context, nationalID string) (port.CreditReport, error) {
	m.calls++
	if m.getCreditReportFunc != nil {
		return m.getCreditReportFunc(ctx, nationalID)
	}
	return port.CreditReport{Score: 750}, nil
}

type recordedAssessment struct {
	decision string
	irsScore int
	forced   bool
}

type mockDecisionRecorder struct {
	records []recordedAssessment
}

func (m *mockDecisionRecorder) RecordAssessment(_ context.Context, decision string, irsScore int, _ float64, forced bool) {
	m.records = append(m.records, recordedAssessment{decision: decision, irsScore: irsScore, forced: forced})
}
