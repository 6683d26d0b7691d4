package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/bibbank/riskcore/internal/application/dto"
	"github.com/bibbank/riskcore/internal/domain/port"
)

// ListAssessmentsUseCase returns an applicant's assessment history.
type ListAssessmentsUseCase struct {
	repo port.AssessmentRepository
}

func NewListAssessmentsUseCase(repo port.AssessmentRepository) *ListAssessmentsUseCase {
	return &ListAssessmentsUseCase{repo: repo}
}

func (uc *ListAssessmentsUseCase) Execute(
	ctx context.Context,
	req dto.ListAssessmentsRequest,
) (dto.ListAssessmentsResponse, error) {
	tenantID, err := uuid.Parse(req.TenantID)
	if err != nil {
		return dto.ListAssessmentsResponse{}, fmt.Errorf("%w: tenant_id: %v", ErrInvalidInput, err)
	}
	applicantID := strings.TrimSpace(req.ApplicantID)
	if applicantID == "" {
		return dto.ListAssessmentsResponse{}, fmt.Errorf("%w: applicant_id is required", ErrInvalidInput)
	}

	assessments, err := uc.repo.FindByApplicantID(ctx, tenantID, applicantID)
	if err != nil {
		return dto.ListAssessmentsResponse{}, fmt.Errorf("list assessments: %w", err)
	}

	resp := dto.ListAssessmentsResponse{Assessments: make([]dto.AssessmentResponse, 0, len(assessments))}
	for _, a := range assessments {
		resp.Assessments = append(resp.Assessments, toAssessmentResponse(a))
	}
	return resp, nil
}
