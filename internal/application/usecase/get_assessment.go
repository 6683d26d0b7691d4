package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/bibbank/riskcore/internal/application/dto"
	"github.com/bibbank/riskcore/internal/domain/port"
)

// GetAssessmentUseCase retrieves a stored assessment by ID.
type GetAssessmentUseCase struct {
	repo port.AssessmentRepository
}

// NewGetAssessmentUseCase wires dependencies.
func NewGetAssessmentUseCase(repo port.AssessmentRepository) *GetAssessmentUseCase {
	return &GetAssessmentUseCase{repo: repo}
}

// Execute returns the assessment, or an error wrapping port.ErrNotFound when
// the tenant has no such assessment.
func (uc *GetAssessmentUseCase) Execute(
	ctx context.Context,
	req dto.GetAssessmentRequest,
) (dto.AssessmentResponse, error) {
	tenantID, err := uuid.Parse(req.TenantID)
	if err != nil {
		return dto.AssessmentResponse{}, fmt.Errorf("%w: tenant_id: %v", ErrInvalidInput, err)
	}
	id, err := uuid.Parse(req.AssessmentID)
	if err != nil {
		return dto.AssessmentResponse{}, fmt.Errorf("%w: assessment_id: %v", ErrInvalidInput, err)
	}

	assessment, err := uc.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return dto.AssessmentResponse{}, fmt.Errorf("find assessment: %w", err)
	}
	return toAssessmentResponse(assessment), nil
}
