package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bibbank/riskcore/internal/application/dto"
	"github.com/bibbank/riskcore/internal/domain/service"
)

const benefitDateLayout = "2006-01-02"

// CalculateBenefitsUseCase exposes the labor-benefit calculator on its own,
// for underwriters checking an applicant's severance collateral.
type CalculateBenefitsUseCase struct {
	calc *service.LaborCalculator
}

// NewCalculateBenefitsUseCase wires dependencies.
func NewCalculateBenefitsUseCase() *CalculateBenefitsUseCase {
	return &CalculateBenefitsUseCase{calc: service.NewLaborCalculator()}
}

// Execute computes notice, severance and Christmas salary. Dates are
// YYYY-MM-DD; an end date before the start date or a negative salary is
// rejected.
func (uc *CalculateBenefitsUseCase) Execute(
	_ context.Context,
	req dto.CalculateBenefitsRequest,
) (dto.BenefitsResponse, error) {
	start, err := time.Parse(benefitDateLayout, req.StartDate)
	if err != nil {
		return dto.BenefitsResponse{}, fmt.Errorf("%w: start_date: %v", ErrInvalidInput, err)
	}
	end, err := time.Parse(benefitDateLayout, req.EndDate)
	if err != nil {
		return dto.BenefitsResponse{}, fmt.Errorf("%w: end_date: %v", ErrInvalidInput, err)
	}

	opts := service.LaborOptions{
		IncludeNotice:          boolOr(req.IncludeNotice, true),
		IncludeSeverance:       boolOr(req.IncludeSeverance, true),
		IncludeChristmasSalary: boolOr(req.IncludeChristmasSalary, true),
	}

	result, err := uc.calc.Calculate(start, end, req.MonthlySalary, opts)
	if err != nil {
		if errors.Is(err, service.ErrEndBeforeStart) || errors.Is(err, service.ErrNegativeSalary) {
			return dto.BenefitsResponse{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return dto.BenefitsResponse{}, fmt.Errorf("calculate benefits: %w", err)
	}
	return toBenefitsResponse(result), nil
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}
