package usecase

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/riskcore/internal/domain/model"
	"github.com/bibbank/riskcore/internal/domain/service"
)

// LaborFunc adapts a function to the pipeline's labor calculator.
type LaborFunc func(start, end time.Time, salary decimal.Decimal, opts service.LaborOptions) (model.LaborBenefitResult, error)

func (f LaborFunc) Calculate(start, end time.Time, salary decimal.Decimal, opts service.LaborOptions) (model.LaborBenefitResult, error) {
	return f(start, end, salary, opts)
}

// WithLaborCalculator replaces the labor stage of the pipeline.
func (uc *EvaluateApplicationUseCase) WithLaborCalculator(l LaborFunc) *EvaluateApplicationUseCase {
	uc.labor = l
	return uc
}
