package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/bibbank/riskcore/internal/application/dto"
	"github.com/bibbank/riskcore/internal/domain/model"
	"github.com/bibbank/riskcore/internal/domain/port"
	"github.com/bibbank/riskcore/internal/domain/service"
	"github.com/bibbank/riskcore/internal/domain/valueobject"
)

const tracerName = "github.com/bibbank/riskcore/internal/application/usecase"

var transactionDateLayouts = []string{"2006-01-02", time.RFC3339, "02/01/2006"}

type laborCalculator interface {
	Calculate(start, end time.Time, monthlySalary decimal.Decimal, opts service.LaborOptions) (model.LaborBenefitResult, error)
}

// EvaluateApplicationUseCase scores a loan application end to end: statement
// analysis, collateral severance, IRS, confidence and the final decision.
// The assessment and its domain events are persisted together before
// returning.
type EvaluateApplicationUseCase struct {
	repo     port.AssessmentRepository
	bureau   port.CreditBureauClient
	recorder port.DecisionRecorder
	logger   *slog.Logger
	tracer   trace.Tracer
	now      func() time.Time

	detector    *service.PatternDetector
	labor       laborCalculator
	irs         *service.IRSEngine
	confidence  *service.ConfidenceCalculator
	matrix      *service.DecisionMatrix
	minimumWage decimal.Decimal
}

// NewEvaluateApplicationUseCase wires dependencies. bureau and recorder may
// be nil. minimumWage is used for the low-income rule when the employer's
// company size is unknown; a non-positive value selects the built-in default.
func NewEvaluateApplicationUseCase(
	repo port.AssessmentRepository,
	bureau port.CreditBureauClient,
	recorder port.DecisionRecorder,
	logger *slog.Logger,
	minimumWage decimal.Decimal,
) *EvaluateApplicationUseCase {
	if !minimumWage.IsPositive() {
		minimumWage = model.DefaultMinimumWage
	}
	return &EvaluateApplicationUseCase{
		repo:        repo,
		bureau:      bureau,
		recorder:    recorder,
		logger:      logger,
		tracer:      otel.Tracer(tracerName),
		now:         time.Now,
		detector:    service.NewPatternDetector(),
		labor:       service.NewLaborCalculator(),
		irs:         service.NewIRSEngine(),
		confidence:  service.NewConfidenceCalculator(),
		matrix:      service.NewDecisionMatrix(),
		minimumWage: minimumWage,
	}
}

// WithClock replaces the wall clock used as the evaluation date.
func (uc *EvaluateApplicationUseCase) WithClock(now func() time.Time) *EvaluateApplicationUseCase {
	uc.now = now
	return uc
}

// Execute validates the request, scores it and stores the assessment. A
// failure inside the scoring pipeline never fails the call: the assessment
// is closed as MANUAL_REVIEW with whatever partial results exist.
func (uc *EvaluateApplicationUseCase) Execute(
	ctx context.Context,
	req dto.EvaluateApplicationRequest,
) (dto.AssessmentResponse, error) {
	ctx, span := uc.tracer.Start(ctx, "EvaluateApplication")
	defer span.End()

	now := uc.now().UTC()

	// 1. Validate and open the assessment.
	tenantID, err := uuid.Parse(req.TenantID)
	if err != nil {
		return dto.AssessmentResponse{}, fmt.Errorf("%w: tenant_id: %v", ErrInvalidInput, err)
	}
	if err := validateApplicant(req); err != nil {
		return dto.AssessmentResponse{}, err
	}
	txns, err := parseTransactions(req.Transactions)
	if err != nil {
		return dto.AssessmentResponse{}, err
	}
	minWage, err := uc.resolveMinimumWage(req)
	if err != nil {
		return dto.AssessmentResponse{}, err
	}
	assessment, err := model.NewRiskAssessment(tenantID, req.ApplicantID, req.RequestedAmount, req.TermMonths, now)
	if err != nil {
		return dto.AssessmentResponse{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// 2. Fill in the bureau score when the caller did not supply one.
	credit := uc.lookupCredit(ctx, req)

	// 3. Score.
	outcome, scoreErr := uc.score(ctx, req, txns, credit, minWage, now)
	if scoreErr != nil {
		uc.logger.Warn("scoring pipeline failed, routing to manual review",
			"assessment_id", assessment.ID(),
			"applicant_id", req.ApplicantID,
			"error", scoreErr,
		)
		span.RecordError(scoreErr)
		err = assessment.ForceManualReview(outcome, scoreErr, now)
	} else {
		err = assessment.Complete(outcome, now)
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return dto.AssessmentResponse{}, fmt.Errorf("complete assessment: %w", err)
	}

	// 4. Persist the assessment and queue its events.
	if err := uc.repo.Save(ctx, assessment); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return dto.AssessmentResponse{}, fmt.Errorf("save assessment: %w", err)
	}
	queued := len(assessment.DomainEvents())

	decision := assessment.Decision().String()
	if uc.recorder != nil {
		confidence, _ := assessment.Outcome().Confidence.Float64()
		uc.recorder.RecordAssessment(ctx, decision, assessment.IRSScore(), confidence, scoreErr != nil)
	}
	span.SetAttributes(
		attribute.String("riskcore.decision", decision),
		attribute.Int("riskcore.irs_score", assessment.IRSScore()),
	)
	uc.logger.Info("assessment completed",
		"assessment_id", assessment.ID(),
		"applicant_id", req.ApplicantID,
		"decision", decision,
		"irs_score", assessment.IRSScore(),
		"confidence", assessment.Outcome().Confidence.StringFixed(4),
		"events_queued", queued,
	)

	return toAssessmentResponse(assessment), nil
}

type creditData struct {
	score *int
	flags []string
}

func (uc *EvaluateApplicationUseCase) lookupCredit(ctx context.Context, req dto.EvaluateApplicationRequest) creditData {
	if req.CreditScore != nil || uc.bureau == nil || req.NationalID == "" {
		return creditData{score: req.CreditScore, flags: req.BureauFlags}
	}

	ctx, span := uc.tracer.Start(ctx, "CreditBureau.GetCreditReport")
	defer span.End()

	report, err := uc.bureau.GetCreditReport(ctx, req.NationalID)
	if err != nil {
		span.RecordError(err)
		uc.logger.Warn("credit bureau lookup failed, scoring without bureau data",
			"applicant_id", req.ApplicantID, "error", err)
		return creditData{flags: req.BureauFlags}
	}
	if report.Score < 300 || report.Score > 850 {
		uc.logger.Warn("credit bureau returned an out-of-range score, ignoring it",
			"applicant_id", req.ApplicantID, "score", report.Score)
		return creditData{flags: req.BureauFlags}
	}

	score := report.Score
	return creditData{score: &score, flags: append(append([]string(nil), req.BureauFlags...), report.Flags...)}
}

// score runs the core components. On error the returned outcome holds the
// results computed so far.
func (uc *EvaluateApplicationUseCase) score(
	ctx context.Context,
	req dto.EvaluateApplicationRequest,
	txns []valueobject.Transaction,
	credit creditData,
	minWage decimal.Decimal,
	now time.Time,
) (model.AssessmentOutcome, error) {
	out := model.AssessmentOutcome{
		Confidence:    service.MinConfidence,
		DecisionFlags: make([]string, 0),
	}

	detected := decimal.Zero
	if len(txns) > 0 {
		summary := service.Summarize(txns)
		out.Summary = &summary
		if s, ok := summary.DetectedSalary(); ok {
			detected = s
		}
	}
	salary := detected
	if !salary.IsPositive() {
		salary = req.DeclaredSalary
	}

	// Statement patterns and the labor computation are independent.
	var (
		patterns *model.DetectedPatterns
		benefits *model.LaborBenefitResult
	)
	g, gctx := errgroup.WithContext(ctx)
	if out.Summary != nil {
		deposits := out.Summary.SalaryDeposits
		if !req.DeclaredSalary.IsPositive() {
			// Nothing to compare the payroll against: the salary check
			// reports "cannot verify" and the other detectors still run.
			deposits = nil
		}
		g.Go(func() error {
			_, span := uc.tracer.Start(gctx, "PatternDetector.DetectAllPatterns")
			defer span.End()
			p, err := uc.detector.DetectAllPatterns(txns, req.DeclaredSalary, deposits)
			if err != nil {
				return fmt.Errorf("detect patterns: %w", err)
			}
			patterns = &p
			return nil
		})
	}
	if start, ok := service.ParseEmploymentDate(req.EmploymentStartDate); ok && !start.After(now) && salary.IsPositive() {
		g.Go(func() error {
			_, span := uc.tracer.Start(gctx, "LaborCalculator.Calculate")
			defer span.End()
			r, err := uc.labor.Calculate(start, now, salary, service.DefaultLaborOptions())
			if err != nil {
				return fmt.Errorf("calculate labor benefits: %w", err)
			}
			benefits = &r
			return nil
		})
	}
	err := g.Wait()
	out.Patterns = patterns
	out.Benefits = benefits
	if patterns != nil {
		bs := service.BehaviorScore(patterns)
		out.BehaviorScore = &bs
	}
	if err != nil {
		return out, err
	}

	var (
		flags     []model.RiskFlag
		severance *decimal.Decimal
	)
	if patterns != nil {
		flags = patterns.Flags
	}
	if benefits != nil {
		c := benefits.Collateral()
		severance = &c
	}

	applicant, err := model.NewApplicantContext(model.ApplicantInput{
		CreditScore:         credit.score,
		BureauFlags:         credit.flags,
		DeclaredSalary:      req.DeclaredSalary,
		DetectedSalary:      detected,
		RequestedAmount:     req.RequestedAmount,
		TermMonths:          req.TermMonths,
		Dependents:          req.Dependents,
		EmploymentStartDate: req.EmploymentStartDate,
		HasVehicle:          req.HasVehicle,
		HasProperty:         req.HasProperty,
		RiskFlags:           flags,
		MinimumWage:         minWage,
		AsOf:                now,
	})
	if err != nil {
		return out, fmt.Errorf("build applicant context: %w", err)
	}

	_, irsSpan := uc.tracer.Start(ctx, "IRSEngine.Calculate")
	irs, err := uc.irs.Calculate(applicant, severance)
	irsSpan.End()
	if err != nil {
		return out, fmt.Errorf("calculate irs: %w", err)
	}
	out.IRS = &irs

	breakdown := uc.confidence.Breakdown(service.ConfidenceInput{
		DocumentsUploaded:     req.Documents.Uploaded,
		DocumentsProcessed:    req.Documents.Processed,
		DocumentErrors:        req.Documents.Errors,
		SalaryDetected:        detected.IsPositive(),
		CreditScorePresent:    credit.score != nil,
		BankAccountVerified:   req.Documents.BankAccountVerified,
		EmploymentDatePresent: req.EmploymentStartDate != "",
		DeclaredSalary:        req.DeclaredSalary,
		DetectedSalary:        detected,
		EmployerName:          req.EmployerName,
		OSINTRan:              req.OSINT.Ran,
		DigitalVeracityScore:  req.OSINT.DigitalVeracityScore,
		SkipOSINT:             req.OSINT.Skip,
		IRS:                   &irs,
	})
	out.Breakdown = &breakdown
	out.Confidence = breakdown.Confidence

	out.Decision = uc.matrix.MakeDecision(irs.FinalScore, breakdown.Confidence, req.RequestedAmount)
	out.DecisionFlags = uc.matrix.DecisionFlags(irs.FinalScore, breakdown.Confidence, req.RequestedAmount)
	out.SuggestedAmount = uc.matrix.SuggestedAmount(
		irs.FinalScore,
		service.PaymentCapacity(applicant.Salary(), req.Dependents),
		req.TermMonths,
	)

	return out, nil
}

// resolveMinimumWage picks the minimum wage for the employer's size band,
// falling back to the configured default.
func (uc *EvaluateApplicationUseCase) resolveMinimumWage(req dto.EvaluateApplicationRequest) (decimal.Decimal, error) {
	var size service.CompanySize
	switch {
	case req.CompanySize != "":
		parsed, err := service.ParseCompanySize(strings.ToLower(req.CompanySize))
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		size = parsed
	case req.CompanyEmployees != nil:
		size = service.ClassifyCompanySize(req.CompanyEmployees)
	default:
		return uc.minimumWage, nil
	}
	return service.MinimumWage(size)
}

func validateApplicant(req dto.EvaluateApplicationRequest) error {
	switch {
	case req.CreditScore != nil && (*req.CreditScore < 300 || *req.CreditScore > 850):
		return fmt.Errorf("%w: credit_score must be between 300 and 850", ErrInvalidInput)
	case req.DeclaredSalary.IsNegative():
		return fmt.Errorf("%w: declared_salary cannot be negative", ErrInvalidInput)
	case req.Dependents < 0:
		return fmt.Errorf("%w: dependents cannot be negative", ErrInvalidInput)
	case req.Documents.Uploaded < 0 || req.Documents.Processed < 0 || req.Documents.Errors < 0:
		return fmt.Errorf("%w: document counts cannot be negative", ErrInvalidInput)
	}
	return nil
}

func parseTransactions(in []dto.TransactionInput) ([]valueobject.Transaction, error) {
	txns := make([]valueobject.Transaction, 0, len(in))
	for i, t := range in {
		date, ok := parseTransactionDate(t.Date)
		if !ok {
			return nil, fmt.Errorf("%w: transactions[%d]: invalid date %q", ErrInvalidInput, i, t.Date)
		}
		direction, err := valueobject.DirectionFromString(strings.ToUpper(t.Type))
		if err != nil {
			return nil, fmt.Errorf("%w: transactions[%d]: %v", ErrInvalidInput, i, err)
		}
		txn, err := valueobject.NewTransaction(date, t.Description, t.Amount, direction, t.Balance, t.Category)
		if err != nil {
			return nil, fmt.Errorf("%w: transactions[%d]: %v", ErrInvalidInput, i, err)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

func parseTransactionDate(s string) (time.Time, bool) {
	for _, layout := range transactionDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
