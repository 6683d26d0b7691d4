package grpc

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bibbank/riskcore/internal/application/usecase"
	"github.com/bibbank/riskcore/internal/domain/port"
	"github.com/bibbank/riskcore/pkg/auth"
)

// requireRole checks that the caller has at least one of the given roles.
func requireRole(ctx context.Context, roles ...string) error {
	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		return status.Error(codes.Unauthenticated, "authentication required")
	}
	if !claims.HasAnyRole(roles...) {
		return status.Error(codes.PermissionDenied, "insufficient permissions")
	}
	return nil
}

// tenantIDFromContext extracts the tenant ID from JWT claims in the context.
func tenantIDFromContext(ctx context.Context) (uuid.UUID, error) {
	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		return uuid.Nil, status.Error(codes.Unauthenticated, "authentication required")
	}
	return claims.TenantID, nil
}

// Compile-time assertion that Handler implements RiskServiceServer.
var _ RiskServiceServer = (*Handler)(nil)

// Handler implements the RiskServiceServer gRPC interface.
type Handler struct {
	UnimplementedRiskServiceServer
	evaluate *usecase.EvaluateApplicationUseCase
	get      *usecase.GetAssessmentUseCase
	list     *usecase.ListAssessmentsUseCase
	benefits *usecase.CalculateBenefitsUseCase
	logger   *slog.Logger
}

// NewHandler creates a new gRPC Handler.
func NewHandler(
	evaluate *usecase.EvaluateApplicationUseCase,
	get *usecase.GetAssessmentUseCase,
	list *usecase.ListAssessmentsUseCase,
	benefits *usecase.CalculateBenefitsUseCase,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		evaluate: evaluate,
		get:      get,
		list:     list,
		benefits: benefits,
		logger:   logger,
	}
}

// EvaluateApplication scores an application for the caller's tenant.
func (h *Handler) EvaluateApplication(ctx context.Context, req *EvaluateApplicationRequest) (*AssessmentResponse, error) {
	if err := requireRole(ctx, auth.RoleUnderwriter, auth.RoleAPIClient, auth.RoleAdmin); err != nil {
		return nil, err
	}
	tenantID, err := tenantIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	in := *req
	in.TenantID = tenantID.String()
	resp, err := h.evaluate.Execute(ctx, in)
	if err != nil {
		return nil, h.toStatus(ctx, "EvaluateApplication", err)
	}
	return &resp, nil
}

// GetAssessment returns one assessment of the caller's tenant.
func (h *Handler) GetAssessment(ctx context.Context, req *GetAssessmentRequest) (*AssessmentResponse, error) {
	if err := requireRole(ctx, auth.RoleUnderwriter, auth.RoleAPIClient, auth.RoleAuditor, auth.RoleAdmin); err != nil {
		return nil, err
	}
	tenantID, err := tenantIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	in := *req
	in.TenantID = tenantID.String()
	resp, err := h.get.Execute(ctx, in)
	if err != nil {
		return nil, h.toStatus(ctx, "GetAssessment", err)
	}
	return &resp, nil
}

// ListAssessments returns an applicant's history within the caller's tenant.
func (h *Handler) ListAssessments(ctx context.Context, req *ListAssessmentsRequest) (*ListAssessmentsResponse, error) {
	if err := requireRole(ctx, auth.RoleUnderwriter, auth.RoleAuditor, auth.RoleAdmin); err != nil {
		return nil, err
	}
	tenantID, err := tenantIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	in := *req
	in.TenantID = tenantID.String()
	resp, err := h.list.Execute(ctx, in)
	if err != nil {
		return nil, h.toStatus(ctx, "ListAssessments", err)
	}
	return &resp, nil
}

// CalculateBenefits is a pure computation; any authenticated caller may use it.
func (h *Handler) CalculateBenefits(ctx context.Context, req *CalculateBenefitsRequest) (*BenefitsResponse, error) {
	if _, ok := auth.ClaimsFromContext(ctx); !ok {
		return nil, status.Error(codes.Unauthenticated, "authentication required")
	}

	resp, err := h.benefits.Execute(ctx, *req)
	if err != nil {
		return nil, h.toStatus(ctx, "CalculateBenefits", err)
	}
	return &resp, nil
}

func (h *Handler) toStatus(ctx context.Context, method string, err error) error {
	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, port.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		h.logger.ErrorContext(ctx, "request failed", "method", method, "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}
