package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/riskcore/internal/domain/model"
	"github.com/bibbank/riskcore/internal/domain/port"
	"github.com/bibbank/riskcore/internal/domain/valueobject"
)

func decided(t *testing.T, tenantID uuid.UUID, applicantID string, created time.Time) *model.RiskAssessment {
	t.Helper()
	a, err := model.NewRiskAssessment(tenantID, applicantID, decimal.NewFromInt(10000), 12, created)
	require.NoError(t, err)
	require.NoError(t, a.Complete(model.AssessmentOutcome{
		Decision:   valueobject.DecisionApproved,
		Confidence: decimal.RequireFromString("0.9"),
	}, created))
	return a
}

func TestAssessmentRepo_SaveAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewAssessmentRepo()
	tenant := uuid.New()
	a := decided(t, tenant, "app-1", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))

	require.NoError(t, repo.Save(ctx, a))

	got, err := repo.FindByID(ctx, tenant, a.ID())
	require.NoError(t, err)
	assert.Equal(t, a.ID(), got.ID())
	assert.Equal(t, valueobject.DecisionApproved, got.Decision())
	assert.Empty(t, got.DomainEvents())

	_, err = repo.FindByID(ctx, uuid.New(), a.ID())
	assert.ErrorIs(t, err, port.ErrNotFound)
}

func TestAssessmentRepo_RejectsStaleVersion(t *testing.T) {
	ctx := context.Background()
	repo := NewAssessmentRepo()
	a := decided(t, uuid.New(), "app-1", time.Now())

	require.NoError(t, repo.Save(ctx, a))
	assert.Error(t, repo.Save(ctx, a))
}

func TestAssessmentRepo_FindByApplicantNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewAssessmentRepo()
	tenant := uuid.New()
	older := decided(t, tenant, "app-1", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	newer := decided(t, tenant, "app-1", time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))
	other := decided(t, tenant, "app-2", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	for _, a := range []*model.RiskAssessment{older, newer, other} {
		require.NoError(t, repo.Save(ctx, a))
	}

	got, err := repo.FindByApplicantID(ctx, tenant, "app-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, newer.ID(), got[0].ID())
	assert.Equal(t, older.ID(), got[1].ID())
}

func TestAssessmentRepo_KeepsEventsOfSuccessfulSaves(t *testing.T) {
	ctx := context.Background()
	repo := NewAssessmentRepo()
	a := decided(t, uuid.New(), "app-1", time.Now())

	require.NoError(t, repo.Save(ctx, a))
	require.Error(t, repo.Save(ctx, a))

	saved := repo.Events()
	require.Len(t, saved, 1)
	assert.Equal(t, a.ID().String(), saved[0].AggregateID())
}
