// Package memory holds in-process adapters used by the CLI and by tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/bibbank/riskcore/internal/domain/event"
	"github.com/bibbank/riskcore/internal/domain/model"
	"github.com/bibbank/riskcore/internal/domain/port"
)

// AssessmentRepo is a goroutine-safe in-memory port.AssessmentRepository.
// Saved events are kept in order in place of an outbox table.
type AssessmentRepo struct {
	mu     sync.RWMutex
	items  map[uuid.UUID]*model.RiskAssessment
	events []event.DomainEvent
}

var _ port.AssessmentRepository = (*AssessmentRepo)(nil)

func NewAssessmentRepo() *AssessmentRepo {
	return &AssessmentRepo{items: make(map[uuid.UUID]*model.RiskAssessment)}
}

func (r *AssessmentRepo) Save(_ context.Context, a *model.RiskAssessment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.items[a.ID()]; ok && existing.Version() >= a.Version() {
		return fmt.Errorf("assessment %s version %d is not newer than %d", a.ID(), a.Version(), existing.Version())
	}
	r.items[a.ID()] = snapshot(a)
	r.events = append(r.events, a.Events()...)
	return nil
}

// Events returns a copy of every event saved so far.
func (r *AssessmentRepo) Events() []event.DomainEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]event.DomainEvent(nil), r.events...)
}

func (r *AssessmentRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*model.RiskAssessment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.items[id]
	if !ok || a.TenantID() != tenantID {
		return nil, fmt.Errorf("assessment %s: %w", id, port.ErrNotFound)
	}
	return snapshot(a), nil
}

func (r *AssessmentRepo) FindByApplicantID(_ context.Context, tenantID uuid.UUID, applicantID string) ([]*model.RiskAssessment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*model.RiskAssessment
	for _, a := range r.items {
		if a.TenantID() == tenantID && a.ApplicantID() == applicantID {
			out = append(out, snapshot(a))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt().After(out[j].CreatedAt())
	})
	return out, nil
}

// snapshot copies the aggregate state without its pending events.
func snapshot(a *model.RiskAssessment) *model.RiskAssessment {
	return model.ReconstructRiskAssessment(
		a.ID(), a.TenantID(), a.ApplicantID(), a.RequestedAmount(), a.TermMonths(),
		a.Outcome(), a.AssessedAt(), a.Version(), a.CreatedAt(),
	)
}
