package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/bibbank/riskcore/internal/domain/model"
	"github.com/bibbank/riskcore/internal/domain/port"
	"github.com/bibbank/riskcore/pkg/events"
	pkgpostgres "github.com/bibbank/riskcore/pkg/postgres"
)

// ErrStaleAssessment is returned when Save would overwrite a newer version.
var ErrStaleAssessment = errors.New("assessment was modified concurrently")

// AssessmentRepo implements port.AssessmentRepository on PostgreSQL. The full
// outcome is stored as JSONB; headline columns and the deduction trail are
// denormalised for querying.
type AssessmentRepo struct {
	pool *pgxpool.Pool
}

var _ port.AssessmentRepository = (*AssessmentRepo)(nil)

// NewAssessmentRepo creates a new PostgreSQL-backed assessment repository.
func NewAssessmentRepo(pool *pgxpool.Pool) *AssessmentRepo {
	return &AssessmentRepo{pool: pool}
}

const upsertAssessment = `
	INSERT INTO risk_assessments (
		id, tenant_id, applicant_id, requested_amount, term_months,
		irs_score, risk_level, confidence, decision, suggested_amount,
		requires_review, result, version, assessed_at, created_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	ON CONFLICT (id) DO UPDATE SET
		irs_score        = EXCLUDED.irs_score,
		risk_level       = EXCLUDED.risk_level,
		confidence       = EXCLUDED.confidence,
		decision         = EXCLUDED.decision,
		suggested_amount = EXCLUDED.suggested_amount,
		requires_review  = EXCLUDED.requires_review,
		result           = EXCLUDED.result,
		version          = EXCLUDED.version,
		assessed_at      = EXCLUDED.assessed_at
	WHERE risk_assessments.version < EXCLUDED.version
`

const insertOutbox = `
	INSERT INTO outbox (id, aggregate_id, aggregate_type, event_type, tenant_id, payload, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (id) DO NOTHING
`

// Save upserts the assessment, replaces its deduction rows and writes its
// pending domain events to the outbox in one transaction.
func (r *AssessmentRepo) Save(ctx context.Context, a *model.RiskAssessment) error {
	outcome := a.Outcome()
	result, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("marshal outcome: %w", err)
	}

	pending := a.Events()
	entries := make([]events.OutboxEntry, 0, len(pending))
	entryIDs := make([]uuid.UUID, 0, len(pending))
	for _, evt := range pending {
		entry, err := events.NewOutboxEntry(evt)
		if err != nil {
			return err
		}
		id, err := uuid.Parse(entry.ID)
		if err != nil {
			return fmt.Errorf("event %s id: %w", entry.EventType, err)
		}
		entries = append(entries, entry)
		entryIDs = append(entryIDs, id)
	}

	var (
		irsScore  *int
		riskLevel *string
	)
	if outcome.IRS != nil {
		score := outcome.IRS.FinalScore
		level := outcome.IRS.RiskLevel.String()
		irsScore, riskLevel = &score, &level
	}

	return pkgpostgres.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, upsertAssessment,
			a.ID(), a.TenantID(), a.ApplicantID(), a.RequestedAmount(), a.TermMonths(),
			irsScore, riskLevel, outcome.Confidence, outcome.Decision.String(), outcome.SuggestedAmount,
			outcome.Decision.RequiresHumanReview(), result, a.Version(), a.AssessedAt(), a.CreatedAt(),
		)
		if err != nil {
			return fmt.Errorf("upsert assessment: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("save assessment %s version %d: %w", a.ID(), a.Version(), ErrStaleAssessment)
		}

		if err := replaceDeductions(ctx, tx, a.ID(), outcome.IRS); err != nil {
			return err
		}

		if len(entries) == 0 {
			return nil
		}
		batch := &pgx.Batch{}
		for i, e := range entries {
			batch.Queue(insertOutbox, entryIDs[i], a.ID(), e.AggregateType, e.EventType, a.TenantID(), e.Payload, e.CreatedAt)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert outbox events: %w", err)
		}
		return nil
	})
}

func replaceDeductions(ctx context.Context, tx pgx.Tx, assessmentID uuid.UUID, irs *model.IRSCalculationResult) error {
	if _, err := tx.Exec(ctx, `DELETE FROM risk_deductions WHERE assessment_id = $1`, assessmentID); err != nil {
		return fmt.Errorf("clear deductions: %w", err)
	}
	if irs == nil || len(irs.Deductions) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(irs.Deductions))
	for i, d := range irs.Deductions {
		rows = append(rows, []any{assessmentID, i, d.RuleID, d.Variable.String(), d.PointsDeducted, d.Flag, d.Evidence})
	}
	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"risk_deductions"},
		[]string{"assessment_id", "ordinal", "rule_id", "variable", "points", "flag", "evidence"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("insert deductions: %w", err)
	}
	return nil
}

const selectAssessment = `
	SELECT id, tenant_id, applicant_id, requested_amount, term_months,
	       result, version, assessed_at, created_at
	FROM risk_assessments
`

// FindByID retrieves an assessment by tenant and ID.
func (r *AssessmentRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.RiskAssessment, error) {
	row := r.pool.QueryRow(ctx, selectAssessment+`WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	a, err := scanAssessment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("assessment %s: %w", id, port.ErrNotFound)
	}
	return a, err
}

// FindByApplicantID returns the applicant's assessments, newest first.
func (r *AssessmentRepo) FindByApplicantID(ctx context.Context, tenantID uuid.UUID, applicantID string) ([]*model.RiskAssessment, error) {
	return findMany(ctx, r.pool,
		selectAssessment+`WHERE tenant_id = $1 AND applicant_id = $2 ORDER BY created_at DESC`,
		tenantID, applicantID,
	)
}

func findMany(ctx context.Context, q pkgpostgres.Querier, query string, args ...any) ([]*model.RiskAssessment, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query assessments: %w", err)
	}
	defer rows.Close()

	var result []*model.RiskAssessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

// scannable is satisfied by both pgx.Row and pgx.Rows.
type scannable interface {
	Scan(dest ...any) error
}

func scanAssessment(s scannable) (*model.RiskAssessment, error) {
	var (
		id, tenantID          uuid.UUID
		applicantID           string
		requested             decimal.Decimal
		termMonths, version   int
		result                []byte
		assessedAt, createdAt time.Time
	)

	err := s.Scan(&id, &tenantID, &applicantID, &requested, &termMonths, &result, &version, &assessedAt, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan assessment: %w", err)
	}

	var outcome model.AssessmentOutcome
	if err := json.Unmarshal(result, &outcome); err != nil {
		return nil, fmt.Errorf("unmarshal outcome for %s: %w", id, err)
	}

	return model.ReconstructRiskAssessment(
		id, tenantID, applicantID, requested, termMonths,
		outcome, assessedAt.UTC(), version, createdAt.UTC(),
	), nil
}
