package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bibbank/riskcore/pkg/events"
	pkgpostgres "github.com/bibbank/riskcore/pkg/postgres"
)

// OutboxRepo implements events.OutboxRepository on the outbox table written
// by AssessmentRepo.Save.
type OutboxRepo struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

var _ events.OutboxRepository = (*OutboxRepo)(nil)

func NewOutboxRepo(pool *pgxpool.Pool) *OutboxRepo {
	return &OutboxRepo{pool: pool, now: time.Now}
}

// Rows stay locked until the transaction ends, so concurrent relays skip
// each other's batches instead of delivering them twice.
const claimOutbox = `
	SELECT id, aggregate_id, aggregate_type, event_type, tenant_id, payload, created_at
	FROM outbox
	WHERE published_at IS NULL
	ORDER BY created_at, id
	LIMIT $1
	FOR UPDATE SKIP LOCKED
`

// Dispatch claims a batch of unpublished entries, hands them to deliver and
// stamps published_at in the same transaction. A deliver error rolls the
// claim back and the entries are retried on the next call.
func (r *OutboxRepo) Dispatch(
	ctx context.Context,
	batchSize int,
	deliver func(ctx context.Context, entries []events.OutboxEntry) error,
) (int, error) {
	if batchSize <= 0 {
		return 0, fmt.Errorf("outbox batch size must be positive, got %d", batchSize)
	}

	var published int
	err := pkgpostgres.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		entries, err := claim(ctx, tx, batchSize)
		if err != nil || len(entries) == 0 {
			return err
		}

		if err := deliver(ctx, entries); err != nil {
			return err
		}

		ids := make([]uuid.UUID, len(entries))
		for i, e := range entries {
			ids[i] = uuid.MustParse(e.ID)
		}
		tag, err := tx.Exec(ctx,
			`UPDATE outbox SET published_at = $1 WHERE id = ANY($2)`,
			r.now().UTC(), ids,
		)
		if err != nil {
			return fmt.Errorf("mark outbox published: %w", err)
		}
		published = int(tag.RowsAffected())
		return nil
	})
	if err != nil {
		return 0, err
	}
	return published, nil
}

func claim(ctx context.Context, tx pgx.Tx, batchSize int) ([]events.OutboxEntry, error) {
	rows, err := tx.Query(ctx, claimOutbox, batchSize)
	if err != nil {
		return nil, fmt.Errorf("claim outbox entries: %w", err)
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (events.OutboxEntry, error) {
		var (
			e                     events.OutboxEntry
			id, aggregate, tenant uuid.UUID
		)
		if err := row.Scan(&id, &aggregate, &e.AggregateType, &e.EventType, &tenant, &e.Payload, &e.CreatedAt); err != nil {
			return e, err
		}
		e.ID, e.AggregateID, e.TenantID = id.String(), aggregate.String(), tenant.String()
		e.CreatedAt = e.CreatedAt.UTC()
		return e, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan outbox entry: %w", err)
	}
	return entries, nil
}
