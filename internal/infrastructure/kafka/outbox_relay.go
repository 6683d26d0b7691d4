package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/bibbank/riskcore/pkg/events"
	pkgkafka "github.com/bibbank/riskcore/pkg/kafka"
)

const (
	defaultRelayBatchSize = 100
	defaultRelayInterval  = time.Second
	maxRelayRetryInterval = 30 * time.Second
)

// MessageProducer is the subset of pkg/kafka.Producer the relay needs.
type MessageProducer interface {
	Publish(ctx context.Context, topic string, messages ...pkgkafka.Message) error
}

// RelayConfig tunes the outbox relay. Zero values select the defaults.
type RelayConfig struct {
	Topic     string
	BatchSize int
	Interval  time.Duration
}

// OutboxRelay moves assessment events from the outbox to Kafka. Delivery is
// at least once: an entry is marked published only after the broker
// acknowledged its batch.
type OutboxRelay struct {
	store    events.OutboxRepository
	producer MessageProducer
	cfg      RelayConfig
	logger   *slog.Logger
}

func NewOutboxRelay(store events.OutboxRepository, producer MessageProducer, cfg RelayConfig, logger *slog.Logger) *OutboxRelay {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultRelayBatchSize
	}
	if cfg.Interval <= 0 {
		cfg.Interval = defaultRelayInterval
	}
	return &OutboxRelay{store: store, producer: producer, cfg: cfg, logger: logger}
}

// Run polls the outbox until ctx is cancelled. Failed rounds are retried
// with exponential backoff capped at 30s.
func (r *OutboxRelay) Run(ctx context.Context) error {
	retry := backoff.NewExponentialBackOff()
	retry.InitialInterval = r.cfg.Interval
	retry.MaxInterval = maxRelayRetryInterval
	retry.MaxElapsedTime = 0
	retry.Reset()

	r.logger.Info("outbox relay started", "topic", r.cfg.Topic, "interval", r.cfg.Interval)
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("outbox relay stopped")
			return nil
		case <-timer.C:
		}

		wait := r.cfg.Interval
		if err := r.drain(ctx); err != nil {
			if ctx.Err() != nil {
				continue
			}
			wait = retry.NextBackOff()
			r.logger.Warn("outbox relay round failed", "error", err, "retry_in", wait)
		} else {
			retry.Reset()
		}
		timer.Reset(wait)
	}
}

// drain relays full batches until the outbox has no more pending entries.
func (r *OutboxRelay) drain(ctx context.Context) error {
	for {
		n, err := r.RelayOnce(ctx)
		if err != nil {
			return err
		}
		if n < r.cfg.BatchSize {
			return nil
		}
	}
}

// RelayOnce publishes at most one batch and returns how many entries were
// marked published.
func (r *OutboxRelay) RelayOnce(ctx context.Context) (int, error) {
	n, err := r.store.Dispatch(ctx, r.cfg.BatchSize, r.deliver)
	if err != nil {
		return 0, fmt.Errorf("relay outbox: %w", err)
	}
	if n > 0 {
		r.logger.DebugContext(ctx, "relayed outbox entries", "count", n, "topic", r.cfg.Topic)
	}
	return n, nil
}

func (r *OutboxRelay) deliver(ctx context.Context, entries []events.OutboxEntry) error {
	messages := make([]pkgkafka.Message, len(entries))
	for i, e := range entries {
		messages[i] = assessmentMessage(e)
	}
	if err := r.producer.Publish(ctx, r.cfg.Topic, messages...); err != nil {
		return fmt.Errorf("publish %d events to %s: %w", len(messages), r.cfg.Topic, err)
	}
	return nil
}

// assessmentMessage keys the record by assessment so both events of one
// evaluation land on the same partition in order. The outbox ID travels as
// event_id for consumer-side deduplication.
func assessmentMessage(e events.OutboxEntry) pkgkafka.Message {
	return pkgkafka.Message{
		Key:   []byte(e.AggregateID),
		Value: e.Payload,
		Headers: map[string]string{
			"event_id":       e.ID,
			"event_type":     e.EventType,
			"aggregate_type": e.AggregateType,
			"tenant_id":      e.TenantID,
			"occurred_at":    e.CreatedAt.UTC().Format(time.RFC3339Nano),
			"content_type":   "application/json",
		},
	}
}
