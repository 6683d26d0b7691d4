package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// OutboxEntry is a domain event stored in the outbox table, written in the
// same transaction as the aggregate that raised it.
type OutboxEntry struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	TenantID      string
	Payload       []byte
	CreatedAt     time.Time
	PublishedAt   *time.Time
}

// NewOutboxEntry creates an OutboxEntry from a DomainEvent. The payload is
// the JSON encoding of the event itself.
func NewOutboxEntry(event DomainEvent) (OutboxEntry, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return OutboxEntry{}, fmt.Errorf("marshal event %s: %w", event.EventType(), err)
	}
	return OutboxEntry{
		ID:            event.EventID(),
		AggregateID:   event.AggregateID(),
		AggregateType: event.AggregateType(),
		EventType:     event.EventType(),
		TenantID:      event.TenantID(),
		Payload:       payload,
		CreatedAt:     event.OccurredAt(),
	}, nil
}

// OutboxRepository hands unpublished entries to a relay.
type OutboxRepository interface {
	// Dispatch passes up to batchSize unpublished entries, oldest first, to
	// deliver and marks them published when deliver returns nil. It returns
	// the number of entries published.
	Dispatch(ctx context.Context, batchSize int, deliver func(ctx context.Context, entries []OutboxEntry) error) (int, error)
}
