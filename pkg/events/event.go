package events

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is the interface all domain events must implement.
type DomainEvent interface {
	EventID() string
	EventType() string
	AggregateID() string
	AggregateType() string
	TenantID() string
	OccurredAt() time.Time
}

// BaseEvent carries the envelope fields shared by every domain event. The
// fields are exported so the envelope travels with the JSON payload.
type BaseEvent struct {
	ID        string    `json:"event_id"`
	Type      string    `json:"event_type"`
	Aggregate string    `json:"aggregate_id"`
	AggType   string    `json:"aggregate_type"`
	Tenant    string    `json:"tenant_id"`
	At        time.Time `json:"occurred_at"`
}

// NewBaseEvent creates a BaseEvent with a generated ID. occurredAt is
// normalized to UTC; a zero value means "now".
func NewBaseEvent(eventType, aggregateID, aggregateType, tenantID string, occurredAt time.Time) BaseEvent {
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Aggregate: aggregateID,
		AggType:   aggregateType,
		Tenant:    tenantID,
		At:        occurredAt.UTC(),
	}
}

func (e BaseEvent) EventID() string       { return e.ID }
func (e BaseEvent) EventType() string     { return e.Type }
func (e BaseEvent) AggregateID() string   { return e.Aggregate }
func (e BaseEvent) AggregateType() string { return e.AggType }
func (e BaseEvent) TenantID() string      { return e.Tenant }
func (e BaseEvent) OccurredAt() time.Time { return e.At }

// EventCollector is embedded in aggregates to buffer the events raised by a
// state transition until the application layer publishes them.
type EventCollector struct {
	pending []DomainEvent
}

// Record buffers e.
func (c *EventCollector) Record(e DomainEvent) {
	c.pending = append(c.pending, e)
}

// Events returns a copy of the buffered events.
func (c *EventCollector) Events() []DomainEvent {
	return append([]DomainEvent(nil), c.pending...)
}

// ClearEvents hands over the buffered events and empties the buffer.
func (c *EventCollector) ClearEvents() []DomainEvent {
	out := c.pending
	c.pending = nil
	return out
}
