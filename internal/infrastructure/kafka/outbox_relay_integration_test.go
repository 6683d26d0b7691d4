//go:build integration

package kafka_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/riskcore/internal/domain/event"
	"github.com/bibbank/riskcore/internal/infrastructure/kafka"
	"github.com/bibbank/riskcore/pkg/events"
	pkgkafka "github.com/bibbank/riskcore/pkg/kafka"
	"github.com/bibbank/riskcore/pkg/testutil"
)

const topic = "risk.assessments"

func TestOutboxRelay_RoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	kc := testutil.NewKafkaContainer(ctx, t, topic)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := pkgkafka.Config{Brokers: kc.Brokers, ConsumerGroup: "riskcore-it"}

	producer, err := pkgkafka.NewProducer(cfg)
	require.NoError(t, err)
	defer producer.Close()

	received := make(chan pkgkafka.Message, 1)
	consumer, err := pkgkafka.NewConsumer(cfg, topic, func(_ context.Context, msg pkgkafka.Message) error {
		received <- msg
		return nil
	}, logger)
	require.NoError(t, err)
	defer consumer.Close()
	go func() { _ = consumer.Start(ctx) }()

	evt := event.NewAssessmentCompleted("a-1", testutil.TestTenantID.String(), testutil.TestApplicantID,
		decimal.NewFromInt(40000), 100, "LOW", decimal.RequireFromString("0.97"),
		"APPROVED", nil, nil, testutil.TestNow)
	entry, err := events.NewOutboxEntry(evt)
	require.NoError(t, err)
	store := &singleBatchOutbox{entries: []events.OutboxEntry{entry}}

	relay := kafka.NewOutboxRelay(store, producer, kafka.RelayConfig{Topic: topic}, logger)
	n, err := relay.RelayOnce(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	select {
	case msg := <-received:
		assert.Equal(t, event.EventTypeAssessmentCompleted, msg.Headers["event_type"])
		assert.Equal(t, entry.ID, msg.Headers["event_id"])
		assert.Equal(t, "a-1", string(msg.Key))
		var body map[string]any
		require.NoError(t, json.Unmarshal(msg.Value, &body))
		assert.Equal(t, "APPROVED", body["decision"])
	case <-ctx.Done():
		t.Fatal("timed out waiting for published event")
	}
}

type singleBatchOutbox struct {
	entries []events.OutboxEntry
}

func (o *singleBatchOutbox) Dispatch(
	ctx context.Context,
	_ int,
	deliver func(context.Context, []events.OutboxEntry) error,
) (int, error) {
	if len(o.entries) == 0 {
		return 0, nil
	}
	if err := deliver(ctx, o.entries); err != nil {
		return 0, err
	}
	n := len(o.entries)
	o.entries = nil
	return n, nil
}
