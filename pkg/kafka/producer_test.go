package kafka

import (
	"io"
	"log/slog"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProducer(t *testing.T) {
	p, err := NewProducer(Config{Brokers: []string{"localhost:9092", "localhost:9093"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"localhost:9092", "localhost:9093"}, p.brokers)
	assert.Empty(t, p.writers)
	assert.Nil(t, p.transport)
}

func TestNewProducer_Errors(t *testing.T) {
	_, err := NewProducer(Config{})
	assert.Error(t, err)

	_, err = NewProducer(Config{
		Brokers:       []string{"kafka:9092"},
		SASLEnabled:   true,
		SASLMechanism: "GSSAPI",
	})
	assert.ErrorContains(t, err, "GSSAPI")
}

func TestNewProducer_TLSAndSASL(t *testing.T) {
	p, err := NewProducer(Config{
		Brokers:       []string{"kafka:9093"},
		TLS:           true,
		SASLEnabled:   true,
		SASLMechanism: "SCRAM-SHA-512",
		SASLUsername:  "riskcore",
		SASLPassword:  "secret",
	})
	require.NoError(t, err)
	require.NotNil(t, p.transport)
	assert.NotNil(t, p.transport.TLS)
	assert.Equal(t, "SCRAM-SHA-512", p.transport.SASL.Name())

	w := p.getOrCreateWriter("risk.assessments")
	assert.Same(t, p.transport, w.Transport)
}

func TestGetOrCreateWriter(t *testing.T) {
	p, err := NewProducer(Config{Brokers: []string{"localhost:9092"}})
	require.NoError(t, err)

	w1 := p.getOrCreateWriter("topic-a")
	w2 := p.getOrCreateWriter("topic-a")
	w3 := p.getOrCreateWriter("topic-b")

	assert.Same(t, w1, w2)
	assert.NotSame(t, w1, w3)
	assert.IsType(t, &kafkago.Hash{}, w1.Balancer)
	assert.Len(t, p.writers, 2)

	require.NoError(t, p.Close())
	assert.Empty(t, p.writers)
}

func TestMessageConversion(t *testing.T) {
	km := toKafkaMessage(Message{
		Key:     []byte("assessment-1"),
		Value:   []byte(`{"irs_score":85}`),
		Headers: map[string]string{"event_type": "riskcore.assessment.completed"},
	})
	km.Topic = "risk.assessments"
	km.Offset = 42
	km.Time = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	msg := fromKafkaMessage(km)
	assert.Equal(t, "assessment-1", string(msg.Key))
	assert.Equal(t, "riskcore.assessment.completed", msg.Headers["event_type"])
	assert.Equal(t, "risk.assessments", msg.Topic)
	assert.Equal(t, int64(42), msg.Offset)
	assert.Equal(t, km.Time, msg.Time)
}

func TestNewConsumer(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := NewConsumer(Config{}, "risk.assessments", nil, logger)
	assert.Error(t, err)

	c, err := NewConsumer(Config{Brokers: []string{"localhost:9092"}, TLS: true}, "risk.assessments", nil, logger)
	require.NoError(t, err)
	assert.Equal(t, "risk.assessments", c.reader.Config().Topic)
	assert.NotNil(t, c.reader.Config().Dialer.TLS)
	require.NoError(t, c.Close())
}
