package observability

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	ServiceName string
	// Registry defaults to a fresh registry with Go and process collectors.
	Registry *prometheus.Registry
}

// InitMetrics initializes the Prometheus metrics exporter and installs the
// global meter provider. Returns the MeterProvider and an HTTP handler for
// the /metrics endpoint.
func InitMetrics(cfg MetricsConfig) (*sdkmetric.MeterProvider, http.Handler, error) {
	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
	if err != nil {
		return nil, nil, fmt.Errorf("observability: create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(provider)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return provider, handler, nil
}

// ---------------------------------------------------------------------------
// RiskMetrics – underwriting decision instruments
// ---------------------------------------------------------------------------

// RiskMetrics records one observation per completed assessment.
type RiskMetrics struct {
	decisions  metric.Int64Counter
	irsScore   metric.Int64Histogram
	confidence metric.Float64Histogram
}

// NewRiskMetrics creates the instruments on the given meter provider.
func NewRiskMetrics(provider metric.MeterProvider) (*RiskMetrics, error) {
	meter := provider.Meter("github.com/bibbank/riskcore")

	decisions, err := meter.Int64Counter("riskcore_assessments_total",
		metric.WithDescription("Completed assessments by decision"))
	if err != nil {
		return nil, fmt.Errorf("observability: create decision counter: %w", err)
	}
	irsScore, err := meter.Int64Histogram("riskcore_irs_score",
		metric.WithDescription("Final IRS score of scored assessments"),
		metric.WithExplicitBucketBoundaries(0, 40, 60, 70, 85, 100))
	if err != nil {
		return nil, fmt.Errorf("observability: create irs histogram: %w", err)
	}
	confidence, err := meter.Float64Histogram("riskcore_confidence",
		metric.WithDescription("Assessment confidence"),
		metric.WithExplicitBucketBoundaries(0.1, 0.3, 0.5, 0.7, 0.8, 0.9, 1))
	if err != nil {
		return nil, fmt.Errorf("observability: create confidence histogram: %w", err)
	}

	return &RiskMetrics{decisions: decisions, irsScore: irsScore, confidence: confidence}, nil
}

// RecordAssessment counts the decision and, when scoring completed
// (irsScore >= 0), observes the score and confidence.
func (m *RiskMetrics) RecordAssessment(ctx context.Context, decision string, irsScore int, confidence float64, forced bool) {
	m.decisions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("decision", decision),
		attribute.Bool("forced", forced),
	))
	if irsScore < 0 {
		return
	}
	m.irsScore.Record(ctx, int64(irsScore))
	m.confidence.Record(ctx, confidence, metric.WithAttributes(attribute.String("decision", decision)))
}
