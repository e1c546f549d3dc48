package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Import outcomes as reported on the outcome attribute.
const (
	OutcomeImported = "imported"
	OutcomeFailed   = "failed"
)

// Persistence paths as reported on the path attribute.
const (
	PathServer = "server"
	PathClient = "client"
)

// ImportMetrics counts import outcomes and times each job end to end.
type ImportMetrics struct {
	outcomes  *Counter
	duration  *Histogram
	fallbacks *Counter
}

// NewImportMetrics registers the import instruments on meter.
func NewImportMetrics(meter metric.Meter) (*ImportMetrics, error) {
	outcomes, err := NewCounter(meter, "marketplace.import.outcomes", "Finished import jobs by provider and outcome", "{job}")
	if err != nil {
		return nil, err
	}
	duration, err := NewHistogram(meter, HistogramOpts{
		Name:        "marketplace.import.duration",
		Description: "Time from admission to a terminal state",
		Unit:        "s",
		Boundaries:  ImportDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	fallbacks, err := NewCounter(meter, "marketplace.import.fallbacks", "Imports that took the client write path", "{job}")
	if err != nil {
		return nil, err
	}
	return &ImportMetrics{outcomes: outcomes, duration: duration, fallbacks: fallbacks}, nil
}

// RecordImported records a successful job and the path that stored it.
func (m *ImportMetrics) RecordImported(ctx context.Context, provider, path string, took time.Duration) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{AttrProvider.String(provider), AttrOutcome.String(OutcomeImported)}
	m.outcomes.Inc(ctx, append(attrs, AttrPath.String(path))...)
	m.duration.RecordDuration(ctx, took, attrs...)
	if path == PathClient {
		m.fallbacks.Inc(ctx, AttrProvider.String(provider))
	}
}

// RecordFailed records a failed job by error kind.
func (m *ImportMetrics) RecordFailed(ctx context.Context, provider, kind string, took time.Duration) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{AttrProvider.String(provider), AttrOutcome.String(OutcomeFailed)}
	m.outcomes.Inc(ctx, append(attrs, AttrKind.String(kind))...)
	m.duration.RecordDuration(ctx, took, attrs...)
}
