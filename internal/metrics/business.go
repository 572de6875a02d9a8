package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BusinessMetrics records DEK operations. Operations carry the KEK source
// when known (dek_wrap_hardware, dek_unwrap_fallback) and failures are labelled
// with their error kind (hardware_secret_unavailable, unwrap_auth_failure).
type BusinessMetrics interface {
	RecordOperation(ctx context.Context, domain, operation, status string)
	RecordDuration(ctx context.Context, domain, operation string, duration time.Duration, status string)
}

// durationBuckets spans in-memory AEAD calls up to an authenticator prompt
// that waits for a user touch.
var durationBuckets = []float64{0.001, 0.01, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60}

type businessMetrics struct {
	operations metric.Int64Counter
	durations  metric.Float64Histogram
}

// NewBusinessMetrics registers <namespace>_operations_total and
// <namespace>_operation_duration_seconds on the given meter provider.
func NewBusinessMetrics(meterProvider metric.MeterProvider, namespace string) (BusinessMetrics, error) {
	meter := meterProvider.Meter(namespace)

	operations, err := meter.Int64Counter(
		fmt.Sprintf("%s_operations_total", namespace),
		metric.WithDescription("DEK and credential operations by outcome"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create operation counter: %w", err)
	}

	durations, err := meter.Float64Histogram(
		fmt.Sprintf("%s_operation_duration_seconds", namespace),
		metric.WithDescription("DEK and credential operation latency, including authenticator prompts"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	return &businessMetrics{operations: operations, durations: durations}, nil
}

func operationAttributes(domain, operation, status string) metric.MeasurementOption {
	return metric.WithAttributes(
		attribute.String("domain", domain),
		attribute.String("operation", operation),
		attribute.String("status", status),
	)
}

func (b *businessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	b.operations.Add(ctx, 1, operationAttributes(domain, operation, status))
}

func (b *businessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	b.durations.Record(ctx, duration.Seconds(), operationAttributes(domain, operation, status))
}

type noopBusinessMetrics struct{}

// NewNoOpBusinessMetrics is used when METRICS_ENABLED is false.
func NewNoOpBusinessMetrics() BusinessMetrics {
	return noopBusinessMetrics{}
}

func (noopBusinessMetrics) RecordOperation(context.Context, string, string, string) {}

func (noopBusinessMetrics) RecordDuration(context.Context, string, string, time.Duration, string) {}
