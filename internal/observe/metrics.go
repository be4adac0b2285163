// Package observe provides application-wide observability primitives for
// Kotoba: OpenTelemetry metrics, tracing, the gRPC server interceptor that
// ties them together, and the periodic resource monitor that watches the
// process for memory and handle leaks.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can still
// be scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all Kotoba metrics.
const meterName = "github.com/kotobatl/kotoba"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use; the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms ---

	// TranslateDuration tracks single-request translation latency.
	TranslateDuration metric.Float64Histogram

	// BatchDuration tracks batched translation latency per model call.
	BatchDuration metric.Float64Histogram

	// RecognizeDuration tracks end-to-end OCR latency.
	RecognizeDuration metric.Float64Histogram

	// --- Counters ---

	// Requests counts RPC calls. Use with attributes:
	//   attribute.String("method", ...), attribute.String("status", ...)
	Requests metric.Int64Counter

	// EngineErrors counts engine failures by kind. Use with attributes:
	//   attribute.String("engine", ...), attribute.String("kind", ...)
	EngineErrors metric.Int64Counter

	// Reclamations counts explicit memory reclamation requests.
	Reclamations metric.Int64Counter

	// --- Gauges ---

	// QueueDepth tracks entries waiting in the batch aggregator.
	QueueDepth metric.Int64UpDownCounter

	// InFlight tracks RPCs currently being served.
	InFlight metric.Int64UpDownCounter

	// BatchSize records the size of each flushed batch.
	BatchSize metric.Int64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds) optimised
// for local inference latencies.
var latencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.TranslateDuration, err = m.Float64Histogram("kotoba.translate.duration",
		metric.WithDescription("Latency of single translation requests."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.BatchDuration, err = m.Float64Histogram("kotoba.translate.batch.duration",
		metric.WithDescription("Latency of batched translation model calls."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.RecognizeDuration, err = m.Float64Histogram("kotoba.recognize.duration",
		metric.WithDescription("End-to-end OCR latency."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.Requests, err = m.Int64Counter("kotoba.rpc.requests",
		metric.WithDescription("Total RPC calls by method and status."),
	); err != nil {
		return nil, err
	}
	if met.EngineErrors, err = m.Int64Counter("kotoba.engine.errors",
		metric.WithDescription("Total engine failures by engine and kind."),
	); err != nil {
		return nil, err
	}
	if met.Reclamations, err = m.Int64Counter("kotoba.memory.reclamations",
		metric.WithDescription("Explicit memory reclamation requests."),
	); err != nil {
		return nil, err
	}

	// Gauges (UpDownCounters) and batch size distribution.
	if met.QueueDepth, err = m.Int64UpDownCounter("kotoba.batch.queue_depth",
		metric.WithDescription("Entries waiting in the batch aggregator."),
	); err != nil {
		return nil, err
	}
	if met.InFlight, err = m.Int64UpDownCounter("kotoba.rpc.in_flight",
		metric.WithDescription("RPCs currently being served."),
	); err != nil {
		return nil, err
	}
	if met.BatchSize, err = m.Int64Histogram("kotoba.batch.size",
		metric.WithDescription("Size of each flushed translation batch."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordRequest records one finished RPC with the standard attribute set.
func (m *Metrics) RecordRequest(ctx context.Context, method, status string) {
	m.Requests.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("status", status),
		),
	)
}

// RecordEngineError records one engine failure with the standard attribute
// set.
func (m *Metrics) RecordEngineError(ctx context.Context, engineName, kind string) {
	m.EngineErrors.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("engine", engineName),
			attribute.String("kind", kind),
		),
	)
}
