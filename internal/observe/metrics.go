// Package observe provides application-wide observability primitives for
// voxprobe: OpenTelemetry metrics, tracing helpers, structured logging, and
// HTTP middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so the web UI can expose a
// standard /metrics endpoint. A package-level default [Metrics] instance
// ([DefaultMetrics]) is provided for convenience; tests should use
// [NewMetrics] with a custom [metric.MeterProvider] to avoid cross-test
// pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all voxprobe metrics.
const meterName = "github.com/MrWong99/voxprobe"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use; the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// SynthesisDuration tracks end-to-end synthesis latency: the remote
	// call plus writing the audio file. Use with attributes:
	//   attribute.String("encoding", ...), attribute.String("result", ...)
	SynthesisDuration metric.Float64Histogram

	// SynthesisRequests counts synthesis attempts with the same attribute
	// set as SynthesisDuration.
	SynthesisRequests metric.Int64Counter

	// VoiceListRequests counts voice listings. Use with attribute:
	//   attribute.String("source", ...), either "cache" or "remote"
	VoiceListRequests metric.Int64Counter

	// PlaybackAttempts counts playback hand-offs. Use with attributes:
	//   attribute.String("host", ...), attribute.String("outcome", ...)
	PlaybackAttempts metric.Int64Counter

	// HTTPRequestDuration tracks web UI request processing time. Use with
	// attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds) sized for
// remote synthesis calls.
var latencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.SynthesisDuration, err = m.Float64Histogram("voxprobe.synthesis.duration",
		metric.WithDescription("Latency of one synthesis request, remote call plus file write."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.SynthesisRequests, err = m.Int64Counter("voxprobe.synthesis.requests",
		metric.WithDescription("Total synthesis requests by encoding and result."),
	); err != nil {
		return nil, err
	}
	if met.VoiceListRequests, err = m.Int64Counter("voxprobe.voice_list.requests",
		metric.WithDescription("Total voice listings by source (cache or remote)."),
	); err != nil {
		return nil, err
	}
	if met.PlaybackAttempts, err = m.Int64Counter("voxprobe.playback.attempts",
		metric.WithDescription("Total playback hand-offs by host and outcome."),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("voxprobe.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
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

// RecordSynthesis records one synthesis attempt: its duration histogram
// sample and the request counter increment, both tagged with encoding and
// result.
func (m *Metrics) RecordSynthesis(ctx context.Context, encoding, result string, seconds float64) {
	attrs := metric.WithAttributes(
		attribute.String("encoding", encoding),
		attribute.String("result", result),
	)
	m.SynthesisDuration.Record(ctx, seconds, attrs)
	m.SynthesisRequests.Add(ctx, 1, attrs)
}

// RecordVoiceList records one voice listing served from the given source.
func (m *Metrics) RecordVoiceList(ctx context.Context, source string) {
	m.VoiceListRequests.Add(ctx, 1,
		metric.WithAttributes(attribute.String("source", source)),
	)
}

// RecordPlayback records one playback hand-off and how it ended.
func (m *Metrics) RecordPlayback(ctx context.Context, host, outcome string) {
	m.PlaybackAttempts.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("host", host),
			attribute.String("outcome", outcome),
		),
	)
}
