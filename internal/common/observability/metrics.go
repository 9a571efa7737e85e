// internal/common/observability/metrics.go
package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Observability owns the otel meter and tracer providers.
type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	meter          otelmetric.Meter
	tracer         trace.Tracer

	aiQueries         otelmetric.Int64Counter
	aiDuration        otelmetric.Float64Histogram
	speechChars       otelmetric.Int64Counter
	assessments       otelmetric.Int64Counter
	newsletterSignups otelmetric.Int64Counter
}

// New wires the Prometheus meter exporter. A failing exporter leaves a
// no-op instance so callers never nil check.
func New(serviceName string) *Observability {
	o := &Observability{tracer: noop.NewTracerProvider().Tracer(serviceName)}

	exporter, err := prometheus.New()
	if err != nil {
		return o
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)
	o.meterProvider = provider
	o.meter = meter

	o.aiQueries, _ = meter.Int64Counter(
		"ai.queries",
		otelmetric.WithDescription("Consultation questions answered"),
	)
	o.aiDuration, _ = meter.Float64Histogram(
		"ai.query.duration",
		otelmetric.WithDescription("Consultation answer latency"),
		otelmetric.WithUnit("ms"),
	)
	o.speechChars, _ = meter.Int64Counter(
		"speech.characters",
		otelmetric.WithDescription("Characters sent for speech synthesis"),
	)
	o.assessments, _ = meter.Int64Counter(
		"assessments.completed",
		otelmetric.WithDescription("Constitution assessments scored"),
	)
	o.newsletterSignups, _ = meter.Int64Counter(
		"newsletter.signups",
		otelmetric.WithDescription("Newsletter subscriptions by source"),
	)

	return o
}

// NewNoop returns an instance that records nothing, for tests.
func NewNoop() *Observability {
	return &Observability{tracer: noop.NewTracerProvider().Tracer("noop")}
}

// Tracer returns the active tracer.
func (o *Observability) Tracer() trace.Tracer {
	return o.tracer
}

// StartSpan opens a span named name under ctx.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return o.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (o *Observability) RecordAIQuery(ctx context.Context, source string, duration time.Duration) {
	attrs := otelmetric.WithAttributes(attribute.String("source", source))
	if o.aiQueries != nil {
		o.aiQueries.Add(ctx, 1, attrs)
	}
	if o.aiDuration != nil {
		o.aiDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
}

func (o *Observability) RecordSpeechCharacters(ctx context.Context, voiceID string, chars int) {
	if o.speechChars != nil {
		o.speechChars.Add(ctx, int64(chars), otelmetric.WithAttributes(
			attribute.String("voice_id", voiceID),
		))
	}
}

func (o *Observability) RecordAssessment(ctx context.Context, primary string) {
	if o.assessments != nil {
		o.assessments.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("primary_dosha", primary),
		))
	}
}

func (o *Observability) RecordNewsletterSignup(ctx context.Context, source string) {
	if o.newsletterSignups != nil {
		o.newsletterSignups.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("source", source),
		))
	}
}

func (o *Observability) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if o.meterProvider != nil {
		_ = o.meterProvider.Shutdown(ctx)
	}
	if o.tracerProvider != nil {
		_ = o.tracerProvider.Shutdown(ctx)
	}
}
