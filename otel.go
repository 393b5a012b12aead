package directory

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName = "github.com/rbaliyan/directory"
)

// otelInstrumentation holds OpenTelemetry instrumentation for the directory service.
type otelInstrumentation struct {
	serviceName string

	// Tracing
	tracingEnabled bool
	tracer         trace.Tracer

	// Metrics
	metricsEnabled bool

	resolveLatency      metric.Float64Histogram
	resolveCount        metric.Int64Counter
	resolveErrors       metric.Int64Counter
	resolveCandidates   metric.Int64Histogram
	availabilityLatency metric.Float64Histogram
	availabilityCount   metric.Int64Counter
	availabilityErrors  metric.Int64Counter
}

// newOtelInstrumentation creates new OTel instrumentation from options.
func newOtelInstrumentation(opts *options) (*otelInstrumentation, error) {
	o := &otelInstrumentation{
		serviceName:    opts.serviceName,
		tracingEnabled: opts.tracingEnabled,
		metricsEnabled: opts.metricsEnabled,
	}

	if opts.tracingEnabled {
		tp := opts.tracerProvider
		if tp == nil {
			tp = otel.GetTracerProvider()
		}
		o.tracer = tp.Tracer(instrumentationName)
	}

	if opts.metricsEnabled {
		mp := opts.meterProvider
		if mp == nil {
			mp = otel.GetMeterProvider()
		}
		if err := o.initMetrics(mp); err != nil {
			return nil, err
		}
	}

	return o, nil
}

// initMetrics initializes all metric instruments.
func (o *otelInstrumentation) initMetrics(mp metric.MeterProvider) error {
	meter := mp.Meter(instrumentationName)

	var err error

	o.resolveLatency, err = meter.Float64Histogram(
		"directory.resolve.duration",
		metric.WithDescription("Duration of name resolution calls"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	o.resolveCount, err = meter.Int64Counter(
		"directory.resolve.count",
		metric.WithDescription("Number of name resolution calls"),
	)
	if err != nil {
		return err
	}

	o.resolveErrors, err = meter.Int64Counter(
		"directory.resolve.errors",
		metric.WithDescription("Number of failed name resolution calls"),
	)
	if err != nil {
		return err
	}

	o.resolveCandidates, err = meter.Int64Histogram(
		"directory.resolve.candidates",
		metric.WithDescription("Number of candidates returned per resolution"),
	)
	if err != nil {
		return err
	}

	o.availabilityLatency, err = meter.Float64Histogram(
		"directory.availability.duration",
		metric.WithDescription("Duration of availability queries"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	o.availabilityCount, err = meter.Int64Counter(
		"directory.availability.count",
		metric.WithDescription("Number of availability queries"),
	)
	if err != nil {
		return err
	}

	o.availabilityErrors, err = meter.Int64Counter(
		"directory.availability.errors",
		metric.WithDescription("Number of failed availability queries"),
	)
	if err != nil {
		return err
	}

	return nil
}

// startSpan starts a new span if tracing is enabled.
// The returned func ends the span, recording err when non-nil.
func (o *otelInstrumentation) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, func(error, ...attribute.KeyValue)) {
	if !o.tracingEnabled || o.tracer == nil {
		return ctx, func(error, ...attribute.KeyValue) {}
	}
	attrs = append(attrs, attribute.String("service.name", o.serviceName))
	ctx, span := o.tracer.Start(ctx, name,
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	return ctx, func(err error, end ...attribute.KeyValue) {
		span.SetAttributes(end...)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}
}

// recordResolve records name resolution metrics.
func (o *otelInstrumentation) recordResolve(ctx context.Context, duration time.Duration, kind OutcomeKind, candidates int) {
	if !o.metricsEnabled {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("outcome", kind.String()),
	)

	o.resolveLatency.Record(ctx, duration.Seconds(), attrs)
	o.resolveCount.Add(ctx, 1, attrs)
	if kind == OutcomeFailure {
		o.resolveErrors.Add(ctx, 1, attrs)
		return
	}
	o.resolveCandidates.Record(ctx, int64(candidates), attrs)
}

// recordAvailability records availability query metrics.
func (o *otelInstrumentation) recordAvailability(ctx context.Context, duration time.Duration, mailboxCount int, err error) {
	if !o.metricsEnabled {
		return
	}

	attrs := metric.WithAttributes(
		attribute.Int("mailbox_count", mailboxCount),
	)

	o.availabilityLatency.Record(ctx, duration.Seconds(), attrs)
	o.availabilityCount.Add(ctx, 1, attrs)
	if err != nil {
		o.availabilityErrors.Add(ctx, 1, attrs)
	}
}
