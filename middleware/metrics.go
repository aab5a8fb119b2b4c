package middleware

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name for fluxury metrics.
const meterName = "github.com/fluxury/fluxury"

// Metrics returns middleware that records per-callback metrics using the
// global OTel MeterProvider. If no MeterProvider is configured, noop
// instruments are used and this middleware becomes a pass-through.
//
// Instruments:
//   - fluxury.callback.duration (Float64Histogram): invocation time in seconds,
//     with attributes: callback, action, status ("ok" or "error")
//   - fluxury.callback.invocations (Int64Counter): total invocations,
//     with attributes: callback, action, status, waited (true when reached
//     through WaitFor)
func Metrics() Middleware {
	return MetricsWithMeter(otel.Meter(meterName))
}

// MetricsWithMeter returns metrics middleware using the provided meter.
func MetricsWithMeter(meter metric.Meter) Middleware {
	duration, dErr := meter.Float64Histogram(
		"fluxury.callback.duration",
		metric.WithDescription("Duration of callback invocations in seconds"),
		metric.WithUnit("s"),
	)
	_ = dErr // noop fallback guaranteed by OTel API contract

	invocations, iErr := meter.Int64Counter(
		"fluxury.callback.invocations",
		metric.WithDescription("Total number of callback invocations"),
		metric.WithUnit("{invocation}"),
	)
	_ = iErr // noop fallback guaranteed by OTel API contract

	return func(ctx context.Context, inv *Invocation, next Handler) error {
		start := time.Now()
		err := next(ctx)
		elapsed := time.Since(start).Seconds()

		status := "ok"
		if err != nil {
			status = "error"
		}

		duration.Record(ctx, elapsed, metric.WithAttributes(
			attribute.String("callback", inv.Name()),
			attribute.String("action", inv.Action.Type),
			attribute.String("status", status),
		))
		invocations.Add(ctx, 1, metric.WithAttributes(
			attribute.String("callback", inv.Name()),
			attribute.String("action", inv.Action.Type),
			attribute.String("status", status),
			attribute.Bool("waited", inv.Depth > 0),
		))

		return err
	}
}
