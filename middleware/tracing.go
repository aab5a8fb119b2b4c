package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracerName is the instrumentation scope name for fluxury tracing.
const tracerName = "github.com/fluxury/fluxury"

// Tracing returns middleware that wraps each callback invocation in an
// OpenTelemetry span. If no TracerProvider is configured globally, the
// default noop tracer is used and this middleware becomes a pass-through.
//
// Span attributes include: fluxury.token, fluxury.callback, fluxury.action,
// fluxury.wait_depth. Callbacks reached through WaitFor become child spans of
// the waiting callback.
func Tracing() Middleware {
	return TracingWithTracer(otel.Tracer(tracerName))
}

// TracingWithTracer returns tracing middleware using the provided tracer.
func TracingWithTracer(tracer trace.Tracer) Middleware {
	return func(ctx context.Context, inv *Invocation, next Handler) error {
		ctx, span := tracer.Start(ctx, "fluxury.callback.invoke",
			trace.WithAttributes(
				attribute.String("fluxury.token", inv.Token.String()),
				attribute.String("fluxury.callback", inv.Name()),
				attribute.String("fluxury.action", inv.Action.Type),
				attribute.Int("fluxury.wait_depth", inv.Depth),
			),
			trace.WithSpanKind(trace.SpanKindInternal),
		)
		defer span.End()

		err := next(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}

		return err
	}
}
