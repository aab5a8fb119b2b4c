package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
)

// Recover returns middleware that recovers from panics in the callback chain.
// Panics are converted to errors, which abort the dispatch like any other
// callback error, and logged with a stack trace.
func Recover(logger *slog.Logger) Middleware {
	return func(ctx context.Context, inv *Invocation, next Handler) (retErr error) {
		defer func() {
			if r := recover(); r != nil {
				logger.ErrorContext(ctx, "callback panicked",
					slog.String("callback", inv.Name()),
					slog.String("token", inv.Token.String()),
					slog.String("action", inv.Action.Type),
					slog.Any("panic", r),
					slog.String("stack", string(debug.Stack())),
				)
				retErr = fmt.Errorf("panic in callback %s: %v", inv.Name(), r)
			}
		}()
		return next(ctx)
	}
}
