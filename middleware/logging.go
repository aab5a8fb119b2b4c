package middleware

import (
	"context"
	"log/slog"
	"time"
)

// Logging returns middleware that logs every callback invocation at debug
// level and failures at error level.
func Logging(logger *slog.Logger) Middleware {
	return func(ctx context.Context, inv *Invocation, next Handler) error {
		logger.DebugContext(ctx, "callback started",
			slog.String("callback", inv.Name()),
			slog.String("token", inv.Token.String()),
			slog.String("action", inv.Action.Type),
			slog.Int("depth", inv.Depth),
		)

		start := time.Now()
		err := next(ctx)
		elapsed := time.Since(start)

		if err != nil {
			logger.ErrorContext(ctx, "callback failed",
				slog.String("callback", inv.Name()),
				slog.String("token", inv.Token.String()),
				slog.String("action", inv.Action.Type),
				slog.Duration("elapsed", elapsed),
				slog.String("error", err.Error()),
			)
		} else {
			logger.DebugContext(ctx, "callback completed",
				slog.String("callback", inv.Name()),
				slog.String("action", inv.Action.Type),
				slog.Duration("elapsed", elapsed),
			)
		}

		return err
	}
}
