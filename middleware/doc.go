// Package middleware provides composable middleware for callback invocations.
//
// A [Middleware] is a function that wraps the invocation of one registered
// callback during a dispatch. Middleware are composed into a chain using
// [Chain] and applied around every invocation, whether it was started by the
// dispatch loop or by WaitFor. They are applied right-to-left: the first
// middleware in the slice is the outermost wrapper.
//
//	// logging → recover → callback
//	chain := middleware.Chain(middleware.Logging(logger), middleware.Recover(logger))
//
// # Built-in Middleware
//
//   - [Logging]: logs callback, action, wait depth, duration and outcome
//   - [Recover]: catches panics and converts them to errors
//   - [Tracing]: wraps the invocation in an OpenTelemetry span
//   - [Metrics]: records per-callback duration and outcome counters
//
// # Writing Custom Middleware
//
//	func MyMiddleware() middleware.Middleware {
//	    return func(ctx context.Context, inv *middleware.Invocation, next middleware.Handler) error {
//	        // pre-processing
//	        err := next(ctx)
//	        // post-processing
//	        return err
//	    }
//	}
//
// Middleware MUST call next unless intentionally short-circuiting. A
// middleware that skips next still marks the callback handled for the
// current dispatch.
package middleware
