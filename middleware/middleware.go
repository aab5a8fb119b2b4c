// Package middleware provides composable middleware around callback
// invocations. Middleware wraps each callback call synchronously and can
// observe or alter its execution (recover from panics, log, trace, etc.).
package middleware

import (
	"context"

	"github.com/fluxury/fluxury/action"
	"github.com/fluxury/fluxury/id"
)

// Invocation describes one run of a registered callback within a dispatch.
type Invocation struct {
	// Token identifies the registration being invoked.
	Token id.Token

	// Label is the optional name given at registration (the store name for
	// store callbacks).
	Label string

	// Action is the payload of the in-flight dispatch.
	Action action.Action

	// Depth is 0 for callbacks started by the dispatch loop and n for
	// callbacks started by a WaitFor nested n levels deep.
	Depth int
}

// Name returns the label, falling back to the token.
func (inv *Invocation) Name() string {
	if inv.Label != "" {
		return inv.Label
	}
	return inv.Token.String()
}

// Handler is the terminal function that runs the callback.
type Handler func(ctx context.Context) error

// Middleware wraps a Handler with cross-cutting logic.
// It receives the current context, the invocation being executed, and the
// next handler to call. Middleware MUST call next to continue the chain
// (unless short-circuiting on error).
type Middleware func(ctx context.Context, inv *Invocation, next Handler) error

// Chain composes multiple middleware into a single Middleware.
// Middleware are applied right-to-left: the first middleware in the
// list is the outermost wrapper.
//
// Example: Chain(logging, recover) executes as:
//
//	logging → recover → callback
func Chain(mws ...Middleware) Middleware {
	return func(ctx context.Context, inv *Invocation, next Handler) error {
		h := next
		for i := len(mws) - 1; i >= 0; i-- {
			mw := mws[i]
			prev := h
			h = func(ctx context.Context) error {
				return mw(ctx, inv, prev)
			}
		}
		return h(ctx)
	}
}
