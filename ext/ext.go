package ext

import (
	"context"
	"time"

	"github.com/fluxury/fluxury/action"
	"github.com/fluxury/fluxury/id"
)

// Extension is the base interface all extensions must implement.
type Extension interface {
	// Name returns a unique human-readable name for the extension.
	Name() string
}

// ──────────────────────────────────────────────────
// Registration hooks
// ──────────────────────────────────────────────────

// CallbackRegistered is called after a callback is added to the dispatcher.
type CallbackRegistered interface {
	OnCallbackRegistered(ctx context.Context, token id.Token) error
}

// CallbackUnregistered is called after a callback is removed from the dispatcher.
type CallbackUnregistered interface {
	OnCallbackUnregistered(ctx context.Context, token id.Token) error
}

// StoreCreated is called once a store has registered its reducer callback.
type StoreCreated interface {
	OnStoreCreated(ctx context.Context, name string, storeID id.StoreID, token id.Token) error
}

// ──────────────────────────────────────────────────
// Dispatch hooks
// ──────────────────────────────────────────────────

// DispatchStarted is called before the first callback of a dispatch runs.
type DispatchStarted interface {
	OnDispatchStarted(ctx context.Context, a action.Action) error
}

// DispatchCompleted is called after every callback handled the action.
type DispatchCompleted interface {
	OnDispatchCompleted(ctx context.Context, a action.Action, elapsed time.Duration) error
}

// DispatchFailed is called when a callback error aborted the dispatch.
type DispatchFailed interface {
	OnDispatchFailed(ctx context.Context, a action.Action, err error) error
}

// StateChanged is called when a store commits a new state reference.
type StateChanged interface {
	OnStateChanged(ctx context.Context, store string, token id.Token, a action.Action) error
}
