package ext

import (
	"context"
	"log/slog"
	"time"

	"github.com/fluxury/fluxury/action"
	"github.com/fluxury/fluxury/id"
)

// Named entry types pair a hook implementation with the extension name
// captured at registration time.
type callbackRegisteredEntry struct {
	name string
	hook CallbackRegistered
}

type callbackUnregisteredEntry struct {
	name string
	hook CallbackUnregistered
}

type storeCreatedEntry struct {
	name string
	hook StoreCreated
}

type dispatchStartedEntry struct {
	name string
	hook DispatchStarted
}

type dispatchCompletedEntry struct {
	name string
	hook DispatchCompleted
}

type dispatchFailedEntry struct {
	name string
	hook DispatchFailed
}

type stateChangedEntry struct {
	name string
	hook StateChanged
}

// Registry holds registered extensions and dispatches lifecycle events
// to them. It type-caches extensions at registration time so emit calls
// iterate only over extensions that implement the relevant hook.
//
// Registration is expected to happen while wiring, before the first
// dispatch; emit methods do not lock.
type Registry struct {
	extensions []Extension
	logger     *slog.Logger

	callbackRegistered   []callbackRegisteredEntry
	callbackUnregistered []callbackUnregisteredEntry
	storeCreated         []storeCreatedEntry
	dispatchStarted      []dispatchStartedEntry
	dispatchCompleted    []dispatchCompletedEntry
	dispatchFailed       []dispatchFailedEntry
	stateChanged         []stateChangedEntry
}

// NewRegistry creates an extension registry with the given logger.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{logger: logger}
}

// Register adds an extension and type-asserts it into all applicable
// hook caches. Extensions are notified in registration order.
func (r *Registry) Register(e Extension) {
	r.extensions = append(r.extensions, e)
	name := e.Name()

	if h, ok := e.(CallbackRegistered); ok {
		r.callbackRegistered = append(r.callbackRegistered, callbackRegisteredEntry{name, h})
	}
	if h, ok := e.(CallbackUnregistered); ok {
		r.callbackUnregistered = append(r.callbackUnregistered, callbackUnregisteredEntry{name, h})
	}
	if h, ok := e.(StoreCreated); ok {
		r.storeCreated = append(r.storeCreated, storeCreatedEntry{name, h})
	}
	if h, ok := e.(DispatchStarted); ok {
		r.dispatchStarted = append(r.dispatchStarted, dispatchStartedEntry{name, h})
	}
	if h, ok := e.(DispatchCompleted); ok {
		r.dispatchCompleted = append(r.dispatchCompleted, dispatchCompletedEntry{name, h})
	}
	if h, ok := e.(DispatchFailed); ok {
		r.dispatchFailed = append(r.dispatchFailed, dispatchFailedEntry{name, h})
	}
	if h, ok := e.(StateChanged); ok {
		r.stateChanged = append(r.stateChanged, stateChangedEntry{name, h})
	}
}

// Extensions returns all registered extensions.
func (r *Registry) Extensions() []Extension { return r.extensions }

// ──────────────────────────────────────────────────
// Registration event emitters
// ──────────────────────────────────────────────────

// EmitCallbackRegistered notifies all extensions that implement CallbackRegistered.
func (r *Registry) EmitCallbackRegistered(ctx context.Context, token id.Token) {
	for _, e := range r.callbackRegistered {
		if err := e.hook.OnCallbackRegistered(ctx, token); err != nil {
			r.logHookError("OnCallbackRegistered", e.name, err)
		}
	}
}

// EmitCallbackUnregistered notifies all extensions that implement CallbackUnregistered.
func (r *Registry) EmitCallbackUnregistered(ctx context.Context, token id.Token) {
	for _, e := range r.callbackUnregistered {
		if err := e.hook.OnCallbackUnregistered(ctx, token); err != nil {
			r.logHookError("OnCallbackUnregistered", e.name, err)
		}
	}
}

// EmitStoreCreated notifies all extensions that implement StoreCreated.
func (r *Registry) EmitStoreCreated(ctx context.Context, name string, storeID id.StoreID, token id.Token) {
	for _, e := range r.storeCreated {
		if err := e.hook.OnStoreCreated(ctx, name, storeID, token); err != nil {
			r.logHookError("OnStoreCreated", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Dispatch event emitters
// ──────────────────────────────────────────────────

// EmitDispatchStarted notifies all extensions that implement DispatchStarted.
func (r *Registry) EmitDispatchStarted(ctx context.Context, a action.Action) {
	for _, e := range r.dispatchStarted {
		if err := e.hook.OnDispatchStarted(ctx, a); err != nil {
			r.logHookError("OnDispatchStarted", e.name, err)
		}
	}
}

// EmitDispatchCompleted notifies all extensions that implement DispatchCompleted.
func (r *Registry) EmitDispatchCompleted(ctx context.Context, a action.Action, elapsed time.Duration) {
	for _, e := range r.dispatchCompleted {
		if err := e.hook.OnDispatchCompleted(ctx, a, elapsed); err != nil {
			r.logHookError("OnDispatchCompleted", e.name, err)
		}
	}
}

// EmitDispatchFailed notifies all extensions that implement DispatchFailed.
func (r *Registry) EmitDispatchFailed(ctx context.Context, a action.Action, dispatchErr error) {
	for _, e := range r.dispatchFailed {
		if err := e.hook.OnDispatchFailed(ctx, a, dispatchErr); err != nil {
			r.logHookError("OnDispatchFailed", e.name, err)
		}
	}
}

// EmitStateChanged notifies all extensions that implement StateChanged.
func (r *Registry) EmitStateChanged(ctx context.Context, store string, token id.Token, a action.Action) {
	for _, e := range r.stateChanged {
		if err := e.hook.OnStateChanged(ctx, store, token, a); err != nil {
			r.logHookError("OnStateChanged", e.name, err)
		}
	}
}

// logHookError logs a warning when a lifecycle hook returns an error.
// Errors from hooks are logged and never abort a dispatch.
func (r *Registry) logHookError(hook, extName string, err error) {
	r.logger.Warn("extension hook error",
		slog.String("hook", hook),
		slog.String("extension", extName),
		slog.String("error", err.Error()),
	)
}
