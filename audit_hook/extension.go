package audithook

import (
	"context"
	"log/slog"
	"time"

	"github.com/fluxury/fluxury/action"
	"github.com/fluxury/fluxury/ext"
	"github.com/fluxury/fluxury/id"
)

// Compile-time interface checks.
var (
	_ ext.Extension            = (*Extension)(nil)
	_ ext.CallbackRegistered   = (*Extension)(nil)
	_ ext.CallbackUnregistered = (*Extension)(nil)
	_ ext.StoreCreated         = (*Extension)(nil)
	_ ext.DispatchStarted      = (*Extension)(nil)
	_ ext.DispatchCompleted    = (*Extension)(nil)
	_ ext.DispatchFailed       = (*Extension)(nil)
	_ ext.StateChanged         = (*Extension)(nil)
)

// Recorder receives audit events. Implementations decide where they go.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is one audit record derived from a dispatcher lifecycle event.
type AuditEvent struct {
	Time     time.Time `json:"time"`
	Action   string    `json:"action"`
	Category string    `json:"category"`
	Resource string    `json:"resource"`

	// ResourceID is the token, store ID, store name or action type the
	// event is about, depending on Resource.
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

func newEvent(act, category, resource, resourceID string) *AuditEvent {
	return &AuditEvent{
		Action:     act,
		Category:   category,
		Resource:   resource,
		ResourceID: resourceID,
		Metadata:   map[string]any{},
		Outcome:    OutcomeSuccess,
		Severity:   SeverityInfo,
	}
}

func (ev *AuditEvent) set(key string, v any) *AuditEvent {
	ev.Metadata[key] = v
	return ev
}

func (ev *AuditEvent) failed(err error) *AuditEvent {
	ev.Outcome = OutcomeFailure
	ev.Severity = SeverityCritical
	if err != nil {
		ev.Reason = err.Error()
		ev.Metadata["error"] = ev.Reason
	}
	return ev
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record calls f.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Extension turns dispatcher and store lifecycle events into audit events
// for a [Recorder]. Recorder errors are logged, never returned.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil means every action
	logger   *slog.Logger
	now      func() time.Time
}

// New returns an Extension recording through r.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements ext.Extension.
func (e *Extension) Name() string { return "audit-hook" }

// ── Registration hooks ──────────────────────────────

// OnCallbackRegistered implements ext.CallbackRegistered.
func (e *Extension) OnCallbackRegistered(ctx context.Context, token id.Token) error {
	e.emit(ctx, newEvent(ActionCallbackRegistered, CategoryCallback, ResourceCallback, token.String()))
	return nil
}

// OnCallbackUnregistered implements ext.CallbackUnregistered.
func (e *Extension) OnCallbackUnregistered(ctx context.Context, token id.Token) error {
	e.emit(ctx, newEvent(ActionCallbackUnregistered, CategoryCallback, ResourceCallback, token.String()))
	return nil
}

// OnStoreCreated implements ext.StoreCreated.
func (e *Extension) OnStoreCreated(ctx context.Context, name string, storeID id.StoreID, token id.Token) error {
	e.emit(ctx, newEvent(ActionStoreCreated, CategoryStore, ResourceStore, storeID.String()).
		set("store_name", name).
		set("token", token.String()))
	return nil
}

// ── Dispatch hooks ──────────────────────────────────

// OnDispatchStarted implements ext.DispatchStarted.
func (e *Extension) OnDispatchStarted(ctx context.Context, a action.Action) error {
	e.emit(ctx, newEvent(ActionDispatchStarted, CategoryDispatch, ResourceAction, a.Type))
	return nil
}

// OnDispatchCompleted implements ext.DispatchCompleted.
func (e *Extension) OnDispatchCompleted(ctx context.Context, a action.Action, elapsed time.Duration) error {
	e.emit(ctx, newEvent(ActionDispatchCompleted, CategoryDispatch, ResourceAction, a.Type).
		set("elapsed_ms", elapsed.Milliseconds()))
	return nil
}

// OnDispatchFailed implements ext.DispatchFailed.
func (e *Extension) OnDispatchFailed(ctx context.Context, a action.Action, dispatchErr error) error {
	e.emit(ctx, newEvent(ActionDispatchFailed, CategoryDispatch, ResourceAction, a.Type).
		failed(dispatchErr))
	return nil
}

// OnStateChanged implements ext.StateChanged.
func (e *Extension) OnStateChanged(ctx context.Context, store string, token id.Token, a action.Action) error {
	e.emit(ctx, newEvent(ActionStateChanged, CategoryStore, ResourceStore, store).
		set("action_type", a.Type).
		set("token", token.String()))
	return nil
}

// emit stamps ev and hands it to the recorder unless its action is filtered.
func (e *Extension) emit(ctx context.Context, ev *AuditEvent) {
	if e.enabled != nil && !e.enabled[ev.Action] {
		return
	}
	ev.Time = e.now().UTC()

	if err := e.recorder.Record(ctx, ev); err != nil {
		e.logger.WarnContext(ctx, "audit event not recorded",
			slog.String("action", ev.Action),
			slog.String("resource_id", ev.ResourceID),
			slog.String("error", err.Error()),
		)
	}
}
