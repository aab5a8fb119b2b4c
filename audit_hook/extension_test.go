package audithook_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/fluxury/fluxury"
	"github.com/fluxury/fluxury/action"
	ah "github.com/fluxury/fluxury/audit_hook"
	"github.com/fluxury/fluxury/ext"
	"github.com/fluxury/fluxury/id"
	"github.com/fluxury/fluxury/store"
)

// ── Mock recorder ────────────────────────────────────

// mockRecorder captures audit events for verification.
type mockRecorder struct {
	mu     sync.Mutex
	events []*ah.AuditEvent
}

func (m *mockRecorder) Record(_ context.Context, evt *ah.AuditEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, evt)
	return nil
}

func (m *mockRecorder) last() *ah.AuditEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.events) == 0 {
		return nil
	}
	return m.events[len(m.events)-1]
}

func (m *mockRecorder) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

func (m *mockRecorder) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.events))
	for i, evt := range m.events {
		out[i] = evt.Action
	}
	return out
}

func (m *mockRecorder) findByAction(act string) *ah.AuditEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, evt := range m.events {
		if evt.Action == act {
			return evt
		}
	}
	return nil
}

// ── Tests ────────────────────────────────────────────

func TestExtension_Name(t *testing.T) {
	rec := &mockRecorder{}
	e := ah.New(rec)
	if e.Name() != "audit-hook" {
		t.Errorf("expected name %q, got %q", "audit-hook", e.Name())
	}
}

func TestExtension_StampsTime(t *testing.T) {
	rec := &mockRecorder{}
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("x", 3600))
	e := ah.New(rec, ah.WithClock(func() time.Time { return at }))

	if err := e.OnDispatchStarted(context.Background(), action.New("increment", nil)); err != nil {
		t.Fatalf("OnDispatchStarted: %v", err)
	}
	evt := rec.last()
	if evt == nil {
		t.Fatal("expected an event")
	}
	if !evt.Time.Equal(at) || evt.Time.Location() != time.UTC {
		t.Errorf("Time: want %v in UTC, got %v", at, evt.Time)
	}
}

func TestExtension_StoreCreated(t *testing.T) {
	rec := &mockRecorder{}
	e := ah.New(rec)

	sid := id.NewStoreID()
	tok := id.NewToken()
	if err := e.OnStoreCreated(context.Background(), "counter", sid, tok); err != nil {
		t.Fatalf("OnStoreCreated: %v", err)
	}

	evt := rec.last()
	if evt == nil {
		t.Fatal("expected an event")
	}
	if evt.Action != ah.ActionStoreCreated {
		t.Errorf("Action: want %q, got %q", ah.ActionStoreCreated, evt.Action)
	}
	if evt.Resource != ah.ResourceStore || evt.ResourceID != sid.String() {
		t.Errorf("Resource: got %q/%q", evt.Resource, evt.ResourceID)
	}
	if evt.Category != ah.CategoryStore {
		t.Errorf("Category: want %q, got %q", ah.CategoryStore, evt.Category)
	}
	if evt.Metadata["store_name"] != "counter" || evt.Metadata["token"] != tok.String() {
		t.Errorf("Metadata: got %v", evt.Metadata)
	}
	if evt.Severity != ah.SeverityInfo || evt.Outcome != ah.OutcomeSuccess {
		t.Errorf("Severity/Outcome: got %q/%q", evt.Severity, evt.Outcome)
	}
}

func TestExtension_DispatchCompleted(t *testing.T) {
	rec := &mockRecorder{}
	e := ah.New(rec)

	if err := e.OnDispatchCompleted(context.Background(), action.New("increment", nil), 1500*time.Millisecond); err != nil {
		t.Fatalf("OnDispatchCompleted: %v", err)
	}

	evt := rec.last()
	if evt.ResourceID != "increment" || evt.Resource != ah.ResourceAction {
		t.Errorf("Resource: got %q/%q", evt.Resource, evt.ResourceID)
	}
	if evt.Metadata["elapsed_ms"] != int64(1500) {
		t.Errorf("elapsed_ms: want 1500, got %v", evt.Metadata["elapsed_ms"])
	}
}

func TestExtension_DispatchFailed(t *testing.T) {
	rec := &mockRecorder{}
	e := ah.New(rec)

	if err := e.OnDispatchFailed(context.Background(), action.New("set", nil), errors.New("boom")); err != nil {
		t.Fatalf("OnDispatchFailed: %v", err)
	}

	evt := rec.last()
	if evt.Severity != ah.SeverityCritical || evt.Outcome != ah.OutcomeFailure {
		t.Errorf("Severity/Outcome: got %q/%q", evt.Severity, evt.Outcome)
	}
	if evt.Reason != "boom" || evt.Metadata["error"] != "boom" {
		t.Errorf("Reason: got %q, metadata %v", evt.Reason, evt.Metadata)
	}
}

func TestExtension_StateChanged(t *testing.T) {
	rec := &mockRecorder{}
	e := ah.New(rec)

	if err := e.OnStateChanged(context.Background(), "todos", id.NewToken(), action.New("setTodo", nil)); err != nil {
		t.Fatalf("OnStateChanged: %v", err)
	}

	evt := rec.last()
	if evt.ResourceID != "todos" || evt.Metadata["action_type"] != "setTodo" {
		t.Errorf("got %+v", evt)
	}
}

// ── WithActions filter tests ─────────────────────────

func TestExtension_WithActions_FiltersDisabled(t *testing.T) {
	rec := &mockRecorder{}
	e := ah.New(rec, ah.WithActions(ah.ActionDispatchFailed, ah.ActionStateChanged))

	ctx := context.Background()
	a := action.New("x", nil)

	// Started is NOT enabled and should be silently skipped.
	if err := e.OnDispatchStarted(ctx, a); err != nil {
		t.Fatalf("OnDispatchStarted: %v", err)
	}
	if rec.count() != 0 {
		t.Errorf("expected 0 events (started disabled), got %d", rec.count())
	}

	if err := e.OnDispatchFailed(ctx, a, errors.New("boom")); err != nil {
		t.Fatalf("OnDispatchFailed: %v", err)
	}
	if rec.count() != 1 {
		t.Errorf("expected 1 event (failed enabled), got %d", rec.count())
	}
}

// ── RecorderFunc adapter test ────────────────────────

func TestRecorderFunc(t *testing.T) {
	var captured *ah.AuditEvent
	fn := ah.RecorderFunc(func(_ context.Context, evt *ah.AuditEvent) error {
		captured = evt
		return nil
	})

	e := ah.New(fn)
	if err := e.OnCallbackRegistered(context.Background(), id.NewToken()); err != nil {
		t.Fatalf("OnCallbackRegistered: %v", err)
	}
	if captured == nil {
		t.Fatal("RecorderFunc was not called")
	}
	if captured.Action != ah.ActionCallbackRegistered {
		t.Errorf("Action: want %q, got %q", ah.ActionCallbackRegistered, captured.Action)
	}
}

// ── Recorder error handling test ─────────────────────

func TestExtension_RecorderError_DoesNotPropagate(t *testing.T) {
	failingRecorder := ah.RecorderFunc(func(_ context.Context, _ *ah.AuditEvent) error {
		return errors.New("audit backend down")
	})

	e := ah.New(failingRecorder, ah.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	// Audit failures must not abort a dispatch.
	if err := e.OnDispatchStarted(context.Background(), action.New("x", nil)); err != nil {
		t.Fatalf("expected no error (audit failure swallowed), got: %v", err)
	}
}

// ── Registry integration test ────────────────────────

func TestExtension_ViaRegistry(t *testing.T) {
	rec := &mockRecorder{}
	e := ah.New(rec)

	reg := ext.NewRegistry(slog.Default())
	reg.Register(e)

	ctx := context.Background()
	a := action.New("x", nil)
	tok := id.NewToken()

	reg.EmitCallbackRegistered(ctx, tok)
	reg.EmitCallbackUnregistered(ctx, tok)
	reg.EmitStoreCreated(ctx, "s", id.NewStoreID(), tok)
	reg.EmitDispatchStarted(ctx, a)
	reg.EmitDispatchCompleted(ctx, a, time.Millisecond)
	reg.EmitDispatchFailed(ctx, a, errors.New("fail"))
	reg.EmitStateChanged(ctx, "s", tok, a)

	allActions := ah.AllActions()
	if rec.count() != len(allActions) {
		t.Fatalf("expected %d events, got %d", len(allActions), rec.count())
	}
	for _, act := range allActions {
		if rec.findByAction(act) == nil {
			t.Errorf("missing event for action %q", act)
		}
	}
}

// ── Dispatcher integration test ──────────────────────

func TestExtension_WithDispatcher(t *testing.T) {
	rec := &mockRecorder{}
	d, err := fluxury.New(
		fluxury.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		fluxury.WithExtensions(ah.New(rec)),
	)
	if err != nil {
		t.Fatalf("fluxury.New: %v", err)
	}

	counter, err := store.New(d, "counter", store.SpecTable(0, map[string]store.Handler[int]{
		"increment": func(n int, _ any, _ store.WaitFunc) (int, error) { return n + 1, nil },
	}))
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	if err := counter.Dispatch(context.Background(), "increment", nil); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	want := []string{
		ah.ActionCallbackRegistered,
		ah.ActionStoreCreated,
		ah.ActionDispatchStarted,
		ah.ActionStateChanged,
		ah.ActionDispatchCompleted,
	}
	got := rec.actions()
	if len(got) != len(want) {
		t.Fatalf("actions = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("actions[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestAllActions(t *testing.T) {
	if n := len(ah.AllActions()); n != 7 {
		t.Errorf("expected 7 actions, got %d", n)
	}
}
