package ext_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/fluxury/fluxury/action"
	"github.com/fluxury/fluxury/ext"
	"github.com/fluxury/fluxury/id"
)

// ──────────────────────────────────────────────────
// Test extensions
// ──────────────────────────────────────────────────

// allHooksExt implements every lifecycle hook for testing.
type allHooksExt struct {
	calls []string
}

func (e *allHooksExt) Name() string { return "all-hooks" }

func (e *allHooksExt) OnCallbackRegistered(_ context.Context, _ id.Token) error {
	e.calls = append(e.calls, "OnCallbackRegistered")
	return nil
}

func (e *allHooksExt) OnCallbackUnregistered(_ context.Context, _ id.Token) error {
	e.calls = append(e.calls, "OnCallbackUnregistered")
	return nil
}

func (e *allHooksExt) OnStoreCreated(_ context.Context, _ string, _ id.StoreID, _ id.Token) error {
	e.calls = append(e.calls, "OnStoreCreated")
	return nil
}

func (e *allHooksExt) OnDispatchStarted(_ context.Context, _ action.Action) error {
	e.calls = append(e.calls, "OnDispatchStarted")
	return nil
}

func (e *allHooksExt) OnDispatchCompleted(_ context.Context, _ action.Action, _ time.Duration) error {
	e.calls = append(e.calls, "OnDispatchCompleted")
	return nil
}

func (e *allHooksExt) OnDispatchFailed(_ context.Context, _ action.Action, _ error) error {
	e.calls = append(e.calls, "OnDispatchFailed")
	return nil
}

func (e *allHooksExt) OnStateChanged(_ context.Context, _ string, _ id.Token, _ action.Action) error {
	e.calls = append(e.calls, "OnStateChanged")
	return nil
}

// dispatchOnlyExt only implements dispatch hooks.
type dispatchOnlyExt struct {
	calls []string
}

func (e *dispatchOnlyExt) Name() string { return "dispatch-only" }

func (e *dispatchOnlyExt) OnDispatchStarted(_ context.Context, _ action.Action) error {
	e.calls = append(e.calls, "OnDispatchStarted")
	return nil
}

func (e *dispatchOnlyExt) OnDispatchCompleted(_ context.Context, _ action.Action, _ time.Duration) error {
	e.calls = append(e.calls, "OnDispatchCompleted")
	return nil
}

// failingExt returns errors from hooks.
type failingExt struct{}

func (e *failingExt) Name() string { return "failing" }

func (e *failingExt) OnDispatchStarted(_ context.Context, _ action.Action) error {
	return errors.New("boom")
}

// ──────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────

func TestRegistry_RegisterDiscoversInterfaces(t *testing.T) {
	r := ext.NewRegistry(slog.Default())
	r.Register(&allHooksExt{})

	if got := len(r.Extensions()); got != 1 {
		t.Fatalf("expected 1 extension, got %d", got)
	}
	if got := r.Extensions()[0].Name(); got != "all-hooks" {
		t.Fatalf("expected name 'all-hooks', got %q", got)
	}
}

func TestRegistry_EmitFiresOnlyImplementors(t *testing.T) {
	r := ext.NewRegistry(slog.Default())
	all := &allHooksExt{}
	do := &dispatchOnlyExt{}
	r.Register(all)
	r.Register(do)

	ctx := context.Background()
	a := action.New("increment", nil)

	r.EmitDispatchStarted(ctx, a)
	if len(all.calls) != 1 || all.calls[0] != "OnDispatchStarted" {
		t.Fatalf("all: expected [OnDispatchStarted], got %v", all.calls)
	}
	if len(do.calls) != 1 || do.calls[0] != "OnDispatchStarted" {
		t.Fatalf("do: expected [OnDispatchStarted], got %v", do.calls)
	}

	// Only all implements OnStateChanged.
	r.EmitStateChanged(ctx, "counter", id.NewToken(), a)
	if len(all.calls) != 2 || all.calls[1] != "OnStateChanged" {
		t.Fatalf("all: expected OnStateChanged as 2nd, got %v", all.calls)
	}
	if len(do.calls) != 1 {
		t.Fatalf("do: should still have 1 call, got %v", do.calls)
	}
}

func TestRegistry_AllHooksFire(t *testing.T) {
	r := ext.NewRegistry(slog.Default())
	all := &allHooksExt{}
	r.Register(all)

	ctx := context.Background()
	a := action.New("loadMessage", "a")
	tok := id.NewToken()

	r.EmitCallbackRegistered(ctx, tok)
	r.EmitStoreCreated(ctx, "messages", id.NewStoreID(), tok)
	r.EmitDispatchStarted(ctx, a)
	r.EmitStateChanged(ctx, "messages", tok, a)
	r.EmitDispatchCompleted(ctx, a, time.Millisecond)
	r.EmitDispatchFailed(ctx, a, errors.New("fail"))
	r.EmitCallbackUnregistered(ctx, tok)

	expected := []string{
		"OnCallbackRegistered", "OnStoreCreated", "OnDispatchStarted",
		"OnStateChanged", "OnDispatchCompleted", "OnDispatchFailed",
		"OnCallbackUnregistered",
	}
	if len(all.calls) != len(expected) {
		t.Fatalf("expected %d calls, got %d: %v", len(expected), len(all.calls), all.calls)
	}
	for i, want := range expected {
		if all.calls[i] != want {
			t.Errorf("call[%d] = %q, want %q", i, all.calls[i], want)
		}
	}
}

func TestRegistry_HookErrorsLoggedNotPropagated(t *testing.T) {
	r := ext.NewRegistry(slog.Default())
	all := &allHooksExt{}

	// Register failing first, then all-hooks. Both should be called.
	r.Register(&failingExt{})
	r.Register(all)

	r.EmitDispatchStarted(context.Background(), action.New("x", nil))

	if len(all.calls) != 1 || all.calls[0] != "OnDispatchStarted" {
		t.Fatalf("all: expected [OnDispatchStarted] despite failing ext, got %v", all.calls)
	}
}

func TestRegistry_EmptyRegistryNoOp(_ *testing.T) {
	r := ext.NewRegistry(nil)
	ctx := context.Background()
	a := action.New("x", nil)

	r.EmitCallbackRegistered(ctx, id.NewToken())
	r.EmitCallbackUnregistered(ctx, id.NewToken())
	r.EmitStoreCreated(ctx, "s", id.NewStoreID(), id.NewToken())
	r.EmitDispatchStarted(ctx, a)
	r.EmitDispatchCompleted(ctx, a, time.Second)
	r.EmitDispatchFailed(ctx, a, errors.New("x"))
	r.EmitStateChanged(ctx, "s", id.NewToken(), a)
}

func TestRegistry_MultipleExtensionsOrderPreserved(t *testing.T) {
	r := ext.NewRegistry(slog.Default())

	var order []string
	r.Register(orderExt{name: "first", order: &order})
	r.Register(orderExt{name: "second", order: &order})

	r.EmitDispatchStarted(context.Background(), action.New("x", nil))

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("expected [first second], got %v", order)
	}
}

type orderExt struct {
	name  string
	order *[]string
}

func (e orderExt) Name() string { return e.name }

func (e orderExt) OnDispatchStarted(_ context.Context, _ action.Action) error {
	*e.order = append(*e.order, e.name)
	return nil
}
