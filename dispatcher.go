package fluxury

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fluxury/fluxury/action"
	"github.com/fluxury/fluxury/ext"
	"github.com/fluxury/fluxury/id"
	"github.com/fluxury/fluxury/middleware"
)

// Token is the opaque handle returned by Register and consumed by WaitFor.
type Token = id.Token

// Action is the payload broadcast by a dispatch.
type Action = action.Action

// Callback receives every dispatched action.
type Callback func(ctx context.Context, a Action) error

// phase tracks one registration through a single dispatch.
// Transitions only move forward: notStarted → pending → handled.
type phase uint8

const (
	phaseNotStarted phase = iota
	phasePending
	phaseHandled
)

type registration struct {
	token    Token
	label    string
	callback Callback
}

// Dispatcher broadcasts actions to registered callbacks. Unlike a generic
// pub-sub bus, every action reaches every callback, and a callback can
// defer its own work until other callbacks have handled the same action
// by calling WaitFor with their tokens.
//
// A dispatch runs synchronously in the caller's goroutine. Dispatching
// while a dispatch is in progress fails with ErrAlreadyDispatching.
type Dispatcher struct {
	config     Config
	logger     *slog.Logger
	extensions *ext.Registry
	exts       []ext.Extension
	mws        []middleware.Middleware
	chain      middleware.Middleware

	mu        sync.Mutex
	callbacks map[string]*registration
	order     []*registration

	// Per-dispatch bookkeeping, reset by startDispatching and cleared by
	// stopDispatching.
	dispatching bool
	payload     Action
	phases      map[string]phase
	depth       int
	failure     error
	after       []func(ctx context.Context)
}

// New creates a new Dispatcher with the given options.
func New(opts ...Option) (*Dispatcher, error) {
	d := &Dispatcher{
		config:    DefaultConfig(),
		logger:    slog.Default(),
		callbacks: make(map[string]*registration),
		phases:    make(map[string]phase),
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}

	d.extensions = ext.NewRegistry(d.logger)
	for _, e := range d.exts {
		d.extensions.Register(e)
	}
	d.chain = middleware.Chain(d.mws...)

	return d, nil
}

// Logger returns the dispatcher's logger.
func (d *Dispatcher) Logger() *slog.Logger { return d.logger }

// Config returns a copy of the dispatcher's configuration.
func (d *Dispatcher) Config() Config { return d.config }

// Extensions returns the lifecycle extension registry.
func (d *Dispatcher) Extensions() *ext.Registry { return d.extensions }

// Register adds a callback invoked with every dispatched action and
// returns the token other callbacks use to wait for it.
func (d *Dispatcher) Register(cb Callback) (Token, error) {
	return d.RegisterNamed("", cb)
}

// RegisterNamed is Register with a label used in logs, traces and errors.
func (d *Dispatcher) RegisterNamed(label string, cb Callback) (Token, error) {
	if cb == nil {
		return id.Nil, ErrNilCallback
	}

	reg := &registration{token: id.NewToken(), label: label, callback: cb}

	d.mu.Lock()
	d.callbacks[reg.token.String()] = reg
	d.order = append(d.order, reg)
	d.mu.Unlock()

	d.logger.Debug("callback registered",
		slog.String("token", reg.token.String()),
		slog.String("label", label),
	)
	d.extensions.EmitCallbackRegistered(context.Background(), reg.token)

	return reg.token, nil
}

// Unregister removes a callback. A dispatch in progress will not invoke
// it afterwards.
func (d *Dispatcher) Unregister(token Token) error {
	key := token.String()

	d.mu.Lock()
	reg, ok := d.callbacks[key]
	if !ok {
		d.mu.Unlock()
		return fmt.Errorf("%w: unregister %q", ErrUnknownToken, key)
	}
	delete(d.callbacks, key)
	for i, r := range d.order {
		if r == reg {
			d.order = append(d.order[:i:i], d.order[i+1:]...)
			break
		}
	}
	d.mu.Unlock()

	d.logger.Debug("callback unregistered", slog.String("token", key))
	d.extensions.EmitCallbackUnregistered(context.Background(), token)

	return nil
}

// Tokens returns the registered tokens in registration order.
func (d *Dispatcher) Tokens() []Token {
	d.mu.Lock()
	defer d.mu.Unlock()

	tokens := make([]Token, len(d.order))
	for i, r := range d.order {
		tokens[i] = r.token
	}
	return tokens
}

// IsDispatching reports whether a dispatch is in progress.
func (d *Dispatcher) IsDispatching() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dispatching
}

// Send normalises an overloaded action descriptor (see action.From),
// dispatches it and returns the dispatched action.
func (d *Dispatcher) Send(ctx context.Context, descriptor any, data any) (Action, error) {
	a, err := action.From(descriptor, data)
	if err != nil {
		return action.NoAction, err
	}
	if err := d.Dispatch(ctx, a); err != nil {
		return a, err
	}
	return a, nil
}

// Dispatch broadcasts a to every registered callback in registration
// order. Each callback runs exactly once; callbacks already run through
// WaitFor are skipped by the loop. The first callback error aborts the
// remaining callbacks and is returned as a *CallbackError.
//
// Functions queued with AfterDispatch run once the dispatch bookkeeping
// has been torn down, before Dispatch returns. An action without a type
// is rejected with ErrInvalidAction.
func (d *Dispatcher) Dispatch(ctx context.Context, a Action) error {
	if a.Type == "" {
		return fmt.Errorf("%w: empty action type", ErrInvalidAction)
	}

	d.mu.Lock()
	if d.dispatching {
		d.mu.Unlock()
		return fmt.Errorf("%w: %q while dispatching %q", ErrAlreadyDispatching, a.Type, d.payload.Type)
	}
	pass := d.startDispatching(a)
	d.mu.Unlock()

	start := time.Now()
	d.extensions.EmitDispatchStarted(ctx, a)

	after, err := d.runPass(ctx, pass)

	if err != nil {
		d.logger.DebugContext(ctx, "dispatch failed",
			slog.String("action", a.Type),
			slog.String("error", err.Error()),
		)
		d.extensions.EmitDispatchFailed(ctx, a, err)
		if d.config.NotifyOnFailure {
			flush(ctx, after)
		}
		return err
	}

	elapsed := time.Since(start)
	d.logger.DebugContext(ctx, "dispatch completed",
		slog.String("action", a.Type),
		slog.Int("callbacks", len(pass)),
		slog.Duration("elapsed", elapsed),
	)
	d.extensions.EmitDispatchCompleted(ctx, a, elapsed)
	flush(ctx, after)

	return nil
}

// runPass invokes every registration of the pass that has not started yet.
// Teardown runs even if a callback panics.
func (d *Dispatcher) runPass(ctx context.Context, pass []*registration) (after []func(ctx context.Context), err error) {
	defer func() {
		after = d.stopDispatching()
	}()

	for _, reg := range pass {
		if !d.ready(reg) {
			continue
		}
		if err = d.invokeCallback(ctx, reg, 0); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

// WaitFor runs the callbacks for tokens before the calling callback
// continues. It may only be called from a callback of the current
// dispatch. Tokens already handled are skipped; a token whose callback is
// still running means the dependency graph has a cycle.
func (d *Dispatcher) WaitFor(ctx context.Context, tokens ...Token) error {
	d.mu.Lock()
	if !d.dispatching {
		d.mu.Unlock()
		return ErrNotDispatching
	}
	d.mu.Unlock()

	for _, tok := range tokens {
		key := tok.String()

		d.mu.Lock()
		if d.failure != nil {
			err := d.failure
			d.mu.Unlock()
			return err
		}
		reg, registered := d.callbacks[key]
		switch d.phases[key] {
		case phaseHandled:
			d.mu.Unlock()
			continue
		case phasePending:
			d.mu.Unlock()
			return fmt.Errorf("%w while waiting for %q", ErrCircularDependency, key)
		}
		if !registered {
			d.mu.Unlock()
			return fmt.Errorf("%w: wait for %q", ErrUnknownToken, key)
		}
		if d.config.MaxWaitDepth > 0 && d.depth >= d.config.MaxWaitDepth {
			d.mu.Unlock()
			return fmt.Errorf("%w: %d nested waits while waiting for %q", ErrWaitDepthExceeded, d.depth, key)
		}
		d.depth++
		depth := d.depth
		d.mu.Unlock()

		err := d.invokeCallback(ctx, reg, depth)

		d.mu.Lock()
		d.depth--
		d.mu.Unlock()

		if err != nil {
			return err
		}
	}

	return nil
}

// AfterDispatch queues fn to run once the current dispatch has finished
// and its bookkeeping is cleared, so fn may dispatch again. Queued
// functions run in FIFO order.
func (d *Dispatcher) AfterDispatch(fn func(ctx context.Context)) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.dispatching {
		return ErrNotDispatching
	}
	d.after = append(d.after, fn)
	return nil
}

// invokeCallback is the single execution path shared by the dispatch loop
// and WaitFor: mark pending, run the callback through the middleware
// chain, mark handled.
func (d *Dispatcher) invokeCallback(ctx context.Context, reg *registration, depth int) error {
	key := reg.token.String()

	d.mu.Lock()
	d.phases[key] = phasePending
	payload := d.payload
	d.mu.Unlock()

	inv := &middleware.Invocation{
		Token:  reg.token,
		Label:  reg.label,
		Action: payload,
		Depth:  depth,
	}
	err := d.chain(ctx, inv, func(ctx context.Context) error {
		return reg.callback(ctx, payload)
	})

	d.mu.Lock()
	defer d.mu.Unlock()

	if err == nil && d.failure == nil {
		d.phases[key] = phaseHandled
		return nil
	}
	if d.failure == nil {
		var cbErr *CallbackError
		if !errors.As(err, &cbErr) {
			err = &CallbackError{Token: reg.token, Label: reg.label, Action: payload.Type, Err: err}
		}
		d.failure = err
	}
	return d.failure
}

// ready reports whether reg is still registered and has not started.
func (d *Dispatcher) ready(reg *registration) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := reg.token.String()
	if _, ok := d.callbacks[key]; !ok {
		return false
	}
	return d.phases[key] == phaseNotStarted
}

// startDispatching sets up the bookkeeping for a dispatch and returns the
// registrations of the pass. Callers must hold d.mu.
func (d *Dispatcher) startDispatching(a Action) []*registration {
	clear(d.phases)
	for key := range d.callbacks {
		d.phases[key] = phaseNotStarted
	}
	d.payload = a
	d.dispatching = true
	d.depth = 0
	d.failure = nil
	d.after = nil

	pass := make([]*registration, len(d.order))
	copy(pass, d.order)
	return pass
}

// stopDispatching clears the dispatch bookkeeping and hands back the
// after-dispatch queue.
func (d *Dispatcher) stopDispatching() []func(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()

	after := d.after
	clear(d.phases)
	d.payload = action.NoAction
	d.dispatching = false
	d.depth = 0
	d.failure = nil
	d.after = nil
	return after
}

func flush(ctx context.Context, after []func(ctx context.Context)) {
	for _, fn := range after {
		fn(ctx)
	}
}
