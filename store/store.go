// Package store binds a reducer to a dispatcher and keeps the resulting
// state.
//
// A Store owns one piece of application state. It registers a callback
// with the dispatcher and, on every dispatch, reduces the action into a new
// state. When the new state is not Identical to the old one it is
// committed and subscribers are notified once the dispatch has finished.
//
// State is replaced, never mutated: reducers must return a new value to
// signal a change and the same value to signal "nothing to do".
package store

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/fluxury/fluxury"
	"github.com/fluxury/fluxury/action"
	"github.com/fluxury/fluxury/emitter"
	"github.com/fluxury/fluxury/id"
)

// Store holds the state produced by a Definition.
type Store[S any] struct {
	d         *fluxury.Dispatcher
	name      string
	id        id.StoreID
	token     fluxury.Token
	mode      Mode
	logger    *slog.Logger
	equal     func(a, b S) bool
	waitFor   []fluxury.Token
	selectors map[string]Selector[S]
	handlers  map[string]Handler[S]
	listeners *emitter.Emitter[S]

	mu      sync.RWMutex
	state   S
	reducer Reducer[S]
	closed  bool
}

// New creates a store named name and registers it with d.
func New[S any](d *fluxury.Dispatcher, name string, def Definition[S], opts ...Option[S]) (*Store[S], error) {
	if d == nil {
		return nil, fmt.Errorf("store: nil dispatcher")
	}
	if name == "" {
		return nil, fluxury.ErrInvalidName
	}

	o := &options[S]{
		selectors: make(map[string]Selector[S]),
		equal:     Identical[S],
		logger:    d.Logger(),
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	reducer, handlers, initial, err := def.compile()
	if err != nil {
		return nil, fmt.Errorf("store %q: %w", name, err)
	}
	if def.Mode == ModeWaitListOnly && len(o.waitFor) == 0 {
		return nil, fmt.Errorf("store %q: %w: wait-list-only store without a wait list", name, fluxury.ErrInvalidReducer)
	}

	sid := o.id
	if sid.IsNil() {
		sid = id.NewStoreID()
	}

	s := &Store[S]{
		d:         d,
		name:      name,
		id:        sid,
		mode:      def.Mode,
		logger:    o.logger,
		equal:     o.equal,
		waitFor:   slices.Clone(o.waitFor),
		selectors: o.selectors,
		handlers:  handlers,
		listeners: emitter.New[S](),
		state:     initial,
		reducer:   reducer,
	}

	tok, err := d.RegisterNamed(name, s.handle)
	if err != nil {
		return nil, fmt.Errorf("store %q: %w", name, err)
	}
	s.token = tok

	s.logger.Debug("store created",
		slog.String("store", name),
		slog.String("store_id", sid.String()),
		slog.String("mode", def.Mode.String()),
	)
	d.Extensions().EmitStoreCreated(context.Background(), name, sid, tok)

	return s, nil
}

// handle is the callback registered with the dispatcher.
func (s *Store[S]) handle(ctx context.Context, a action.Action) error {
	wait := func(tokens ...fluxury.Token) error {
		return s.d.WaitFor(ctx, tokens...)
	}

	if len(s.waitFor) > 0 {
		if err := wait(s.waitFor...); err != nil {
			return err
		}
	}

	s.mu.RLock()
	current, reduce := s.state, s.reducer
	s.mu.RUnlock()

	next, err := reduce(current, a, wait)
	if err != nil {
		return err
	}
	if s.equal(current, next) {
		return nil
	}

	s.mu.Lock()
	s.state = next
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "state changed",
		slog.String("store", s.name),
		slog.String("action", a.Type),
	)
	s.d.Extensions().EmitStateChanged(ctx, s.name, s.token, a)

	return s.d.AfterDispatch(func(context.Context) {
		s.listeners.Emit(s.State())
	})
}

// Name returns the store name.
func (s *Store[S]) Name() string { return s.name }

// ID returns the store ID.
func (s *Store[S]) ID() id.StoreID { return s.id }

// Token returns the dispatch token other stores wait for.
func (s *Store[S]) Token() fluxury.Token { return s.token }

// Mode returns the construction mode.
func (s *Store[S]) Mode() Mode { return s.mode }

// State returns the latest committed state.
func (s *Store[S]) State() S {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Snapshot returns State as an untyped value.
func (s *Store[S]) Snapshot() any { return s.State() }

// Subscribe calls listener after every dispatch that changed the state.
// The returned function unsubscribes; it is idempotent and may be called
// from inside a notification.
func (s *Store[S]) Subscribe(listener func()) (func(), error) {
	if listener == nil {
		return nil, fluxury.ErrInvalidListener
	}
	return s.listeners.Subscribe(func(S) { listener() })
}

// Watch is Subscribe with the committed state passed to the listener.
func (s *Store[S]) Watch(listener func(state S)) (func(), error) {
	if listener == nil {
		return nil, fluxury.ErrInvalidListener
	}
	return s.listeners.Subscribe(listener)
}

// Dispatch dispatches {typ, data} on the store's dispatcher.
func (s *Store[S]) Dispatch(ctx context.Context, typ string, data any) error {
	_, err := s.d.Send(ctx, typ, data)
	return err
}

// Send dispatches an action descriptor on the store's dispatcher.
func (s *Store[S]) Send(ctx context.Context, descriptor any, data any) (action.Action, error) {
	return s.d.Send(ctx, descriptor, data)
}

// Reducer returns the store's reducer for use outside a dispatch. Calls to
// wait inside it are no-ops.
func (s *Store[S]) Reducer() func(state S, a action.Action) (S, error) {
	s.mu.RLock()
	reduce := s.reducer
	s.mu.RUnlock()

	return func(state S, a action.Action) (S, error) {
		return reduce(state, a, noWait)
	}
}

// ReplaceReducer swaps the reducer used from the next dispatch on.
func (s *Store[S]) ReplaceReducer(r Reducer[S]) error {
	if r == nil {
		return fluxury.ErrInvalidReducer
	}
	s.mu.Lock()
	s.reducer = r
	s.mu.Unlock()
	return nil
}

// SetState replaces the state without notifying subscribers.
func (s *Store[S]) SetState(state S) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// SetSnapshot is SetState for an untyped value.
func (s *Store[S]) SetSnapshot(v any) error {
	state, err := s.asState(v)
	if err != nil {
		return err
	}
	s.SetState(state)
	return nil
}

// CheckSnapshot reports whether SetSnapshot would accept v.
func (s *Store[S]) CheckSnapshot(v any) error {
	_, err := s.asState(v)
	return err
}

func (s *Store[S]) asState(v any) (S, error) {
	state, ok := v.(S)
	if !ok {
		var zero S
		if v != nil || any(zero) != nil {
			return zero, fmt.Errorf("%w: store %q holds %T, got %T", fluxury.ErrStateType, s.name, zero, v)
		}
	}
	return state, nil
}

// ActionTypes returns the action types of a handler table, sorted.
func (s *Store[S]) ActionTypes() []string {
	return slices.Sorted(maps.Keys(s.handlers))
}

// ActionCreator returns a function dispatching actions of type typ.
func (s *Store[S]) ActionCreator(typ string) (func(ctx context.Context, data any) error, error) {
	if _, ok := s.handlers[typ]; !ok {
		return nil, fmt.Errorf("%w: %q in store %q", fluxury.ErrUnknownActionType, typ, s.name)
	}
	return func(ctx context.Context, data any) error {
		return s.d.Dispatch(ctx, action.New(typ, data))
	}, nil
}

// Actions returns an action creator per action type.
func (s *Store[S]) Actions() map[string]func(ctx context.Context, data any) error {
	creators := make(map[string]func(ctx context.Context, data any) error, len(s.handlers))
	for typ := range s.handlers {
		creators[typ], _ = s.ActionCreator(typ)
	}
	return creators
}

// Query runs the named selector against the current state.
func (s *Store[S]) Query(name string, args ...any) (any, error) {
	sel, ok := s.selectors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q in store %q", fluxury.ErrUnknownSelector, name, s.name)
	}
	return sel(s.State(), args...), nil
}

// Selectors returns the selector names, sorted.
func (s *Store[S]) Selectors() []string {
	return slices.Sorted(maps.Keys(s.selectors))
}

// Select projects the current state of s through f.
func Select[S, R any](s *Store[S], f func(S) R) R {
	return f(s.State())
}

// Close unregisters the store from its dispatcher. The state stays
// readable. Closing twice is a no-op.
func (s *Store[S]) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	return s.d.Unregister(s.token)
}
