package compose

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
)

// Member is a store that can be part of a Root. Every *store.Store
// satisfies it.
type Member interface {
	Source
	CheckSnapshot(v any) error
	SetSnapshot(v any) error
}

// RootListener receives the combined state and the action that changed it.
type RootListener func(state map[string]any, a action.Action)

type rootChange struct {
	state  map[string]any
	action action.Action
}

// RootOption configures a Root.
type RootOption func(*Root) error

// WithMembers adds members at construction.
func WithMembers(members ...Member) RootOption {
	return func(r *Root) error {
		return r.add(members)
	}
}

// WithRootLogger sets the root's logger. Defaults to the dispatcher's.
func WithRootLogger(l *slog.Logger) RootOption {
	return func(r *Root) error {
		if l == nil {
			return fmt.Errorf("compose: nil logger")
		}
		r.logger = l
		return nil
	}
}

// Root tracks a named set of stores as a single application state. Its
// listeners are told once per dispatch that changed at least one member.
type Root struct {
	d         *fluxury.Dispatcher
	logger    *slog.Logger
	token     fluxury.Token
	listeners *emitter.Emitter[rootChange]

	mu      sync.Mutex
	members map[string]Member
	order   []string
	last    map[string]any
	closed  bool
}

// NewRoot creates a Root and registers it with d.
func NewRoot(d *fluxury.Dispatcher, opts ...RootOption) (*Root, error) {
	if d == nil {
		return nil, fmt.Errorf("compose: nil dispatcher")
	}
	r := &Root{
		d:         d,
		logger:    d.Logger(),
		listeners: emitter.New[rootChange](),
		members:   make(map[string]Member),
		last:      make(map[string]any),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	tok, err := d.RegisterNamed("root", r.handle)
	if err != nil {
		return nil, err
	}
	r.token = tok
	return r, nil
}

// Token returns the root's dispatch token.
func (r *Root) Token() fluxury.Token { return r.token }

// Add adds members keyed by their Name.
func (r *Root) Add(members ...Member) error {
	return r.add(members)
}

func (r *Root) add(members []Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]bool, len(members))
	for _, m := range members {
		if m == nil {
			return fmt.Errorf("compose: nil member")
		}
		name := m.Name()
		if _, ok := r.members[name]; ok || seen[name] {
			return fmt.Errorf("%w: %q", fluxury.ErrDuplicateStore, name)
		}
		seen[name] = true
	}
	for _, m := range members {
		name := m.Name()
		r.members[name] = m
		r.order = append(r.order, name)
		r.last[name] = m.Snapshot()
	}
	return nil
}

// Stores returns the members in the order they were added.
func (r *Root) Stores() []Member {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Member, len(r.order))
	for i, name := range r.order {
		out[i] = r.members[name]
	}
	return out
}

// State returns the current state of every member keyed by name.
func (r *Root) State() map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()

	state := make(map[string]any, len(r.members))
	for name, m := range r.members {
		state[name] = m.Snapshot()
	}
	return state
}

// Subscribe adds a listener. The returned function unsubscribes.
func (r *Root) Subscribe(listener RootListener) (func(), error) {
	if listener == nil {
		return nil, fluxury.ErrInvalidListener
	}
	return r.listeners.Subscribe(func(c rootChange) {
		listener(c.state, c.action)
	})
}

// ReplaceState sets the state of the named members without notifying
// anyone. Nothing is replaced if a name is unknown or a value has the
// wrong type for its member.
func (r *Root) ReplaceState(state map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := slices.Sorted(maps.Keys(state))
	for _, name := range names {
		if _, ok := r.members[name]; !ok {
			return fmt.Errorf("%w: %q", fluxury.ErrUnknownStore, name)
		}
	}
	for _, name := range names {
		if err := r.members[name].CheckSnapshot(state[name]); err != nil {
			return err
		}
	}
	for _, name := range names {
		m := r.members[name]
		if err := m.SetSnapshot(state[name]); err != nil {
			return err
		}
		r.last[name] = m.Snapshot()
	}
	return nil
}

// Close unregisters the root from its dispatcher. Closing twice is a no-op.
func (r *Root) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	return r.d.Unregister(r.token)
}

func (r *Root) handle(ctx context.Context, a action.Action) error {
	r.mu.Lock()
	tokens := make([]fluxury.Token, 0, len(r.order))
	for _, name := range r.order {
		tokens = append(tokens, r.members[name].Token())
	}
	r.mu.Unlock()

	if err := r.d.WaitFor(ctx, tokens...); err != nil {
		return err
	}

	next := r.State()

	r.mu.Lock()
	changed := !sameMembers(r.last, next)
	if changed {
		r.last = next
	}
	r.mu.Unlock()

	if !changed {
		return nil
	}

	r.logger.DebugContext(ctx, "root state changed", slog.String("action", a.Type))
	return r.d.AfterDispatch(func(context.Context) {
		r.listeners.Emit(rootChange{state: maps.Clone(next), action: a})
	})
}
